package cache

import "fmt"

func RateLimitKey(keyPrefix string) string {
	return fmt.Sprintf("ratelimit:%s", keyPrefix)
}

func OverrideStatsKey() string {
	return "overrides:stats"
}

func ForecastSummaryKey(datasetHash string) string {
	return fmt.Sprintf("forecast:summary:%s", datasetHash)
}
