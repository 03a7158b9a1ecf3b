package forecast

import "fmt"

// RecordError is a data-quality failure for a single record, attributed to
// the offending field so callers can react programmatically.
type RecordError struct {
	IDNumber string
	Field    string
	Message  string
}

func (e *RecordError) Error() string {
	if e.IDNumber != "" {
		return fmt.Sprintf("record %s: %s: %s", e.IDNumber, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
