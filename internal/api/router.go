package api

import (
	"net/http"

	mw "github.com/cmlops/cmlwatch/internal/api/middleware"
	"github.com/cmlops/cmlwatch/internal/api/response"
	"github.com/go-chi/chi/v5"
)

// Dependencies holds all handler and middleware dependencies for the router.
type Dependencies struct {
	Auth      *mw.Auth
	RateLimit *mw.RateLimit

	HealthHandler http.HandlerFunc

	ForecastHandler        http.HandlerFunc
	ValidateDatasetHandler http.HandlerFunc

	AddOverrideHandler        http.HandlerFunc
	GetOverrideHandler        http.HandlerFunc
	ListOverridesHandler      http.HandlerFunc
	OverrideStatisticsHandler http.HandlerFunc

	EliminationReportHandler http.HandlerFunc

	CreateKeyHandler http.HandlerFunc
	ListKeysHandler  http.HandlerFunc
	RevokeKeyHandler http.HandlerFunc
}

// NewRouter builds the Chi router with middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.Logger)
	r.Use(mw.Recovery)

	// Public health check
	r.Get("/api/v1/health", orNotImplemented(deps.HealthHandler))

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(deps.Auth.Authenticate)
		r.Use(deps.RateLimit.Limit)

		r.Post("/api/v1/forecasts", orNotImplemented(deps.ForecastHandler))
		r.Post("/api/v1/datasets/validate", orNotImplemented(deps.ValidateDatasetHandler))

		// statistics must register before the {idNumber} wildcard
		r.Get("/api/v1/overrides/statistics", orNotImplemented(deps.OverrideStatisticsHandler))
		r.Post("/api/v1/overrides", orNotImplemented(deps.AddOverrideHandler))
		r.Get("/api/v1/overrides", orNotImplemented(deps.ListOverridesHandler))
		r.Get("/api/v1/overrides/{idNumber}", orNotImplemented(deps.GetOverrideHandler))

		r.Post("/api/v1/reports/elimination", orNotImplemented(deps.EliminationReportHandler))

		// Admin routes
		r.Group(func(r chi.Router) {
			r.Use(deps.Auth.RequireScope("admin"))

			r.Post("/api/v1/admin/keys", orNotImplemented(deps.CreateKeyHandler))
			r.Get("/api/v1/admin/keys", orNotImplemented(deps.ListKeysHandler))
			r.Delete("/api/v1/admin/keys/{keyID}", orNotImplemented(deps.RevokeKeyHandler))
		})
	})

	return r
}

// orNotImplemented returns the handler if non-nil, or a 501 placeholder.
func orNotImplemented(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotImplemented, "NOT_IMPLEMENTED", "Endpoint not yet implemented", nil)
	}
}
