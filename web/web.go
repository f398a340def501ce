// Package web provides the JSON HTTP API for metersplit.
package web

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/metersplit/metersplit/adapters/metrics"
	"github.com/metersplit/metersplit/app"
	"github.com/metersplit/metersplit/ports"
)

// adminKeyHashSetting is the settings key holding the bcrypt hash of the
// admin API key. When absent, mutating endpoints are open.
const adminKeyHashSetting = "admin_api_key_hash"

// Handler provides the HTTP API endpoints.
type Handler struct {
	meters   *app.MeterService
	tariffs  *app.TariffService
	billing  *app.BillingService
	bills    ports.BillStore
	settings ports.SettingsStore
	hasher   ports.Hasher
	logger   zerolog.Logger
	metrics  *metrics.Collector
	registry *prometheus.Registry
	docs     bool
}

// Deps contains dependencies for the HTTP handler.
type Deps struct {
	Meters   *app.MeterService
	Tariffs  *app.TariffService
	Billing  *app.BillingService
	Bills    ports.BillStore
	Settings ports.SettingsStore
	Hasher   ports.Hasher
	Logger   zerolog.Logger
	Metrics  *metrics.Collector   // optional
	Registry *prometheus.Registry // optional, serves /metrics when set
	Docs     bool                 // mount Swagger UI at /docs
}

// NewHandler creates a new HTTP handler.
func NewHandler(deps Deps) *Handler {
	return &Handler{
		meters:   deps.Meters,
		tariffs:  deps.Tariffs,
		billing:  deps.Billing,
		bills:    deps.Bills,
		settings: deps.Settings,
		hasher:   deps.Hasher,
		logger:   deps.Logger,
		metrics:  deps.Metrics,
		registry: deps.Registry,
		docs:     deps.Docs,
	}
}

// Router returns the main HTTP router.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(NewLoggingMiddleware(h.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	if h.metrics != nil {
		r.Use(NewMetricsMiddleware(h.metrics))
	}

	// Health endpoints (no auth required)
	r.Get("/healthz", h.Health)
	r.Get("/version", h.Version)

	if h.registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(h.registry, promhttp.HandlerOpts{}))
	}

	if h.docs {
		// Serve the generated OpenAPI spec and point the Swagger UI at it.
		r.Get("/.well-known/openapi.json", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			http.ServeFile(w, r, "docs/swagger/swagger.json")
		})
		r.Get("/docs/*", httpSwagger.Handler(
			httpSwagger.URL("/.well-known/openapi.json"),
		))
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Read endpoints (no auth required)
		r.Get("/meters", h.ListMeters)
		r.Get("/meters/main", h.GetMainMeter)
		r.Get("/meters/{id}", h.GetMeter)
		r.Get("/tariff", h.GetTariff)
		r.Post("/bills/preview", h.PreviewBill)
		r.Get("/bills", h.ListBills)
		r.Get("/bills/{id}", h.GetBill)
		r.Get("/bills/{id}/replay", h.ReplayBill)

		// Mutating endpoints (require the admin API key when one is set)
		r.Group(func(r chi.Router) {
			r.Use(h.AuthMiddleware)

			r.Post("/meters", h.CreateMeter)
			r.Put("/meters/{id}", h.UpdateMeter)
			r.Delete("/meters/{id}", h.DeleteMeter)
			r.Put("/meters/{id}/readings", h.SetMeterReadings)
			r.Put("/meters/main/readings", h.SetMainReadings)

			r.Put("/tariff", h.UpdateTariff)

			r.Post("/bills", h.SaveBill)
			r.Delete("/bills/{id}", h.DeleteBill)
			r.Post("/rollover", h.Rollover)
		})
	})

	return r
}

// HealthResponse represents a health check response.
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}

// VersionResponse represents the version endpoint response.
type VersionResponse struct {
	Version string `json:"version" example:"1.0.0"`
	Service string `json:"service" example:"metersplit"`
}

// BuildVersion is set at build time via ldflags.
var BuildVersion = "dev"

// Health reports service liveness.
//
//	@Summary		Health check
//	@Description	Returns ok when the service is up
//	@Tags			System
//	@Produce		json
//	@Success		200	{object}	HealthResponse
//	@Router			/healthz [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// Version returns the service version.
//
//	@Summary		Service version
//	@Tags			System
//	@Produce		json
//	@Success		200	{object}	VersionResponse
//	@Router			/version [get]
func (h *Handler) Version(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, VersionResponse{Version: BuildVersion, Service: "metersplit"})
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error struct {
		Code    string `json:"code" example:"not_found"`
		Message string `json:"message" example:"Meter not found"`
	} `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
