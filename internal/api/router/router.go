package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rafaleads/rafaleads/internal/api/respond"
	"github.com/rafaleads/rafaleads/internal/clinics"
	"github.com/rafaleads/rafaleads/internal/clinicsync"
	httpmiddleware "github.com/rafaleads/rafaleads/internal/http/middleware"
	"github.com/rafaleads/rafaleads/internal/leads"
	"github.com/rafaleads/rafaleads/internal/tokens"
	"github.com/rafaleads/rafaleads/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger         *logging.Logger
	LeadsHandler   *leads.Handler
	ClinicsHandler *clinics.Handler
	TokensHandler  *tokens.Handler
	SyncHandler    *clinicsync.Handler
	TokenValidator httpmiddleware.TokenValidator

	AdminSecret        string
	WebhookRateLimit   float64
	WebhookRateBurst   int
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints (webhook ingest, token validation, health checks)
	r.Group(func(public chi.Router) {
		public.Get("/health", healthCheck)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}

		ingest := public.With()
		if cfg.WebhookRateLimit > 0 {
			ingest = public.With(httpmiddleware.RateLimit(cfg.WebhookRateLimit, cfg.WebhookRateBurst))
		}
		ingest.Post("/webhook/leads", cfg.LeadsHandler.IngestWebhook)

		public.Post("/validate-token", cfg.TokensHandler.ValidateToken)
	})

	// Dashboard API, scoped to the clinic behind the bearer token
	r.Route("/api", func(api chi.Router) {
		api.Use(httpmiddleware.RequireDashboardToken(cfg.TokenValidator))
		api.Get("/clinic", cfg.ClinicsHandler.GetClinic)
		api.Get("/leads", cfg.LeadsHandler.ListLeads)
		api.Get("/stats", cfg.LeadsHandler.GetStats)
		api.Patch("/leads/{sessionID}", cfg.LeadsHandler.UpdateNotes)
	})

	// Operator endpoints
	r.Route("/admin", func(admin chi.Router) {
		admin.Use(httpmiddleware.AdminAuth(cfg.AdminSecret))
		admin.Get("/clinics", cfg.ClinicsHandler.ListClinics)
		admin.Post("/clinics", cfg.ClinicsHandler.CreateClinic)
		admin.Get("/tokens", cfg.TokensHandler.ListTokens)
		admin.Post("/tokens", cfg.TokensHandler.IssueToken)
		admin.Delete("/tokens", cfg.TokensHandler.RevokeToken)
		if cfg.SyncHandler != nil {
			admin.Post("/sync/clinics", cfg.SyncHandler.TriggerSync)
			admin.Get("/sync/clinics", cfg.SyncHandler.GetStatus)
		}
	})

	return r
}

const apiVersion = "1.0.0"

func healthCheck(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"service":   "rafaleads-api",
		"version":   apiVersion,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
