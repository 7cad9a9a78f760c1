package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/punchaudit/punchaudit-backend/pkg/httputil"
	"github.com/punchaudit/punchaudit-backend/pkg/logger"
)

// HealthCheck reports the state of one backing service.
type HealthCheck func(ctx context.Context) map[string]string

// RouterConfig wires optional pieces into the router. Auth, when set, guards
// the API routes but not /health.
type RouterConfig struct {
	ServiceName    string
	AllowedOrigins []string
	Auth           func(http.Handler) http.Handler
	HealthChecks   map[string]HealthCheck
	Timeout        time.Duration
}

// NewRouter builds the HTTP routes of the audit service.
func NewRouter(h *PayrollHandler, cfg RouterConfig, log *logger.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(httputil.RequestID)
	r.Use(httputil.Logger(log))
	r.Use(httputil.Recoverer(log))
	if cfg.Timeout > 0 {
		r.Use(middleware.Timeout(cfg.Timeout))
	}

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "Content-Disposition"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		status := "healthy"
		body := map[string]interface{}{"service": cfg.ServiceName}
		for name, check := range cfg.HealthChecks {
			result := check(r.Context())
			if result["status"] != "up" {
				status = "degraded"
			}
			body[name] = result
		}
		body["status"] = status
		httputil.JSON(w, http.StatusOK, body)
	})

	r.Route("/api/v1/payroll", func(r chi.Router) {
		if cfg.Auth != nil {
			r.Use(cfg.Auth)
		}
		r.Post("/analyze", h.Analyze)
		r.Get("/report/{requestID}", h.DownloadReport)
		r.Get("/runs", h.ListRuns)
		r.Get("/runs/{requestID}", h.GetRun)
	})

	return r
}
