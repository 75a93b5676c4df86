package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Carlos85Carvalho/luni-final-sub000/internal/service"
	"github.com/Carlos85Carvalho/luni-final-sub000/pkg/health"
	"github.com/Carlos85Carvalho/luni-final-sub000/pkg/middleware"
)

// RouterConfig holds the environment-dependent knobs for the router.
type RouterConfig struct {
	Environment        string
	CORSAllowedOrigins []string
	PprofAllowedCIDRs  []string
}

// NewRouter creates a chi router with all point-of-sale routes registered.
func NewRouter(
	sessions *service.SessionService,
	pending *service.PendingService,
	healthHandler *health.Handler,
	logger *slog.Logger,
	cfg RouterConfig,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		ExposedHeaders: []string{"X-Correlation-ID"},
		Environment:    cfg.Environment,
	}))
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("pos"))
	r.Use(middleware.Tracing("pos"))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Pprof debug endpoints with IP allowlist.
	middleware.RegisterPprof(r, cfg.PprofAllowedCIDRs, logger)

	// POS API endpoints
	posHandler := NewPOSHandler(sessions, pending, logger)

	r.Route("/api/v1/pos", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(middleware.OperatorFromHeader)

		r.Post("/sessions", posHandler.OpenSession)
		r.Get("/sessions/{id}", posHandler.GetSession)
		r.Delete("/sessions/{id}", posHandler.CloseSession)

		r.Post("/sessions/{id}/lines", posHandler.AddLine)
		r.Delete("/sessions/{id}/lines", posHandler.ClearCart)
		r.Patch("/sessions/{id}/lines/{kind}/{itemId}", posHandler.AdjustLine)
		r.Put("/sessions/{id}/lines/{kind}/{itemId}/price", posHandler.SetLinePrice)
		r.Delete("/sessions/{id}/lines/{kind}/{itemId}", posHandler.RemoveLine)

		r.Put("/sessions/{id}/discount", posHandler.SetDiscount)
		r.Put("/sessions/{id}/customer", posHandler.AttachCustomer)

		r.Post("/sessions/{id}/checkout", posHandler.Checkout)
		r.Post("/sessions/{id}/pending", posHandler.SavePending)
		r.Post("/sessions/{id}/recover", posHandler.Recover)

		r.Get("/pending", posHandler.ListPending)
	})

	return r
}
