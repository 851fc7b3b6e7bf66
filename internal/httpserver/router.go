package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"dsacoach-gateway/internal/handlers"
	"dsacoach-gateway/internal/metrics"
	"dsacoach-gateway/internal/middleware"
)

const (
	defaultRequestTimeout = 60 * time.Second
	defaultMaxBodyBytes   = 1 << 20 // 1 MB
)

type Handlers struct {
	Coach   *handlers.CoachHandler
	Dataset *handlers.DatasetHandler
	System  *handlers.SystemHandler
}

type Options struct {
	RequestTimeout time.Duration
	MaxBodyBytes   int64
}

func SetupRouter(r *chi.Mux, baseLogger *zap.Logger, h Handlers, opts Options) {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = defaultRequestTimeout
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}

	r.Use(metrics.Middleware)

	// base middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)

	// content scripts call in from leetcode.com and the extension origin
	r.Use(cors.Handler(cors.Options{
		AllowOriginFunc: func(_ *http.Request, _ string) bool { return true },
		AllowedMethods:  []string{http.MethodGet, http.MethodPost},
		AllowedHeaders:  []string{"Content-Type", "Authorization"},
	}))

	r.Use(middleware.LoggingContext(baseLogger))
	r.Use(middleware.Recoverer())
	r.Use(middleware.Timeout(opts.RequestTimeout))
	r.Use(middleware.MaxBodySize(opts.MaxBodyBytes))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.System.Health)
		r.Get("/cache/stats", h.System.CacheStats)

		r.Post("/analyze", h.Coach.Analyze)
		r.Post("/predict", h.Coach.Predict)
		r.Get("/profile/{username}", h.Coach.Profile)

		r.Post("/topics", h.Dataset.Topics)
		r.Get("/related/{problemSlug}", h.Dataset.Related)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Handle("/metrics", metrics.Handler())
}
