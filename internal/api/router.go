package api

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/Harshitk-cp/contentmesh/internal/api/handlers"
	mw "github.com/Harshitk-cp/contentmesh/internal/api/middleware"
	"github.com/Harshitk-cp/contentmesh/internal/buildconfig"
	"github.com/Harshitk-cp/contentmesh/internal/domain"
	"github.com/Harshitk-cp/contentmesh/internal/mcpserver"
	"github.com/Harshitk-cp/contentmesh/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Deps are the services the HTTP surface exposes.
type Deps struct {
	Content   *service.ContentService
	Scorer    *service.QualityScorer
	Documents *service.DocumentService
	WebSearch domain.SourceHandler

	// Ping reports backing-store health; nil means always healthy.
	Ping func(ctx context.Context) error

	APIKey         string
	RateLimitRPS   float64
	RateLimitBurst int
}

// App holds the router and the counters behind the JSON metrics endpoint.
type App struct {
	Router       *chi.Mux
	deps         Deps
	startTime    time.Time
	requestCount atomic.Int64
	errorCount   atomic.Int64
}

func NewApp(deps Deps, logger *zap.Logger) *App {
	routingHandler := handlers.NewRoutingHandler(deps.Content.Router())
	synthesisHandler := handlers.NewSynthesisHandler(deps.Content.Synthesizer())
	scoringHandler := handlers.NewScoringHandler(deps.Scorer)
	queryHandler := handlers.NewQueryHandler(deps.Content)
	documentHandler := handlers.NewDocumentHandler(deps.Documents)

	mcpServer := mcpserver.NewServer(mcpserver.Config{
		Content:   deps.Content,
		Scorer:    deps.Scorer,
		WebSearch: deps.WebSearch,
		Logger:    logger,
	})

	r := chi.NewRouter()

	app := &App{
		Router:    r,
		deps:      deps,
		startTime: time.Now(),
	}

	metricsCollector := mw.NewMetricsCollector(&app.requestCount, &app.errorCount)

	// Global middleware (order matters)
	r.Use(mw.RequestID)
	r.Use(middleware.RealIP)
	r.Use(metricsCollector.Middleware)
	r.Use(mw.Logging(logger))
	r.Use(middleware.Recoverer)
	if deps.RateLimitRPS > 0 {
		r.Use(mw.RateLimit(deps.RateLimitRPS, deps.RateLimitBurst))
	}

	// Unauthenticated
	r.Get("/", rootHandler())
	r.Get("/health", app.healthHandler())
	r.Get("/metrics", app.metricsHandler())
	r.Handle("/metrics/prometheus", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(mw.BearerAuth(deps.APIKey))
		r.Handle("/mcp", mcpserver.HTTPHandler(mcpServer))
	})

	r.Route("/v1", func(r chi.Router) {
		r.Use(mw.BearerAuth(deps.APIKey))

		r.Post("/route", routingHandler.Route)
		r.Get("/routing/decisions", routingHandler.RecentDecisions)
		r.Post("/synthesize", synthesisHandler.Synthesize)
		r.Post("/query", queryHandler.Query)

		r.Route("/sources", func(r chi.Router) {
			r.Get("/", routingHandler.ListSources)
			r.Delete("/{id}", routingHandler.UnregisterSource)
		})

		r.Post("/score", scoringHandler.Score)
		r.Route("/scoring", func(r chi.Router) {
			r.Get("/weights", scoringHandler.Weights)
			r.Put("/weights/{factor}", scoringHandler.SetWeight)
			r.Get("/reliability", scoringHandler.Reliability)
			r.Put("/reliability/{sourceType}", scoringHandler.SetReliability)
		})

		r.Route("/documents", func(r chi.Router) {
			r.Post("/", documentHandler.Create)
			r.Get("/{id}", documentHandler.GetByID)
			r.Delete("/{id}", documentHandler.Delete)
		})
	})

	return app
}

func rootHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"build":      buildconfig.Get(),
			"status":     "running",
			"strategies": domain.AllStrategies(),
		})
	}
}

func (app *App) healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if app.deps.Ping != nil {
			if err := app.deps.Ping(r.Context()); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "error", "error": err.Error()})
				return
			}
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"status":  "ok",
			"version": buildconfig.Version(),
			"sources": len(app.deps.Content.Router().Registry().IDs()),
		})
	}
}

func (app *App) metricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		uptime := time.Since(app.startTime)

		writeJSON(w, http.StatusOK, map[string]any{
			"uptime_seconds": uptime.Seconds(),
			"uptime_human":   uptime.Round(time.Second).String(),
			"request_count":  app.requestCount.Load(),
			"error_count":    app.errorCount.Load(),
			"goroutines":     runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb":       float64(memStats.Alloc) / 1024 / 1024,
				"total_alloc_mb": float64(memStats.TotalAlloc) / 1024 / 1024,
				"sys_mb":         float64(memStats.Sys) / 1024 / 1024,
				"num_gc":         memStats.NumGC,
			},
			"sources":    app.deps.Content.Router().Registry().List(),
			"go_version": runtime.Version(),
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
