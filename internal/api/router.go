package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/faqbot-platform/faqbot/internal/database"
	mw "github.com/faqbot-platform/faqbot/internal/middleware"
)

// HandlerSet holds handler functions injected from main.go to avoid import cycles.
type HandlerSet struct {
	Chat         http.HandlerFunc
	ClearSession http.HandlerFunc

	ChatRateLimiter func(http.Handler) http.Handler
}

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	CORSAllowedOrigins []string
}

func NewRouter(pool *pgxpool.Pool, redisClient *redis.Client, cfg RouterConfig, h HandlerSet) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.RequestID)
	r.Use(mw.SecurityHeaders)
	r.Use(mw.Logging)
	r.Use(mw.Recovery)
	r.Use(mw.Metrics)
	r.Use(cors.Handler(mw.CORS(cfg.CORSAllowedOrigins)))

	// Liveness probe — always 200, no dependency checks
	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		JSON(w, http.StatusOK, map[string]string{"status": "alive"})
	})

	// Readiness probe — checks Postgres and Redis
	readinessHandler := func(w http.ResponseWriter, r *http.Request) {
		health := map[string]string{
			"status":   "healthy",
			"database": "healthy",
			"redis":    "healthy",
		}

		status := http.StatusOK

		if err := database.HealthCheck(r.Context(), pool); err != nil {
			health["database"] = "unhealthy"
			health["status"] = "degraded"
			status = http.StatusServiceUnavailable
		}

		if err := redisClient.Ping(r.Context()).Err(); err != nil {
			health["redis"] = "unhealthy"
			health["status"] = "degraded"
			status = http.StatusServiceUnavailable
		}

		JSON(w, status, health)
	}

	r.Get("/health/ready", readinessHandler)
	r.Get("/health", readinessHandler)

	// Prometheus metrics
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if h.ChatRateLimiter != nil {
				r.Use(h.ChatRateLimiter)
			}
			r.Post("/chat", h.Chat)
		})

		r.Delete("/sessions/{sessionID}", h.ClearSession)
	})

	return r
}
