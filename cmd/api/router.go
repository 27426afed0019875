package main

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/madaure/backend/internal/handlers"
	sharedHandlers "github.com/madaure/backend/libs/handlers"
	loggerMiddleware "github.com/madaure/backend/libs/logger/middleware"
	sharedMiddleware "github.com/madaure/backend/libs/middlewares"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

const (
	// authRateLimit caps login and registration attempts per IP and minute
	authRateLimit = 10
	// maxRequestSize caps request bodies
	maxRequestSize = 1 << 20
	healthTimeout  = 2 * time.Second
)

// routeRegistrar is implemented by every resource handler
type routeRegistrar interface {
	RegisterRoutes(r chi.Router, g handlers.Guards)
}

// healthCheck probes one dependency for GET /health
type healthCheck func(ctx context.Context) error

type routerConfig struct {
	AllowedOrigins []string
	RateLimit      int
	SwaggerURL     string
}

// healthResponse is the body of GET /health
type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// newRouter mounts the middleware chain, Swagger UI, the health probe and every handler under /api
//
// The first registrar serves /auth and gets the stricter auth rate limit.
func newRouter(cfg routerConfig, logger *zap.Logger, guards handlers.Guards, checks map[string]healthCheck, auth routeRegistrar, resources ...routeRegistrar) chi.Router {
	r := chi.NewRouter()

	r.Use(sharedMiddleware.RequestIDMiddleware)
	r.Use(loggerMiddleware.LoggerMiddleware(logger))
	r.Use(sharedMiddleware.RecoveryMiddleware(logger))
	r.Use(sharedMiddleware.CORSMiddleware(cfg.AllowedOrigins))
	r.Use(httprate.LimitByIP(cfg.RateLimit, time.Minute))
	r.Use(sharedMiddleware.RequestSizeLimitMiddleware(maxRequestSize))

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL(cfg.SwaggerURL)))

	r.Get("/health", healthHandler(logger, checks))

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(httprate.LimitByIP(authRateLimit, time.Minute))
			auth.RegisterRoutes(r, guards)
		})
		for _, h := range resources {
			h.RegisterRoutes(r, guards)
		}
	})

	return r
}

// healthHandler answers 200 when every check passes and 503 otherwise
func healthHandler(logger *zap.Logger, checks map[string]healthCheck) http.HandlerFunc {
	base := sharedHandlers.BaseHandler{Logger: logger}

	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		resp := healthResponse{Status: "ok", Checks: make(map[string]string, len(names))}
		status := http.StatusOK
		for _, name := range names {
			if err := checks[name](ctx); err != nil {
				logger.Warn("health check failed", zap.String("check", name), zap.Error(err))
				resp.Checks[name] = "unavailable"
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}

		base.RespondJSON(w, status, resp)
	}
}
