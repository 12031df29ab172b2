package web

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	red "shopify-store-builder/internal/infra/redis"
	"shopify-store-builder/internal/usecase"
)

// RateLimiter is the slice of the Redis rate limiter the server needs.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

var _ RateLimiter = (*red.RateLimiter)(nil)

type Server struct {
	storeUC   usecase.StoreCreationUseCase
	limiter   RateLimiter
	auth      *AuthManager
	apiKey    string
	adminKey  string
	rateLimit int
	rateWin   time.Duration
	log       *zerolog.Logger
}

func NewServer(
	storeUC usecase.StoreCreationUseCase,
	limiter RateLimiter,
	auth *AuthManager,
	apiKey, adminKey string,
	rateLimit int,
	rateWindow time.Duration,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		storeUC:   storeUC,
		limiter:   limiter,
		auth:      auth,
		apiKey:    apiKey,
		adminKey:  adminKey,
		rateLimit: rateLimit,
		rateWin:   rateWindow,
		log:       logger,
	}
}

// Router builds the full HTTP surface.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", s.healthHandler)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(s.apiKeyMiddleware)
			r.Post("/store-creation", s.initiateHandler)
			r.Get("/store-creation", s.listJobsHandler)
			r.Get("/store-creation/{jobID}", s.progressHandler)
			r.Get("/store-creation/{jobID}/result", s.resultHandler)
		})

		r.Post("/admin/session", s.adminLoginHandler)
		r.Group(func(r chi.Router) {
			r.Use(s.adminMiddleware)
			r.Get("/admin/jobs", s.listJobsHandler)
		})
	})

	return r
}

// apiKeyMiddleware provides simple Bearer token authentication for the API.
func (s *Server) apiKeyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey == "" {
			s.log.Error().Msg("API key is not configured")
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || strings.ToLower(tokenParts[0]) != "bearer" {
			http.Error(w, "Unauthorized: Malformed token", http.StatusUnauthorized)
			return
		}

		if tokenParts[1] != s.apiKey {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// adminMiddleware requires a valid admin session token.
func (s *Server) adminMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.auth == nil {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		if _, err := s.auth.ParseFromRequest(r); err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
