// Package api provides the HTTP server: the HTML page, the JSON API and operational endpoints.
package api

import (
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/reelmatch/reelmatch-server/internal/ratelimit"
)

// Version is reported in the OpenAPI document.
const Version = "1.0.0"

// Options configures transport behaviour of the server.
type Options struct {
	CORSAllowedOrigins []string
	SessionTTL         time.Duration
	SecureCookies      bool    // set the Secure flag on the session cookie
	PostRate           float64 // per client IP, requests per second
	PostBurst          int
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	services *Services
	router   *chi.Mux
	api      huma.API
	page     *template.Template
	limiter  *ratelimit.KeyedRateLimiter
	opts     Options
	logger   *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(services *Services, opts Options, logger *slog.Logger) (*Server, error) {
	page, err := template.New("index.html").Funcs(pageFuncs).ParseFS(templates, "templates/index.html")
	if err != nil {
		return nil, err
	}

	if opts.SessionTTL <= 0 {
		opts.SessionTTL = DefaultSessionTTL
	}
	if opts.PostRate <= 0 {
		opts.PostRate = DefaultPostRate
	}
	if opts.PostBurst <= 0 {
		opts.PostBurst = DefaultPostBurst
	}
	if len(opts.CORSAllowedOrigins) == 0 {
		opts.CORSAllowedOrigins = []string{"*"}
	}

	s := &Server{
		services: services,
		router:   chi.NewRouter(),
		page:     page,
		limiter:  ratelimit.New(opts.PostRate, opts.PostBurst),
		opts:     opts,
		logger:   logger,
	}

	// Middleware must be in place before huma mounts its own routes.
	s.setupMiddleware()

	humaConfig := huma.DefaultConfig("ReelMatch API", Version)
	humaConfig.Info.Description = "Movie recommendations from a precomputed similarity matrix."
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)

	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler()

	s.registerWebRoutes()
	s.registerHealthRoutes()
	s.registerMovieRoutes()
	s.registerRecommendationRoutes()
	s.registerPosterRoutes()
	s.router.Handle("/metrics", promhttp.Handler())

	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close stops background work owned by the server.
func (s *Server) Close() {
	s.limiter.Stop()
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.observe)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"Link", "X-Request-ID"},
		MaxAge:         300,
	}))
	s.router.Use(RateLimitMiddleware(s.limiter, s.logger))
	s.router.Use(middleware.Compress(5))
}
