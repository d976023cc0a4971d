package api

import (
	"net/http"
	"time"

	"climindex/app"
	"climindex/internal"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// maxBodyBytes bounds request payloads, grids included.
const maxBodyBytes = 64 << 20

// Server exposes the indice service over HTTP.
type Server struct {
	router  *chi.Mux
	service *app.IndiceService
	timeout time.Duration
	logger  *internal.Logger
}

// NewServer builds the router. A zero timeout disables the request deadline.
func NewServer(service *app.IndiceService, timeout time.Duration, logger *internal.Logger) *Server {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	s := &Server{
		router:  chi.NewRouter(),
		service: service,
		timeout: timeout,
		logger:  logger,
	}

	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures HTTP middleware
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)
	if s.timeout > 0 {
		s.router.Use(middleware.Timeout(s.timeout))
	}
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/v1/indices", func(r chi.Router) {
		r.Post("/validate", s.handleValidate)
		r.Post("/resolve", s.handleResolve)
		r.Post("/compute", s.handleCompute)
	})
}

// ServeHTTP makes the server usable as an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Start listens on addr until the server fails.
func (s *Server) Start(addr string) error {
	s.logger.Info("[API] Starting indice server on %s", addr)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}
