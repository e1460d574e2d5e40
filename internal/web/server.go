// Package web provides the HTTP server and handlers for the invoice
// generator UI.
package web

import (
	"context"
	"embed"
	"io/fs"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yutaka-m/invoicer/internal/config"
	"github.com/yutaka-m/invoicer/internal/middleware"
	"github.com/yutaka-m/invoicer/internal/service"
)

//go:embed static
var staticFiles embed.FS

// Server is the HTTP server for the invoice application.
type Server struct {
	service *service.InvoiceService
	router  *chi.Mux
	server  *http.Server
}

// NewServer creates a Server around the given session service.
func NewServer(cfg config.ServerConfig, svc *service.InvoiceService) *Server {
	s := &Server{
		service: svc,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout.Std(),
		WriteTimeout: cfg.WriteTimeout.Std(),
	}
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(chimw.RealIP)
	s.router.Use(chimw.Recoverer)
	s.router.Use(middleware.RequestLogger)
	s.router.Use(middleware.CORS)
}

func (s *Server) setupRoutes() {
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		log.Fatal(err)
	}
	s.router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))
	s.router.Get("/", s.handleIndex)

	s.router.Get("/healthz", s.handleHealth)
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/catalog", s.handleCatalog)
		r.Post("/catalog/refresh", s.handleRefreshCatalog)

		r.Post("/cart/items", s.handleAddItem)
		r.Put("/cart/items/{id}", s.handleUpdateItem)
		r.Delete("/cart/items/{id}", s.handleRemoveItem)

		r.Put("/customer", s.handleSetCustomer)
		r.Get("/invoice", s.handleInvoice)
		r.Post("/export", s.handleExport)
	})
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the server until it is shut down.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
