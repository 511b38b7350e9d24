// Package web serves the selection HTTP API.
package web

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/selectarr/selectarr/internal/auth"
	"github.com/selectarr/selectarr/internal/config"
	"github.com/selectarr/selectarr/internal/database"
	"github.com/selectarr/selectarr/internal/selection"
	"github.com/selectarr/selectarr/internal/session"
	"github.com/selectarr/selectarr/internal/web/handlers"
	"github.com/selectarr/selectarr/internal/web/middleware"
	"github.com/selectarr/selectarr/internal/web/sse"
)

// Server is the HTTP server for the selection API.
type Server struct {
	db         *database.DB
	port       int
	bind       string
	allowedNet *net.IPNet
	router     *chi.Mux

	deviceAuth *auth.DeviceAuthService
	sseBroker  *sse.Broker
	selector   *selection.Service
	sessionMgr *session.Manager
	handlers   *handlers.Handlers
}

// NewServer creates a web server. provider and sidecar are optional external
// subtitle sources; either may be nil.
func NewServer(db *database.DB, port int, bind string, allowedNet *net.IPNet, provider selection.SubtitleSearcher, sidecar selection.SidecarIndex) *Server {
	broker := sse.NewBroker()
	selector := selection.NewService(db, provider, sidecar, broker)
	loader := config.NewLoader(db)

	s := &Server{
		db:         db,
		port:       port,
		bind:       bind,
		allowedNet: allowedNet,
		router:     chi.NewRouter(),
		deviceAuth: auth.NewDeviceAuthService(db),
		sseBroker:  broker,
		selector:   selector,
		sessionMgr: session.NewManager(selector, loader, broker),
	}

	s.setupRoutes()
	return s
}

// SSEBroker returns the SSE broker for broadcasting events.
func (s *Server) SSEBroker() *sse.Broker {
	return s.sseBroker
}

// SessionManager returns the websocket session manager.
func (s *Server) SessionManager() *session.Manager {
	return s.sessionMgr
}

// Selector returns the selection service.
func (s *Server) Selector() *selection.Service {
	return s.selector
}

// setupRoutes configures all routes.
func (s *Server) setupRoutes() {
	r := s.router

	// Global middleware (applied to all routes, except timeout which is per-group)
	r.Use(chimiddleware.RequestID)
	// AllowSubnet must come BEFORE RealIP so we check the actual connection source
	r.Use(middleware.AllowSubnet(s.allowedNet))
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(chimiddleware.Recoverer)

	h := handlers.New(s.db, s.selector, s.deviceAuth, s.sessionMgr)
	s.handlers = h

	r.Get("/healthz", h.Healthz)

	// Long-lived connections, no timeout middleware.
	r.Group(func(r chi.Router) {
		r.Use(middleware.DeviceAuth(s.deviceAuth))
		r.Get("/api/events", s.sseBroker.ServeHTTP)
		r.Get("/api/sessions/ws", func(w http.ResponseWriter, r *http.Request) {
			s.sessionMgr.HandleSession(middleware.DeviceFromContext(r.Context()), w, r)
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(chimiddleware.Timeout(60 * time.Second))
		r.Use(middleware.DeviceAuth(s.deviceAuth))

		r.Post("/select/audio", h.SelectAudio)
		r.Post("/select/subtitle", h.SelectSubtitle)

		r.Route("/policies", func(r chi.Router) {
			r.Get("/", h.PolicyList)
			r.Get("/{user}", h.PolicyGet)
			r.Put("/{user}", h.PolicyPut)
			r.Delete("/{user}", h.PolicyDelete)
		})

		r.Get("/languages", h.Languages)
		r.Get("/history", h.History)
	})

	// Device pairing is bootstrap: it cannot require a device key. The
	// subnet allow-list is the perimeter here.
	r.Route("/api/devices", func(r chi.Router) {
		r.Use(chimiddleware.Timeout(60 * time.Second))
		r.Get("/", h.DeviceList)
		r.Post("/", h.DevicePair)
		r.Post("/{id}/regenerate-key", h.DeviceRegenerateKey)
		r.Delete("/{id}", h.DeviceDelete)
	})
}

// Start starts the web server and blocks until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	var addr string
	if s.bind != "" {
		addr = fmt.Sprintf("%s:%d", s.bind, s.port)
	} else {
		addr = fmt.Sprintf(":%d", s.port)
	}

	s.sessionMgr.Start()

	server := &http.Server{
		Addr:    addr,
		Handler: s.router,
		// ReadTimeout is for reading request body
		ReadTimeout: 15 * time.Second,
		// WriteTimeout disabled (0) to allow SSE and websocket connections
		// Chi middleware timeout (60s) protects regular requests
		WriteTimeout: 0,
		// IdleTimeout for keep-alive connections between requests
		IdleTimeout: 120 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down HTTP server")
		// Stop sessions and SSE first to close long-lived connections
		s.sessionMgr.Stop()
		s.sseBroker.Stop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errChan:
		return err
	}
}
