package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/go-pkgz/rest"
	"github.com/go-pkgz/rest/logger"
	"github.com/go-pkgz/routegroup"

	"github.com/umputun/wkbadge/pkg/badge"
	"github.com/umputun/wkbadge/pkg/domain"
	"github.com/umputun/wkbadge/pkg/reactor"
	"github.com/umputun/wkbadge/pkg/store"
	"github.com/umputun/wkbadge/pkg/wanikani"
)

//go:generate moq -out mocks/config.go -pkg mocks -skip-ensure -fmt goimports . ConfigProvider
//go:generate moq -out mocks/store.go -pkg mocks -skip-ensure -fmt goimports . Store
//go:generate moq -out mocks/fetcher.go -pkg mocks -skip-ensure -fmt goimports . Fetcher
//go:generate moq -out mocks/presenter.go -pkg mocks -skip-ensure -fmt goimports . Presenter
//go:generate moq -out mocks/reactor.go -pkg mocks -skip-ensure -fmt goimports . Reactor
//go:generate moq -out mocks/pinger.go -pkg mocks -skip-ensure -fmt goimports . Pinger

// Server represents HTTP server instance
type Server struct {
	config    ConfigProvider
	store     Store
	fetcher   Fetcher
	presenter Presenter
	reactor   Reactor
	db        Pinger
	keyCheck  time.Duration
	version   string
	debug     bool

	lock       sync.Mutex
	httpServer *http.Server
	router     *routegroup.Bundle
}

// Store interface for preferences and cached state
type Store interface {
	Snapshot(ctx context.Context) (domain.Snapshot, error)
	Set(ctx context.Context, items domain.Items) error
	Clear(ctx context.Context) error
	Subscribe(fn func(store.Changes)) (unsubscribe func())
}

// Fetcher interface for on-demand resource access
type Fetcher interface {
	Get(ctx context.Context, r domain.Resource) (wanikani.View, error)
	Refresh(ctx context.Context, r domain.Resource, force bool) error
}

// Presenter exposes the last rendered badge
type Presenter interface {
	LastState() badge.State
}

// Reactor accepts user and page events
type Reactor interface {
	Post(ev reactor.Event) error
}

// Pinger checks the database connection
type Pinger interface {
	Ping(ctx context.Context) error
}

// ConfigProvider provides server configuration
type ConfigProvider interface {
	GetServerConfig() (listen string, timeout time.Duration)
}

// Deps are the components served over HTTP
type Deps struct {
	Config    ConfigProvider
	Store     Store
	Fetcher   Fetcher
	Presenter Presenter
	Reactor   Reactor
	DB        Pinger // optional, reported by status
}

// defaultKeyCheck bounds the wait for the user response after an api key change
const defaultKeyCheck = 10 * time.Second

// New initializes a new server instance
func New(deps Deps, version string, debug bool) *Server {
	s := &Server{
		config:    deps.Config,
		store:     deps.Store,
		fetcher:   deps.Fetcher,
		presenter: deps.Presenter,
		reactor:   deps.Reactor,
		db:        deps.DB,
		keyCheck:  defaultKeyCheck,
		version:   version,
		debug:     debug,
		router:    routegroup.New(http.NewServeMux()),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// Run starts the HTTP server and handles graceful shutdown
func (s *Server) Run(ctx context.Context) error {
	listen, timeout := s.config.GetServerConfig()
	log.Printf("[INFO] starting server on %s", listen)

	s.lock.Lock()
	s.httpServer = &http.Server{
		Addr:              listen,
		Handler:           s.router,
		ReadHeaderTimeout: timeout,
		ReadTimeout:       timeout,
		WriteTimeout:      timeout,
	}
	httpServer := s.httpServer
	s.lock.Unlock()

	go func() {
		<-ctx.Done()
		log.Printf("[INFO] shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("[WARN] server shutdown error: %v", err)
		}
	}()

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}

	return nil
}

// Handler returns the router with all middlewares and routes
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupMiddleware configures standard middleware for the server
func (s *Server) setupMiddleware() {
	s.router.Use(rest.AppInfo("wkbadge", "umputun", s.version))
	s.router.Use(rest.Ping)

	if s.debug {
		s.router.Use(logger.New(logger.Log(lgr.Default()), logger.Prefix("[DEBUG]")).Handler)
	}

	s.router.Use(rest.Recoverer(lgr.Default()))
	s.router.Use(rest.Throttle(100))
	s.router.Use(rest.SizeLimit(64 * 1024)) // 64KB, requests are tiny json documents
}

// setupRoutes configures application routes
func (s *Server) setupRoutes() {
	s.router.Mount("/api/v1").Route(func(r *routegroup.Bundle) {
		r.HandleFunc("GET /status", s.statusHandler)
		r.HandleFunc("GET /badge", s.badgeHandler)

		r.HandleFunc("GET /resources/{kind}", s.resourceHandler)
		r.HandleFunc("POST /resources/{kind}/refresh", s.refreshResourceHandler)

		r.HandleFunc("GET /options", s.getOptionsHandler)
		r.HandleFunc("PUT /options", s.saveOptionsHandler)
		r.HandleFunc("DELETE /options", s.clearOptionsHandler)

		r.HandleFunc("POST /action", s.actionHandler)
		r.HandleFunc("GET /menu", s.menuListHandler)
		r.HandleFunc("POST /menu/{id}", s.menuHandler)
		r.HandleFunc("POST /page", s.pageHandler)
	})
}

// RenderJSON sends JSON response
func RenderJSON(w http.ResponseWriter, _ *http.Request, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("[ERROR] can't encode response to JSON: %v", err)
		}
	}
}

// RenderError sends error response as JSON
func RenderError(w http.ResponseWriter, r *http.Request, err error, code int) {
	errMsg := "unknown error"
	if err != nil {
		errMsg = err.Error()
	}
	RenderJSON(w, r, code, map[string]string{"error": errMsg})
}
