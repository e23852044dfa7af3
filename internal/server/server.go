package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/raaihank/wordguard/internal/config"
	"github.com/raaihank/wordguard/internal/filter"
	"github.com/raaihank/wordguard/internal/logger"
	"github.com/raaihank/wordguard/internal/websocket"
	"go.uber.org/zap"
)

// Server exposes a shared word filter over HTTP
type Server struct {
	config  *config.Config
	logger  *logger.Logger
	router  *mux.Router
	server  *http.Server
	wsHub   *websocket.Hub
	limiter *clientLimiter

	// mu guards filter, which is not safe for concurrent use
	mu     sync.Mutex
	filter *filter.Filter
}

// New creates a new server around f
func New(cfg *config.Config, log *logger.Logger, f *filter.Filter) *Server {
	s := &Server{
		config: cfg,
		logger: log.WithComponent("server"),
		router: mux.NewRouter(),
		filter: f,
	}

	if cfg.WebSocket.Enabled {
		s.wsHub = websocket.NewHub(&websocket.HubConfig{
			BroadcastDetections:  cfg.WebSocket.BroadcastDetections,
			BroadcastConnections: cfg.WebSocket.BroadcastConnections,
			Username:             cfg.WebSocket.Username,
			Password:             cfg.WebSocket.Password,
		}, log.WithComponent("websocket").Logger)
	}

	if cfg.RateLimit.Enabled {
		s.limiter = newClientLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	}

	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	if s.wsHub != nil {
		s.router.HandleFunc(s.config.WebSocket.Path, s.wsHub.HandleWebSocket).Methods(http.MethodGet)
	}

	api := s.router.NewRoute().Subrouter()
	api.Use(s.loggingMiddleware)
	api.Use(s.rateLimitMiddleware)

	api.HandleFunc("/debug", s.handleDebug).Methods(http.MethodGet)
	api.HandleFunc("/clean", s.handleClean).Methods(http.MethodPost)
	api.HandleFunc("/sanitize", s.handleSanitize).Methods(http.MethodPost)
	api.HandleFunc("/words/{word}", s.handleAddWord).Methods(http.MethodPut)
	api.HandleFunc("/words/{word}", s.handleRemoveWord).Methods(http.MethodDelete)
	api.HandleFunc("/method", s.handleSetMethod).Methods(http.MethodPut)
	api.HandleFunc("/grawlix", s.handleSetGrawlix).Methods(http.MethodPut)
	api.HandleFunc("/seed/{name}", s.handleSeed).Methods(http.MethodPost)
}

// Handler returns the HTTP handler serving all routes
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("Starting wordguard server",
		zap.Int("port", s.config.Server.Port),
		zap.Bool("websocket", s.wsHub != nil),
		zap.Bool("rate_limit", s.limiter != nil),
	)

	if s.wsHub != nil {
		go s.wsHub.Run()
	}

	return s.server.ListenAndServe()
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping wordguard server")
	if s.wsHub != nil {
		s.wsHub.Stop()
	}
	return s.server.Shutdown(ctx)
}

// Configure applies filter settings. The method is validated before
// anything changes, so an invalid method leaves the filter untouched.
func (s *Server) Configure(ctx context.Context, fc config.FilterConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return ApplyFilterConfig(ctx, s.filter, fc)
}

// ApplyFilterConfig seeds f and sets its method, palette and extra words
func ApplyFilterConfig(ctx context.Context, f *filter.Filter, fc config.FilterConfig) error {
	if _, err := filter.ParseMethod(fc.Method); err != nil {
		return err
	}

	if fc.Seed != "" {
		f.SeedNamed(ctx, fc.Seed)
	}
	for word, replacement := range fc.Words {
		f.AddWord(word, replacement)
	}
	if len(fc.GrawlixChars) > 0 {
		f.SetGrawlixChars(fc.GrawlixChars)
	}

	_, err := f.SetReplacementMethod(fc.Method)
	return err
}
