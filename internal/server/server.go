package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/kartoza/material-forecast/internal/api"
	"github.com/kartoza/material-forecast/internal/config"
	"github.com/kartoza/material-forecast/internal/history"
	"github.com/kartoza/material-forecast/internal/httputil"
	"github.com/kartoza/material-forecast/internal/metrics"
	"github.com/kartoza/material-forecast/internal/predict"
	"github.com/kartoza/material-forecast/internal/presets"
	"github.com/kartoza/material-forecast/internal/service"
	"github.com/kartoza/material-forecast/internal/web"
)

// Server holds all the components for the web application
type Server struct {
	cfg          config.Config
	httpServer   *http.Server
	router       *mux.Router
	client       *predict.Client
	historyStore *history.Store
	presetStore  *presets.Store
}

// New creates a new Server with all components initialized
func New(cfg config.Config) (*Server, error) {
	s := &Server{
		cfg:    cfg,
		router: mux.NewRouter(),
	}

	s.client = predict.New(cfg.APIURL, cfg.RequestTimeout)
	s.client.Latency = metrics.NewLatencyTracker(0.2)

	// History is optional; forecasting keeps working without it
	historyStore, err := history.NewStore(cfg.DataDir)
	if err != nil {
		log.Printf("Warning: forecast history not available: %v", err)
	} else {
		s.historyStore = historyStore
	}

	presetStore, err := presets.NewStore(cfg.DataDir)
	if err != nil {
		log.Printf("Warning: presets not available: %v", err)
	} else {
		s.presetStore = presetStore
	}

	if err := s.setupRoutes(); err != nil {
		if s.historyStore != nil {
			s.historyStore.Close()
		}
		return nil, err
	}

	return s, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() error {
	var recorder service.Recorder
	if s.historyStore != nil {
		recorder = s.historyStore
	}
	forecaster := service.NewForecaster(s.client, recorder)

	// API routes live on their own router so CORS preflight requests are
	// answered before method matching
	apiRoot := mux.NewRouter()
	apiRouter := apiRoot.PathPrefix("/api").Subrouter()
	apiHandler := api.NewHandler(forecaster, s.client, s.historyStore, s.presetStore, s.cfg)
	apiHandler.RegisterRoutes(apiRouter)
	s.router.PathPrefix("/api/").Handler(httputil.CORS{AllowOrigin: "*"}.Middleware(apiRoot))

	// Pages and embedded static assets
	var presetSource web.PresetSource
	if s.presetStore != nil {
		presetSource = s.presetStore
	}
	webHandler, err := web.NewHandler(forecaster, presetSource, s.cfg.Version)
	if err != nil {
		return fmt.Errorf("failed to initialise pages: %w", err)
	}
	webHandler.RegisterRoutes(s.router)

	return nil
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start begins listening for HTTP connections
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      s.cfg.RequestTimeout + 15*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("Server listening on http://localhost:%d", s.cfg.Port)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop gracefully shuts down the server
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var err error
	if s.httpServer != nil {
		err = s.httpServer.Shutdown(ctx)
	}

	if s.historyStore != nil {
		if cerr := s.historyStore.Close(); cerr != nil {
			log.Printf("Error closing forecast history: %v", cerr)
		}
	}

	return err
}
