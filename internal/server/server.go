// Package server provides the HTTP server and routing for DealScout.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/avramidis/dealscout/internal/config"
	"github.com/avramidis/dealscout/internal/database"
	"github.com/avramidis/dealscout/internal/events"
	analyticshandlers "github.com/avramidis/dealscout/internal/modules/analytics/handlers"
	leadshandlers "github.com/avramidis/dealscout/internal/modules/leads/handlers"
	propertieshandlers "github.com/avramidis/dealscout/internal/modules/properties/handlers"
	scoringhandlers "github.com/avramidis/dealscout/internal/modules/scoring/handlers"
	settingshandlers "github.com/avramidis/dealscout/internal/modules/settings/handlers"
	"github.com/avramidis/dealscout/internal/scheduler"
)

// Config holds server configuration
type Config struct {
	Log      zerolog.Logger
	Cfg      *config.Config
	Bus      *events.Bus
	LeadsDB  *database.DB
	ConfigDB *database.DB
	CacheDB  *database.DB

	LeadHandlers      *leadshandlers.Handler
	PropertyHandlers  *propertieshandlers.Handler
	ScoringHandlers   *scoringhandlers.Handler
	AnalyticsHandlers *analyticshandlers.Handler
	SettingsHandlers  *settingshandlers.Handler

	Scheduler   *scheduler.Scheduler
	QueueSource QueueStateSource
}

// Server represents the HTTP server
type Server struct {
	router         *chi.Mux
	server         *http.Server
	log            zerolog.Logger
	cfg            *config.Config
	databases      map[string]*database.DB
	systemHandlers *SystemHandlers
	hub            *Hub
}

// New creates a new HTTP server with all routes wired
func New(cfg Config) *Server {
	s := &Server{
		router: chi.NewRouter(),
		log:    cfg.Log.With().Str("component", "server").Logger(),
		cfg:    cfg.Cfg,
		databases: map[string]*database.DB{
			"leads":  cfg.LeadsDB,
			"config": cfg.ConfigDB,
			"cache":  cfg.CacheDB,
		},
	}

	s.systemHandlers = NewSystemHandlers(
		cfg.Log,
		cfg.Cfg.DataDir,
		s.databases,
		cfg.Scheduler,
	)

	s.hub = NewHub(cfg.Bus, cfg.QueueSource, cfg.Log)

	s.setupMiddleware(cfg.Cfg.DevMode)
	s.setupRoutes(cfg)

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	return s
}

// Router exposes the router for tests
func (s *Server) Router() *chi.Mux {
	return s.router
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes registers all module routes. REST routes get a request timeout;
// the websocket route stays outside the group so connections can live longer
// than 60 seconds.
func (s *Server) setupRoutes(cfg Config) {
	s.router.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))

		r.Get("/api/health", s.handleHealth)

		if cfg.LeadHandlers != nil {
			cfg.LeadHandlers.RegisterRoutes(r)
		}
		if cfg.PropertyHandlers != nil {
			cfg.PropertyHandlers.RegisterRoutes(r)
		}
		if cfg.ScoringHandlers != nil {
			cfg.ScoringHandlers.RegisterRoutes(r)
		}
		if cfg.AnalyticsHandlers != nil {
			cfg.AnalyticsHandlers.RegisterRoutes(r)
		}
		if cfg.SettingsHandlers != nil {
			cfg.SettingsHandlers.RegisterRoutes(r)
		}

		s.systemHandlers.RegisterRoutes(r)
	})

	s.router.Get("/api/ws", s.hub.HandleConnect)
}

// handleHealth is the liveness endpoint. It pings every database so a wedged
// connection pool reports as unhealthy instead of a hollow 200.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	for name, db := range s.databases {
		if db == nil {
			continue
		}
		if err := db.QuickCheck(r.Context()); err != nil {
			s.log.Error().Err(err).Str("database", name).Msg("Health check failed")
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprintf(w, `{"status":"degraded","database":%q}`, name)
			return
		}
	}

	w.Write([]byte(`{"status":"ok"}`))
}

// Start starts the HTTP server. Blocks until shutdown.
func (s *Server) Start() error {
	s.log.Info().Int("port", s.cfg.Port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server and closes websocket clients
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	s.hub.Close()
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
