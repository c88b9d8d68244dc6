package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/qoolink/server/config"
	"github.com/qoolink/server/internal/clicks"
	"github.com/qoolink/server/internal/db"
	"github.com/qoolink/server/internal/handlers"
	"github.com/qoolink/server/internal/middleware"
	"github.com/qoolink/server/internal/mq"
	"github.com/qoolink/server/internal/services"
	"github.com/qoolink/server/internal/session"
	"github.com/qoolink/server/internal/store"
)

// Server wraps the HTTP server, router, and shared connections.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	queue      *mq.MQ
	log        zerolog.Logger
}

// New wires the whole application: storage, services, session transport,
// click pipeline, and routes.
func New(ctx context.Context, cfg config.Config, log zerolog.Logger) (*Server, error) {
	codec, err := session.NewCodec(cfg.SessionSecret, session.DefaultTTL)
	if err != nil {
		return nil, err
	}
	sessions := session.NewManager(codec, cfg.IsProduction())

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	userRepo := store.NewUserRepository(dbConn)
	linkRepo := store.NewLinkRepository(dbConn)

	authService := services.NewAuthService(userRepo)
	linkService := services.NewLinkService(linkRepo)

	var queue *mq.MQ
	var recorder clicks.Recorder = clicks.NoopRecorder{}
	backend, err := mq.Open(ctx, cfg.MQ)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}
	if backend != nil {
		queue = mq.New(backend)
		recorder = clicks.NewPublisher(queue, log)
	}

	authHandler := handlers.NewAuthHandler(authService, sessions, log)
	dashboardHandler := handlers.NewDashboardHandler(authService, linkService, sessions, log)
	redirectHandler := handlers.NewRedirectHandler(linkService, recorder, log)

	router := chi.NewRouter()
	router.Use(
		chimiddleware.RequestID,
		chimiddleware.RealIP,
		chimiddleware.Recoverer,
		middleware.RequestLogger(log),
		chimiddleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz)
	handlers.AuthRouter(router, authHandler)
	handlers.DashboardRouter(router, dashboardHandler, authHandler.RequireSession)
	// Registered last on purpose: every path that is not an application
	// route is a candidate slug.
	router.Get("/*", redirectHandler.Resolve)

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		queue:      queue,
		log:        log,
	}, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.httpServer.Addr).Msg("starting server")
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown() error {
	if s.db != nil {
		_ = s.db.Close()
	}
	if s.queue != nil {
		_ = s.queue.Close()
	}
	return s.httpServer.Close()
}
