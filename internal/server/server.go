package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/fittrack/apiserver/config"
	"github.com/fittrack/apiserver/internal/auth"
	"github.com/fittrack/apiserver/internal/db"
	"github.com/fittrack/apiserver/internal/handlers"
	"github.com/fittrack/apiserver/internal/mq"
	"github.com/fittrack/apiserver/internal/services"
	"github.com/fittrack/apiserver/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
)

const shutdownTimeout = 10 * time.Second

// Server wraps the HTTP server, router and the resources it owns.
type Server struct {
	httpServer *http.Server
	db         *sqlx.DB
	mq         *mq.MQ
	logger     *slog.Logger
}

// Services are the use-cases the router dispatches to.
type Services struct {
	Users   *services.UserService
	Fitness *services.FitnessService
}

// New opens the database, applies migrations when enabled, connects the
// optional broker and wires repositories, services and routes.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Server, error) {
	if cfg.Database.AutoMigrate {
		if err := db.MigrateUp(db.DSN(cfg.Database)); err != nil {
			return nil, err
		}
		logger.Info("database migrations applied")
	}

	dbConn, err := db.Open(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	queue, err := mq.NewFromConfig(ctx, cfg.MQ)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	var events services.EventPublisher
	if queue != nil {
		events = queue
		logger.Info("event publishing enabled", "backend", cfg.MQ.Backend)
	}

	userService, err := services.NewUserService(
		store.NewUserRepository(dbConn),
		store.NewTokenRepository(dbConn),
		auth.NewPasswordHasher(cfg.Auth.BcryptCost),
		cfg.Auth.TokenTTL,
		events,
		logger,
	)
	if err != nil {
		_ = dbConn.Close()
		if queue != nil {
			_ = queue.Close()
		}
		return nil, fmt.Errorf("init user service: %w", err)
	}
	fitnessService := services.NewFitnessService(store.NewFitnessRepository(dbConn), events, logger)

	router := NewRouter(Services{Users: userService, Fitness: fitnessService}, logger)

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
		db:         dbConn,
		mq:         queue,
		logger:     logger,
	}, nil
}

// NewRouter builds the HTTP routes over svc.
func NewRouter(svc Services, logger *slog.Logger) *chi.Mux {
	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		handlers.RequestLogger(logger),
		middleware.Timeout(60*time.Second),
	)

	router.Get("/", handlers.Root)
	router.Get("/healthz", handlers.Healthz)
	router.Route("/users", func(r chi.Router) {
		handlers.AuthRouter(r, svc.Users, logger)
	})
	router.Route("/fitness", func(r chi.Router) {
		handlers.FitnessRouter(r, svc.Fitness, handlers.RequireToken(svc.Users, logger), logger)
	})
	return router
}

// Start serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", s.httpServer.Addr)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.closeResources()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	}
}

// Shutdown stops accepting requests, waits for in-flight ones and releases
// the database and broker.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	s.closeResources()
	return err
}

func (s *Server) closeResources() {
	if s.mq != nil {
		if err := s.mq.Close(); err != nil {
			s.logger.Warn("close mq", "error", err)
		}
		s.mq = nil
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Warn("close database", "error", err)
		}
		s.db = nil
	}
}
