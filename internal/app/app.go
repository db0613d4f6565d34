package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/calshare/server/internal/domain"
	"github.com/calshare/server/internal/infra/config"
)

// App represents the application.
type App struct {
	config  *config.Config
	router  *gin.Engine
	logger  *zap.Logger
	domain  *domain.Domain
	storage *Storage
}

// NewApp assembles an App from its wired parts.
func NewApp(cfg *config.Config, router *gin.Engine, logger *zap.Logger, d *domain.Domain, storage *Storage) *App {
	return &App{
		config:  cfg,
		router:  router,
		logger:  logger,
		domain:  d,
		storage: storage,
	}
}

// New creates a new application instance. The returned cleanup releases
// the database and Redis connections.
func New(cfg *config.Config) (*App, func(), error) {
	app, cleanup, err := InitializeApp(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("initialize app: %w", err)
	}
	return app, cleanup, nil
}

// Router returns the HTTP router.
func (a *App) Router() *gin.Engine {
	return a.router
}

// Logger returns the application logger.
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Domain returns the domain registry.
func (a *App) Domain() *domain.Domain {
	return a.domain
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         a.config.Server.Address,
		Handler:      a.router,
		ReadTimeout:  a.config.Server.ReadTimeout,
		WriteTimeout: a.config.Server.WriteTimeout,
		IdleTimeout:  a.config.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("starting server",
			zap.String("address", srv.Addr),
			zap.String("storage", a.config.Storage.Driver),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	a.logger.Info("server exited")
	return nil
}
