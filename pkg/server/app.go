package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	domrepo "SignalForge/internal/domain/repository"
	"SignalForge/internal/usecase"
	"SignalForge/pkg/config"
	xhttp "SignalForge/pkg/http"
	applogger "SignalForge/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	scheduler  *usecase.Scheduler
	publisher  domrepo.SignalPublisher
	httpServer *xhttp.Server
	logger     *applogger.Logger
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	scheduler *usecase.Scheduler,
	handler xhttp.Handler,
	publisher domrepo.SignalPublisher,
	logger *applogger.Logger,
) *App {
	httpServer := xhttp.NewServer(handler,
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
	)
	return &App{
		cfg:        cfg,
		scheduler:  scheduler,
		publisher:  publisher,
		httpServer: httpServer,
		logger:     logger,
	}
}

// Run starts the scheduler and HTTP server, then blocks until interrupted.
func (a *App) Run() error {
	a.scheduler.Start()

	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("http server start error", applogger.Error(err))
		return err
	}
	a.logger.Info("application started",
		applogger.Int("port", a.cfg.Server.Port),
		applogger.Int("assets", len(a.cfg.Assets)))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.logger.Info("shutdown signal received")
	return a.shutdown()
}

// shutdown stops the scheduler first so no cycle is mid-flight when the
// publisher and HTTP server go away.
func (a *App) shutdown() error {
	a.scheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.logger.Error("http shutdown error", applogger.Error(err))
	}

	if err := a.publisher.Close(); err != nil {
		a.logger.Warn("publisher close error", applogger.Error(err))
	}

	a.logger.Info("shutdown complete")
	return nil
}
