package app

import (
	"context"
	"net/http"

	"social-login-service/internal/config"
)

// App owns the HTTP server and the teardown of everything setupHTTP opened
// (database and Redis connections).
type App struct {
	httpServer *http.Server
	cleanup    func() error
}

// New wires the full service: infrastructure, stores, providers, handlers.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	router, cleanup, err := setupHTTP(ctx, cfg)
	if err != nil {
		return nil, err
	}

	server := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: router,
	}

	return &App{
		httpServer: server,
		cleanup:    cleanup,
	}, nil
}

// Run blocks serving requests until Shutdown or a listener error.
func (a *App) Run() error {
	return a.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests, then releases held connections.
func (a *App) Shutdown(ctx context.Context) error {
	if err := a.httpServer.Shutdown(ctx); err != nil {
		return err
	}
	if a.cleanup != nil {
		return a.cleanup()
	}
	return nil
}
