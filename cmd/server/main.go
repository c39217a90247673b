package main

import (
	"context"
	"fmt"
	"github.com/ZertGraf/customer-roster/internal/bootstrap"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	os.Exit(run())
}

func run() int {
	app, err := bootstrap.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize application: %v\n", err)
		return 1
	}

	// cancelled on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := app.Config
	app.Logger.Info("starting "+cfg.ServiceName,
		"version", cfg.ServiceVersion,
		"environment", cfg.Environment,
		"log_level", cfg.LogLevel,
		"roster_endpoint", cfg.RosterEndpoint)

	if err = app.Init(ctx); err != nil {
		app.Logger.Error("failed to initialize application", "error", err)
		shutdown(app)
		return 1
	}

	<-ctx.Done()
	stop()
	app.Logger.Info("received shutdown signal, initiating graceful shutdown",
		"timeout", cfg.ShutdownTimeout)

	if err = shutdown(app); err != nil {
		app.Logger.Error("application shutdown failed", "error", err)
		return 1
	}

	app.Logger.Info(cfg.ServiceName+" stopped gracefully", "version", cfg.ServiceVersion)
	return 0
}

// shutdown runs on a fresh context since the signal context is already done.
func shutdown(app *bootstrap.Application) error {
	ctx, cancel := context.WithTimeout(context.Background(), app.Config.ShutdownTimeout)
	defer cancel()
	return app.Shutdown(ctx)
}
