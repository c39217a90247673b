package bootstrap

import (
	"context"
	"fmt"
	"github.com/ZertGraf/customer-roster/internal/api"
	"github.com/ZertGraf/customer-roster/internal/api/handler"
	"github.com/ZertGraf/customer-roster/internal/pkg/config"
	"github.com/ZertGraf/customer-roster/internal/pkg/logger"
	"github.com/ZertGraf/customer-roster/internal/pkg/postgres"
	"github.com/ZertGraf/customer-roster/internal/repository"
	"github.com/ZertGraf/customer-roster/internal/service"
	"github.com/ZertGraf/customer-roster/migrations"
)

type Application struct {
	Config   *config.Config
	Logger   *logger.Logger
	Postgres *postgres.Connection
	Migrator *postgres.Migrator

	RosterSource  repository.RosterSource
	DirectoryRepo repository.DirectoryRepository

	Sessions  *service.SessionRegistry
	Directory *service.DirectoryService

	HTTPServer *api.HTTPServer
}

func New() (*Application, error) {
	cfg, err := config.New()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(&logger.Config{
		Level:     cfg.LogLevel,
		Format:    cfg.LogFormat,
		AddSource: cfg.LogAddSource,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	app := &Application{
		Config: cfg,
		Logger: log,
	}

	if !cfg.DatabaseEnabled {
		return app, nil
	}

	pg, err := postgres.New(log, &postgres.Config{
		Host:              cfg.DatabaseHost,
		Port:              cfg.DatabasePort,
		Username:          cfg.DatabaseUser,
		Password:          cfg.DatabasePassword,
		Database:          cfg.DatabaseName,
		Schema:            cfg.DatabaseSchema,
		SSLMode:           cfg.DatabaseSSLMode,
		ApplicationName:   cfg.ServiceName,
		MaxConns:          cfg.DatabaseMaxConns,
		MinConns:          cfg.DatabaseMinConns,
		MaxConnLifetime:   cfg.DatabaseMaxConnLifetime,
		MaxConnIdleTime:   cfg.DatabaseMaxConnIdleTime,
		HealthCheckPeriod: cfg.DatabaseHealthCheckPeriod,
		ConnectTimeout:    cfg.DatabaseConnectTimeout,
		AcquireTimeout:    cfg.DatabaseAcquireTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres connection: %w", err)
	}
	app.Postgres = pg

	return app, nil
}

func (app *Application) Init(ctx context.Context) error {
	app.Logger.Info("initializing application")

	if err := app.initDirectory(ctx); err != nil {
		return err
	}

	filterMode, err := service.ParseFilterMode(app.Config.RosterFilterMode)
	if err != nil {
		return fmt.Errorf("roster filter mode: %w", err)
	}

	app.RosterSource = repository.NewRosterHTTP(
		app.Config.RosterEndpoint,
		app.Config.RosterFetchTimeout,
		app.Logger,
	)

	app.Sessions = service.NewSessionRegistry(app.RosterSource, service.SessionConfig{
		Roster: service.RosterConfig{
			RefreshSpinner: app.Config.RosterRefreshSpinner,
			FilterMode:     filterMode,
		},
		IdleTimeout: app.Config.RosterSessionIdle,
	}, app.Logger)
	app.Directory = service.NewDirectoryService(app.DirectoryRepo, app.Logger)

	serverConfig := &api.ServerConfig{
		Host:         app.Config.ServerHost,
		Port:         app.Config.ServerPort,
		ReadTimeout:  app.Config.ServerReadTimeout,
		WriteTimeout: app.Config.ServerWriteTimeout,
		IdleTimeout:  app.Config.ServerIdleTimeout,
	}

	app.HTTPServer = api.NewHTTPServer(serverConfig, api.Handlers{
		Customer:   handler.NewCustomerHandler(app.Sessions, app.Logger),
		Directory:  handler.NewDirectoryHandler(app.Directory, app.Logger),
		Navigation: handler.NewNavigationHandler(app.Logger),
		Readiness:  app.Health,
	}, app.Logger)

	if err := app.HTTPServer.Start(ctx); err != nil {
		return fmt.Errorf("failed to start http server: %w", err)
	}

	app.Logger.Info("application initialized successfully",
		"roster_endpoint", app.Config.RosterEndpoint,
		"filter_mode", filterMode,
		"session_idle_timeout", app.Config.RosterSessionIdle,
		"directory_enabled", app.Directory.Enabled())
	return nil
}

// initDirectory connects postgres and applies the directory schema when the
// self-hosted directory is enabled. DirectoryRepo stays a nil interface
// otherwise, which disables the directory routes.
func (app *Application) initDirectory(ctx context.Context) error {
	if app.Postgres == nil {
		app.Logger.Info("user directory disabled")
		return nil
	}

	if err := app.Postgres.Connect(ctx); err != nil {
		return fmt.Errorf("postgres connection failed: %w", err)
	}

	app.Migrator = postgres.NewMigrator(app.Postgres.Pool(), migrations.MigrationFiles, &postgres.MigrationConfig{
		Timeout:   app.Config.DatabaseMigrationTimeout,
		TableName: app.Config.DatabaseMigrationTable,
		Enabled:   app.Config.DatabaseMigrationEnabled,
	}, app.Logger)

	if err := app.Migrator.RunMigrations(ctx); err != nil {
		return fmt.Errorf("database migrations failed: %w", err)
	}

	app.DirectoryRepo = repository.NewDirectoryRepo(app.Postgres.Pool(), app.Logger)
	return nil
}

func (app *Application) Shutdown(ctx context.Context) error {
	app.Logger.Info("shutting down application")

	if app.HTTPServer != nil {
		if err := app.HTTPServer.Stop(ctx); err != nil {
			app.Logger.Error("error stopping http server", "error", err)
		}
	}

	if app.Sessions != nil {
		app.Sessions.Shutdown()
	}

	if app.Postgres != nil {
		app.Postgres.Close()
	}

	app.Logger.Info("application shutdown completed")
	return nil
}

func (app *Application) Health(ctx context.Context) error {
	if app.Postgres == nil {
		return nil
	}
	if err := app.Postgres.Health(ctx); err != nil {
		return fmt.Errorf("postgres health check failed: %w", err)
	}
	if err := app.Migrator.Health(ctx); err != nil {
		return fmt.Errorf("migrator health check failed: %w", err)
	}
	return nil
}
