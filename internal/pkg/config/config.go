package config

import (
	"fmt"
	. "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/ilyakaznacheev/cleanenv"
	"os"
	"time"
)

type Config struct {
	// application settings
	Environment    string `env:"ENVIRONMENT" env-default:"development"`
	ServiceName    string `env:"SERVICE_NAME" env-default:"customer-roster"`
	ServiceVersion string `env:"SERVICE_VERSION" env-default:"0.1.0"`

	// logging configuration
	LogLevel     string `env:"LOG_LEVEL" env-default:"info"`
	LogFormat    string `env:"LOG_FORMAT" env-default:"text"`
	LogAddSource bool   `env:"LOG_ADD_SOURCE" env-default:"false"`

	// roster source and screen behaviour
	RosterEndpoint       string        `env:"ROSTER_ENDPOINT" env-default:"https://gist.github.com/AshishKapoor/5defdc8ff44665248b04bfbbbaa60307/raw"`
	RosterFetchTimeout   time.Duration `env:"ROSTER_FETCH_TIMEOUT" env-default:"10s"`
	RosterRefreshSpinner time.Duration `env:"ROSTER_REFRESH_SPINNER" env-default:"1s"`
	RosterFilterMode     string        `env:"ROSTER_FILTER_MODE" env-default:"last_applied"`
	RosterSessionIdle    time.Duration `env:"ROSTER_SESSION_IDLE_TIMEOUT" env-default:"15m"`

	// database connection settings, only used by the user directory
	DatabaseEnabled  bool   `env:"DATABASE_ENABLED" env-default:"false"`
	DatabaseHost     string `env:"DATABASE_HOST" env-default:"localhost"`
	DatabasePort     int    `env:"DATABASE_PORT" env-default:"5432"`
	DatabaseUser     string `env:"DATABASE_USER" env-default:"postgres"`
	DatabasePassword string `env:"DATABASE_PASSWORD"`
	DatabaseName     string `env:"DATABASE_NAME" env-default:"postgres"`
	DatabaseSchema   string `env:"DATABASE_SCHEMA" env-default:"public"`
	DatabaseSSLMode  string `env:"DATABASE_SSL_MODE" env-default:"require"`

	// database connection pool settings
	DatabaseMaxConns          int32         `env:"DATABASE_MAX_CONNS" env-default:"10"`
	DatabaseMinConns          int32         `env:"DATABASE_MIN_CONNS" env-default:"1"`
	DatabaseMaxConnLifetime   time.Duration `env:"DATABASE_MAX_CONN_LIFETIME" env-default:"1h"`
	DatabaseMaxConnIdleTime   time.Duration `env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
	DatabaseHealthCheckPeriod time.Duration `env:"DATABASE_HEALTH_CHECK_PERIOD" env-default:"1m"`
	DatabaseConnectTimeout    time.Duration `env:"DATABASE_CONNECT_TIMEOUT" env-default:"30s"`
	DatabaseAcquireTimeout    time.Duration `env:"DATABASE_ACQUIRE_TIMEOUT" env-default:"10s"`

	// database migrations settings
	DatabaseMigrationEnabled bool          `env:"DATABASE_MIGRATION_ENABLED" env-default:"true"`
	DatabaseMigrationTimeout time.Duration `env:"DATABASE_MIGRATION_TIMEOUT" env-default:"5m"`
	DatabaseMigrationTable   string        `env:"DATABASE_MIGRATION_TABLE" env-default:"schema_version"`

	// http server configuration
	ServerHost         string        `env:"SERVER_HOST" env-default:"0.0.0.0"`
	ServerPort         int           `env:"SERVER_PORT" env-default:"8081"`
	ServerReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" env-default:"30s"`
	ServerWriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" env-default:"30s"`
	ServerIdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" env-default:"60s"`
	ShutdownTimeout    time.Duration `env:"SHUTDOWN_TIMEOUT" env-default:"30s"`
}

func New() (*Config, error) {
	var cfg Config

	// read from .env file if exists (optional)
	if err := cleanenv.ReadConfig(".env", &cfg); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read dotenv file: %w", err)
	}

	// read from environment variables (required)
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// Validate checks the settings owned by this service. Logger and postgres
// settings are validated by their own packages.
func (c *Config) Validate() error {
	return ValidateStruct(c,
		Field(&c.RosterEndpoint, Required, is.URL),
		Field(&c.RosterFetchTimeout, Required, Min(100*time.Millisecond), Max(5*time.Minute)),
		Field(&c.RosterRefreshSpinner, Min(time.Duration(0)), Max(time.Minute)),
		Field(&c.RosterFilterMode, Required, In("last_applied", "composed")),
		Field(&c.RosterSessionIdle, Min(time.Duration(0)), Max(24*time.Hour)),
		Field(&c.ServiceName, Required, Length(1, 63)),
		Field(&c.DatabasePassword, By(c.validateDatabasePassword)),
		Field(&c.ServerPort, Required, Min(1), Max(65535)),
		Field(&c.ShutdownTimeout, Required, Min(time.Second), Max(5*time.Minute)),
	)
}

func (c *Config) validateDatabasePassword(value interface{}) error {
	password, ok := value.(string)
	if !ok {
		return fmt.Errorf("database password must be a string")
	}

	if c.DatabaseEnabled && password == "" {
		return fmt.Errorf("required when DATABASE_ENABLED is set")
	}
	return nil
}
