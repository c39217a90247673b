package postgres

import (
	"context"
	"errors"
	"fmt"
	"github.com/ZertGraf/customer-roster/internal/pkg/logger"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotConnected = errors.New("postgres connection not established")

type Connection struct {
	pool   *pgxpool.Pool
	logger *logger.Logger
	config *Config
}

func New(logger *logger.Logger, config *Config) (*Connection, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid postgres config: %w", err)
	}
	return &Connection{
		config: config,
		logger: logger.Component("database/postgres"),
	}, nil
}

func (c *Connection) Connect(ctx context.Context) error {
	poolCfg, err := pgxpool.ParseConfig(c.config.DSN())
	if err != nil {
		return fmt.Errorf("failed to parse postgres dsn: %w", err)
	}
	poolCfg.MaxConns = c.config.MaxConns
	poolCfg.MinConns = c.config.MinConns
	poolCfg.MaxConnLifetime = c.config.MaxConnLifetime
	poolCfg.MaxConnIdleTime = c.config.MaxConnIdleTime
	poolCfg.HealthCheckPeriod = c.config.HealthCheckPeriod

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return fmt.Errorf("failed to create postgres pool: %w", err)
	}

	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("failed to ping postgres: %w", err)
	}

	c.pool = pool

	c.logger.Info("postgres connection established",
		"host", c.config.Host,
		"database", c.config.Database,
		"schema", c.config.Schema,
		"max_conns", c.config.MaxConns)

	return nil
}

func (c *Connection) Pool() *pgxpool.Pool {
	if c.pool == nil {
		panic("postgres connection not established, call Connect() first")
	}
	return c.pool
}

// AcquireContext bounds ctx by the configured acquire timeout.
// Callers must invoke the returned cancel func.
func (c *Connection) AcquireContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.config.AcquireTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.config.AcquireTimeout)
}

func (c *Connection) Close() {
	if c.pool != nil {
		c.pool.Close()
		c.logger.Info("postgres connection closed")
	}
}

func (c *Connection) Health(ctx context.Context) error {
	if c.pool == nil {
		return ErrNotConnected
	}

	ctx, cancel := c.AcquireContext(ctx)
	defer cancel()
	return c.pool.Ping(ctx)
}
