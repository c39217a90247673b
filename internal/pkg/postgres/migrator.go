package postgres

import (
	"context"
	"fmt"
	"github.com/ZertGraf/customer-roster/internal/pkg/logger"
	. "github.com/go-ozzo/ozzo-validation"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/tern/v2/migrate"
	"io/fs"
	"time"
)

type MigrationConfig struct {
	Timeout   time.Duration `json:"timeout"`
	TableName string        `json:"table_name"`
	Enabled   bool          `json:"enabled"`
}

func (c *MigrationConfig) Validate() error {
	return ValidateStruct(c,
		Field(&c.Timeout, Required, Min(time.Second), Max(time.Hour)),
		Field(&c.TableName, Required, Length(1, 63)),
	)
}

// Migrator applies the tern migrations found in files.
type Migrator struct {
	pool   *pgxpool.Pool
	files  fs.FS
	logger *logger.Logger
	config *MigrationConfig
}

func NewMigrator(pool *pgxpool.Pool, files fs.FS, config *MigrationConfig, logger *logger.Logger) *Migrator {
	return &Migrator{
		pool:   pool,
		files:  files,
		logger: logger.Component("postgres/migrator"),
		config: config,
	}
}

func (m *Migrator) RunMigrations(ctx context.Context) error {
	if !m.config.Enabled {
		m.logger.Info("migrations disabled, skipping")
		return nil
	}
	if err := m.config.Validate(); err != nil {
		return fmt.Errorf("invalid migration config: %w", err)
	}

	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, m.config.Timeout)
	defer cancel()

	return m.withMigrator(ctx, func(migrator *migrate.Migrator) error {
		currentVersion, err := migrator.GetCurrentVersion(ctx)
		if err != nil {
			return fmt.Errorf("get current version: %w", err)
		}

		latest := latestVersion(migrator.Migrations)
		if latest <= currentVersion {
			m.logger.Info("directory schema up to date",
				"current_version", currentVersion,
				"latest_version", latest)
			return nil
		}

		m.logger.Info("applying directory migrations",
			"current_version", currentVersion,
			"target_version", latest,
			"pending_migrations", latest-currentVersion)

		if err = migrator.Migrate(ctx); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}

		finalVersion, err := migrator.GetCurrentVersion(ctx)
		if err != nil {
			return fmt.Errorf("get final version: %w", err)
		}

		m.logger.Info("migrations completed successfully",
			"from_version", currentVersion,
			"to_version", finalVersion,
			"duration", time.Since(start))
		return nil
	})
}

func (m *Migrator) GetCurrentVersion(ctx context.Context) (int32, error) {
	var version int32
	err := m.withMigrator(ctx, func(migrator *migrate.Migrator) error {
		v, err := migrator.GetCurrentVersion(ctx)
		version = v
		return err
	})
	return version, err
}

func (m *Migrator) Health(ctx context.Context) error {
	if _, err := m.GetCurrentVersion(ctx); err != nil {
		return fmt.Errorf("migration health check failed: %w", err)
	}
	return nil
}

func (m *Migrator) withMigrator(ctx context.Context, fn func(*migrate.Migrator) error) error {
	conn, err := m.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	migrator, err := migrate.NewMigrator(ctx, conn.Conn(), m.config.TableName)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err = migrator.LoadMigrations(m.files); err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}

	return fn(migrator)
}

func latestVersion(migrations []*migrate.Migration) int32 {
	latest := int32(0)
	for _, migration := range migrations {
		if migration.Sequence > latest {
			latest = migration.Sequence
		}
	}
	return latest
}
