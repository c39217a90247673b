package repository

import (
	"context"
	"fmt"
	"github.com/ZertGraf/customer-roster/internal/domain"
	"github.com/ZertGraf/customer-roster/internal/pkg/logger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type DirectoryRepo struct {
	db     *pgxpool.Pool
	logger *logger.Logger
}

func NewDirectoryRepo(db *pgxpool.Pool, logger *logger.Logger) *DirectoryRepo {
	return &DirectoryRepo{
		db:     db,
		logger: logger.Component("repository/postgres"),
	}
}

// List returns every directory user ordered by id.
func (r *DirectoryRepo) List(ctx context.Context) ([]domain.User, error) {
	query := `
		SELECT id, name, type
		FROM directory_users
		ORDER BY id
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query directory users: %w", err)
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(&user.ID, &user.Name, &user.Type); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return users, nil
}

// Replace swaps the whole directory for users in one transaction.
func (r *DirectoryRepo) Replace(ctx context.Context, users []domain.User) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM directory_users`); err != nil {
			return fmt.Errorf("clear directory: %w", err)
		}

		if len(users) == 0 {
			return nil
		}

		rows := make([][]any, 0, len(users))
		for _, u := range users {
			rows = append(rows, []any{u.ID, u.Name, int(u.Type)})
		}

		_, err := tx.CopyFrom(ctx,
			pgx.Identifier{"directory_users"},
			[]string{"id", "name", "type"},
			pgx.CopyFromRows(rows),
		)
		if err != nil {
			return fmt.Errorf("copy directory users: %w", err)
		}
		return nil
	})
}

func (r *DirectoryRepo) withTx(ctx context.Context, fn func(pgx.Tx) error) (err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				r.logger.Error("failed to rollback transaction",
					"error", rbErr,
					"original_error", err,
				)
			}
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}
