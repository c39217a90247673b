package repository

import (
	"context"
	"github.com/ZertGraf/customer-roster/internal/domain"
)

// RosterSource fetches the full user roster from the remote endpoint
type RosterSource interface {
	FetchUsers(ctx context.Context) ([]domain.User, error)
}

// DirectoryRepository stores the users served by the self-hosted roster endpoint
type DirectoryRepository interface {
	List(ctx context.Context) ([]domain.User, error)
	Replace(ctx context.Context, users []domain.User) error
}
