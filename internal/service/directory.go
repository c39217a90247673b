package service

import (
	"context"
	"fmt"
	"github.com/ZertGraf/customer-roster/internal/domain"
	"github.com/ZertGraf/customer-roster/internal/pkg/logger"
	"github.com/ZertGraf/customer-roster/internal/repository"
	. "github.com/go-ozzo/ozzo-validation"
)

// DirectoryService serves the self-hosted roster. A nil repository means the
// directory is disabled.
type DirectoryService struct {
	repo   repository.DirectoryRepository
	logger *logger.Logger
}

func NewDirectoryService(repo repository.DirectoryRepository, logger *logger.Logger) *DirectoryService {
	return &DirectoryService{
		repo:   repo,
		logger: logger.Component("service/directory"),
	}
}

func (s *DirectoryService) Enabled() bool {
	return s.repo != nil
}

func (s *DirectoryService) ListUsers(ctx context.Context) ([]domain.User, error) {
	if !s.Enabled() {
		return nil, domain.ErrDirectoryDisabled
	}

	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list directory users: %w", err)
	}
	return users, nil
}

func (s *DirectoryService) ReplaceUsers(ctx context.Context, users []domain.User) error {
	if !s.Enabled() {
		return domain.ErrDirectoryDisabled
	}

	if err := validateRoster(users); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidRoster, err)
	}

	if err := s.repo.Replace(ctx, users); err != nil {
		return fmt.Errorf("replace directory users: %w", err)
	}

	s.logger.Info("directory replaced", "count", len(users))
	return nil
}

func validateRoster(users []domain.User) error {
	seen := make(map[int]struct{}, len(users))
	for i := range users {
		u := users[i]
		if err := ValidateStruct(&u,
			Field(&u.ID, Required, Min(1)),
			Field(&u.Name, Required, Length(1, 255)),
		); err != nil {
			return fmt.Errorf("user %d: %w", i, err)
		}

		if _, dup := seen[u.ID]; dup {
			return fmt.Errorf("duplicate user id %d", u.ID)
		}
		seen[u.ID] = struct{}{}
	}
	return nil
}
