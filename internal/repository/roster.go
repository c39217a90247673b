package repository

import (
	"context"
	"errors"
	"fmt"
	"github.com/ZertGraf/customer-roster/internal/domain"
	"github.com/ZertGraf/customer-roster/internal/pkg/logger"
	json "github.com/json-iterator/go"
	resty "gopkg.in/resty.v1"
	"time"
)

var ErrUnexpectedStatus = errors.New("unexpected roster endpoint status")

// rosterPayload is the wire shape of the roster endpoint. A missing or null
// users field decodes to an empty roster.
type rosterPayload struct {
	Users []domain.User `json:"users"`
}

type RosterHTTP struct {
	client   *resty.Client
	endpoint string
	logger   *logger.Logger
}

func NewRosterHTTP(endpoint string, timeout time.Duration, logger *logger.Logger) *RosterHTTP {
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	return &RosterHTTP{
		client:   client,
		endpoint: endpoint,
		logger:   logger.Component("repository/roster"),
	}
}

// FetchUsers issues a single GET to the roster endpoint. It never retries.
func (r *RosterHTTP) FetchUsers(ctx context.Context) ([]domain.User, error) {
	resp, err := r.client.R().
		SetContext(ctx).
		Get(r.endpoint)
	if err != nil {
		return nil, fmt.Errorf("request roster: %w", err)
	}

	if resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode())
	}

	users, err := decodeRoster(resp.Body())
	if err != nil {
		return nil, err
	}

	r.logger.Debug("roster fetched",
		"endpoint", r.endpoint,
		"count", len(users),
		"duration_ms", resp.Time().Milliseconds(),
	)

	return users, nil
}

func decodeRoster(body []byte) ([]domain.User, error) {
	var payload rosterPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode roster: %w", err)
	}

	if payload.Users == nil {
		return []domain.User{}, nil
	}
	return payload.Users, nil
}
