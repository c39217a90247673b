package service

import (
	"context"
	"fmt"
	"github.com/ZertGraf/customer-roster/internal/domain"
	"github.com/ZertGraf/customer-roster/internal/pkg/logger"
	"github.com/ZertGraf/customer-roster/internal/repository"
	"github.com/google/uuid"
	"sync"
	"time"
)

type SessionConfig struct {
	Roster RosterConfig

	// IdleTimeout closes sessions nobody touched for this long; zero keeps
	// them until an explicit Close or Shutdown.
	IdleTimeout time.Duration
}

type session struct {
	controller *RosterController
	lastSeen   time.Time
}

// SessionRegistry tracks the live Customer screen visits.
type SessionRegistry struct {
	source repository.RosterSource
	config SessionConfig
	logger *logger.Logger
	now    func() time.Time

	ctx     context.Context
	cancel  context.CancelFunc
	janitor sync.WaitGroup

	mu       sync.Mutex
	sessions map[uuid.UUID]*session
}

func NewSessionRegistry(source repository.RosterSource, config SessionConfig, logger *logger.Logger) *SessionRegistry {
	ctx, cancel := context.WithCancel(context.Background())
	r := &SessionRegistry{
		source:   source,
		config:   config,
		logger:   logger.Component("service/session"),
		now:      time.Now,
		ctx:      ctx,
		cancel:   cancel,
		sessions: make(map[uuid.UUID]*session),
	}

	if config.IdleTimeout > 0 {
		r.janitor.Add(1)
		go r.runJanitor()
	}

	return r
}

// Open handles focus-enter: a fresh controller starts loading and the first
// role option becomes the active filter.
func (r *SessionRegistry) Open(_ context.Context) (uuid.UUID, *RosterController, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return uuid.Nil, nil, fmt.Errorf("generate session id: %w", err)
	}

	controller := NewRosterController(r.ctx, r.source, r.config.Roster, r.logger)
	controller.Load()
	if opts := controller.Options(); len(opts) > 0 {
		controller.SelectRole(opts[0])
	}

	r.mu.Lock()
	r.sessions[id] = &session{controller: controller, lastSeen: r.now()}
	total := len(r.sessions)
	r.mu.Unlock()

	r.logger.Info("screen session opened",
		"session_id", id,
		"active_sessions", total,
	)

	return id, controller, nil
}

// Get returns the session's controller and marks the session as active.
func (r *SessionRegistry) Get(id uuid.UUID) (*RosterController, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	s.lastSeen = r.now()
	return s.controller, nil
}

// Close handles focus-exit.
func (r *SessionRegistry) Close(id uuid.UUID) error {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	total := len(r.sessions)
	r.mu.Unlock()

	if !ok {
		return domain.ErrSessionNotFound
	}

	s.controller.Close()

	r.logger.Info("screen session closed",
		"session_id", id,
		"active_sessions", total,
	)
	return nil
}

func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Shutdown stops the janitor and closes every open session.
func (r *SessionRegistry) Shutdown() {
	r.cancel()
	r.janitor.Wait()

	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[uuid.UUID]*session)
	r.mu.Unlock()

	for _, s := range sessions {
		s.controller.Close()
	}

	r.logger.Info("screen sessions shut down", "closed", len(sessions))
}

func (r *SessionRegistry) runJanitor() {
	defer r.janitor.Done()

	interval := r.config.IdleTimeout / 2
	if interval <= 0 {
		interval = r.config.IdleTimeout
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			r.expireIdle()
		}
	}
}

// expireIdle closes sessions whose last access is older than the idle timeout.
func (r *SessionRegistry) expireIdle() int {
	cutoff := r.now().Add(-r.config.IdleTimeout)

	r.mu.Lock()
	var stale []*RosterController
	for id, s := range r.sessions {
		if s.lastSeen.Before(cutoff) {
			stale = append(stale, s.controller)
			delete(r.sessions, id)
		}
	}
	total := len(r.sessions)
	r.mu.Unlock()

	for _, controller := range stale {
		controller.Close()
	}

	if len(stale) > 0 {
		r.logger.Info("idle screen sessions expired",
			"expired", len(stale),
			"active_sessions", total,
		)
	}
	return len(stale)
}
