package service

import (
	"context"
	"github.com/ZertGraf/customer-roster/internal/domain"
	"github.com/ZertGraf/customer-roster/internal/pkg/logger"
	"github.com/ZertGraf/customer-roster/internal/repository"
	"sync"
	"time"
)

// DefaultRefreshSpinner is how long the refresh indicator stays on after a
// pull-to-refresh, whether or not the fetch has finished.
const DefaultRefreshSpinner = time.Second

type RosterConfig struct {
	RefreshSpinner time.Duration
	FilterMode     FilterMode
}

// RosterController owns the roster state of one Customer screen visit.
// It is created on focus-enter and closed on focus-exit.
type RosterController struct {
	source  repository.RosterSource
	logger  *logger.Logger
	options []domain.RoleFilterOption
	spinner time.Duration
	mode    FilterMode

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu           sync.Mutex
	closed       bool
	allUsers     []domain.User
	displayed    []domain.User
	activeRoleID domain.Role
	roleSelected bool
	searchQuery  string
	lastApplied  predicate
	isLoading    bool
	isRefreshing bool
	spinnerTimer *time.Timer
}

func NewRosterController(
	parent context.Context,
	source repository.RosterSource,
	cfg RosterConfig,
	logger *logger.Logger,
) *RosterController {
	ctx, cancel := context.WithCancel(parent)

	mode := cfg.FilterMode
	if mode == "" {
		mode = FilterModeLastApplied
	}

	return &RosterController{
		source:       source,
		logger:       logger.Component("service/roster"),
		options:      domain.RoleFilterOptions(),
		spinner:      cfg.RefreshSpinner,
		mode:         mode,
		ctx:          ctx,
		cancel:       cancel,
		allUsers:     []domain.User{},
		displayed:    []domain.User{},
		activeRoleID: domain.RoleAdmin,
		isLoading:    true,
	}
}

// Options returns the role checkbox entries in display order.
func (c *RosterController) Options() []domain.RoleFilterOption {
	out := make([]domain.RoleFilterOption, len(c.options))
	copy(out, c.options)
	return out
}

// Load starts a single fetch of the roster and returns immediately.
// The returned channel is closed once the attempt has finished. Failures are
// logged and leave the state untouched.
func (c *RosterController) Load() <-chan struct{} {
	done := make(chan struct{})

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		close(done)
		return done
	}
	c.wg.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.wg.Done()
		defer close(done)

		users, err := c.source.FetchUsers(c.ctx)
		if err != nil {
			if c.ctx.Err() != nil {
				c.logger.Debug("roster fetch cancelled", "error", err)
				return
			}
			c.logger.Error("failed to fetch roster", "error", err)
			return
		}

		c.applyUsers(users)
	}()

	return done
}

func (c *RosterController) applyUsers(users []domain.User) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		c.logger.Debug("discarding roster for closed screen", "count", len(users))
		return
	}

	if users == nil {
		users = []domain.User{}
	}
	c.allUsers = users
	c.isLoading = false
	c.recompute()

	c.logger.Info("roster loaded",
		"count", len(c.allUsers),
		"displayed", len(c.displayed),
	)
}

// Refresh raises the refreshing flag, starts a Load and lowers the flag after
// the spinner delay. The delay does not wait for the fetch.
func (c *RosterController) Refresh() <-chan struct{} {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		done := make(chan struct{})
		close(done)
		return done
	}

	c.isRefreshing = true
	if c.spinnerTimer != nil {
		c.spinnerTimer.Stop()
	}
	c.spinnerTimer = time.AfterFunc(c.spinner, c.endRefresh)
	c.mu.Unlock()

	return c.Load()
}

func (c *RosterController) endRefresh() {
	c.mu.Lock()
	c.isRefreshing = false
	c.mu.Unlock()
}

// SelectRole makes option the active role filter and shows the users of that
// role in roster order.
func (c *RosterController) SelectRole(option domain.RoleFilterOption) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	c.activeRoleID = option.ID
	c.roleSelected = true
	c.lastApplied = predicateRole
	c.recompute()

	c.logger.Debug("role filter applied",
		"role_id", option.ID,
		"displayed", len(c.displayed),
	)
}

// SetSearchQuery shows the users whose name contains text, ignoring case.
func (c *RosterController) SetSearchQuery(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	c.searchQuery = text
	c.lastApplied = predicateSearch
	c.recompute()

	c.logger.Debug("search filter applied",
		"query_len", len(text),
		"displayed", len(c.displayed),
	)
}

// recompute must be called with mu held.
func (c *RosterController) recompute() {
	switch {
	case c.lastApplied == predicateNone:
		c.displayed = []domain.User{}
	case c.mode == FilterModeComposed:
		users := c.allUsers
		if c.roleSelected {
			users = FilterByRole(users, c.activeRoleID)
		}
		c.displayed = FilterByName(users, c.searchQuery)
	case c.lastApplied == predicateRole:
		c.displayed = FilterByRole(c.allUsers, c.activeRoleID)
	default:
		c.displayed = FilterByName(c.allUsers, c.searchQuery)
	}
}

// Displayed returns a copy of the list currently shown.
func (c *RosterController) Displayed() []domain.User {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]domain.User, len(c.displayed))
	copy(out, c.displayed)
	return out
}

// DisplayLabel is derived from the displayed users, not from the last filter.
func (c *RosterController) DisplayLabel() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Label(c.displayed)
}

type RosterItem struct {
	ID      int         `json:"id"`
	Name    string      `json:"name"`
	Type    domain.Role `json:"type"`
	Initial string      `json:"initial"`
	Role    string      `json:"role"`
}

type RosterView struct {
	Users        []RosterItem              `json:"users"`
	Label        string                    `json:"label"`
	ActiveRoleID domain.Role               `json:"active_role_id"`
	SearchQuery  string                    `json:"search_query"`
	IsLoading    bool                      `json:"is_loading"`
	IsRefreshing bool                      `json:"is_refreshing"`
	Options      []domain.RoleFilterOption `json:"options"`
}

// View returns everything the screen needs to render.
func (c *RosterController) View() RosterView {
	c.mu.Lock()
	defer c.mu.Unlock()

	items := make([]RosterItem, 0, len(c.displayed))
	for _, u := range c.displayed {
		items = append(items, RosterItem{
			ID:      u.ID,
			Name:    u.Name,
			Type:    u.Type,
			Initial: u.Initial(),
			Role:    u.RoleLabel(),
		})
	}

	return RosterView{
		Users:        items,
		Label:        Label(c.displayed),
		ActiveRoleID: c.activeRoleID,
		SearchQuery:  c.searchQuery,
		IsLoading:    c.isLoading,
		IsRefreshing: c.isRefreshing,
		Options:      c.Options(),
	}
}

// Close tears the controller down. An in-flight fetch is cancelled and any
// result that still arrives is dropped.
func (c *RosterController) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	if c.spinnerTimer != nil {
		c.spinnerTimer.Stop()
	}
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()
}
