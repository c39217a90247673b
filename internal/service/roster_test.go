package service

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ZertGraf/customer-roster/internal/domain"
	"github.com/ZertGraf/customer-roster/internal/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	mu    sync.Mutex
	users []domain.User
	err   error
	calls int

	// when set, FetchUsers waits for release or ctx cancellation
	release chan struct{}
}

func (f *fakeSource) FetchUsers(ctx context.Context) ([]domain.User, error) {
	f.mu.Lock()
	f.calls++
	release := f.release
	users, err := f.users, f.err
	f.mu.Unlock()

	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return users, err
}

func (f *fakeSource) set(users []domain.User, err error) {
	f.mu.Lock()
	f.users, f.err = users, err
	f.mu.Unlock()
}

func (f *fakeSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

var (
	alice = domain.User{ID: 1, Name: "Alice", Type: domain.RoleAdmin}
	bob   = domain.User{ID: 2, Name: "Bob", Type: domain.RoleManager}
	carol = domain.User{ID: 3, Name: "Carol", Type: domain.RoleAdmin}
	dave  = domain.User{ID: 4, Name: "Dave", Type: 5}

	adminOption   = domain.RoleFilterOption{ID: domain.RoleAdmin, Label: "Admin"}
	managerOption = domain.RoleFilterOption{ID: domain.RoleManager, Label: "Manager"}
)

func newController(t *testing.T, source *fakeSource, cfg RosterConfig) *RosterController {
	t.Helper()
	c := NewRosterController(context.Background(), source, cfg, logger.Discard())
	t.Cleanup(c.Close)
	return c
}

func waitDone(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("load did not finish")
	}
}

func loaded(t *testing.T, users ...domain.User) *RosterController {
	t.Helper()
	c := newController(t, &fakeSource{users: users}, RosterConfig{})
	waitDone(t, c.Load())
	return c
}

func TestRosterController_InitialState(t *testing.T) {
	c := newController(t, &fakeSource{}, RosterConfig{})

	view := c.View()
	assert.True(t, view.IsLoading)
	assert.False(t, view.IsRefreshing)
	assert.Equal(t, domain.RoleAdmin, view.ActiveRoleID)
	assert.Equal(t, "", view.SearchQuery)
	assert.Empty(t, view.Users)
	assert.Equal(t, "Manager Users", view.Label)
	assert.Equal(t, domain.RoleFilterOptions(), view.Options)
}

func TestRosterController_SelectAdmin(t *testing.T) {
	c := loaded(t, alice, bob, carol)

	c.SelectRole(adminOption)

	assert.Equal(t, []domain.User{alice, carol}, c.Displayed())
	assert.Equal(t, "Admin Users", c.DisplayLabel())
}

func TestRosterController_SearchSubstring(t *testing.T) {
	c := loaded(t, alice, bob, carol)

	c.SetSearchQuery("bo")

	assert.Equal(t, []domain.User{bob}, c.Displayed())
	assert.Equal(t, "Manager Users", c.DisplayLabel())
}

func TestRosterController_MissingUsersField(t *testing.T) {
	c := newController(t, &fakeSource{users: nil}, RosterConfig{})
	waitDone(t, c.Load())

	c.SelectRole(adminOption)

	assert.Empty(t, c.Displayed())
	assert.False(t, c.View().IsLoading)
	assert.Equal(t, "Manager Users", c.DisplayLabel())
}

func TestRosterController_UnknownRoleCode(t *testing.T) {
	c := loaded(t, alice, bob, dave)

	c.SelectRole(adminOption)
	assert.NotContains(t, c.Displayed(), dave)

	c.SelectRole(managerOption)
	assert.NotContains(t, c.Displayed(), dave)

	c.SetSearchQuery("dave")
	assert.Equal(t, []domain.User{dave}, c.Displayed())
	// unknown codes never count as admin for the label
	assert.Equal(t, "Manager Users", c.DisplayLabel())
	// but render with the admin role text
	assert.Equal(t, "Admin", c.View().Users[0].Role)
}

func TestRosterController_SelectRole_MatchesPredicate(t *testing.T) {
	roster := []domain.User{alice, bob, carol, dave, {ID: 5, Name: "Eve", Type: domain.RoleManager}}
	c := loaded(t, roster...)

	for _, opt := range domain.RoleFilterOptions() {
		c.SelectRole(opt)

		var want []domain.User
		for _, u := range roster {
			if u.Type == opt.ID {
				want = append(want, u)
			}
		}
		assert.Equal(t, want, c.Displayed(), opt.Label)
		assert.Equal(t, opt.ID, c.View().ActiveRoleID)
	}
}

func TestRosterController_SelectRole_Idempotent(t *testing.T) {
	c := loaded(t, alice, bob, carol)

	c.SelectRole(managerOption)
	once := c.Displayed()
	c.SelectRole(managerOption)

	assert.Equal(t, once, c.Displayed())
}

func TestRosterController_Search_CaseInsensitive(t *testing.T) {
	c := loaded(t, alice, bob, carol)

	c.SetSearchQuery("AR")
	assert.Equal(t, []domain.User{carol}, c.Displayed())

	c.SetSearchQuery("")
	assert.Equal(t, []domain.User{alice, bob, carol}, c.Displayed())
	assert.Equal(t, "", c.View().SearchQuery)
}

func TestRosterController_LastAppliedWins(t *testing.T) {
	c := loaded(t, alice, bob, carol)

	c.SetSearchQuery("alice")
	c.SelectRole(managerOption)
	assert.Equal(t, []domain.User{bob}, c.Displayed())
	// search text is kept even though it no longer drives the list
	assert.Equal(t, "alice", c.View().SearchQuery)

	c.SetSearchQuery("c")
	assert.Equal(t, []domain.User{alice, carol}, c.Displayed())
	assert.Equal(t, domain.RoleManager, c.View().ActiveRoleID)
}

func TestRosterController_ComposedMode(t *testing.T) {
	c := newController(t, &fakeSource{users: []domain.User{alice, bob, carol}}, RosterConfig{FilterMode: FilterModeComposed})
	waitDone(t, c.Load())

	c.SelectRole(adminOption)
	assert.Equal(t, []domain.User{alice, carol}, c.Displayed())

	c.SetSearchQuery("car")
	assert.Equal(t, []domain.User{carol}, c.Displayed())

	c.SelectRole(managerOption)
	assert.Empty(t, c.Displayed())
}

func TestRosterController_FilterBeforeLoadIsAppliedOnArrival(t *testing.T) {
	source := &fakeSource{users: []domain.User{alice, bob, carol}, release: make(chan struct{})}
	c := newController(t, source, RosterConfig{})

	done := c.Load()
	c.SelectRole(adminOption)
	assert.Empty(t, c.Displayed())

	close(source.release)
	waitDone(t, done)

	assert.Equal(t, []domain.User{alice, carol}, c.Displayed())
	assert.Equal(t, "Admin Users", c.DisplayLabel())
}

func TestRosterController_LoadReplacesRoster(t *testing.T) {
	source := &fakeSource{users: []domain.User{alice, bob}}
	c := newController(t, source, RosterConfig{})
	waitDone(t, c.Load())
	c.SelectRole(adminOption)
	require.Equal(t, []domain.User{alice}, c.Displayed())

	source.set([]domain.User{carol}, nil)
	waitDone(t, c.Load())

	assert.Equal(t, []domain.User{carol}, c.Displayed())
}

func TestRosterController_LoadFailureKeepsState(t *testing.T) {
	var buf bytes.Buffer
	log, err := logger.New(&logger.Config{Level: "info", Format: "json", Output: &buf})
	require.NoError(t, err)

	source := &fakeSource{err: errors.New("connection refused")}
	c := NewRosterController(context.Background(), source, RosterConfig{}, log)
	t.Cleanup(c.Close)

	waitDone(t, c.Load())

	view := c.View()
	assert.True(t, view.IsLoading)
	assert.Empty(t, view.Users)
	assert.Contains(t, buf.String(), "failed to fetch roster")
	assert.Contains(t, buf.String(), "connection refused")

	// a later failure does not wipe a roster that did load
	source.set([]domain.User{alice}, nil)
	waitDone(t, c.Load())
	source.set(nil, errors.New("timeout"))
	waitDone(t, c.Load())

	c.SelectRole(adminOption)
	assert.Equal(t, []domain.User{alice}, c.Displayed())
	assert.False(t, c.View().IsLoading)
	assert.Equal(t, 3, source.callCount())
}

func TestRosterController_RefreshSpinner(t *testing.T) {
	source := &fakeSource{users: []domain.User{alice}}
	c := newController(t, source, RosterConfig{RefreshSpinner: 50 * time.Millisecond})

	done := c.Refresh()
	assert.True(t, c.View().IsRefreshing)
	waitDone(t, done)

	require.Eventually(t, func() bool {
		return !c.View().IsRefreshing
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, source.callCount())
}

func TestRosterController_RefreshSpinnerDoesNotWaitForFetch(t *testing.T) {
	source := &fakeSource{users: []domain.User{alice}, release: make(chan struct{})}
	c := newController(t, source, RosterConfig{RefreshSpinner: 20 * time.Millisecond})

	done := c.Refresh()

	require.Eventually(t, func() bool {
		return !c.View().IsRefreshing
	}, time.Second, 5*time.Millisecond)
	assert.True(t, c.View().IsLoading, "fetch is still in flight")

	close(source.release)
	waitDone(t, done)
	assert.False(t, c.View().IsLoading)
}

func TestRosterController_CloseDiscardsLateResult(t *testing.T) {
	source := &fakeSource{users: []domain.User{alice}, release: make(chan struct{})}
	c := NewRosterController(context.Background(), source, RosterConfig{}, logger.Discard())

	done := c.Load()
	c.SelectRole(adminOption)
	c.Close()
	waitDone(t, done)

	close(source.release)
	assert.Empty(t, c.Displayed())
	assert.True(t, c.View().IsLoading)
}

func TestRosterController_ApplyAfterCloseIsIgnored(t *testing.T) {
	c := NewRosterController(context.Background(), &fakeSource{}, RosterConfig{}, logger.Discard())
	c.SelectRole(adminOption)
	c.Close()

	c.applyUsers([]domain.User{alice})
	c.SetSearchQuery("a")

	assert.Empty(t, c.Displayed())
	assert.Equal(t, "", c.View().SearchQuery)
}

func TestRosterController_OperationsAfterCloseAreNoops(t *testing.T) {
	source := &fakeSource{users: []domain.User{alice}}
	c := NewRosterController(context.Background(), source, RosterConfig{RefreshSpinner: time.Millisecond}, logger.Discard())
	c.Close()
	c.Close()

	waitDone(t, c.Load())
	waitDone(t, c.Refresh())

	assert.Equal(t, 0, source.callCount())
	assert.False(t, c.View().IsRefreshing)
}

func TestRosterController_ViewItems(t *testing.T) {
	c := loaded(t, alice, bob)
	c.SetSearchQuery("")

	view := c.View()
	require.Len(t, view.Users, 2)
	assert.Equal(t, RosterItem{ID: 1, Name: "Alice", Type: domain.RoleAdmin, Initial: "A", Role: "Admin"}, view.Users[0])
	assert.Equal(t, RosterItem{ID: 2, Name: "Bob", Type: domain.RoleManager, Initial: "B", Role: "Manager"}, view.Users[1])
	assert.Equal(t, "Admin Users", view.Label)
}
