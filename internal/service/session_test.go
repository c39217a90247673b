package service

import (
	"context"
	"testing"
	"time"

	"github.com/ZertGraf/customer-roster/internal/domain"
	"github.com/ZertGraf/customer-roster/internal/pkg/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRegistry_OpenAppliesDefaultFilter(t *testing.T) {
	source := &fakeSource{users: []domain.User{alice, bob, carol}}
	registry := NewSessionRegistry(source, SessionConfig{}, logger.Discard())
	t.Cleanup(registry.Shutdown)

	id, controller, err := registry.Open(context.Background())
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, id)

	require.Eventually(t, func() bool {
		return !controller.View().IsLoading
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, []domain.User{alice, carol}, controller.Displayed())
	assert.Equal(t, "Admin Users", controller.DisplayLabel())
	assert.Equal(t, domain.RoleAdmin, controller.View().ActiveRoleID)
	assert.Equal(t, 1, source.callCount())
}

func TestSessionRegistry_SessionsAreIndependent(t *testing.T) {
	source := &fakeSource{users: []domain.User{alice, bob}}
	registry := NewSessionRegistry(source, SessionConfig{}, logger.Discard())
	t.Cleanup(registry.Shutdown)

	id1, first, err := registry.Open(context.Background())
	require.NoError(t, err)
	id2, second, err := registry.Open(context.Background())
	require.NoError(t, err)
	require.NotEqual(t, id1, id2)
	assert.Equal(t, 2, registry.Len())

	first.SetSearchQuery("bob")
	assert.Equal(t, "", second.View().SearchQuery)

	got, err := registry.Get(id1)
	require.NoError(t, err)
	assert.Same(t, first, got)
}

func TestSessionRegistry_CloseForgetsSession(t *testing.T) {
	registry := NewSessionRegistry(&fakeSource{}, SessionConfig{}, logger.Discard())
	t.Cleanup(registry.Shutdown)

	id, _, err := registry.Open(context.Background())
	require.NoError(t, err)

	require.NoError(t, registry.Close(id))
	assert.Equal(t, 0, registry.Len())

	_, err = registry.Get(id)
	require.ErrorIs(t, err, domain.ErrSessionNotFound)
	require.ErrorIs(t, registry.Close(id), domain.ErrSessionNotFound)
}

func TestSessionRegistry_ReopenStartsFresh(t *testing.T) {
	source := &fakeSource{users: []domain.User{alice, bob}}
	registry := NewSessionRegistry(source, SessionConfig{}, logger.Discard())
	t.Cleanup(registry.Shutdown)

	id, controller, err := registry.Open(context.Background())
	require.NoError(t, err)
	controller.SetSearchQuery("bob")
	require.NoError(t, registry.Close(id))

	_, again, err := registry.Open(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "", again.View().SearchQuery)

	require.Eventually(t, func() bool {
		return source.callCount() == 2 && !again.View().IsLoading
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []domain.User{alice}, again.Displayed())
}

func TestSessionRegistry_ShutdownCancelsInFlightFetch(t *testing.T) {
	source := &fakeSource{users: []domain.User{alice}, release: make(chan struct{})}
	registry := NewSessionRegistry(source, SessionConfig{}, logger.Discard())

	_, controller, err := registry.Open(context.Background())
	require.NoError(t, err)

	registry.Shutdown()

	assert.Equal(t, 0, registry.Len())
	assert.True(t, controller.View().IsLoading)
	close(source.release)
}

func TestSessionRegistry_IdleSessionsExpire(t *testing.T) {
	registry := NewSessionRegistry(&fakeSource{users: []domain.User{alice}}, SessionConfig{
		IdleTimeout: 20 * time.Millisecond,
	}, logger.Discard())
	t.Cleanup(registry.Shutdown)

	id, controller, err := registry.Open(context.Background())
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return registry.Len() == 0
	}, time.Second, 5*time.Millisecond)

	_, err = registry.Get(id)
	require.ErrorIs(t, err, domain.ErrSessionNotFound)

	// closed controllers ignore further input
	controller.SetSearchQuery("alice")
	assert.Equal(t, "", controller.View().SearchQuery)
}

func TestSessionRegistry_GetKeepsSessionAlive(t *testing.T) {
	registry := NewSessionRegistry(&fakeSource{}, SessionConfig{IdleTimeout: time.Minute}, logger.Discard())
	t.Cleanup(registry.Shutdown)

	clock := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	registry.now = func() time.Time { return clock }

	active, _, err := registry.Open(context.Background())
	require.NoError(t, err)
	idle, _, err := registry.Open(context.Background())
	require.NoError(t, err)

	clock = clock.Add(45 * time.Second)
	_, err = registry.Get(active)
	require.NoError(t, err)

	clock = clock.Add(30 * time.Second)
	assert.Equal(t, 1, registry.expireIdle())

	_, err = registry.Get(active)
	require.NoError(t, err)
	_, err = registry.Get(idle)
	require.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestSessionRegistry_ManyAbandonedSessionsAreReclaimed(t *testing.T) {
	registry := NewSessionRegistry(&fakeSource{}, SessionConfig{IdleTimeout: time.Minute}, logger.Discard())
	t.Cleanup(registry.Shutdown)

	clock := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	registry.now = func() time.Time { return clock }

	for i := 0; i < 1000; i++ {
		_, _, err := registry.Open(context.Background())
		require.NoError(t, err)
	}
	require.Equal(t, 1000, registry.Len())

	clock = clock.Add(2 * time.Minute)
	assert.Equal(t, 1000, registry.expireIdle())
	assert.Equal(t, 0, registry.Len())
}
