package server

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentcanvas/canvas-mcp-server/internal/domain"
	"github.com/agentcanvas/canvas-mcp-server/internal/infrastructure/logging"
)

func startedSession(t *testing.T) *SSESession {
	t.Helper()
	session := newTestSession(t, newStreamRecorder())
	require.NoError(t, session.Start())
	return session
}

func TestRegisterAndResolve(t *testing.T) {
	registry := NewSessionRegistry(logging.NewNop())
	session := startedSession(t)

	require.NoError(t, registry.Register(session))

	resolved, err := registry.Resolve(session.ID())
	require.NoError(t, err)
	assert.Same(t, session, resolved)
	assert.Equal(t, 1, registry.Count())
}

func TestRegisterWithoutHandshakeFails(t *testing.T) {
	registry := NewSessionRegistry(logging.NewNop())
	session := newTestSession(t, newStreamRecorder())

	assert.Error(t, registry.Register(session))
}

func TestRegisterDuplicateLiveFails(t *testing.T) {
	registry := NewSessionRegistry(logging.NewNop())
	session := startedSession(t)
	require.NoError(t, registry.Register(session))

	err := registry.Register(session)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), session.ID())
}

func TestResolveUnknownSession(t *testing.T) {
	registry := NewSessionRegistry(logging.NewNop())

	_, err := registry.Resolve("missing")

	var notFound *domain.SessionNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Contains(t, err.Error(), "missing")
}

func TestSenderImplementsDirectory(t *testing.T) {
	registry := NewSessionRegistry(logging.NewNop())
	session := startedSession(t)
	require.NoError(t, registry.Register(session))

	var directory domain.SessionDirectory = registry
	sender, err := directory.Sender(session.ID())

	require.NoError(t, err)
	assert.NotNil(t, sender)
}

func TestRemoveIsIdempotent(t *testing.T) {
	registry := NewSessionRegistry(logging.NewNop())
	session := startedSession(t)
	require.NoError(t, registry.Register(session))

	registry.Remove(session.ID())
	registry.Remove(session.ID())

	_, err := registry.Resolve(session.ID())
	assert.Error(t, err)
}

func TestCountExcludesClosedSessions(t *testing.T) {
	registry := NewSessionRegistry(logging.NewNop())
	open := startedSession(t)
	closed := startedSession(t)
	require.NoError(t, registry.Register(open))
	require.NoError(t, registry.Register(closed))

	closed.Close()

	assert.Equal(t, 1, registry.Count())
	assert.Len(t, registry.IDs(), 2)
}

func TestCloseCallbackDeregisters(t *testing.T) {
	registry := NewSessionRegistry(logging.NewNop())
	session := startedSession(t)
	session.OnClose(func(id string) { registry.Remove(id) })
	require.NoError(t, registry.Register(session))

	session.Close()

	_, err := registry.Resolve(session.ID())
	assert.Error(t, err)
	assert.Zero(t, registry.Count())
}

func TestSnapshotReportsSessionState(t *testing.T) {
	registry := NewSessionRegistry(logging.NewNop())
	session := startedSession(t)
	require.NoError(t, registry.Register(session))

	snapshot := registry.Snapshot()

	require.Len(t, snapshot, 1)
	assert.Equal(t, session.ID(), snapshot[0].ID)
	assert.Equal(t, "canvas-test-client", snapshot[0].UserAgent)
	assert.True(t, snapshot[0].Connected)
	assert.False(t, snapshot[0].CreatedAt.IsZero())
}

func TestCloseAll(t *testing.T) {
	registry := NewSessionRegistry(logging.NewNop())
	first := startedSession(t)
	second := startedSession(t)
	require.NoError(t, registry.Register(first))
	require.NoError(t, registry.Register(second))

	registry.CloseAll()

	assert.False(t, first.Connected())
	assert.False(t, second.Connected())
	assert.Zero(t, registry.Count())
}

func TestReaperEvictsIdleSessions(t *testing.T) {
	registry := NewSessionRegistry(logging.NewNop())
	clock := clockwork.NewFakeClockAt(time.Now())
	session := startedSession(t)
	require.NoError(t, registry.Register(session))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	registry.StartReaper(ctx, clock, time.Minute, 10*time.Second)

	// The session has no activity, so one far-future tick evicts it.
	clock.BlockUntil(1)
	clock.Advance(2 * time.Minute)

	assert.Eventually(t, func() bool {
		return !session.Connected()
	}, 2*time.Second, 5*time.Millisecond)
}
