package tools

import (
	"context"
	"sync"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentcanvas/canvas-mcp-server/internal/domain"
	"github.com/agentcanvas/canvas-mcp-server/internal/domain/shared"
	"github.com/agentcanvas/canvas-mcp-server/internal/infrastructure/logging"
	"github.com/agentcanvas/canvas-mcp-server/internal/usecases/notify"
)

type collectingSender struct {
	mu     sync.Mutex
	events []any
}

func (s *collectingSender) Send(event any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *collectingSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

type singleSessionDirectory struct {
	id     string
	sender domain.PushSender
}

func (d *singleSessionDirectory) Sender(id string) (domain.PushSender, error) {
	if id != d.id {
		return nil, domain.NewSessionNotFoundError(id)
	}
	return d.sender, nil
}

func newStreamFixture(sessionID string) (*StartNotificationStreamTool, *CancelNotificationStreamTool, *collectingSender, *notify.Scheduler) {
	scheduler := notify.NewScheduler(clockwork.NewRealClock(), logging.NewNop())
	sender := &collectingSender{}
	directory := &singleSessionDirectory{id: sessionID, sender: sender}
	return NewStartNotificationStreamTool(scheduler, directory),
		NewCancelNotificationStreamTool(scheduler),
		sender,
		scheduler
}

func TestStartNotificationStream(t *testing.T) {
	start, _, sender, _ := newStreamFixture("sess-1")

	ctx := domain.WithSessionID(context.Background(), "sess-1")
	result, err := start.Execute(ctx, map[string]any{
		"intervalMs": float64(1),
		"count":      float64(3),
		"message":    "tick {counter}",
	})

	require.NoError(t, err)
	assert.Equal(t, 3, sender.count())
	assert.Equal(t, 3, result.Extra["totalSent"])
	assert.Equal(t, false, result.Extra["cancelled"])
	text := result.Content[0].(shared.TextContent)
	assert.Contains(t, text.Text, "Sent 3 of 3")
}

func TestStartNotificationStreamWithoutSession(t *testing.T) {
	start, _, _, _ := newStreamFixture("sess-1")

	_, err := start.Execute(context.Background(), map[string]any{
		"intervalMs": float64(1),
		"count":      float64(1),
	})

	var validationErr *domain.ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestStartNotificationStreamUnknownSession(t *testing.T) {
	start, _, _, _ := newStreamFixture("sess-1")

	ctx := domain.WithSessionID(context.Background(), "other")
	_, err := start.Execute(ctx, map[string]any{
		"intervalMs": float64(1),
		"count":      float64(1),
	})

	var notFound *domain.SessionNotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestCancelNotificationStreamUnknownJob(t *testing.T) {
	_, cancel, _, _ := newStreamFixture("sess-1")

	result, err := cancel.Execute(context.Background(), map[string]any{"jobId": "ghost"})

	require.NoError(t, err)
	text := result.Content[0].(shared.TextContent)
	assert.Contains(t, text.Text, "No running stream")
}

func TestCancelNotificationStreamAll(t *testing.T) {
	_, cancel, _, scheduler := newStreamFixture("sess-1")

	result, err := cancel.Execute(context.Background(), map[string]any{})

	require.NoError(t, err)
	text := result.Content[0].(shared.TextContent)
	assert.Contains(t, text.Text, "Cancelled 0 notification streams")
	assert.Empty(t, scheduler.Active())
}
