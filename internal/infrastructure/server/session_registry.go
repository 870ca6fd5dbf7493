package server

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/agentcanvas/canvas-mcp-server/internal/domain"
	"github.com/agentcanvas/canvas-mcp-server/internal/infrastructure/logging"
)

// SessionRegistry is the process-wide map from session ID to transport. It
// exclusively owns the transports; other components hold one only for the
// duration of a single dispatch. A single mutex guards the map: entries are
// written once at creation and removed once at disposal.
type SessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*SSESession
	logger   *logging.Logger
}

// NewSessionRegistry creates an empty SessionRegistry.
func NewSessionRegistry(logger *logging.Logger) *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[string]*SSESession),
		logger:   logger,
	}
}

// Register adds a started session under its ID. A duplicate ID is accepted
// only when the prior entry has already closed; a live duplicate is a
// programming error and is rejected loudly.
func (r *SessionRegistry) Register(session *SSESession) error {
	id := session.ID()
	if id == "" {
		return fmt.Errorf("cannot register session before handshake")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if prior, ok := r.sessions[id]; ok {
		if prior.Connected() {
			r.logger.Error("duplicate live session id", logging.Fields{"sessionId": id})
			return fmt.Errorf("session id %s is already registered and live", id)
		}
		r.logger.Warn("replacing closed session entry", logging.Fields{"sessionId": id})
	}

	r.sessions[id] = session
	return nil
}

// Resolve returns the transport for id, or a SessionNotFoundError.
func (r *SessionRegistry) Resolve(id string) (*SSESession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[id]
	if !ok {
		return nil, domain.NewSessionNotFoundError(id)
	}
	return session, nil
}

// Sender implements domain.SessionDirectory.
func (r *SessionRegistry) Sender(id string) (domain.PushSender, error) {
	return r.Resolve(id)
}

// Remove deletes the entry for id. It is idempotent and safe to call from a
// session's own close callback.
func (r *SessionRegistry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// Count returns the number of registered sessions that have not closed.
func (r *SessionRegistry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, s := range r.sessions {
		if s.Connected() {
			count++
		}
	}
	return count
}

// IDs returns the IDs of all registered sessions, for diagnostics.
func (r *SessionRegistry) IDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	return ids
}

// Snapshot returns a point-in-time view of every registered session.
func (r *SessionRegistry) Snapshot() []domain.ClientSession {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]domain.ClientSession, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, domain.ClientSession{
			ID:           s.ID(),
			UserAgent:    s.UserAgent(),
			Connected:    s.Connected(),
			CreatedAt:    s.CreatedAt(),
			LastActivity: s.LastActivity(),
		})
	}
	return out
}

// CloseAll closes every registered session, for shutdown.
func (r *SessionRegistry) CloseAll() {
	r.mu.Lock()
	sessions := make([]*SSESession, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}

// StartReaper evicts sessions idle longer than timeout, checking once per
// interval, until ctx is cancelled. Idle eviction is not provided by the
// transport itself.
func (r *SessionRegistry) StartReaper(ctx context.Context, clock clockwork.Clock, timeout, interval time.Duration) {
	go func() {
		ticker := clock.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.Chan():
				r.reapIdle(clock.Now(), timeout)
			}
		}
	}()
}

func (r *SessionRegistry) reapIdle(now time.Time, timeout time.Duration) {
	r.mu.Lock()
	var idle []*SSESession
	for _, s := range r.sessions {
		if s.Connected() && now.Sub(s.LastActivity()) > timeout {
			idle = append(idle, s)
		}
	}
	r.mu.Unlock()

	for _, s := range idle {
		r.logger.Info("evicting idle session", logging.Fields{"sessionId": s.ID()})
		s.Close()
	}
}
