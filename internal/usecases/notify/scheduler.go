// Package notify implements the timed notification stream scheduler.
package notify

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/agentcanvas/canvas-mcp-server/internal/domain"
	"github.com/agentcanvas/canvas-mcp-server/internal/domain/shared"
	"github.com/agentcanvas/canvas-mcp-server/internal/infrastructure/logging"
)

// Params describes one notification stream request.
type Params struct {
	Interval time.Duration
	Count    int
	Template string
	Level    domain.NotificationLevel
}

// AttemptResult records the outcome of a single send attempt.
type AttemptResult struct {
	Sequence int    `json:"sequence"`
	Sent     bool   `json:"sent"`
	Error    string `json:"error,omitempty"`
}

// Result summarizes a finished stream. A stream finishes either by sending
// its full count or by being cancelled part-way.
type Result struct {
	JobID     string          `json:"jobId"`
	TotalSent int             `json:"totalSent"`
	Cancelled bool            `json:"cancelled"`
	Results   []AttemptResult `json:"results"`
}

// Scheduler runs notification streams. Each stream blocks its calling
// goroutine for the whole run; the scheduler itself only tracks which jobs
// are live so they can be cancelled from another dispatch.
type Scheduler struct {
	clock  clockwork.Clock
	logger *logging.Logger

	mu   sync.Mutex
	jobs map[string]*domain.NotificationJob
}

// NewScheduler creates a Scheduler driven by the given clock.
func NewScheduler(clock clockwork.Clock, logger *logging.Logger) *Scheduler {
	return &Scheduler{
		clock:  clock,
		logger: logger,
		jobs:   make(map[string]*domain.NotificationJob),
	}
}

// Run executes one notification stream against sender and blocks until it
// finishes. Individual send failures are recorded and the stream continues;
// cancellation and context expiry stop it between ticks.
func (s *Scheduler) Run(ctx context.Context, sender domain.PushSender, sessionID string, params Params) (*Result, error) {
	if params.Count < 1 {
		return nil, domain.NewValidationError("count", "must be at least 1")
	}
	if params.Interval <= 0 {
		return nil, domain.NewValidationError("interval", "must be positive")
	}
	if params.Level == "" {
		params.Level = domain.LevelInfo
	}

	job := &domain.NotificationJob{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Interval:  params.Interval,
		Remaining: params.Count,
		Template:  params.Template,
		Level:     params.Level,
	}
	s.track(job)
	defer s.untrack(job.ID)

	s.logger.Info("notification stream started", logging.Fields{
		"jobId":      job.ID,
		"sessionId":  sessionID,
		"count":      params.Count,
		"intervalMs": params.Interval.Milliseconds(),
	})

	result := &Result{JobID: job.ID}
	for i := 1; i <= params.Count; i++ {
		select {
		case <-ctx.Done():
			result.Cancelled = true
			return result, nil
		case <-s.clock.After(params.Interval):
		}

		if !s.alive(job.ID) {
			result.Cancelled = true
			s.logger.Info("notification stream cancelled", logging.Fields{"jobId": job.ID, "sent": result.TotalSent})
			return result, nil
		}

		message := expandTemplate(params.Template, i, params.Level, s.clock.Now())
		notification := shared.NewNotification(shared.NotificationMessage, map[string]any{
			"level": string(params.Level),
			"data":  message,
		})

		attempt := AttemptResult{Sequence: i}
		if err := sender.Send(notification); err != nil {
			attempt.Error = err.Error()
			s.logger.Warn("notification send failed", logging.Fields{
				"jobId":    job.ID,
				"sequence": i,
				"error":    err.Error(),
			})
		} else {
			attempt.Sent = true
			result.TotalSent++
		}
		result.Results = append(result.Results, attempt)
	}

	s.logger.Info("notification stream finished", logging.Fields{"jobId": job.ID, "sent": result.TotalSent})
	return result, nil
}

// Cancel stops the stream with the given job ID before its next tick. It
// reports whether the job was live.
func (s *Scheduler) Cancel(jobID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[jobID]; !ok {
		return false
	}
	delete(s.jobs, jobID)
	return true
}

// CancelAll stops every live stream and returns how many were cancelled.
func (s *Scheduler) CancelAll() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.jobs)
	s.jobs = make(map[string]*domain.NotificationJob)
	return n
}

// Active returns copies of the live jobs.
func (s *Scheduler) Active() []domain.NotificationJob {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.NotificationJob, 0, len(s.jobs))
	for _, job := range s.jobs {
		out = append(out, *job)
	}
	return out
}

func (s *Scheduler) track(job *domain.NotificationJob) {
	s.mu.Lock()
	s.jobs[job.ID] = job
	s.mu.Unlock()
}

func (s *Scheduler) untrack(id string) {
	s.mu.Lock()
	delete(s.jobs, id)
	s.mu.Unlock()
}

func (s *Scheduler) alive(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.jobs[id]
	return ok
}

// expandTemplate substitutes the {counter}, {timestamp}, and {level}
// placeholders. An empty template gets a default message.
func expandTemplate(template string, counter int, level domain.NotificationLevel, now time.Time) string {
	if template == "" {
		template = "Notification {counter}"
	}
	r := strings.NewReplacer(
		"{counter}", fmt.Sprintf("%d", counter),
		"{timestamp}", now.UTC().Format(time.RFC3339),
		"{level}", string(level),
	)
	return r.Replace(template)
}
