// Package server implements the HTTP/SSE session transport for the canvas
// MCP server.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/agentcanvas/canvas-mcp-server/internal/domain"
	"github.com/agentcanvas/canvas-mcp-server/internal/domain/shared"
	"github.com/agentcanvas/canvas-mcp-server/internal/infrastructure/logging"
)

// transportState tracks the session transport lifecycle.
type transportState int

const (
	stateCreated transportState = iota
	stateStarted
	stateActive
	stateClosed
)

// InboundHandler processes one decoded JSON-RPC message and returns the
// response to frame, or nil when the message was a notification.
type InboundHandler func(ctx context.Context, raw json.RawMessage) any

// SSESession is one client connection: the SSE push stream plus the
// correlated inbound POST side channel. Lifecycle is
// Created -> Started -> Active -> Closed; Closed is terminal and closing is
// idempotent.
type SSESession struct {
	id              string
	writer          http.ResponseWriter
	flusher         http.Flusher
	eventQueue      chan string
	done            chan struct{}
	closeOnce       sync.Once
	handler         InboundHandler
	messageEndpoint string
	userAgent       string
	createdAt       time.Time
	logger          *logging.Logger

	mu           sync.Mutex
	state        transportState
	lastActivity time.Time
	onClose      func(id string)
}

// NewSSESession wraps an SSE-capable ResponseWriter in a session transport.
// The session has no ID until Start completes the handshake.
func NewSSESession(w http.ResponseWriter, r *http.Request, handler InboundHandler, messageEndpoint string, bufferSize int, logger *logging.Logger) (*SSESession, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, ErrResponseWriterNotFlusher
	}

	now := time.Now()
	return &SSESession{
		writer:          w,
		flusher:         flusher,
		eventQueue:      make(chan string, bufferSize),
		done:            make(chan struct{}),
		handler:         handler,
		messageEndpoint: messageEndpoint,
		userAgent:       r.UserAgent(),
		createdAt:       now,
		lastActivity:    now,
		logger:          logger,
		state:           stateCreated,
	}, nil
}

// ID returns the session ID, empty before a successful handshake.
func (s *SSESession) ID() string {
	return s.id
}

// Connected reports whether the transport has not yet closed.
func (s *SSESession) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == stateStarted || s.state == stateActive
}

// CreatedAt returns the transport creation time.
func (s *SSESession) CreatedAt() time.Time {
	return s.createdAt
}

// LastActivity returns the time of the most recent send or inbound request.
func (s *SSESession) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

// UserAgent returns the client's User-Agent header captured at connect time.
func (s *SSESession) UserAgent() string {
	return s.userAgent
}

// OnClose registers the callback fired exactly once when the session closes,
// so the owning registry can deregister it.
func (s *SSESession) OnClose(fn func(id string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onClose = fn
}

// Start performs the SSE handshake: it sets the stream headers, assigns the
// session ID, and emits the connected and endpoint events. Calling Start on
// a session that already completed its handshake fails with a
// TransportError.
func (s *SSESession) Start() error {
	s.mu.Lock()
	if s.state != stateCreated {
		s.mu.Unlock()
		return domain.NewTransportError("start", "session already started")
	}
	s.mu.Unlock()

	s.writer.Header().Set("Content-Type", "text/event-stream")
	s.writer.Header().Set("Cache-Control", "no-cache")
	s.writer.Header().Set("Connection", "keep-alive")
	s.writer.Header().Set("Access-Control-Allow-Origin", "*")

	s.id = uuid.New().String()
	endpoint := fmt.Sprintf("%s?sessionId=%s", s.messageEndpoint, s.id)

	if _, err := fmt.Fprintf(s.writer, "event: connected\ndata: {\"sessionId\": %q}\n\n", s.id); err != nil {
		return domain.NewTransportError("start", "handshake failed: "+err.Error())
	}
	if _, err := fmt.Fprintf(s.writer, "event: endpoint\ndata: %s\n\n", endpoint); err != nil {
		return domain.NewTransportError("start", "handshake failed: "+err.Error())
	}
	s.flusher.Flush()

	s.mu.Lock()
	s.state = stateStarted
	s.mu.Unlock()

	s.logger.Debug("session handshake complete", logging.Fields{"sessionId": s.id})
	return nil
}

// Send frames event as an SSE message and queues it on the push stream. It
// fails with a TransportError when the session is not connected, and with
// ErrQueueFull when the stream cannot keep up.
func (s *SSESession) Send(event any) error {
	s.mu.Lock()
	if s.state != stateStarted && s.state != stateActive {
		s.mu.Unlock()
		return domain.NewTransportError("send", "not connected")
	}
	s.mu.Unlock()

	data, err := json.Marshal(event)
	if err != nil {
		return domain.NewTransportError("send", "marshal failed: "+err.Error())
	}

	select {
	case s.eventQueue <- fmt.Sprintf("event: message\ndata: %s\n\n", data):
		s.touch()
		return nil
	case <-s.done:
		return domain.NewTransportError("send", "not connected")
	default:
		return fmt.Errorf("session %s: %w", s.id, ErrQueueFull)
	}
}

// Serve drains the event queue onto the wire until the client disconnects or
// the session closes. It runs on the HTTP handler goroutine and returns only
// when the session is finished.
func (s *SSESession) Serve(ctx context.Context) {
	for {
		select {
		case event := <-s.eventQueue:
			if _, err := io.WriteString(s.writer, event); err != nil {
				s.logger.Warn("stream write failed, closing session", logging.Fields{
					"sessionId": s.id,
					"error":     err.Error(),
				})
				s.Close()
				return
			}
			s.flusher.Flush()
			s.activate()
		case <-ctx.Done():
			s.Close()
			return
		case <-s.done:
			return
		}
	}
}

// HandleInbound parses one correlated POST request and forwards it to the
// RPC handler. Parse and processing failures are reported on the inbound
// channel; they never close the session. The response travels on the push
// stream, with a copy in the POST body.
func (s *SSESession) HandleInbound(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	s.touch()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeInboundError(w, nil, shared.ParseError, "failed to read request body")
		return
	}

	var raw json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		writeInboundError(w, nil, shared.ParseError, shared.ErrorMessage(shared.ParseError))
		return
	}

	ctx = domain.WithSessionID(ctx, s.id)
	response := s.handler(ctx, raw)
	if response == nil {
		w.WriteHeader(http.StatusAccepted)
		return
	}

	if err := s.Send(response); err != nil {
		s.logger.Warn("failed to push response over stream", logging.Fields{
			"sessionId": s.id,
			"error":     err.Error(),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		s.logger.Warn("failed to write inbound response", logging.Fields{"sessionId": s.id, "error": err.Error()})
	}
}

// Close releases the stream and fires the registered close callback. It is
// safe to call from both an explicit request and an asynchronous stream-end
// event; cleanup runs once.
func (s *SSESession) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.state = stateClosed
		onClose := s.onClose
		s.mu.Unlock()

		close(s.done)
		if onClose != nil {
			onClose(s.id)
		}
		s.logger.Debug("session closed", logging.Fields{"sessionId": s.id})
	})
}

func (s *SSESession) touch() {
	s.mu.Lock()
	s.lastActivity = time.Now()
	s.mu.Unlock()
}

// activate promotes Started to Active after the first successful wire write.
func (s *SSESession) activate() {
	s.mu.Lock()
	if s.state == stateStarted {
		s.state = stateActive
	}
	s.lastActivity = time.Now()
	s.mu.Unlock()
}

// writeInboundError writes a JSON-RPC error to the POST side channel.
func writeInboundError(w http.ResponseWriter, id any, code shared.ErrorCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(shared.NewErrorResponse(id, code, message, nil))
}
