package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/agentcanvas/canvas-mcp-server/internal/infrastructure/logging"
)

// Endpoint paths for the session protocol.
const (
	StreamEndpoint   = "/mcp"
	MessagesEndpoint = "/messages"
)

// HTTPServer exposes the session transport over HTTP: the SSE stream, the
// correlated message endpoint, and the health/debug surfaces.
type HTTPServer struct {
	name       string
	version    string
	registry   *SessionRegistry
	handler    InboundHandler
	bufferSize int
	logger     *logging.Logger
	srv        *http.Server
}

// NewHTTPServer creates an HTTPServer routing inbound messages to handler.
func NewHTTPServer(name, version string, registry *SessionRegistry, handler InboundHandler, bufferSize int, logger *logging.Logger) *HTTPServer {
	return &HTTPServer{
		name:       name,
		version:    version,
		registry:   registry,
		handler:    handler,
		bufferSize: bufferSize,
		logger:     logger,
	}
}

// Router builds the chi route table.
func (s *HTTPServer) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestLogger)

	r.Get(StreamEndpoint, s.handleStream)
	r.Post(MessagesEndpoint, s.handleMessage)
	r.Get("/health", s.handleHealth)
	r.Get("/debug/sessions", s.handleDebugSessions)

	return r
}

// Start begins serving on addr and blocks until the server stops.
func (s *HTTPServer) Start(addr string) error {
	s.srv = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}
	return s.srv.ListenAndServe()
}

// Shutdown closes all sessions and stops the HTTP server.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	s.registry.CloseAll()
	if s.srv != nil {
		return s.srv.Shutdown(ctx)
	}
	return nil
}

func (s *HTTPServer) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("http request", logging.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"durationMs": time.Since(start).Milliseconds(),
		})
	})
}

// handleStream opens the push stream: handshake, registration, then the
// serve loop until the client disconnects.
func (s *HTTPServer) handleStream(w http.ResponseWriter, r *http.Request) {
	session, err := NewSSESession(w, r, s.handler, MessagesEndpoint, s.bufferSize, s.logger)
	if err != nil {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	if err := session.Start(); err != nil {
		s.logger.Error("session handshake failed", logging.Fields{"error": err.Error()})
		http.Error(w, "Handshake failed", http.StatusInternalServerError)
		return
	}

	session.OnClose(func(id string) {
		s.registry.Remove(id)
	})
	if err := s.registry.Register(session); err != nil {
		session.Close()
		http.Error(w, "Session registration failed", http.StatusInternalServerError)
		return
	}

	s.logger.Info("session connected", logging.Fields{
		"sessionId": session.ID(),
		"userAgent": r.UserAgent(),
	})

	session.Serve(r.Context())

	s.logger.Info("session disconnected", logging.Fields{"sessionId": session.ID()})
}

// handleMessage routes a correlated POST to its session transport. The body
// is passed through unread so the framing layer can parse it itself.
func (s *HTTPServer) handleMessage(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":   "missing_session_id",
			"message": "the sessionId query parameter is required",
			"example": fmt.Sprintf("POST %s?sessionId=<id>", MessagesEndpoint),
		})
		return
	}

	session, err := s.registry.Resolve(sessionID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]any{
			"error":             "unknown_session_id",
			"message":           err.Error(),
			"availableSessions": s.registry.IDs(),
		})
		return
	}

	session.HandleInbound(r.Context(), w, r)
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	snapshot := s.registry.Snapshot()
	sessions := make([]map[string]any, 0, len(snapshot))
	for _, cs := range snapshot {
		sessions = append(sessions, map[string]any{
			"sessionId":   cs.ID,
			"isConnected": cs.Connected,
		})
	}

	if wantsHTML(r) {
		var b strings.Builder
		fmt.Fprintf(&b, "<html><body><h1>%s</h1><p>status: ok</p><p>active sessions: %d</p><ul>", s.name, s.registry.Count())
		for _, cs := range snapshot {
			fmt.Fprintf(&b, "<li>%s (connected: %t)</li>", cs.ID, cs.Connected)
		}
		b.WriteString("</ul></body></html>")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(b.String()))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"activeSessions": s.registry.Count(),
		"server":         s.name,
		"version":        s.version,
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
		"sessions":       sessions,
	})
}

func (s *HTTPServer) handleDebugSessions(w http.ResponseWriter, r *http.Request) {
	snapshot := s.registry.Snapshot()
	sessions := make([]map[string]any, 0, len(snapshot))
	for _, cs := range snapshot {
		sessions = append(sessions, map[string]any{
			"sessionId":              cs.ID,
			"isConnected":            cs.Connected,
			"hasUnderlyingTransport": true,
			"createdAt":              cs.CreatedAt.UTC().Format(time.RFC3339),
			"lastActivity":           cs.LastActivity.UTC().Format(time.RFC3339),
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"sessions": sessions,
	})
}

func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
