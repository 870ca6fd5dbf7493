// Package window connects the server to the host display bridge, the
// process that actually creates windows and runs injected scripts.
package window

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/agentcanvas/canvas-mcp-server/internal/domain"
	"github.com/agentcanvas/canvas-mcp-server/internal/infrastructure/logging"
)

// Bridge implements domain.WindowHost over the display bridge's HTTP API.
type Bridge struct {
	baseURL string
	client  *http.Client
	logger  *logging.Logger
}

// NewBridge creates a Bridge talking to the display bridge at baseURL.
func NewBridge(baseURL string, timeout time.Duration, logger *logging.Logger) *Bridge {
	return &Bridge{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// CreateWindow implements domain.WindowHost.
func (b *Bridge) CreateWindow(ctx context.Context, config domain.WindowConfig) (*domain.WindowHandle, error) {
	var handle domain.WindowHandle
	if err := b.post(ctx, "/windows", config, &handle); err != nil {
		return nil, err
	}
	b.logger.Debug("window created", logging.Fields{"windowId": handle.ID, "title": config.Title})
	return &handle, nil
}

// InjectScript implements domain.WindowHost.
func (b *Bridge) InjectScript(ctx context.Context, config domain.InjectConfig) (any, error) {
	var result struct {
		Value any `json:"value"`
	}
	if err := b.post(ctx, "/inject", config, &result); err != nil {
		return nil, err
	}
	return result.Value, nil
}

func (b *Bridge) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode bridge request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build bridge request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return domain.NewEnvironmentError("window host",
			fmt.Sprintf("display bridge unreachable at %s: %v", b.baseURL, err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read bridge response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bridge %s returned %d: %s", path, resp.StatusCode, data)
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode bridge response: %w", err)
	}
	return nil
}
