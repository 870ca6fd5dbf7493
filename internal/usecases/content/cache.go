package content

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/agentcanvas/canvas-mcp-server/internal/domain"
)

// RenderCache remembers what was rendered so the agent can re-read it as
// markdown later. Entries accumulate for the process lifetime; the expected
// volume is interactive-session sized.
type RenderCache struct {
	mu      sync.Mutex
	records map[string]*domain.RenderRecord
	latest  string
}

// NewRenderCache creates an empty RenderCache.
func NewRenderCache() *RenderCache {
	return &RenderCache{
		records: make(map[string]*domain.RenderRecord),
	}
}

// Put stores a render result and returns its record, including the markdown
// rendering derived from the HTML.
func (c *RenderCache) Put(title, html string) *domain.RenderRecord {
	record := &domain.RenderRecord{
		ID:        uuid.New().String(),
		Title:     title,
		HTML:      html,
		Markdown:  HTMLToMarkdown(html),
		CreatedAt: time.Now(),
	}

	c.mu.Lock()
	c.records[record.ID] = record
	c.latest = record.ID
	c.mu.Unlock()

	return record
}

// Get returns the record for id, or nil.
func (c *RenderCache) Get(id string) *domain.RenderRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.records[id]
}

// Latest returns the most recently stored record, or nil when nothing has
// been rendered yet.
func (c *RenderCache) Latest() *domain.RenderRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.records[c.latest]
}

// Len returns the number of cached records.
func (c *RenderCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.records)
}
