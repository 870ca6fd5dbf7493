package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderCachePutDerivesMarkdown(t *testing.T) {
	cache := NewRenderCache()

	record := cache.Put("Report", "<h1>Report</h1><ul><li>a</li></ul>")

	require.NotEmpty(t, record.ID)
	assert.Equal(t, "Report", record.Title)
	assert.Contains(t, record.Markdown, "# Report")
	assert.Contains(t, record.Markdown, "- a")
}

func TestRenderCacheGetAndLatest(t *testing.T) {
	cache := NewRenderCache()

	first := cache.Put("one", "<p>one</p>")
	second := cache.Put("two", "<p>two</p>")

	assert.Equal(t, first, cache.Get(first.ID))
	assert.Equal(t, second, cache.Latest())
	assert.Equal(t, 2, cache.Len())
}

func TestRenderCacheEmpty(t *testing.T) {
	cache := NewRenderCache()

	assert.Nil(t, cache.Get("nope"))
	assert.Nil(t, cache.Latest())
	assert.Zero(t, cache.Len())
}
