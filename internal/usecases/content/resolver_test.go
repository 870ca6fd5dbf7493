package content

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentcanvas/canvas-mcp-server/internal/domain"
	"github.com/agentcanvas/canvas-mcp-server/internal/infrastructure/logging"
)

type stubClassifier struct {
	result domain.ContentType
	err    error
	calls  int
}

func (s *stubClassifier) Classify(ctx context.Context, content string) (domain.ContentType, error) {
	s.calls++
	return s.result, s.err
}

func newTestResolver(classifier domain.Classifier, strict bool) *Resolver {
	return NewResolver(classifier, strict, logging.NewNop())
}

func TestResolveHTMLPassThrough(t *testing.T) {
	r := newTestResolver(nil, false)

	resolved, err := r.Resolve(context.Background(), domain.ContentSpec{
		Type:    domain.TypeHTML,
		Content: "<h1>hi</h1>",
	})

	require.NoError(t, err)
	assert.Equal(t, "<h1>hi</h1>", resolved.HTML)
	assert.False(t, resolved.IsDirectURL())
}

func TestResolveHTMLRejectsNonMarkup(t *testing.T) {
	r := newTestResolver(nil, false)

	_, err := r.Resolve(context.Background(), domain.ContentSpec{
		Type:    domain.TypeHTML,
		Content: "not html",
	})

	var resolutionErr *domain.ContentResolutionError
	require.ErrorAs(t, err, &resolutionErr)
	assert.Equal(t, domain.TypeHTML, resolutionErr.Type)
}

func TestResolveNetworkURLIsDirect(t *testing.T) {
	r := newTestResolver(nil, false)

	resolved, err := r.Resolve(context.Background(), domain.ContentSpec{
		Type:    domain.TypeURL,
		Content: "https://example.com/page",
	})

	require.NoError(t, err)
	assert.True(t, resolved.IsDirectURL())
	assert.Equal(t, "https://example.com/page", resolved.DirectURL)
	assert.Empty(t, resolved.HTML)
}

func TestResolveMarkdownFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "note.md")
	require.NoError(t, os.WriteFile(path, []byte("# Hello"), 0o644))

	r := newTestResolver(nil, false)
	resolved, err := r.Resolve(context.Background(), domain.ContentSpec{
		Type:    domain.TypeURL,
		Content: path,
	})

	require.NoError(t, err)
	assert.Contains(t, resolved.HTML, "<h1>Hello</h1>")
	assert.Equal(t, "file-markdown", resolved.SubType)
}

func TestResolveHTMLFileVerbatim(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "page.html")
	require.NoError(t, os.WriteFile(path, []byte("<p>verbatim</p>"), 0o644))

	r := newTestResolver(nil, false)
	resolved, err := r.Resolve(context.Background(), domain.ContentSpec{
		Type:    domain.TypeURL,
		Content: path,
	})

	require.NoError(t, err)
	assert.Equal(t, "<p>verbatim</p>", resolved.HTML)
}

func TestResolveTextFileWrapped(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "log.txt")
	require.NoError(t, os.WriteFile(path, []byte("1 < 2"), 0o644))

	r := newTestResolver(nil, false)
	resolved, err := r.Resolve(context.Background(), domain.ContentSpec{
		Type:    domain.TypeURL,
		Content: path,
	})

	require.NoError(t, err)
	assert.Contains(t, resolved.HTML, "<pre>1 &lt; 2</pre>")
}

func TestResolveMissingFile(t *testing.T) {
	r := newTestResolver(nil, false)

	_, err := r.Resolve(context.Background(), domain.ContentSpec{
		Type:    domain.TypeURL,
		Content: filepath.Join(t.TempDir(), "absent.md"),
	})

	var resolutionErr *domain.ContentResolutionError
	require.ErrorAs(t, err, &resolutionErr)
	assert.Contains(t, resolutionErr.Message, "file not found")
}

func TestResolveImageDataURI(t *testing.T) {
	r := newTestResolver(nil, false)

	resolved, err := r.Resolve(context.Background(), domain.ContentSpec{
		Type:    domain.TypeImage,
		Content: "data:image/png;base64,AAAA",
	})

	require.NoError(t, err)
	assert.Contains(t, resolved.HTML, `<img src="data:image/png;base64,AAAA"`)
}

func TestResolveImageMissingFile(t *testing.T) {
	r := newTestResolver(nil, false)

	_, err := r.Resolve(context.Background(), domain.ContentSpec{
		Type:    domain.TypeImage,
		Content: filepath.Join(t.TempDir(), "absent.png"),
	})

	var resolutionErr *domain.ContentResolutionError
	require.ErrorAs(t, err, &resolutionErr)
}

func TestResolveMarkdownInline(t *testing.T) {
	r := newTestResolver(nil, false)

	resolved, err := r.Resolve(context.Background(), domain.ContentSpec{
		Type:    domain.TypeMarkdown,
		Content: "## Section",
	})

	require.NoError(t, err)
	assert.Contains(t, resolved.HTML, "<h2>Section</h2>")
}

func TestResolveAutoUsesClassifier(t *testing.T) {
	classifier := &stubClassifier{result: domain.TypeMarkdown}
	r := newTestResolver(classifier, false)

	resolved, err := r.Resolve(context.Background(), domain.ContentSpec{
		Type:    domain.TypeAuto,
		Content: "# Classified",
	})

	require.NoError(t, err)
	assert.Equal(t, 1, classifier.calls)
	assert.Contains(t, resolved.HTML, "<h1>Classified</h1>")
	assert.Equal(t, "auto:markdown", resolved.SubType)
}

func TestResolveAutoLenientFallback(t *testing.T) {
	classifier := &stubClassifier{err: domain.NewClassifierError(errors.New("down"))}
	r := newTestResolver(classifier, false)

	// The fallback skips the markup check so prose still renders.
	resolved, err := r.Resolve(context.Background(), domain.ContentSpec{
		Type:    domain.TypeAuto,
		Content: "plain prose, no markup",
	})

	require.NoError(t, err)
	assert.Equal(t, "auto:fallback", resolved.SubType)
	assert.Equal(t, "plain prose, no markup", resolved.HTML)
}

func TestResolveAutoStrictSurfacesError(t *testing.T) {
	classifier := &stubClassifier{err: domain.NewClassifierError(errors.New("down"))}
	r := newTestResolver(classifier, true)

	_, err := r.Resolve(context.Background(), domain.ContentSpec{
		Type:    domain.TypeAuto,
		Content: "anything",
	})

	var classifierErr *domain.ClassifierError
	require.ErrorAs(t, err, &classifierErr)
}

func TestResolveAutoWithoutClassifierFallsBack(t *testing.T) {
	r := newTestResolver(nil, false)

	resolved, err := r.Resolve(context.Background(), domain.ContentSpec{
		Type:    domain.TypeAuto,
		Content: "hello",
	})

	require.NoError(t, err)
	assert.Equal(t, "auto:fallback", resolved.SubType)
}

func TestResolveUnknownType(t *testing.T) {
	r := newTestResolver(nil, false)

	_, err := r.Resolve(context.Background(), domain.ContentSpec{
		Type:    domain.ContentType("video"),
		Content: "x",
	})

	var resolutionErr *domain.ContentResolutionError
	require.ErrorAs(t, err, &resolutionErr)
}
