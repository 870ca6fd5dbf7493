package content

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/agentcanvas/canvas-mcp-server/internal/domain"
	"github.com/agentcanvas/canvas-mcp-server/internal/infrastructure/logging"
)

// Resolver turns agent-supplied content specs into renderable results.
// Every branch ends in either a complete HTML document, a direct URL for
// the host to load, or a ContentResolutionError; no partial output exists.
type Resolver struct {
	classifier domain.Classifier
	strictAuto bool
	logger     *logging.Logger
}

// NewResolver creates a Resolver. classifier may be nil, in which case
// auto-typed content follows the fallback policy.
func NewResolver(classifier domain.Classifier, strictAuto bool, logger *logging.Logger) *Resolver {
	return &Resolver{
		classifier: classifier,
		strictAuto: strictAuto,
		logger:     logger,
	}
}

// Resolve resolves spec into renderable content.
func (r *Resolver) Resolve(ctx context.Context, spec domain.ContentSpec) (*domain.ResolvedContent, error) {
	switch spec.Type {
	case domain.TypeHTML:
		return r.resolveHTML(spec.Content)
	case domain.TypeURL:
		return r.resolveURL(spec.Content)
	case domain.TypeMarkdown:
		return r.resolveMarkdown(spec.Content), nil
	case domain.TypeImage:
		return r.resolveImage(spec.Content)
	case domain.TypeAuto:
		return r.resolveAuto(ctx, spec.Content)
	default:
		return nil, domain.NewContentResolutionError(spec.Type, "unsupported content type")
	}
}

func (r *Resolver) resolveHTML(content string) (*domain.ResolvedContent, error) {
	if !strings.Contains(content, "<") || !strings.Contains(content, ">") {
		return nil, domain.NewContentResolutionError(domain.TypeHTML, "content does not look like HTML markup")
	}
	return &domain.ResolvedContent{Type: domain.TypeHTML, HTML: content}, nil
}

// resolveURL handles both network URLs and local file paths. Network URLs
// are never fetched here; the host loads them directly. Local paths are read
// and rendered according to their extension.
func (r *Resolver) resolveURL(content string) (*domain.ResolvedContent, error) {
	target := strings.TrimSpace(content)
	if target == "" {
		return nil, domain.NewContentResolutionError(domain.TypeURL, "empty url")
	}

	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		return &domain.ResolvedContent{Type: domain.TypeURL, SubType: "network", DirectURL: target}, nil
	}

	path := strings.TrimPrefix(target, "file://")
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, domain.NewContentResolutionError(domain.TypeURL, fmt.Sprintf("invalid path %q: %v", path, err))
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.NewContentResolutionError(domain.TypeURL, fmt.Sprintf("file not found: %s", abs))
		}
		return nil, domain.NewContentResolutionError(domain.TypeURL, fmt.Sprintf("cannot read %s: %v", abs, err))
	}

	switch strings.ToLower(filepath.Ext(abs)) {
	case ".html", ".htm":
		return &domain.ResolvedContent{Type: domain.TypeURL, SubType: "file-html", HTML: string(data)}, nil
	case ".md", ".markdown":
		return &domain.ResolvedContent{Type: domain.TypeURL, SubType: "file-markdown", HTML: MarkdownToHTML(string(data))}, nil
	default:
		return &domain.ResolvedContent{Type: domain.TypeURL, SubType: "file-text", HTML: plainTextShell(string(data))}, nil
	}
}

func (r *Resolver) resolveMarkdown(content string) *domain.ResolvedContent {
	return &domain.ResolvedContent{Type: domain.TypeMarkdown, HTML: MarkdownToHTML(content)}
}

// resolveImage wraps an image reference in a viewer document. Data URIs are
// embedded as-is; file paths must exist and are loaded via a file URL.
func (r *Resolver) resolveImage(content string) (*domain.ResolvedContent, error) {
	ref := strings.TrimSpace(content)
	if ref == "" {
		return nil, domain.NewContentResolutionError(domain.TypeImage, "empty image reference")
	}

	if strings.HasPrefix(ref, "data:image/") {
		return &domain.ResolvedContent{Type: domain.TypeImage, SubType: "data-uri", HTML: imageShell(ref)}, nil
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return &domain.ResolvedContent{Type: domain.TypeImage, SubType: "network", HTML: imageShell(ref)}, nil
	}

	path := strings.TrimPrefix(ref, "file://")
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, domain.NewContentResolutionError(domain.TypeImage, fmt.Sprintf("invalid path %q: %v", path, err))
	}
	if _, err := os.Stat(abs); err != nil {
		return nil, domain.NewContentResolutionError(domain.TypeImage, fmt.Sprintf("image not found: %s", abs))
	}
	return &domain.ResolvedContent{Type: domain.TypeImage, SubType: "file", HTML: imageShell("file://" + abs)}, nil
}

// resolveAuto asks the classifier for a concrete type and resolves under it.
// Without a classifier, or when classification fails under the lenient
// policy, content is passed through as HTML so plain text still renders.
func (r *Resolver) resolveAuto(ctx context.Context, content string) (*domain.ResolvedContent, error) {
	if r.classifier == nil {
		return r.autoFallback(content, domain.NewClassifierError(fmt.Errorf("no classifier configured")))
	}

	ct, err := r.classifier.Classify(ctx, content)
	if err != nil {
		return r.autoFallback(content, err)
	}
	if !ct.IsConcrete() {
		return r.autoFallback(content, domain.NewClassifierError(fmt.Errorf("classifier returned non-concrete type %q", ct)))
	}

	resolved, err := r.Resolve(ctx, domain.ContentSpec{Type: ct, Content: content})
	if err != nil {
		return nil, err
	}
	resolved.SubType = "auto:" + string(ct)
	return resolved, nil
}

// autoFallback applies the lenient policy: the content is rendered as an
// HTML pass-through without the markup check, so prose still displays.
// Under the strict policy the classifier failure is surfaced instead.
func (r *Resolver) autoFallback(content string, cause error) (*domain.ResolvedContent, error) {
	if r.strictAuto {
		return nil, cause
	}
	r.logger.Warn("auto classification unavailable, treating content as html", logging.Fields{
		"reason": cause.Error(),
	})
	return &domain.ResolvedContent{Type: domain.TypeHTML, SubType: "auto:fallback", HTML: content}, nil
}

// imageShell wraps an image source in a dark full-bleed viewer document.
func imageShell(src string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
body { margin: 0; background: #1e1e1e; display: flex; justify-content: center; align-items: center; min-height: 100vh; }
img { max-width: 100%%; max-height: 100vh; object-fit: contain; }
</style>
</head>
<body>
<img src="%s" alt="">
</body>
</html>`, src)
}
