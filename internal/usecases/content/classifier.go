package content

import (
	"context"
	"fmt"
	"strings"

	anthropic "github.com/liushuangls/go-anthropic/v2"

	"github.com/agentcanvas/canvas-mcp-server/internal/domain"
	"github.com/agentcanvas/canvas-mcp-server/internal/infrastructure/logging"
)

// classifyMaxChars caps the content sample sent to the model. Type is
// almost always decidable from the head of the content.
const classifyMaxChars = 2000

const classifierSystemPrompt = `You classify content for a rendering system.
Answer with exactly one word: html, markdown, url, or image.
- html: HTML markup, full documents or fragments
- markdown: markdown-formatted text, or plain prose
- url: a single web address or file path to open
- image: an image reference (file path, data URI, or image URL)`

// synonyms maps common off-vocabulary answers back onto the type set.
var synonyms = map[string]domain.ContentType{
	"picture": domain.TypeImage,
	"photo":   domain.TypeImage,
	"img":     domain.TypeImage,
	"link":    domain.TypeURL,
	"website": domain.TypeURL,
	"webpage": domain.TypeURL,
	"address": domain.TypeURL,
	"md":      domain.TypeMarkdown,
	"text":    domain.TypeMarkdown,
	"plain":   domain.TypeMarkdown,
	"webcode": domain.TypeHTML,
}

// AnthropicClassifier decides the concrete type of auto-typed content by
// asking a small model for a one-word answer.
type AnthropicClassifier struct {
	client *anthropic.Client
	model  anthropic.Model
	logger *logging.Logger
}

// NewAnthropicClassifier creates a classifier backed by the given model.
func NewAnthropicClassifier(apiKey string, model string, logger *logging.Logger) *AnthropicClassifier {
	return &AnthropicClassifier{
		client: anthropic.NewClient(apiKey),
		model:  anthropic.Model(model),
		logger: logger,
	}
}

// Classify returns the concrete content type for content. A failed API call
// or an answer outside the known vocabulary yields a ClassifierError.
func (c *AnthropicClassifier) Classify(ctx context.Context, content string) (domain.ContentType, error) {
	sample := content
	if len(sample) > classifyMaxChars {
		sample = sample[:classifyMaxChars]
	}

	resp, err := c.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     c.model,
		MaxTokens: 10,
		System:    classifierSystemPrompt,
		Messages: []anthropic.Message{
			anthropic.NewUserTextMessage("Classify this content:\n\n" + sample),
		},
	})
	if err != nil {
		return "", domain.NewClassifierError(fmt.Errorf("classification request failed: %w", err))
	}

	answer := strings.ToLower(strings.TrimSpace(resp.GetFirstContentText()))
	answer = strings.Trim(answer, ".\"'")

	resolved, err := parseClassifierAnswer(answer)
	if err != nil {
		return "", err
	}

	c.logger.Debug("content classified", logging.Fields{
		"answer":      answer,
		"type":        string(resolved),
		"sampleChars": len(sample),
	})
	return resolved, nil
}

// parseClassifierAnswer maps the model's answer onto a concrete content
// type, accepting known synonyms.
func parseClassifierAnswer(answer string) (domain.ContentType, error) {
	switch ct := domain.ContentType(answer); ct {
	case domain.TypeHTML, domain.TypeMarkdown, domain.TypeURL, domain.TypeImage:
		return ct, nil
	}
	if ct, ok := synonyms[answer]; ok {
		return ct, nil
	}
	return "", domain.NewClassifierError(fmt.Errorf("unrecognized classification %q", answer))
}
