package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentcanvas/canvas-mcp-server/internal/domain"
)

func TestParseClassifierAnswer(t *testing.T) {
	tests := []struct {
		answer string
		want   domain.ContentType
	}{
		{"html", domain.TypeHTML},
		{"markdown", domain.TypeMarkdown},
		{"url", domain.TypeURL},
		{"image", domain.TypeImage},
		{"picture", domain.TypeImage},
		{"photo", domain.TypeImage},
		{"link", domain.TypeURL},
		{"website", domain.TypeURL},
		{"md", domain.TypeMarkdown},
		{"text", domain.TypeMarkdown},
	}

	for _, tc := range tests {
		t.Run(tc.answer, func(t *testing.T) {
			got, err := parseClassifierAnswer(tc.answer)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseClassifierAnswerUnrecognized(t *testing.T) {
	_, err := parseClassifierAnswer("spreadsheet")

	var classifierErr *domain.ClassifierError
	require.ErrorAs(t, err, &classifierErr)
	assert.Contains(t, err.Error(), "spreadsheet")
}
