// Package content resolves agent-supplied content specs into renderable
// HTML. It carries the two markdown conversion rule sets, the auto-type
// classifier, and the render cache.
package content

import (
	"fmt"
	"html"
	"regexp"
	"strings"
)

// The Markdown->HTML converter is deliberately minimal: a fixed set of
// pattern rules covering the markdown an agent typically sends. It does not
// handle nested lists or tables, and it is intentionally NOT the inverse of
// the HTML->Markdown rules in htmlmd.go.
var (
	fenceRe      = regexp.MustCompile("(?s)```([a-zA-Z0-9_+-]*)\n?(.*?)```")
	h3Re         = regexp.MustCompile(`(?m)^### (.+)$`)
	h2Re         = regexp.MustCompile(`(?m)^## (.+)$`)
	h1Re         = regexp.MustCompile(`(?m)^# (.+)$`)
	boldRe       = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	italicRe     = regexp.MustCompile(`\*([^*\n]+)\*`)
	inlineCodeRe = regexp.MustCompile("`([^`\n]+)`")
	linkRe       = regexp.MustCompile(`\[([^\]]*)\]\(([^)\s]+)\)`)
	quoteRe      = regexp.MustCompile(`(?m)^> ?(.*)$`)
	listItemRe   = regexp.MustCompile(`(?m)^[*-] (.+)$`)
	listBlockRe  = regexp.MustCompile(`(?:<li>.*</li>\n?)+`)
)

const codePlaceholder = "\x00code-block-%d\x00"

// MarkdownToHTML converts markdown text into a complete styled HTML
// document.
func MarkdownToHTML(markdown string) string {
	return documentShell(markdownBody(markdown))
}

// markdownBody converts markdown to an HTML fragment without the document
// shell.
func markdownBody(markdown string) string {
	// Pull fenced code blocks out first so no other rule rewrites code.
	var blocks []string
	out := fenceRe.ReplaceAllStringFunc(markdown, func(m string) string {
		sub := fenceRe.FindStringSubmatch(m)
		lang, code := sub[1], sub[2]
		var b strings.Builder
		if lang != "" {
			fmt.Fprintf(&b, `<pre><code class="language-%s">`, lang)
		} else {
			b.WriteString("<pre><code>")
		}
		b.WriteString(html.EscapeString(strings.TrimRight(code, "\n")))
		b.WriteString("</code></pre>")
		blocks = append(blocks, b.String())
		return fmt.Sprintf(codePlaceholder, len(blocks)-1)
	})

	out = h3Re.ReplaceAllString(out, "<h3>$1</h3>")
	out = h2Re.ReplaceAllString(out, "<h2>$1</h2>")
	out = h1Re.ReplaceAllString(out, "<h1>$1</h1>")
	out = boldRe.ReplaceAllString(out, "<strong>$1</strong>")
	out = italicRe.ReplaceAllString(out, "<em>$1</em>")
	out = inlineCodeRe.ReplaceAllString(out, "<code>$1</code>")
	out = linkRe.ReplaceAllString(out, `<a href="$2">$1</a>`)
	out = quoteRe.ReplaceAllString(out, "<blockquote>$1</blockquote>")
	out = listItemRe.ReplaceAllString(out, "<li>$1</li>")
	out = listBlockRe.ReplaceAllStringFunc(out, func(m string) string {
		return "<ul>\n" + m + "</ul>\n"
	})

	// Newlines that survived every block rule become explicit breaks,
	// except directly after a block-closing tag where a break would double
	// the spacing.
	lines := strings.Split(out, "\n")
	var b strings.Builder
	for i, line := range lines {
		b.WriteString(line)
		if i == len(lines)-1 {
			break
		}
		if isBlockLine(line) {
			b.WriteString("\n")
		} else {
			b.WriteString("<br>\n")
		}
	}

	result := b.String()
	for i, block := range blocks {
		result = strings.Replace(result, fmt.Sprintf(codePlaceholder, i), block, 1)
	}
	return result
}

func isBlockLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	for _, suffix := range []string{"</h1>", "</h2>", "</h3>", "</blockquote>", "</li>", "</ul>", "<ul>"} {
		if strings.HasSuffix(trimmed, suffix) {
			return true
		}
	}
	return strings.Contains(trimmed, codePlaceholder[:1])
}

// documentShell wraps an HTML fragment in the complete styled document the
// host window loads.
func documentShell(body string) string {
	return `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
body {
  font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
  max-width: 800px;
  margin: 2em auto;
  padding: 0 1em;
  line-height: 1.6;
  color: #24292e;
}
pre {
  background: #f6f8fa;
  padding: 1em;
  border-radius: 6px;
  overflow-x: auto;
}
code { font-family: "SFMono-Regular", Consolas, monospace; }
blockquote {
  border-left: 4px solid #dfe2e5;
  margin-left: 0;
  padding-left: 1em;
  color: #6a737d;
}
a { color: #0366d6; }
</style>
</head>
<body>
` + body + `
</body>
</html>`
}

// plainTextShell wraps raw text in a minimal preformatted viewer, escaping
// the content.
func plainTextShell(text string) string {
	return documentShell("<pre>" + html.EscapeString(text) + "</pre>")
}
