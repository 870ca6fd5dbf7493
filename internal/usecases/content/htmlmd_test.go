package content

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTMLToMarkdownHeadings(t *testing.T) {
	md := HTMLToMarkdown("<h1>One</h1><h2>Two</h2><h6>Six</h6>")

	assert.Contains(t, md, "# One")
	assert.Contains(t, md, "## Two")
	assert.Contains(t, md, "###### Six")
}

func TestHTMLToMarkdownTitlePromoted(t *testing.T) {
	md := HTMLToMarkdown("<html><head><title>My Page</title></head><body><p>body</p></body></html>")

	assert.Contains(t, md, "# My Page")
	assert.Contains(t, md, "body")
}

func TestHTMLToMarkdownStripsScriptAndStyle(t *testing.T) {
	md := HTMLToMarkdown(`<style>body { color: red; }</style><script>alert("x")</script><!-- note --><p>kept</p>`)

	assert.NotContains(t, md, "color")
	assert.NotContains(t, md, "alert")
	assert.NotContains(t, md, "note")
	assert.Contains(t, md, "kept")
}

func TestHTMLToMarkdownInlineRules(t *testing.T) {
	md := HTMLToMarkdown(`<p><strong>bold</strong> <b>also</b> <em>it</em> <code>x</code> <a href="https://example.com">site</a></p>`)

	assert.Contains(t, md, "**bold**")
	assert.Contains(t, md, "**also**")
	assert.Contains(t, md, "*it*")
	assert.Contains(t, md, "`x`")
	assert.Contains(t, md, "[site](https://example.com)")
}

func TestHTMLToMarkdownFencePreservesLanguage(t *testing.T) {
	md := HTMLToMarkdown(`<pre><code class="language-python">print(1)</code></pre>`)

	assert.Contains(t, md, "```python\nprint(1)\n```")
}

func TestHTMLToMarkdownListAndQuote(t *testing.T) {
	md := HTMLToMarkdown("<ul><li>first</li><li>second</li></ul><blockquote>quoted</blockquote>")

	assert.Contains(t, md, "- first")
	assert.Contains(t, md, "- second")
	assert.Contains(t, md, "> quoted")
}

func TestHTMLToMarkdownButton(t *testing.T) {
	md := HTMLToMarkdown(`<button onclick="go()">Press Me</button>`)

	assert.Contains(t, md, "**[Press Me]**")
}

func TestHTMLToMarkdownTable(t *testing.T) {
	md := HTMLToMarkdown(`<table>
<tr><th>Name</th><th>Qty</th></tr>
<tr><td>a|b</td><td>2</td></tr>
</table>`)

	assert.Contains(t, md, "| Name | Qty |")
	assert.Contains(t, md, "| --- | --- |")
	assert.Contains(t, md, `| a\|b | 2 |`)
}

func TestHTMLToMarkdownCollapsesBlankLines(t *testing.T) {
	md := HTMLToMarkdown("<p>a</p>\n\n\n\n\n\n<p>b</p>")

	assert.NotContains(t, md, "\n\n\n\n")
	assert.False(t, strings.HasPrefix(md, "\n"))
	assert.False(t, strings.HasSuffix(md, "\n"))
}

func TestHTMLToMarkdownEntities(t *testing.T) {
	md := HTMLToMarkdown("<p>a &lt; b &amp;&amp; c &gt; d</p>")

	assert.Contains(t, md, "a < b && c > d")
}

// Converting HTML to markdown and re-rendering it must keep heading text
// and the list item count, even though the exact formatting may differ.
func TestRoundTripPreservesStructure(t *testing.T) {
	original := `<html><body>
<h1>Report</h1>
<h2>Findings</h2>
<ul><li>alpha</li><li>beta</li><li>gamma</li></ul>
</body></html>`

	md := HTMLToMarkdown(original)
	rendered := MarkdownToHTML(md)

	assert.Contains(t, rendered, "<h1>Report</h1>")
	assert.Contains(t, rendered, "<h2>Findings</h2>")
	assert.Equal(t, 3, strings.Count(rendered, "<li>"))
}
