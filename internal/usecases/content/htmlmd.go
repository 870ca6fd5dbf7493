package content

import (
	"fmt"
	"regexp"
	"strings"
)

// The HTML->Markdown converter runs when a render result is cached so the
// agent can re-read what it displayed. It is rule-driven and independent of
// the Markdown->HTML rules: the two directions are asymmetric on purpose.
var (
	scriptRe  = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script>`)
	styleRe   = regexp.MustCompile(`(?is)<style\b[^>]*>.*?</style>`)
	commentRe = regexp.MustCompile(`(?s)<!--.*?-->`)
	titleRe   = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	wrapperRe = regexp.MustCompile(`(?i)</?(?:html|body|head)[^>]*>`)
	voidTagRe = regexp.MustCompile(`(?i)<(?:meta|link|input|source|track|wbr)\b[^>]*/?>`)

	headingRe = regexp.MustCompile(`(?is)<h([1-6])[^>]*>(.*?)</h[1-6]>`)
	strongRe  = regexp.MustCompile(`(?is)<(?:strong|b)\b[^>]*>(.*?)</(?:strong|b)>`)
	emRe      = regexp.MustCompile(`(?is)<(?:em|i)\b[^>]*>(.*?)</(?:em|i)>`)
	preCodeRe = regexp.MustCompile(`(?is)<pre[^>]*><code(?:\s+class="language-([^"]*)")?[^>]*>(.*?)</code></pre>`)
	codeRe    = regexp.MustCompile(`(?is)<code[^>]*>(.*?)</code>`)
	anchorRe  = regexp.MustCompile(`(?is)<a\b[^>]*href="([^"]*)"[^>]*>(.*?)</a>`)
	quoteTag  = regexp.MustCompile(`(?is)<blockquote[^>]*>(.*?)</blockquote>`)
	buttonRe  = regexp.MustCompile(`(?is)<button\b[^>]*>(.*?)</button>`)
	listRe    = regexp.MustCompile(`(?is)<ul[^>]*>(.*?)</ul>`)
	itemRe    = regexp.MustCompile(`(?is)<li[^>]*>(.*?)</li>`)
	tableRe   = regexp.MustCompile(`(?is)<table[^>]*>(.*?)</table>`)
	rowRe     = regexp.MustCompile(`(?is)<tr[^>]*>(.*?)</tr>`)
	cellRe    = regexp.MustCompile(`(?is)<t[hd][^>]*>(.*?)</t[hd]>`)
	paraRe    = regexp.MustCompile(`(?is)<p[^>]*>(.*?)</p>`)
	breakRe   = regexp.MustCompile(`(?i)<br\s*/?>|<hr\s*/?>`)
	anyTagRe  = regexp.MustCompile(`(?s)<[^>]+>`)

	blankRunsRe = regexp.MustCompile(`\n{4,}`)
)

// HTMLToMarkdown converts an HTML document or fragment to markdown.
func HTMLToMarkdown(input string) string {
	out := preprocessHTML(input)

	out = preCodeRe.ReplaceAllStringFunc(out, func(m string) string {
		sub := preCodeRe.FindStringSubmatch(m)
		lang, code := sub[1], unescapeEntities(sub[2])
		return fmt.Sprintf("\n```%s\n%s\n```\n", lang, strings.Trim(code, "\n"))
	})

	out = headingRe.ReplaceAllStringFunc(out, func(m string) string {
		sub := headingRe.FindStringSubmatch(m)
		level := int(sub[1][0] - '0')
		return "\n" + strings.Repeat("#", level) + " " + strings.TrimSpace(stripTags(sub[2])) + "\n"
	})

	out = tableRe.ReplaceAllStringFunc(out, convertTable)

	out = strongRe.ReplaceAllString(out, "**$1**")
	out = emRe.ReplaceAllString(out, "*$1*")
	out = codeRe.ReplaceAllString(out, "`$1`")
	out = buttonRe.ReplaceAllStringFunc(out, func(m string) string {
		sub := buttonRe.FindStringSubmatch(m)
		return "**[" + strings.TrimSpace(stripTags(sub[1])) + "]**"
	})
	out = anchorRe.ReplaceAllString(out, "[$2]($1)")

	out = quoteTag.ReplaceAllStringFunc(out, func(m string) string {
		sub := quoteTag.FindStringSubmatch(m)
		var b strings.Builder
		b.WriteString("\n")
		for _, line := range strings.Split(strings.TrimSpace(stripTags(sub[1])), "\n") {
			b.WriteString("> " + strings.TrimSpace(line) + "\n")
		}
		return b.String()
	})

	out = listRe.ReplaceAllStringFunc(out, func(m string) string {
		sub := listRe.FindStringSubmatch(m)
		var b strings.Builder
		b.WriteString("\n")
		for _, item := range itemRe.FindAllStringSubmatch(sub[1], -1) {
			b.WriteString("- " + strings.TrimSpace(stripTags(item[1])) + "\n")
		}
		return b.String()
	})

	out = paraRe.ReplaceAllString(out, "\n$1\n")
	out = breakRe.ReplaceAllString(out, "\n")
	out = stripTags(out)
	out = unescapeEntities(out)

	return postprocessMarkdown(out)
}

// preprocessHTML strips non-content markup and promotes the document title
// to a top-level heading.
func preprocessHTML(input string) string {
	out := scriptRe.ReplaceAllString(input, "")
	out = styleRe.ReplaceAllString(out, "")
	out = commentRe.ReplaceAllString(out, "")
	out = titleRe.ReplaceAllString(out, "<h1>$1</h1>")
	out = wrapperRe.ReplaceAllString(out, "")
	out = voidTagRe.ReplaceAllString(out, "")
	return out
}

// convertTable renders a table as a header row, a separator row, and one
// line per data row. Cell pipes are escaped so they survive as literals.
func convertTable(m string) string {
	sub := tableRe.FindStringSubmatch(m)
	rows := rowRe.FindAllStringSubmatch(sub[1], -1)
	if len(rows) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n")
	for i, row := range rows {
		cells := cellRe.FindAllStringSubmatch(row[1], -1)
		if len(cells) == 0 {
			continue
		}
		b.WriteString("|")
		for _, cell := range cells {
			text := strings.TrimSpace(stripTags(cell[1]))
			text = strings.ReplaceAll(text, "|", `\|`)
			b.WriteString(" " + text + " |")
		}
		b.WriteString("\n")
		if i == 0 {
			b.WriteString("|")
			b.WriteString(strings.Repeat(" --- |", len(cells)))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func stripTags(s string) string {
	return anyTagRe.ReplaceAllString(s, "")
}

func unescapeEntities(s string) string {
	replacer := strings.NewReplacer(
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
		"&nbsp;", " ",
		"&amp;", "&",
	)
	return replacer.Replace(s)
}

// postprocessMarkdown collapses runs of blank lines, trims trailing
// whitespace per line, and trims blank lines at both ends of the document.
func postprocessMarkdown(s string) string {
	s = blankRunsRe.ReplaceAllString(s, "\n\n\n")

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.Trim(strings.Join(lines, "\n"), "\n")
}
