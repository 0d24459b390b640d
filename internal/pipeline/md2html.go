package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// ErrHTMLConversion indicates HTML conversion failed.
var ErrHTMLConversion = errors.New("HTML conversion failed")

// htmlTemplate wraps Goldmark's fragment output in a complete HTML5 document
// that typesets \( \) and \[ \] with MathJax.
const htmlTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
<script>window.MathJax = {tex: {inlineMath: [['\\(', '\\)']], displayMath: [['\\[', '\\]']]}};</script>
<script id="MathJax-script" async src="https://cdn.jsdelivr.net/npm/mathjax@3/es5/tex-chtml.js"></script>
</head>
<body>
%s
</body>
</html>`

// DefaultPreviewTitle is the document title when none is given.
const DefaultPreviewTitle = "Preview"

// HTMLConverter abstracts Markdown to HTML conversion.
type HTMLConverter interface {
	ToHTML(ctx context.Context, content string) (string, error)
}

// GoldmarkConverter renders normalized Markdown to HTML using goldmark.
// Math regions bypass goldmark so their underscores and backslashes survive.
type GoldmarkConverter struct {
	md    goldmark.Markdown
	title string
}

// NewGoldmarkConverter creates a GoldmarkConverter with GFM extensions and
// syntax highlighting.
func NewGoldmarkConverter(title string) *GoldmarkConverter {
	if title == "" {
		title = DefaultPreviewTitle
	}
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Footnote,
			highlighting.NewHighlighting(
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true),
				),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			gmhtml.WithXHTML(),
			// WithUnsafe is not needed: math is spliced in after rendering.
		),
	)
	return &GoldmarkConverter{md: md, title: title}
}

// ToHTML converts Markdown content to a standalone HTML5 document.
// Goldmark has no context support, so conversion runs in a goroutine and
// the caller stops waiting when ctx is done.
func (c *GoldmarkConverter) ToHTML(ctx context.Context, content string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	type result struct {
		html string
		err  error
	}

	done := make(chan result, 1)

	go func() {
		masked, table, escaped := maskMath(content)

		var buf bytes.Buffer
		if err := c.md.Convert([]byte(masked), &buf); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrHTMLConversion, err)}
			return
		}

		body := renderMath(buf.String(), table)
		if escaped {
			body = unescapeSentinels(body)
		}
		done <- result{html: fmt.Sprintf(htmlTemplate, html.EscapeString(c.title), body)}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.html, r.err
	}
}

// maskMath replaces math outside code with placeholders and leaves the rest
// of the Markdown intact.
func maskMath(content string) (string, *Table, bool) {
	doc, escaped := escapeSentinels(normalizeLineEndings(content))
	table := NewTable()
	doc = table.ProtectCode(doc)
	doc = table.ProtectMath(doc)
	doc = table.RestoreKinds(doc, KindCodeFence, KindInlineCode, KindLink)
	return doc, table, escaped
}

// renderMath swaps math placeholders in rendered HTML for MathJax markup.
func renderMath(body string, table *Table) string {
	return placeholderPattern.ReplaceAllStringFunc(body, func(token string) string {
		span, ok := table.lookup(token, nil)
		if !ok {
			return token
		}
		switch span.Kind {
		case KindMath:
			tex := strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(span.Text, "$$"), "$$"))
			return `<span class="math display">\[` + html.EscapeString(tex) + `\]</span>`
		case KindInlineMath:
			tex := strings.TrimSpace(span.Text[1 : len(span.Text)-1])
			return `<span class="math inline">\(` + html.EscapeString(tex) + `\)</span>`
		default:
			return html.EscapeString(span.Text)
		}
	})
}
