package pipeline

import (
	"regexp"
	"strconv"
	"strings"
)

// Kind identifies what a protected span holds.
type Kind string

// Span kinds, in the order they are usually created.
const (
	KindCodeFence  Kind = "CODEFENCE"
	KindInlineCode Kind = "INLINE"
	KindLink       Kind = "LINK"
	KindMath       Kind = "MATH"
	KindInlineMath Kind = "INL"
)

// Sentinel escape characters use the Private Use Area, like the highlight
// markers of the preview renderer. Once escaped, the document contains no
// '@' at all, so any "@@" left in it belongs to a placeholder.
const (
	escapeLead = "\uE011"
	escapeAt   = "\uE012"
)

var (
	placeholderPattern = regexp.MustCompile(`@@(CODEFENCE|INLINE|LINK|MATH|INL)_(\d+)@@`)

	// Bare and angle-bracket URLs. Parentheses are excluded so a URL inside a
	// prose parenthetical does not swallow the closing paren.
	bareURLPattern = regexp.MustCompile("https?://[^\\s<>()\\[\\]{}\"'`]+")

	sentinelEscaper   = strings.NewReplacer(escapeLead, escapeLead+escapeLead, "@", escapeLead+escapeAt)
	sentinelUnescaper = strings.NewReplacer(escapeLead+escapeLead, escapeLead, escapeLead+escapeAt, "@")
)

// Span is a verbatim region of the document replaced by a placeholder.
type Span struct {
	Kind Kind
	Text string
}

// Table records protected spans in creation order; a span's index is the
// number in its placeholder. One Table serves one normalization call and is
// not safe for concurrent use.
type Table struct {
	spans []Span
}

// NewTable returns an empty Table.
func NewTable() *Table {
	return &Table{}
}

// Len returns the number of recorded spans.
func (t *Table) Len() int {
	return len(t.spans)
}

// Span returns the span with the given index.
func (t *Table) Span(i int) (Span, bool) {
	if i < 0 || i >= len(t.spans) {
		return Span{}, false
	}
	return t.spans[i], true
}

// Add records text and returns the placeholder standing in for it.
func (t *Table) Add(kind Kind, text string) string {
	t.spans = append(t.spans, Span{Kind: kind, Text: text})
	return Placeholder(kind, len(t.spans)-1)
}

// Placeholder formats the token for the span at index.
func Placeholder(kind Kind, index int) string {
	return "@@" + string(kind) + "_" + strconv.Itoa(index) + "@@"
}

// HasPlaceholder reports whether s contains any placeholder token.
func HasPlaceholder(s string) bool {
	return placeholderPattern.MatchString(s)
}

// Restore replaces every placeholder with its recorded text.
func (t *Table) Restore(doc string) string {
	return t.restore(doc, nil)
}

// RestoreKinds replaces only placeholders of the given kinds. Placeholders of
// other kinds nested inside restored text stay in place.
func (t *Table) RestoreKinds(doc string, kinds ...Kind) string {
	want := make(map[Kind]bool, len(kinds))
	for _, k := range kinds {
		want[k] = true
	}
	return t.restore(doc, want)
}

// Rewrite passes the text of every kind placeholder in doc through fn. A
// changed text is recorded as a new span and its placeholder replaces the
// old one; recorded spans are never modified.
func (t *Table) Rewrite(doc string, kind Kind, fn func(string) string) string {
	want := map[Kind]bool{kind: true}
	return placeholderPattern.ReplaceAllStringFunc(doc, func(token string) string {
		span, ok := t.lookup(token, want)
		if !ok {
			return token
		}
		text := fn(span.Text)
		if text == span.Text {
			return token
		}
		return t.Add(kind, text)
	})
}

func (t *Table) restore(doc string, want map[Kind]bool) string {
	// A span can hold placeholders of earlier spans. Each round peels one
	// level, so len(spans)+1 rounds always suffice.
	for range len(t.spans) + 1 {
		changed := false
		doc = placeholderPattern.ReplaceAllStringFunc(doc, func(token string) string {
			span, ok := t.lookup(token, want)
			if !ok {
				return token
			}
			changed = true
			return span.Text
		})
		if !changed {
			break
		}
	}
	return doc
}

func (t *Table) lookup(token string, want map[Kind]bool) (Span, bool) {
	m := placeholderPattern.FindStringSubmatch(token)
	if m == nil {
		return Span{}, false
	}
	i, err := strconv.Atoi(m[2])
	if err != nil {
		return Span{}, false
	}
	span, ok := t.Span(i)
	if !ok || span.Kind != Kind(m[1]) {
		return Span{}, false
	}
	if want != nil && !want[span.Kind] {
		return Span{}, false
	}
	return span, true
}

// escapeSentinels rewrites every '@' so input text can never form a
// placeholder. The second result reports whether anything was escaped.
func escapeSentinels(doc string) (string, bool) {
	if !strings.ContainsAny(doc, "@"+escapeLead) {
		return doc, false
	}
	return sentinelEscaper.Replace(doc), true
}

// unescapeSentinels reverses escapeSentinels.
func unescapeSentinels(doc string) string {
	return sentinelUnescaper.Replace(doc)
}

// ---------------------------------------------------------------------------
// Code and link protection
// ---------------------------------------------------------------------------

// ProtectCode masks fenced code blocks, inline code spans and link targets,
// first to last. Fences labeled latex, tex or math are left in place for
// ConvertMathFences. An opening fence without a matching close is ordinary
// text.
func (t *Table) ProtectCode(doc string) string {
	lines := strings.SplitAfter(doc, "\n")

	var out, prose strings.Builder
	flush := func() {
		out.WriteString(t.protectInlineCode(prose.String()))
		prose.Reset()
	}

	for i := 0; i < len(lines); i++ {
		f, ok := parseFenceOpen(lines[i])
		if !ok {
			prose.WriteString(lines[i])
			continue
		}
		end := f.findClose(lines, i+1)
		if end < 0 {
			prose.WriteString(lines[i])
			continue
		}

		flush()
		block := strings.Join(lines[i:end+1], "")
		if isMathLang(f.lang()) {
			out.WriteString(block)
		} else {
			body, eol := splitEOL(block)
			out.WriteString(t.Add(KindCodeFence, body) + eol)
		}
		i = end
	}
	flush()

	return out.String()
}

// protectInlineCode masks backtick code spans. A span closes on a run of the
// same number of backticks on the same line.
func (t *Table) protectInlineCode(s string) string {
	if !strings.Contains(s, "`") {
		return t.protectLinks(s)
	}

	var out strings.Builder
	last := 0
	for i := 0; i < len(s); {
		switch s[i] {
		case '\\':
			i += 2
			continue
		case '`':
			n := runLength(s, i, '`')
			end := findBacktickClose(s, i+n, n)
			if end < 0 {
				i += n
				continue
			}
			out.WriteString(t.protectLinks(s[last:i]))
			out.WriteString(t.Add(KindInlineCode, s[i:end+n]))
			i = end + n
			last = i
			continue
		}
		i++
	}
	out.WriteString(t.protectLinks(s[last:]))

	return out.String()
}

func findBacktickClose(s string, from, n int) int {
	for i := from; i < len(s); {
		switch s[i] {
		case '\n':
			return -1
		case '`':
			m := runLength(s, i, '`')
			if m == n {
				return i
			}
			i += m
			continue
		}
		i++
	}
	return -1
}

// protectLinks masks Markdown link targets "](...)" and bare URLs.
func (t *Table) protectLinks(s string) string {
	if !strings.Contains(s, "](") && !strings.Contains(s, "://") {
		return s
	}

	var out strings.Builder
	last := 0
	for i := 0; i+1 < len(s); i++ {
		if s[i] != ']' || s[i+1] != '(' {
			continue
		}
		end := matchParen(s, i+1)
		if end < 0 {
			continue
		}
		out.WriteString(t.protectURLs(s[last : i+1]))
		out.WriteString(t.Add(KindLink, s[i+1:end+1]))
		last = end + 1
		i = end
	}
	out.WriteString(t.protectURLs(s[last:]))

	return out.String()
}

func (t *Table) protectURLs(s string) string {
	return bareURLPattern.ReplaceAllStringFunc(s, func(url string) string {
		trimmed := strings.TrimRight(url, ".,;:!?")
		return t.Add(KindLink, trimmed) + url[len(trimmed):]
	})
}

// matchParen returns the index of the ')' balancing the '(' at open, or -1
// when the line ends first.
func matchParen(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '\n':
			return -1
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// ---------------------------------------------------------------------------
// Math protection
// ---------------------------------------------------------------------------

// ProtectMath masks existing display math as MATH spans and inline math as
// INL spans. Inline math holding a LaTeX environment is recorded in display
// form.
func (t *Table) ProtectMath(doc string) string {
	if !strings.Contains(doc, "$") {
		return doc
	}

	var out strings.Builder
	for _, seg := range splitMath(doc) {
		switch seg.kind {
		case segmentDisplay:
			out.WriteString(t.Add(KindMath, seg.text))
		case segmentInline:
			inner := seg.text[1 : len(seg.text)-1]
			if strings.Contains(inner, `\begin{`) {
				out.WriteString(t.Add(KindMath, "$$"+strings.TrimSpace(inner)+"$$"))
			} else {
				out.WriteString(t.Add(KindInlineMath, seg.text))
			}
		default:
			out.WriteString(seg.text)
		}
	}
	return out.String()
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// runLength counts consecutive c bytes starting at i.
func runLength(s string, i int, c byte) int {
	n := 0
	for i+n < len(s) && s[i+n] == c {
		n++
	}
	return n
}

// trailingRun counts consecutive c bytes at the end of s.
func trailingRun(s string, c byte) int {
	n := 0
	for n < len(s) && s[len(s)-1-n] == c {
		n++
	}
	return n
}

// splitEOL separates a trailing line ending from s.
func splitEOL(s string) (body, eol string) {
	if strings.HasSuffix(s, "\n") {
		return s[:len(s)-1], "\n"
	}
	return s, ""
}
