package pipeline

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// maxInlineParenLen bounds the spans PromoteInlineParens looks at.
	maxInlineParenLen = 159

	// minOuterMathLen is the shortest trimmed interior the outer scan promotes.
	minOuterMathLen = 5
)

var (
	// A letter or digit at a word start applied to a short argument list,
	// as in f(x), a(n+1) or 2(3).
	tokenParenPattern = regexp.MustCompile(`\b([A-Za-z0-9])\(\s*([A-Za-z0-9 ,+\-*/^_=.:;\\]{1,60}?)\s*\)`)

	doubleParenPattern = regexp.MustCompile(`\(\(([^()\n]{1,159})\)\)`)
	singleParenPattern = regexp.MustCompile(`\(([^()\n]{1,159})\)`)
)

// Promoter turns parenthesized math into canonical math regions. Every
// region it creates is recorded in the table at once, so later steps see a
// placeholder instead of fresh delimiters.
type Promoter struct {
	table      *Table
	classifier *Classifier

	// created maps placeholders of regions made by this promoter to their
	// bare content, so an enclosing candidate can absorb them.
	created map[string]string
}

// NewPromoter returns a Promoter recording into t.
func NewPromoter(t *Table, c *Classifier) *Promoter {
	return &Promoter{table: t, classifier: c, created: make(map[string]string)}
}

// Promote runs the token-paren rewrite, the outer scan and the inline-paren
// rewrite, in that order.
func (p *Promoter) Promote(doc string) string {
	if !strings.Contains(doc, "(") {
		return doc
	}
	doc = p.PromoteTokenParens(doc)
	doc = p.PromoteOuterParens(doc)
	return p.PromoteInlineParens(doc)
}

// PromoteTokenParens wraps f(x)-like shapes into inline math. A shape
// running into a letter or digit, as in "f(x)2", is left alone.
func (p *Promoter) PromoteTokenParens(doc string) string {
	matches := tokenParenPattern.FindAllStringSubmatchIndex(doc, -1)
	if matches == nil {
		return doc
	}

	var out strings.Builder
	last := 0
	for _, m := range matches {
		if r, _ := utf8.DecodeRuneInString(doc[m[1]:]); isWordRune(r) {
			continue
		}
		out.WriteString(doc[last:m[0]])
		out.WriteString(p.record(doc[m[2]:m[3]] + "(" + doc[m[4]:m[5]] + ")"))
		last = m[1]
	}
	out.WriteString(doc[last:])

	return out.String()
}

type parenPair struct {
	start, end int
}

// matchParenPairs pairs unescaped parentheses with an index stack. Unmatched
// parens are skipped.
func matchParenPairs(doc string) []parenPair {
	var stack []int
	var pairs []parenPair
	for i := 0; i < len(doc); i++ {
		switch doc[i] {
		case '\\':
			i++
		case '(':
			stack = append(stack, i)
		case ')':
			if len(stack) == 0 {
				continue
			}
			open := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			pairs = append(pairs, parenPair{start: open, end: i})
		}
	}
	return pairs
}

// PromoteOuterParens promotes the outermost parenthesized spans whose
// interior reads as a formula: at least five characters with an operator or
// a LaTeX token, no '$', no blank line and no foreign placeholder.
func (p *Promoter) PromoteOuterParens(doc string) string {
	var candidates []parenPair
	for _, pair := range matchParenPairs(doc) {
		if p.isOuterCandidate(p.absorb(doc[pair.start+1 : pair.end])) {
			candidates = append(candidates, pair)
		}
	}
	if len(candidates) == 0 {
		return doc
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].start != candidates[j].start {
			return candidates[i].start < candidates[j].start
		}
		return candidates[i].end > candidates[j].end
	})

	selected := make([]parenPair, 0, len(candidates))
	for _, c := range candidates {
		if n := len(selected); n > 0 && c.end <= selected[n-1].end {
			continue
		}
		selected = append(selected, c)
	}

	var out strings.Builder
	last := 0
	for _, s := range selected {
		out.WriteString(doc[last:s.start])
		out.WriteString(p.record(p.absorb(doc[s.start+1 : s.end])))
		last = s.end + 1
	}
	out.WriteString(doc[last:])

	return out.String()
}

func (p *Promoter) isOuterCandidate(inner string) bool {
	if strings.Contains(inner, "$") || strings.Contains(inner, "@@") || strings.Contains(inner, "\n\n") {
		return false
	}
	trimmed := strings.TrimSpace(inner)
	if len(trimmed) < minOuterMathLen {
		return false
	}
	if !HasOperator(trimmed) && !HasLatexToken(trimmed) {
		return false
	}
	return !p.classifier.ReadsAsProse(trimmed)
}

// PromoteInlineParens handles the remaining short (( )) and ( ) spans on a
// single line using the classifier. Spans glued to a word, as in "item(1)",
// are left alone.
func (p *Promoter) PromoteInlineParens(doc string) string {
	doc = p.replaceParens(doc, doubleParenPattern, func(inner string) string {
		return "(" + inner + ")"
	})
	return p.replaceParens(doc, singleParenPattern, func(inner string) string {
		return inner
	})
}

func (p *Promoter) replaceParens(doc string, pattern *regexp.Regexp, wrap func(string) string) string {
	matches := pattern.FindAllStringSubmatchIndex(doc, -1)
	if matches == nil {
		return doc
	}

	var out strings.Builder
	last := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		inner := strings.TrimSpace(doc[m[2]:m[3]])
		if gluedToWord(doc, start, end) || !p.isInlineCandidate(inner) {
			continue
		}
		out.WriteString(doc[last:start])
		out.WriteString(p.record(wrap(inner)))
		last = end
	}
	out.WriteString(doc[last:])

	return out.String()
}

func (p *Promoter) isInlineCandidate(s string) bool {
	if s == "" || strings.ContainsAny(s, "[]$") || strings.Contains(s, "@@") {
		return false
	}
	if IsVariable(s) {
		return true
	}
	if IsBareWord(s) || p.classifier.ReadsAsProse(s) {
		return false
	}
	return p.classifier.LooksLikeMath(s)
}

// gluedToWord reports whether doc[start:end] touches a letter or digit on
// either side.
func gluedToWord(doc string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(doc[:start])
		if isWordRune(r) {
			return true
		}
	}
	if end < len(doc) {
		r, _ := utf8.DecodeRuneInString(doc[end:])
		if isWordRune(r) {
			return true
		}
	}
	return false
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// absorb replaces placeholders of regions made by this promoter with their
// bare content.
func (p *Promoter) absorb(s string) string {
	if len(p.created) == 0 || !strings.Contains(s, "@@") {
		return s
	}
	return placeholderPattern.ReplaceAllStringFunc(s, func(token string) string {
		if content, ok := p.created[token]; ok {
			return content
		}
		return token
	})
}

// record stores content as a new math region and returns its placeholder.
// Content spanning lines or opening an environment becomes display math.
func (p *Promoter) record(content string) string {
	content = strings.TrimSpace(content)

	var token string
	switch {
	case strings.Contains(content, "\n"):
		token = p.table.Add(KindMath, "$$\n"+content+"\n$$")
	case strings.Contains(content, `\begin{`):
		token = p.table.Add(KindMath, "$$"+content+"$$")
	default:
		token = p.table.Add(KindInlineMath, "$"+content+"$")
	}
	p.created[token] = content
	return token
}
