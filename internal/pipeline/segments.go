package pipeline

import "strings"

type segmentKind int

const (
	segmentProse segmentKind = iota
	segmentInline
	segmentDisplay
)

// segment is a run of the document. Math segments keep their delimiters.
type segment struct {
	kind segmentKind
	text string
}

// splitMath cuts doc into prose, inline math ($...$) and display math
// ($$...$$). A backslash escapes the next character. Inline math closes on
// the same line, never on a '$' followed by a digit ("$5 and $10" stays
// prose). A '$' preceded by whitespace closes only when the opener was
// followed by whitespace too, or when the content is a single token ("$y $").
// Unclosed delimiters are prose.
func splitMath(doc string) []segment {
	var segs []segment
	last := 0
	emit := func(kind segmentKind, start, end int) {
		if start > last {
			segs = append(segs, segment{kind: segmentProse, text: doc[last:start]})
		}
		segs = append(segs, segment{kind: kind, text: doc[start:end]})
		last = end
	}

	for i := 0; i < len(doc); {
		switch {
		case doc[i] == '\\':
			i += 2
		case strings.HasPrefix(doc[i:], "$$"):
			end := findDisplayClose(doc, i+2)
			if end < 0 {
				i += 2
				continue
			}
			emit(segmentDisplay, i, end+2)
			i = end + 2
		case doc[i] == '$':
			end := findInlineClose(doc, i+1)
			if end < 0 {
				i++
				continue
			}
			emit(segmentInline, i, end+1)
			i = end + 1
		default:
			i++
		}
	}
	if last < len(doc) {
		segs = append(segs, segment{kind: segmentProse, text: doc[last:]})
	}
	return segs
}

func findDisplayClose(doc string, from int) int {
	for i := from; i < len(doc); i++ {
		switch {
		case doc[i] == '\\':
			i++
		case strings.HasPrefix(doc[i:], "$$"):
			return i
		}
	}
	return -1
}

func findInlineClose(doc string, from int) int {
	if from >= len(doc) {
		return -1
	}
	padded := isBlank(doc[from])
	hasContent := false

	for i := from; i < len(doc); i++ {
		switch c := doc[i]; {
		case c == '\\':
			if i+1 < len(doc) && doc[i+1] == '\n' {
				return -1
			}
			hasContent = true
			i++
		case c == '\n':
			return -1
		case c == '$':
			if !hasContent {
				return -1
			}
			if i+1 < len(doc) && isDigit(doc[i+1]) {
				return -1
			}
			if isBlank(doc[i-1]) && !padded && strings.ContainsAny(strings.TrimSpace(doc[from:i]), " \t") {
				return -1
			}
			return i
		case !isBlank(c):
			hasContent = true
		}
	}
	return -1
}

// mapMath rewrites every math segment with fn and keeps prose as is.
func mapMath(doc string, fn func(segment) string) string {
	if !strings.Contains(doc, "$") {
		return doc
	}
	var out strings.Builder
	for _, seg := range splitMath(doc) {
		if seg.kind == segmentProse {
			out.WriteString(seg.text)
			continue
		}
		out.WriteString(fn(seg))
	}
	return out.String()
}

func isBlank(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
