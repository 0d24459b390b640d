package pipeline

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	// Blockquote or list markers opening a line. Display math behind one is
	// container content and is left where it is.
	containerPrefixPattern = regexp.MustCompile(`^[ \t]*(?:(?:>[ \t]*)+|(?:[-*+]|\d+[.)])[ \t]+)$`)

	mathKinds = map[Kind]bool{KindMath: true, KindInlineMath: true}
)

// NormalizeSpacing tidies whitespace around the math in doc. Repeated dollar
// runs collapse to "$$"; inline math loses inner padding and is separated
// from adjacent words by one space; multi-line display math sits on its own
// lines with one blank line before and after. Single-line display math is
// left as is, unless collapseSingleLine folds one-line bodies onto the
// delimiters.
func NormalizeSpacing(doc string, collapseSingleLine bool) string {
	if !strings.Contains(doc, "$") {
		return doc
	}
	doc, escaped := escapeSentinels(doc)

	t := NewTable()
	doc = t.SpaceMath(t.ProtectMath(collapseDollarRuns(doc)), collapseSingleLine)

	if escaped {
		doc = unescapeSentinels(doc)
	}
	return doc
}

// collapseDollarRuns folds runs of three or more '$' into "$$". A run of
// four that closes one display block and opens the next is kept, so the two
// blocks stay apart.
func collapseDollarRuns(doc string) string {
	if !strings.Contains(doc, "$$$") {
		return doc
	}

	var out strings.Builder
	open := false
	for i := 0; i < len(doc); {
		switch {
		case doc[i] == '\\' && i+1 < len(doc):
			out.WriteString(doc[i : i+2])
			i += 2
			continue
		case doc[i] != '$':
			out.WriteByte(doc[i])
			i++
			continue
		}

		n := runLength(doc, i, '$')
		switch {
		case n == 1:
			out.WriteByte('$')
		case n == 4 && open && findDisplayClose(doc, i+4) >= 0:
			out.WriteString("$$$$")
		default:
			out.WriteString("$$")
			open = !open
		}
		i += n
	}
	return out.String()
}

// SpaceMath writes the math regions behind the MATH and INL placeholders of
// doc back in place and tidies the whitespace around them. Other
// placeholders stay. Regions come from the table, so two regions that touch
// are never read back as one "$$" delimiter: they get a space between them,
// as does a stray '$' touching a region.
func (t *Table) SpaceMath(doc string, collapseSingleLine bool) string {
	if !strings.Contains(doc, "@@") {
		return doc
	}
	segs := separateRegions(t.regions(doc))
	spaceInlineMath(segs)
	return placeDisplayBlocks(segs, collapseSingleLine)
}

// regions cuts doc into prose and the math regions behind its placeholders.
func (t *Table) regions(doc string) []segment {
	var segs []segment
	last := 0
	for _, m := range placeholderPattern.FindAllStringIndex(doc, -1) {
		span, ok := t.lookup(doc[m[0]:m[1]], mathKinds)
		if !ok {
			continue
		}
		if m[0] > last {
			segs = append(segs, segment{kind: segmentProse, text: doc[last:m[0]]})
		}
		kind := segmentInline
		if span.Kind == KindMath {
			kind = segmentDisplay
		}
		segs = append(segs, segment{kind: kind, text: span.Text})
		last = m[1]
	}
	if last < len(doc) {
		segs = append(segs, segment{kind: segmentProse, text: doc[last:]})
	}
	return segs
}

// separateRegions puts a space between math regions that touch, and between
// a region and a '$' of the prose next to it.
func separateRegions(segs []segment) []segment {
	out := make([]segment, 0, len(segs))
	for _, seg := range segs {
		if n := len(out); n > 0 {
			prev := &out[n-1]
			switch {
			case prev.kind != segmentProse && seg.kind != segmentProse:
				out = append(out, segment{kind: segmentProse, text: " "})
			case prev.kind != segmentProse && strings.HasPrefix(seg.text, "$"):
				seg.text = " " + seg.text
			case seg.kind != segmentProse && strings.HasSuffix(prev.text, "$"):
				prev.text += " "
			}
		}
		out = append(out, seg)
	}
	return out
}

// placeDisplayBlocks joins segs, rewriting multi-line display blocks as
// "$$\n...\n$$" surrounded by exactly one blank line, except at the
// document edges and inside containers.
func placeDisplayBlocks(segs []segment, collapseSingleLine bool) string {
	var out strings.Builder
	blankAfter := false

	for _, seg := range segs {
		text := seg.text
		if blankAfter {
			if seg.kind == segmentProse {
				text = openBlankLine(text)
			} else {
				out.WriteString("\n\n")
			}
			blankAfter = false
		}

		if seg.kind != segmentDisplay || !strings.Contains(seg.text, "\n") {
			out.WriteString(text)
			continue
		}
		body := displayBody(seg.text[2 : len(seg.text)-2])
		if body == "" {
			out.WriteString(text)
			continue
		}

		prefix := currentLine(out.String())
		if containerPrefixPattern.MatchString(prefix) || (prefix != "" && strings.TrimSpace(prefix) == "") {
			out.WriteString(text)
			continue
		}

		before := out.String()
		out.Reset()
		out.WriteString(closeBlankLine(before))
		if collapseSingleLine && !strings.Contains(body, "\n") {
			out.WriteString("$$" + body + "$$")
		} else {
			out.WriteString("$$\n" + body + "\n$$")
		}
		blankAfter = true
	}
	return out.String()
}

// displayBody trims a display block body: text sharing a line with a
// delimiter loses its padding, and blank edge lines go away.
func displayBody(inner string) string {
	lines := strings.Split(inner, "\n")
	lines[0] = strings.TrimSpace(lines[0])
	lines[len(lines)-1] = strings.TrimRight(lines[len(lines)-1], " \t")
	return trimBlankLines(strings.Join(lines, "\n"))
}

// currentLine returns the text after the last line break of s.
func currentLine(s string) string {
	return s[strings.LastIndexByte(s, '\n')+1:]
}

// closeBlankLine ends before with one blank line, unless it is empty.
func closeBlankLine(before string) string {
	trimmed := strings.TrimRight(before, " \t\n")
	if trimmed == "" {
		return ""
	}
	return trimmed + "\n\n"
}

// openBlankLine starts the prose following a display block with one blank
// line, unless only whitespace remains in the document.
func openBlankLine(text string) string {
	rest := strings.TrimLeft(text, " \t\n")
	if rest == "" {
		return text
	}
	return "\n\n" + rest
}

// spaceInlineMath trims inline math and fixes the prose around it in place.
func spaceInlineMath(segs []segment) {
	for i := range segs {
		switch segs[i].kind {
		case segmentInline:
			inner := strings.TrimSpace(segs[i].text[1 : len(segs[i].text)-1])
			segs[i].text = "$" + inner + "$"
		case segmentProse:
			afterMath := i > 0 && segs[i-1].kind == segmentInline
			if afterMath {
				segs[i].text = spaceAfterMath(segs[i].text)
			}
			if i+1 < len(segs) && segs[i+1].kind == segmentInline {
				lineStart := i == 0 || strings.Contains(segs[i].text, "\n")
				segs[i].text = spaceBeforeMath(segs[i].text, afterMath, lineStart)
			}
		}
	}
}

// spaceAfterMath fixes the start of prose following inline math.
func spaceAfterMath(text string) string {
	if text == "" {
		return text
	}
	if r, _ := utf8.DecodeRuneInString(text); isWordRune(r) {
		return " " + text
	}
	rest := strings.TrimLeft(text, " \t")
	if rest == text || rest == "" || rest[0] == '\n' {
		return text
	}
	return " " + rest
}

// spaceBeforeMath fixes the end of prose preceding inline math. Indentation
// is kept, and a hyphen bullet at line start gets exactly one space.
func spaceBeforeMath(text string, afterMath, lineStart bool) string {
	if text == "" {
		return text
	}
	if r, _ := utf8.DecodeLastRuneInString(text); isWordRune(r) {
		return text + " "
	}
	body := strings.TrimRight(text, " \t")
	switch {
	case lineStart && strings.TrimSpace(currentLine(body)) == "-":
		return body + " "
	case body == text:
		return text
	case body == "":
		if afterMath {
			return " "
		}
		return text
	case strings.HasSuffix(body, "\n"):
		return text
	}
	return body + " "
}
