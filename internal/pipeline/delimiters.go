package pipeline

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Fence opener: up to three spaces, three or more backticks or tildes, and an
// optional info string.
var fenceOpenPattern = regexp.MustCompile("^ {0,3}(`{3,}|~{3,})[ \t]*(.*?)[ \t]*$")

// mathLangs are fence info strings whose body is LaTeX math.
var mathLangs = map[string]bool{"latex": true, "tex": true, "math": true}

type fence struct {
	marker byte
	size   int
	info   string
}

func parseFenceOpen(line string) (fence, bool) {
	m := fenceOpenPattern.FindStringSubmatch(strings.TrimRight(line, "\r\n"))
	if m == nil {
		return fence{}, false
	}
	if m[1][0] == '`' && strings.Contains(m[2], "`") {
		return fence{}, false
	}
	return fence{marker: m[1][0], size: len(m[1]), info: m[2]}, true
}

// closes reports whether line is a closing fence for f.
func (f fence) closes(line string) bool {
	s := strings.TrimSpace(line)
	if len(s) < f.size {
		return false
	}
	return runLength(s, 0, f.marker) == len(s)
}

func (f fence) findClose(lines []string, from int) int {
	for j := from; j < len(lines); j++ {
		if f.closes(lines[j]) {
			return j
		}
	}
	return -1
}

// lang returns the lowercased first word of the info string.
func (f fence) lang() string {
	fields := strings.Fields(f.info)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(strings.Trim(fields[0], "{}."))
}

func isMathLang(lang string) bool {
	return mathLangs[lang]
}

// ConvertMathFences rewrites fences labeled latex, tex or math into display
// math, dropping blank lines at the edges of the body. Empty fences and
// fences without a close are left alone.
func ConvertMathFences(doc string) string {
	if !strings.Contains(doc, "```") && !strings.Contains(doc, "~~~") {
		return doc
	}

	lines := strings.SplitAfter(doc, "\n")
	var out strings.Builder
	for i := 0; i < len(lines); i++ {
		f, ok := parseFenceOpen(lines[i])
		if !ok || !isMathLang(f.lang()) {
			out.WriteString(lines[i])
			continue
		}
		end := f.findClose(lines, i+1)
		if end < 0 {
			out.WriteString(lines[i])
			continue
		}

		body := trimBlankLines(strings.Join(lines[i+1:end], ""))
		if body == "" {
			out.WriteString(strings.Join(lines[i:end+1], ""))
		} else {
			_, eol := splitEOL(lines[end])
			out.WriteString("$$\n" + body + "\n$$" + eol)
		}
		i = end
	}
	return out.String()
}

// ConvertBackslashDisplay rewrites \[ ... \] into display math with the body
// on its own lines. Only a '[' after an odd run of backslashes opens, so the
// row spacing in "\\[3pt]" is never taken for a delimiter.
func ConvertBackslashDisplay(doc string) string {
	return convertBackslashPairs(doc, '[', ']', false, func(body string) string {
		return "$$\n" + body + "\n$$"
	})
}

// ConvertBackslashInline rewrites \( ... \) on a single line into inline
// math.
func ConvertBackslashInline(doc string) string {
	return convertBackslashPairs(doc, '(', ')', true, func(body string) string {
		return "$" + body + "$"
	})
}

func convertBackslashPairs(doc string, open, close byte, singleLine bool, wrap func(string) string) string {
	if !strings.Contains(doc, `\`+string(open)) {
		return doc
	}

	var out strings.Builder
	last := 0
	tail := "" // last text written
	for i := 0; i < len(doc); i++ {
		if doc[i] != '\\' {
			continue
		}
		n := runLength(doc, i, '\\')
		next := i + n
		if n%2 == 1 && next < len(doc) && doc[next] == open {
			start := next - 1
			end := findEscapedClose(doc, next+1, close, singleLine)
			if end >= 0 {
				body := strings.TrimSpace(doc[next+1 : end])
				if body != "" && !strings.Contains(body, "$") {
					if start > last {
						tail = doc[last:start]
						out.WriteString(tail)
					}
					region := wrap(body)
					if singleLine {
						region = padInline(tail, region, doc[end+2:])
					}
					out.WriteString(region)
					tail = region
					last = end + 2
					i = end + 1
					continue
				}
			}
		}
		i = next - 1
	}
	out.WriteString(doc[last:])

	return out.String()
}

// padInline keeps a new inline region off a '$' before it, and off a '$' or
// a word after it ("$a$5" would not close).
func padInline(before, region, after string) string {
	if strings.HasSuffix(before, "$") {
		region = " " + region
	}
	if r, _ := utf8.DecodeRuneInString(after); r == '$' || isWordRune(r) {
		region += " "
	}
	return region
}

// findEscapedClose returns the index of the backslash that starts the closing
// "\c", or -1.
func findEscapedClose(doc string, from int, c byte, singleLine bool) int {
	for i := from; i < len(doc); i++ {
		switch doc[i] {
		case '\n':
			if singleLine {
				return -1
			}
		case '\\':
			n := runLength(doc, i, '\\')
			if n%2 == 1 && i+n < len(doc) && doc[i+n] == c {
				return i + n - 1
			}
			i += n - 1
		}
	}
	return -1
}

// ConvertBracketBlocks rewrites paragraph-level blocks of the form
//
//	[
//	content
//	]
//
// into display math. The block must be preceded and followed by a blank line
// or the document boundary, and its content may not contain a blank line.
// When permissive is false the content must also look like math to c.
func ConvertBracketBlocks(doc string, permissive bool, c *Classifier) string {
	if !strings.Contains(doc, "[") {
		return doc
	}

	lines := strings.Split(doc, "\n")
	out := make([]string, 0, len(lines))
	for i := 0; i < len(lines); i++ {
		end := bracketBlockEnd(lines, i)
		if end < 0 {
			out = append(out, lines[i])
			continue
		}
		content := strings.TrimSpace(strings.Join(lines[i+1:end], "\n"))
		if strings.Contains(content, "$") || (!permissive && !c.LooksLikeMath(content)) {
			out = append(out, lines[i])
			continue
		}
		out = append(out, "$$", content, "$$")
		i = end
	}
	return strings.Join(out, "\n")
}

// bracketBlockEnd returns the index of the "]" line closing a block opened at
// lines[i], or -1 when lines[i] does not open an isolated block.
func bracketBlockEnd(lines []string, i int) int {
	if strings.TrimSpace(lines[i]) != "[" {
		return -1
	}
	if i > 0 && strings.TrimSpace(lines[i-1]) != "" {
		return -1
	}
	for j := i + 1; j < len(lines); j++ {
		switch strings.TrimSpace(lines[j]) {
		case "":
			return -1
		case "[":
			return -1
		case "]":
			if j == i+1 {
				return -1
			}
			if j+1 < len(lines) && strings.TrimSpace(lines[j+1]) != "" {
				return -1
			}
			return j
		}
	}
	return -1
}

// trimBlankLines drops whitespace-only lines at both ends of s, along with
// the final line break.
func trimBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	start, end := 0, len(lines)
	for start < end && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return strings.Join(lines[start:end], "\n")
}
