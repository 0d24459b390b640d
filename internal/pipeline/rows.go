package pipeline

import (
	"regexp"
	"strings"
)

// rowEnvironments are the matrix-like and case-like environments whose rows
// need separators.
var rowEnvironments = map[string]bool{
	"matrix": true, "pmatrix": true, "bmatrix": true, "Bmatrix": true,
	"vmatrix": true, "Vmatrix": true, "smallmatrix": true,
	"cases": true, "dcases": true, "rcases": true,
}

var (
	envBeginPattern = regexp.MustCompile(`\\begin\{([A-Za-z]+\*?)\}`)
	envEndPattern   = regexp.MustCompile(`\\end\{([A-Za-z]+\*?)\}`)

	// Trailing spacing directive such as [3pt] or [0.5em].
	spacingDirectivePattern = regexp.MustCompile(`^(.*?)\[\s*(\d+(?:\.\d+)?(?:pt|em|ex|mm))\s*\]$`)

	// Lines holding only horizontal rules are not rows.
	ruleLinePattern = regexp.MustCompile(`^(?:\s*\\(?:hline|hdashline|toprule|midrule|bottomrule|cline\{[^}]*\}))+\s*$`)
)

// FixDisplayRows repairs row separators in every display math block of doc.
func FixDisplayRows(doc string) string {
	if !strings.Contains(doc, `\begin{`) {
		return doc
	}
	return mapMath(doc, func(seg segment) string {
		if seg.kind != segmentDisplay {
			return seg.text
		}
		inner := seg.text[2 : len(seg.text)-2]
		return "$$" + FixEnvironmentRows(inner) + "$$"
	})
}

// FixEnvironmentRows repairs the rows of every matrix-like or case-like
// environment in math. Nested environments are fixed first. Single-line
// environments and environments without a matching \end are left alone.
func FixEnvironmentRows(math string) string {
	var out strings.Builder
	pos := 0
	for {
		loc := findRowEnvironment(math, pos)
		if loc == nil {
			break
		}
		bodyStart, bodyEnd := loc[1], findEnvEnd(math, loc[1], math[loc[2]:loc[3]])
		if bodyEnd < 0 {
			break
		}
		out.WriteString(math[pos:bodyStart])
		out.WriteString(fixRows(FixEnvironmentRows(math[bodyStart:bodyEnd])))
		pos = bodyEnd
	}
	out.WriteString(math[pos:])

	return out.String()
}

// findRowEnvironment returns the submatch indices of the next \begin of a row
// environment at or after pos, shifted to absolute offsets.
func findRowEnvironment(math string, pos int) []int {
	for pos < len(math) {
		loc := envBeginPattern.FindStringSubmatchIndex(math[pos:])
		if loc == nil {
			return nil
		}
		for i := range loc {
			loc[i] += pos
		}
		if rowEnvironments[math[loc[2]:loc[3]]] {
			return loc
		}
		pos = loc[1]
	}
	return nil
}

// findEnvEnd returns the offset of the \end{name} matching an environment
// whose body starts at from, counting nested environments of the same name.
func findEnvEnd(math string, from int, name string) int {
	begin, end := `\begin{`+name+`}`, `\end{`+name+`}`
	depth := 1
	for i := from; i < len(math); i++ {
		switch {
		case strings.HasPrefix(math[i:], begin):
			depth++
			i += len(begin) - 1
		case strings.HasPrefix(math[i:], end):
			depth--
			if depth == 0 {
				return i
			}
			i += len(end) - 1
		}
	}
	return -1
}

// fixRows applies the row rules to an environment body. A line ends a row
// when it closes at nesting depth zero; blank lines, comments and rule lines
// are skipped. The text before \end keeps its trailing whitespace.
func fixRows(body string) string {
	if !strings.Contains(body, "\n") {
		return body
	}

	lines := strings.Split(body, "\n")
	rowEnds := make([]bool, len(lines))
	lastRow := -1
	depth := 0
	for i, line := range lines {
		depth += len(envBeginPattern.FindAllStringIndex(line, -1)) - len(envEndPattern.FindAllStringIndex(line, -1))
		code, _ := splitComment(line)
		switch {
		case strings.TrimSpace(code) == "" || depth != 0:
		case ruleLinePattern.MatchString(code):
			lastRow = -1
		default:
			rowEnds[i] = true
			lastRow = i
		}
	}

	for i, line := range lines {
		if !rowEnds[i] {
			continue
		}
		trailing := ""
		if i == len(lines)-1 {
			trailing = line[len(strings.TrimRight(line, " \t")):]
		}
		code, comment := splitComment(line)
		fixed := fixRow(code, i == lastRow)
		if comment != "" {
			fixed += " " + comment
		}
		lines[i] = fixed + trailing
	}
	return strings.Join(lines, "\n")
}

// fixRow applies the separator rules to one row. The last row of an
// environment ends without a separator.
func fixRow(row string, last bool) string {
	row = strings.TrimRight(row, " \t")

	// A lone trailing backslash is a half-typed separator.
	if trailingRun(row, '\\') == 1 {
		row += `\`
	}

	if m := spacingDirectivePattern.FindStringSubmatch(row); m != nil {
		core, dim := m[1], m[2]
		switch n := trailingRun(core, '\\'); {
		case n >= 2 && n%2 == 0:
			// already attached: "\\[3pt]"
		case n%2 == 1:
			// an escaped bracket, not a directive
		default:
			core = strings.TrimRight(core, " \t")
			if start := separatorStart(core); start >= 0 {
				core = strings.TrimRight(core[:start], " \t")
			}
			row = joinRow(core, `\\[`+dim+`]`)
		}
	}

	if last {
		if start := separatorStart(row); start >= 0 {
			row = strings.TrimRight(row[:start], " \t")
		}
		return row
	}
	if separatorStart(row) >= 0 || strings.HasSuffix(row, "&") {
		return row
	}
	return joinRow(row, `\\`)
}

// separatorStart returns where a trailing row separator, optionally followed
// by a spacing directive, begins in row, or -1 when there is none.
func separatorStart(row string) int {
	s := row
	if strings.HasSuffix(s, "]") {
		if open := strings.LastIndexByte(s, '['); open >= 0 {
			s = s[:open]
		}
	}
	n := trailingRun(s, '\\')
	if n < 2 || n%2 != 0 {
		return -1
	}
	return len(s) - 2
}

func joinRow(row, sep string) string {
	if row == "" {
		return sep
	}
	return row + " " + sep
}

// splitComment separates a trailing LaTeX comment from line. An escaped
// percent sign is text.
func splitComment(line string) (code, comment string) {
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '\\':
			i++
		case '%':
			return strings.TrimRight(line[:i], " \t"), line[i:]
		}
	}
	return line, ""
}
