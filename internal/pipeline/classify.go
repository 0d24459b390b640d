package pipeline

import (
	"fmt"
	"regexp"
	"strings"
)

// Strictness selects how eagerly ambiguous parentheticals become math.
type Strictness int

const (
	// StrictnessDefault promotes anything holding a digit.
	StrictnessDefault Strictness = iota
	// StrictnessConservative ignores digits inside prose ("see page 4") and
	// bare enumerators like "(1)".
	StrictnessConservative
)

// Strictness names as used in config files and flags.
const (
	StrictnessNameDefault      = "default"
	StrictnessNameConservative = "conservative"
)

// String returns the config name of s.
func (s Strictness) String() string {
	switch s {
	case StrictnessDefault:
		return StrictnessNameDefault
	case StrictnessConservative:
		return StrictnessNameConservative
	default:
		return fmt.Sprintf("Strictness(%d)", int(s))
	}
}

// ParseStrictness converts a config name to a Strictness. The empty string
// selects the default.
func ParseStrictness(name string) (Strictness, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", StrictnessNameDefault:
		return StrictnessDefault, nil
	case StrictnessNameConservative:
		return StrictnessConservative, nil
	default:
		return StrictnessDefault, fmt.Errorf("unknown strictness %q (expected %s or %s)",
			name, StrictnessNameDefault, StrictnessNameConservative)
	}
}

// Valid reports whether s is a known level.
func (s Strictness) Valid() bool {
	return s == StrictnessDefault || s == StrictnessConservative
}

var (
	// LaTeX control sequences that only appear in math. The trailing group
	// rejects longer commands sharing a prefix (\int vs \intertext).
	latexTokenPattern = regexp.MustCompile(`\\(?:` +
		`frac|dfrac|tfrac|sqrt|partial|nabla|` +
		`mathbf|mathrm|mathbb|mathcal|vec|hat|bar|dot|ddot|tilde|overline|` +
		`sum|prod|int|iint|oint|lim|cdot|times|div|pm|mp|` +
		`alpha|beta|gamma|delta|epsilon|varepsilon|zeta|eta|theta|vartheta|iota|kappa|` +
		`lambda|mu|nu|xi|pi|rho|sigma|tau|phi|varphi|chi|psi|omega|` +
		`Gamma|Delta|Theta|Lambda|Xi|Pi|Sigma|Phi|Psi|Omega|` +
		`infty|leq|geq|le|ge|neq|approx|equiv|sim|propto|` +
		`rightarrow|leftarrow|Rightarrow|Leftarrow|leftrightarrow|Leftrightarrow|to|mapsto|` +
		`in|notin|subset|subseteq|cup|cap|forall|exists|` +
		`left|right|begin|end|displaystyle|boxed|operatorname` +
		`)(?:[^A-Za-z]|$)`)

	functionApplicationPattern = regexp.MustCompile(`^[A-Za-z]\s*\([^()\n]*\)$`)

	differentialPattern = regexp.MustCompile(`^d[A-Za-z]$`)

	digitPattern = regexp.MustCompile(`\d`)

	// A run of three or more letters reads as an English word.
	proseWordPattern = regexp.MustCompile(`(?:^|[^A-Za-z\\])[A-Za-z]{3,}(?:[^A-Za-z]|$)`)

	enumeratorPattern = regexp.MustCompile(`^\d+[.)]?$`)

	bareWordPattern = regexp.MustCompile(`^[A-Za-z]{2,}$`)
)

// allowedVariables are single-letter names promoted on their own.
var allowedVariables = map[string]bool{
	"x": true, "y": true, "z": true, "T": true, "v": true, "u": true,
}

// Predicate is one named rule of the classifier.
type Predicate struct {
	Name  string
	Match func(span string) bool
}

// Classifier decides whether a candidate span looks like math. The rules run
// in order and the first match wins.
type Classifier struct {
	strictness Strictness
	predicates []Predicate
}

// NewClassifier builds the rule list for the given strictness.
func NewClassifier(s Strictness) *Classifier {
	digits := Predicate{Name: "digit", Match: HasDigit}
	if s == StrictnessConservative {
		digits = Predicate{Name: "digit-outside-prose", Match: hasDigitOutsideProse}
	}
	return &Classifier{
		strictness: s,
		predicates: []Predicate{
			{Name: "latex-token", Match: HasLatexToken},
			{Name: "operator", Match: HasOperator},
			{Name: "function-application", Match: IsFunctionApplication},
			{Name: "variable", Match: IsVariable},
			digits,
		},
	}
}

// Strictness returns the level the classifier was built with.
func (c *Classifier) Strictness() Strictness {
	return c.strictness
}

// Predicates returns the ordered rule list.
func (c *Classifier) Predicates() []Predicate {
	return c.predicates
}

// LooksLikeMath reports whether any rule accepts the trimmed span.
func (c *Classifier) LooksLikeMath(span string) bool {
	span = strings.TrimSpace(span)
	if span == "" {
		return false
	}
	for _, p := range c.predicates {
		if p.Match(span) {
			return true
		}
	}
	return false
}

// ReadsAsProse reports whether the conservative level should leave s alone
// even though an operator matched: it holds an English word and no LaTeX.
func (c *Classifier) ReadsAsProse(s string) bool {
	return c.strictness == StrictnessConservative && !HasLatexToken(s) && proseWordPattern.MatchString(s)
}

// HasLatexToken reports whether s contains a math-only control sequence.
func HasLatexToken(s string) bool {
	return latexTokenPattern.MatchString(s)
}

// HasOperator reports whether s contains one of = + - * / ^ _. A hyphen or
// slash joining two words ("well-known", "and/or") does not count.
func HasOperator(s string) bool {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '=', '+', '*', '^', '_':
			return true
		case '-', '/':
			if !joinsWords(s, i) {
				return true
			}
		}
	}
	return false
}

// joinsWords reports whether s[i] sits between two runs of at least two
// letters.
func joinsWords(s string, i int) bool {
	return letterRun(s, i, -1) >= 2 && letterRun(s, i, 1) >= 2
}

func letterRun(s string, i, dir int) int {
	n := 0
	for j := i + dir; j >= 0 && j < len(s) && isLetter(s[j]); j += dir {
		n++
	}
	return n
}

// IsFunctionApplication matches a single letter applied to a flat argument
// list, as in "f(x, y)".
func IsFunctionApplication(s string) bool {
	return functionApplicationPattern.MatchString(s)
}

// IsVariable matches an allow-listed variable or a differential like "dx".
func IsVariable(s string) bool {
	return allowedVariables[s] || differentialPattern.MatchString(s)
}

// HasDigit reports whether s contains a decimal digit.
func HasDigit(s string) bool {
	return digitPattern.MatchString(s)
}

// IsBareWord reports whether s is a single word of two or more letters.
func IsBareWord(s string) bool {
	return bareWordPattern.MatchString(s)
}

func hasDigitOutsideProse(s string) bool {
	if !HasDigit(s) || enumeratorPattern.MatchString(s) {
		return false
	}
	return !proseWordPattern.MatchString(s)
}
