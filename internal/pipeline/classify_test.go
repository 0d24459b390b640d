package pipeline

import "testing"

func TestClassifierLooksLikeMath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		span     string
		expected bool
	}{
		{name: "latex token", span: `\alpha`, expected: true},
		{name: "latex token with subscript", span: `\alpha_1`, expected: true},
		{name: "longer command sharing a prefix", span: `\intertext`, expected: false},
		{name: "operator", span: "x+1", expected: true},
		{name: "relation", span: "a = b", expected: true},
		{name: "hyphen between letters", span: "a-b", expected: true},
		{name: "hyphenated word", span: "well-known", expected: false},
		{name: "slash between words", span: "and/or", expected: false},
		{name: "function application", span: "f(x)", expected: true},
		{name: "allow-listed variable", span: "T", expected: true},
		{name: "differential", span: "dx", expected: true},
		{name: "word starting with d", span: "dog", expected: false},
		{name: "digit", span: "page 4", expected: true},
		{name: "bare word", span: "however", expected: false},
		{name: "single letter outside allow-list", span: "s", expected: false},
		{name: "surrounding whitespace", span: "  x  ", expected: true},
		{name: "empty", span: "", expected: false},
	}

	c := NewClassifier(StrictnessDefault)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := c.LooksLikeMath(tt.span); got != tt.expected {
				t.Errorf("LooksLikeMath(%q) = %v, want %v", tt.span, got, tt.expected)
			}
		})
	}
}

func TestClassifierLooksLikeMath_Conservative(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		span     string
		expected bool
	}{
		{name: "page reference", span: "see page 4", expected: false},
		{name: "figure reference", span: "Figure 2", expected: false},
		{name: "enumerator", span: "1", expected: false},
		{name: "coefficient", span: "2x", expected: true},
		{name: "operator still counts", span: "x+1", expected: true},
		{name: "latex token", span: `\beta`, expected: true},
	}

	c := NewClassifier(StrictnessConservative)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := c.LooksLikeMath(tt.span); got != tt.expected {
				t.Errorf("LooksLikeMath(%q) = %v, want %v", tt.span, got, tt.expected)
			}
		})
	}
}

func TestClassifierPredicates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		strictness Strictness
		expected   []string
	}{
		{
			strictness: StrictnessDefault,
			expected:   []string{"latex-token", "operator", "function-application", "variable", "digit"},
		},
		{
			strictness: StrictnessConservative,
			expected:   []string{"latex-token", "operator", "function-application", "variable", "digit-outside-prose"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.strictness.String(), func(t *testing.T) {
			t.Parallel()

			preds := NewClassifier(tt.strictness).Predicates()
			if len(preds) != len(tt.expected) {
				t.Fatalf("Predicates() has %d rules, want %d", len(preds), len(tt.expected))
			}
			for i, p := range preds {
				if p.Name != tt.expected[i] {
					t.Errorf("Predicates()[%d].Name = %q, want %q", i, p.Name, tt.expected[i])
				}
			}
		})
	}
}

func TestClassifierReadsAsProse(t *testing.T) {
	t.Parallel()

	def := NewClassifier(StrictnessDefault)
	cons := NewClassifier(StrictnessConservative)

	if def.ReadsAsProse("pages 2-3") {
		t.Error("default ReadsAsProse() = true, want false")
	}
	if !cons.ReadsAsProse("pages 2-3") {
		t.Error("conservative ReadsAsProse() = false, want true")
	}
	if cons.ReadsAsProse(`\frac{a}{b} + c`) {
		t.Error(`conservative ReadsAsProse(\frac) = true, want false`)
	}
}

func TestParseStrictness(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected Strictness
		wantErr  bool
	}{
		{input: "", expected: StrictnessDefault},
		{input: "default", expected: StrictnessDefault},
		{input: "Conservative", expected: StrictnessConservative},
		{input: " conservative ", expected: StrictnessConservative},
		{input: "strict", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			got, err := ParseStrictness(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseStrictness(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.expected {
				t.Errorf("ParseStrictness(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestStrictnessString(t *testing.T) {
	t.Parallel()

	if got := StrictnessConservative.String(); got != "conservative" {
		t.Errorf("String() = %q, want %q", got, "conservative")
	}
	if got := Strictness(7).String(); got != "Strictness(7)" {
		t.Errorf("String() = %q, want %q", got, "Strictness(7)")
	}
	if Strictness(7).Valid() {
		t.Error("Valid() = true for unknown level")
	}
}
