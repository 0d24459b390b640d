package main

import (
	"strings"
	"testing"
)

func TestUnifiedDiff(t *testing.T) {
	t.Parallel()

	if got := unifiedDiff("a.md", mathOutput, mathOutput); got != "" {
		t.Errorf("equal inputs: diff = %q, want empty", got)
	}

	got := unifiedDiff("notes/a.md", mathInput, mathOutput)
	for _, want := range []string{
		"a/notes/a.md",
		"b/notes/a.md",
		"-" + strings.TrimSuffix(mathInput, "\n"),
		"+" + strings.TrimSuffix(mathOutput, "\n"),
	} {
		if !strings.Contains(got, want) {
			t.Errorf("diff missing %q:\n%s", want, got)
		}
	}
}
