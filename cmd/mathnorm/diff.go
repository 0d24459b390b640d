package main

import (
	diff "github.com/shogoki/gotextdiff"
)

// unifiedDiff returns a unified diff of before and after labelled with name,
// or "" when they are equal.
func unifiedDiff(name, before, after string) string {
	if before == after {
		return ""
	}
	return string(diff.Diff("a/"+name, []byte(before), "b/"+name, []byte(after)))
}
