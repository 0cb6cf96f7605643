package core

import "github.com/pmezard/go-difflib/difflib"

// UnifiedDiff renders the unified differences between the original and
// changed text of a file, with zero context lines. Used for dry-run output.
func UnifiedDiff(original string, changed string, name string) string {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(original),
		B:        difflib.SplitLines(changed),
		FromFile: name,
		ToFile:   name + ".new",
		Context:  0,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return ""
	}
	return text
}
