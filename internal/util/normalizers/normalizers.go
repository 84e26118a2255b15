// Package normalizers tidies the raw-string help text of commands.
package normalizers

import (
	"strings"
)

// Indentation prefixes every example line.
const Indentation = `  `

// LongDesc trims the surrounding whitespace of a long description. Inner
// indentation is kept so lists and nested paragraphs line up.
func LongDesc(s string) string {
	return strings.TrimSpace(s)
}

// Examples trims each example line and re-indents it with Indentation.
// Blank lines separate groups of examples and stay empty.
func Examples(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines[i] = Indentation + trimmed
		} else {
			lines[i] = ""
		}
	}
	return strings.Join(lines, "\n")
}
