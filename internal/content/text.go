package content

import (
	"bytes"
	"regexp"
	"strings"
	"unicode"
)

var (
	// Visitors paste text with runs of spaces and tabs that render poorly.
	collapseSpaces = regexp.MustCompile(`[ \t]+`)

	// Trailing whitespace on lines is never intentional.
	trailingWhitespace = regexp.MustCompile(`(?m)[ \t]+$`)

	// More than one blank line between paragraphs adds nothing.
	collapseBlankLines = regexp.MustCompile(`\n{3,}`)
)

// ScrubText cleans up plain text: line endings are normalized, control
// characters dropped, and whitespace collapsed. The result is trimmed.
func ScrubText() TransformerFunc {
	return func(input []byte) ([]byte, error) {
		input = bytes.ReplaceAll(input, []byte("\r\n"), []byte("\n"))
		input = bytes.ReplaceAll(input, []byte("\r"), []byte("\n"))

		input = []byte(strings.Map(dropControl, string(input)))
		input = collapseSpaces.ReplaceAll(input, []byte(" "))
		input = trailingWhitespace.ReplaceAll(input, nil)
		input = collapseBlankLines.ReplaceAll(input, []byte("\n\n"))
		return bytes.TrimSpace(input), nil
	}
}

// dropControl removes control characters and invalid runes, keeping newlines
// and tabs for the whitespace passes above.
func dropControl(r rune) rune {
	if r == '\n' || r == '\t' {
		return r
	}
	if unicode.IsControl(r) || r == unicode.ReplacementChar {
		return -1
	}
	return r
}
