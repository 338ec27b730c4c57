package content

import (
	"html"
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

// nbspPattern matches non-breaking spaces in both entity and UTF-8 form.
var nbspPattern = regexp.MustCompile(`&nbsp;|\x{00a0}`)

// StripMarkup removes every HTML element and attribute from the input, then
// decodes the entities the sanitizer escaped so the stored text reads
// naturally. Script and style bodies are dropped along with their tags.
func StripMarkup() TransformerFunc {
	policy := bluemonday.StrictPolicy()
	return func(input []byte) ([]byte, error) {
		stripped := policy.SanitizeBytes(input)
		return []byte(html.UnescapeString(string(stripped))), nil
	}
}

// NormalizeNBSP replaces non-breaking spaces with regular spaces.
func NormalizeNBSP() TransformerFunc {
	return func(input []byte) ([]byte, error) {
		return nbspPattern.ReplaceAll(input, []byte{' '}), nil
	}
}
