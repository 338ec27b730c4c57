// Package content contains transformers to normalize visitor-submitted text.
package content

var (
	stripMarkup   = StripMarkup()
	normalizeNBSP = NormalizeNBSP()
	scrubText     = ScrubText()

	visitorTextPipeline = Chain(stripMarkup, normalizeNBSP, scrubText)
)

// NormalizeVisitorText reduces untrusted form input to plain text: markup is
// stripped, entities decoded, and whitespace collapsed. The result is safe to
// store and render as text.
func NormalizeVisitorText(input string) string {
	output, err := visitorTextPipeline([]byte(input))
	if err != nil {
		// the visitor pipeline has no failing stages
		return ""
	}
	return string(output)
}
