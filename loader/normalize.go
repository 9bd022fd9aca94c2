package loader

import "unicode/utf8"

// MaxTextLength bounds the context handed to the generation model,
// keeping prompt cost and latency predictable. The cap counts
// characters, not bytes, so multibyte text keeps its full budget and is
// never cut mid-rune.
const MaxTextLength = 5000

// Truncate caps extracted text at MaxTextLength characters. Text already
// within the limit is returned unchanged.
func Truncate(text string) string {
	if utf8.RuneCountInString(text) <= MaxTextLength {
		return text
	}
	return string([]rune(text)[:MaxTextLength])
}
