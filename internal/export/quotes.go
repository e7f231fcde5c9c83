package export

import "strings"

// Quote styles the model sometimes wraps responses in, longest first so
// a triple quote is never consumed as a single.
var outerQuotes = []string{`"""`, "'''", `"`, "'"}

// stripOuterQuotes removes one matched layer of each quote style from
// the ends of text. A pair is stripped only when at least one character
// sits between the quotes, so a bare `""` or lone `"` passes through.
func stripOuterQuotes(text string) string {
	text = strings.TrimSpace(text)
	for _, quote := range outerQuotes {
		if len(text) > 2*len(quote) && strings.HasPrefix(text, quote) && strings.HasSuffix(text, quote) {
			text = strings.TrimSpace(text[len(quote) : len(text)-len(quote)])
		}
	}
	return text
}
