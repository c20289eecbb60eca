package extract

import (
	"regexp"
	"strings"
)

var (
	tagPattern = regexp.MustCompile(`<[^>]+>`)

	// Escaped unicode sequences that show up literally inside the page's
	// embedded JSON blobs.
	unicodeEscapes = strings.NewReplacer(
		`\u0026`, "&",
		`\u0027`, "'",
		`\u0022`, `"`,
		`\u003C`, "<",
		`\u003c`, "<",
		`\u003E`, ">",
		`\u003e`, ">",
		`\u002F`, "/",
		`\u002f`, "/",
	)
)

// cleanText decodes escaped unicode sequences, strips HTML tags, and
// collapses whitespace runs.
func cleanText(text string) string {
	if text == "" {
		return ""
	}
	text = unicodeEscapes.Replace(text)
	text = tagPattern.ReplaceAllString(text, "")
	return strings.Join(strings.Fields(text), " ")
}
