// Package htmlsanitize cleans user supplied text before it reaches a response.
package htmlsanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// StripTags removes every tag and returns trimmed text that is still
// HTML-escaped, ready to embed in markup.
func StripTags(s string) string {
	return strings.TrimSpace(strict.Sanitize(s))
}

// PlainText removes every tag and unescapes the remaining entities, for
// responses that are not HTML.
func PlainText(s string) string {
	return html.UnescapeString(StripTags(s))
}
