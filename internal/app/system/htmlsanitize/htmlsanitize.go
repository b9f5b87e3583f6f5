// Package htmlsanitize cleans free text before it is stored and undoes the
// HTML escaping that older records were saved with.
package htmlsanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// strict drops every tag. Element content is kept except for script/style.
var strict = bluemonday.StrictPolicy()

// StripTags removes all markup from s and returns plain text. bluemonday
// entity-escapes the text it keeps, so the result is unescaped again: stored
// values are plain text, escaping happens at render time.
func StripTags(s string) string {
	if s == "" {
		return ""
	}
	return html.UnescapeString(strict.Sanitize(s))
}

// Entities written by the legacy escaper. "&amp;" must be reversed last.
var legacyEntities = []string{"&lt;", "&gt;", "&quot;", "&#x2f;", "&#39;", "&amp;"}

var legacyUnescaper = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#x2f;", "/",
	"&#39;", "'",
)

// IsHTMLSanitized reports whether s contains any entity produced by the
// legacy escaper.
func IsHTMLSanitized(s string) bool {
	for _, e := range legacyEntities {
		if strings.Contains(s, e) {
			return true
		}
	}
	return false
}

// DesanitizeIfHTMLSanitized reverses the legacy escaping when s carries it
// and returns s unchanged otherwise, so an escaped and an unescaped copy of
// the same value compare equal.
func DesanitizeIfHTMLSanitized(s string) string {
	if !IsHTMLSanitized(s) {
		return s
	}
	return strings.ReplaceAll(legacyUnescaper.Replace(s), "&amp;", "&")
}
