// Package htmlsanitize cleans user-supplied text before it is stored.
//
// Comment content is stripped to plain text (Strict). Public case
// descriptions may carry basic formatting and go through Sanitize,
// which allows a small markup subset and removes everything else.
package htmlsanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strictPolicy = bluemonday.StrictPolicy()
	richPolicy   = newRichPolicy()
)

// newRichPolicy builds the policy for public-facing descriptions:
// basic formatting, lists, links and images over http(s) only.
func newRichPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("p", "br", "hr", "blockquote", "pre", "code",
		"strong", "em", "b", "i", "u", "s", "sub", "sup", "mark",
		"h1", "h2", "h3", "h4", "ul", "ol", "li")
	p.AllowStandardURLs()
	p.AllowAttrs("href").OnElements("a")
	p.RequireNoFollowOnLinks(true)
	p.AllowAttrs("src", "alt").OnElements("img")
	return p
}

// Strict strips all markup, leaving plain text. Used for comment
// content and free-text case fields.
func Strict(s string) string {
	return strings.TrimSpace(strictPolicy.Sanitize(s))
}

// Sanitize cleans rich text for public case descriptions.
func Sanitize(s string) string {
	return strings.TrimSpace(richPolicy.Sanitize(s))
}
