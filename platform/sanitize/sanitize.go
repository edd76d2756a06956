// Package sanitize provides text and HTML sanitization utilities.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strictPolicy = bluemonday.StrictPolicy()
	emailPolicy  = newEmailPolicy()
)

// newEmailPolicy allows the markup an HTML email body needs (headings,
// lists, tables, links, inline styles) and nothing executable.
func newEmailPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowElements("html", "head", "body", "center", "font", "span", "div")
	p.AllowAttrs("align", "valign", "width", "height", "bgcolor", "cellpadding", "cellspacing", "border").Globally()
	p.AllowStyles(
		"color", "background", "background-color", "font-family", "font-size", "font-weight", "font-style",
		"line-height", "text-align", "text-decoration", "padding", "padding-top", "padding-bottom",
		"padding-left", "padding-right", "margin", "margin-top", "margin-bottom", "margin-left",
		"margin-right", "border", "border-radius", "border-left", "border-top", "border-bottom", "max-width", "width", "display",
	).Globally()
	p.RequireNoFollowOnLinks(false)
	return p
}

// StripHTML removes all markup, making the string safe for text-only display.
// Entities are decoded afterwards so stored text reads naturally.
func StripHTML(s string) string {
	return strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(s)))
}

// Text sanitizes a string for safe text storage by stripping HTML
// and normalizing whitespace. Use for user-provided free text.
func Text(s string) string {
	return strings.Join(strings.Fields(StripHTML(s)), " ")
}

// MultilineText is Text that keeps line breaks, for inquiry bodies.
func MultilineText(s string) string {
	lines := strings.Split(StripHTML(s), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		out = append(out, strings.Join(strings.Fields(line), " "))
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// EmailHTML sanitizes generated HTML for use as an email body.
func EmailHTML(s string) string {
	return strings.TrimSpace(emailPolicy.Sanitize(s))
}
