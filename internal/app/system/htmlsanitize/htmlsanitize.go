// Package htmlsanitize cleans user-authored rich text (forum posts, notes,
// messages) before it is rendered.
package htmlsanitize

import (
	"html"
	"html/template"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy
	stripOnce  sync.Once
	strip      *bluemonday.Policy
)

func ugc() *bluemonday.Policy {
	policyOnce.Do(func() {
		p := bluemonday.UGCPolicy()
		p.AllowElements("u", "s", "sub", "sup", "mark")
		p.AllowAttrs("class").OnElements("table", "thead", "tbody", "tr", "td", "th", "code", "pre")
		p.AllowAttrs("dir").Matching(bluemonday.Direction).Globally()
		policy = p
	})
	return policy
}

func strict() *bluemonday.Policy {
	stripOnce.Do(func() {
		strip = bluemonday.StrictPolicy()
	})
	return strip
}

// Sanitize removes scripts, event handlers, unsafe URLs and unknown
// elements while keeping common formatting.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return ugc().Sanitize(s)
}

// SanitizeToHTML is Sanitize typed for templates.
func SanitizeToHTML(s string) template.HTML {
	return template.HTML(Sanitize(s))
}

// StripTags removes all markup, leaving unescaped text (for previews).
func StripTags(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(strict().Sanitize(s)))
}

// IsPlainText reports whether s contains no tag-like markup.
func IsPlainText(s string) bool {
	return !(strings.Contains(s, "<") && strings.Contains(s, ">"))
}

// PlainTextToHTML escapes s and turns newlines into <br> inside one paragraph.
func PlainTextToHTML(s string) string {
	if s == "" {
		return ""
	}
	escaped := html.EscapeString(s)
	return "<p>" + strings.ReplaceAll(escaped, "\n", "<br>") + "</p>"
}

// PrepareForDisplay renders plain text as paragraphs and sanitizes HTML.
func PrepareForDisplay(s string) template.HTML {
	if s == "" {
		return ""
	}
	if IsPlainText(s) {
		return template.HTML(PlainTextToHTML(s))
	}
	return SanitizeToHTML(s)
}
