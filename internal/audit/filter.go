package audit

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Hrefs that never point at a page (scripts, contacts, inline data)
var ignoredHrefPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^mailto:`),
	regexp.MustCompile(`(?i)^tel:`),
	regexp.MustCompile(`(?i)^javascript:`),
	regexp.MustCompile(`(?i)^data:`),
	regexp.MustCompile(`^#`),
}

// maxDescriptionLen caps titles stored as page descriptions
const maxDescriptionLen = 60

// IsIgnoredHref checks if an href matches any ignored pattern
func IsIgnoredHref(href string) bool {
	href = strings.TrimSpace(href)
	if href == "" {
		return true
	}
	for _, pattern := range ignoredHrefPatterns {
		if pattern.MatchString(href) {
			return true
		}
	}
	return false
}

// ResolveLink resolves href against the page it appears on and returns the
// target's path relative to the root. ok is false for ignored and external links.
func ResolveLink(site *Site, pageURL *url.URL, href string) (rel string, ok bool) {
	if IsIgnoredHref(href) {
		return "", false
	}

	target, err := pageURL.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", false
	}
	target.Fragment = ""
	target.RawQuery = ""

	return site.Resolve(target)
}

// truncate shortens s to at most maxDescriptionLen runes
func truncate(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= maxDescriptionLen {
		return s
	}
	return string([]rune(s)[:maxDescriptionLen])
}
