package sitemap

import (
	"strings"
	"time"
)

// Change frequency hints
const (
	FreqWeekly  = "weekly"
	FreqMonthly = "monthly"
)

// IndexName is the directory index page
const IndexName = "index.html"

// LastModLayout formats <lastmod> as a calendar date
const LastModLayout = "2006-01-02"

var (
	// Sections that are content-heavy. They currently share the monthly
	// frequency with every other non-index page.
	contentSections = []string{"platforms", "guides", "industries"}

	primarySections   = []string{"guides", "platforms"}
	secondarySections = []string{"tools", "learn"}
)

// ChangeFreqFor returns the change frequency hint for a page
func ChangeFreqFor(relPath string) string {
	if pathBase(relPath) == IndexName {
		return FreqWeekly
	}
	if hasSegment(relPath, contentSections) {
		return FreqMonthly
	}
	return FreqMonthly
}

// PriorityFor returns the priority for a page. Rules are checked in
// order and the first match wins.
func PriorityFor(relPath string) string {
	switch {
	case pathBase(relPath) == IndexName:
		return "1.0"
	case hasSegment(relPath, primarySections):
		return "0.9"
	case hasSegment(relPath, secondarySections):
		return "0.8"
	default:
		return "0.7"
	}
}

// LastModFor formats a modification time as a UTC calendar date
func LastModFor(modTime time.Time) string {
	return modTime.UTC().Format(LastModLayout)
}

// NewEntry derives the sitemap entry for a page
func NewEntry(baseURL string, page Page) Entry {
	return Entry{
		Loc:        strings.TrimRight(baseURL, "/") + "/" + page.RelPath,
		LastMod:    LastModFor(page.ModTime),
		ChangeFreq: ChangeFreqFor(page.RelPath),
		Priority:   PriorityFor(page.RelPath),
	}
}

// hasSegment reports whether any path segment equals one of names
func hasSegment(relPath string, names []string) bool {
	for _, segment := range strings.Split(relPath, "/") {
		for _, name := range names {
			if segment == name {
				return true
			}
		}
	}
	return false
}
