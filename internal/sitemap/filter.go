package sitemap

import (
	"strings"
)

// PageExt is the only extension considered a publishable page
const PageExt = ".html"

// IsPageName reports whether a file name carries the page extension.
// A name consisting of the bare extension is a hidden file, not a page.
func IsPageName(name string) bool {
	return len(name) > len(PageExt) && strings.HasSuffix(name, PageExt)
}

// ShouldInclude decides whether a page, given by its slash-separated path
// relative to the root, belongs in the sitemap. Only the first segment is
// checked against the hidden marker and the excluded directory names.
func ShouldInclude(relPath string, excluded map[string]bool) bool {
	if !IsPageName(pathBase(relPath)) {
		return false
	}

	first, _, _ := strings.Cut(relPath, "/")
	if strings.HasPrefix(first, ".") {
		return false
	}
	if excluded[first] {
		return false
	}
	return true
}

// ExcludedSet turns the configured directory names into a lookup set
func ExcludedSet(dirs []string) map[string]bool {
	set := make(map[string]bool, len(dirs))
	for _, dir := range dirs {
		set[dir] = true
	}
	return set
}

func pathBase(relPath string) string {
	if i := strings.LastIndexByte(relPath, '/'); i >= 0 {
		return relPath[i+1:]
	}
	return relPath
}
