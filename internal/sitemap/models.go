package sitemap

import (
	"encoding/xml"
	"time"
)

// Namespace is the sitemap protocol 0.9 namespace
const Namespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// Page is an HTML file found under the root directory
type Page struct {
	Path    string // absolute filesystem path
	RelPath string // slash-separated, relative to the root
	ModTime time.Time
}

// URLSet is the sitemap document
type URLSet struct {
	XMLName xml.Name `xml:"urlset"`
	XMLNS   string   `xml:"xmlns,attr"`
	URLs    []Entry  `xml:"url"`
}

// Entry is a single <url> element of the sitemap
type Entry struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}
