package audit

import (
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/alvmarrod/sitemap-weaver/internal/sitemap"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Site maps public URLs under the base URL onto files under the root
type Site struct {
	root     string
	base     *url.URL
	basePath string // without trailing slash
	exists   *lru.Cache[string, bool]
}

// NewSite creates a Site for the given root directory and base URL.
// cacheSize bounds the number of remembered file existence checks.
func NewSite(root, baseURL string, cacheSize int) (*Site, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root %s: %w", root, err)
	}

	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if base.Host == "" {
		return nil, fmt.Errorf("base URL %q has no host", baseURL)
	}

	exists, err := lru.New[string, bool](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create existence cache: %w", err)
	}

	return &Site{
		root:     absRoot,
		base:     base,
		basePath: strings.TrimRight(base.Path, "/"),
		exists:   exists,
	}, nil
}

// sitePath strips the base path from u. dir is true for URLs naming a
// directory explicitly (trailing slash or the site root).
func (s *Site) sitePath(u *url.URL) (p string, dir bool, ok bool) {
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false, false
	}
	if !strings.EqualFold(u.Hostname(), s.base.Hostname()) {
		return "", false, false
	}

	p = u.Path
	switch {
	case p == s.basePath:
		p = ""
	case strings.HasPrefix(p, s.basePath+"/"):
		p = strings.TrimPrefix(p, s.basePath+"/")
	default:
		return "", false, false
	}

	dir = p == "" || strings.HasSuffix(p, "/")
	p = path.Clean("/" + p)[1:]
	if p == "" {
		dir = true
	}
	return p, dir, true
}

// Resolve returns the slash-separated path, relative to the root, of the
// file serving u the way a static host does: the literal path, then the
// path with the page extension, then the directory index. Directory URLs
// go straight to their index page. When no candidate exists the literal
// path is returned. ok is false for URLs outside the site.
func (s *Site) Resolve(u *url.URL) (rel string, ok bool) {
	p, dir, ok := s.sitePath(u)
	if !ok {
		return "", false
	}

	options := candidates(p, dir)
	for _, option := range options {
		if s.Exists(option) {
			return option, true
		}
	}
	return options[0], true
}

// Exists reports whether rel is a regular file under the root
func (s *Site) Exists(rel string) bool {
	if found, ok := s.exists.Get(rel); ok {
		return found
	}
	info, err := os.Stat(s.FilePath(rel))
	found := err == nil && info.Mode().IsRegular()
	s.exists.Add(rel, found)
	return found
}

// FilePath converts a relative page path to its location on disk
func (s *Site) FilePath(rel string) string {
	return filepath.Join(s.root, filepath.FromSlash(rel))
}

func candidates(p string, dir bool) []string {
	if dir {
		return []string{path.Join(p, sitemap.IndexName)}
	}
	if strings.HasSuffix(p, sitemap.PageExt) {
		return []string{p}
	}
	return []string{p, p + sitemap.PageExt, p + "/" + sitemap.IndexName}
}
