package sitemap

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"
)

// Discover walks root and returns every page that belongs in the sitemap,
// sorted by path. Hidden and excluded top-level directories are not
// descended into. Symlinked files are followed the same way stat does.
// onSkip, when set, is called for every rejected page and every pruned
// directory; dir tells the two apart.
func Discover(root string, excluded map[string]bool, onSkip func(relPath string, dir bool)) ([]Page, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root %s: %w", root, err)
	}

	var pages []Page
	walkErr := filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == absRoot {
			return nil
		}

		rel, err := filepath.Rel(absRoot, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			// Only top-level directories can be excluded
			if !strings.Contains(rel, "/") && (strings.HasPrefix(rel, ".") || excluded[rel]) {
				logrus.Debugf("Skipping directory %s", rel)
				if onSkip != nil {
					onSkip(rel, true)
				}
				return filepath.SkipDir
			}
			return nil
		}

		if !IsPageName(d.Name()) {
			return nil
		}
		if !ShouldInclude(rel, excluded) {
			if onSkip != nil {
				onSkip(rel, false)
			}
			return nil
		}

		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("failed to stat %s: %w", rel, err)
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		pages = append(pages, Page{
			Path:    path,
			RelPath: rel,
			ModTime: info.ModTime(),
		})
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", absRoot, walkErr)
	}

	SortPages(pages)
	return pages, nil
}

// SortPages orders pages by path, comparing segment by segment so that
// "a/x.html" sorts before "a-b/x.html".
func SortPages(pages []Page) {
	slices.SortFunc(pages, func(a, b Page) int {
		return ComparePaths(a.RelPath, b.RelPath)
	})
}

// ComparePaths compares two slash-separated paths segment by segment
func ComparePaths(a, b string) int {
	return slices.Compare(strings.Split(a, "/"), strings.Split(b, "/"))
}
