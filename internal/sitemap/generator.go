package sitemap

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/alvmarrod/sitemap-weaver/internal/config"
	"github.com/alvmarrod/sitemap-weaver/internal/metrics"
	"github.com/sirupsen/logrus"
)

// Generator scans the root directory and writes the sitemap
type Generator struct {
	cfg      *config.Config
	excluded map[string]bool
	tracker  *metrics.Tracker
}

// NewGenerator creates a generator for the configured site
func NewGenerator(cfg *config.Config, tracker *metrics.Tracker) *Generator {
	if tracker == nil {
		tracker = metrics.NewTracker()
	}
	return &Generator{
		cfg:      cfg,
		excluded: ExcludedSet(cfg.ExcludedDirs),
		tracker:  tracker,
	}
}

// OutputPath is where the sitemap is written
func (g *Generator) OutputPath() string {
	if filepath.IsAbs(g.cfg.OutputFile) {
		return g.cfg.OutputFile
	}
	return filepath.Join(g.cfg.RootDir, g.cfg.OutputFile)
}

// Build discovers the pages and derives their entries
func (g *Generator) Build() (*URLSet, error) {
	pages, err := Discover(g.cfg.RootDir, g.excluded, func(rel string, dir bool) {
		logrus.Debugf("Excluded %s", rel)
		if dir {
			g.tracker.IncrementDirsPruned()
			return
		}
		g.tracker.IncrementPagesScanned()
		g.tracker.IncrementPagesSkipped()
	})
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(pages))
	for _, page := range pages {
		g.tracker.IncrementPagesScanned()
		entry := NewEntry(g.cfg.BaseURL, page)
		logrus.Debugf("Entry %s (lastmod=%s, changefreq=%s, priority=%s)",
			entry.Loc, entry.LastMod, entry.ChangeFreq, entry.Priority)
		entries = append(entries, entry)
	}

	return NewURLSet(entries), nil
}

// Render builds the sitemap and returns the encoded document
func (g *Generator) Render() ([]byte, error) {
	set, err := g.Build()
	if err != nil {
		return nil, err
	}
	data, err := set.Marshal()
	if err != nil {
		return nil, err
	}
	g.tracker.AddEntriesWritten(len(set.URLs))
	return data, nil
}

// Run builds the sitemap and overwrites the output file.
// Nothing is written if the scan fails.
func (g *Generator) Run() (string, error) {
	data, err := g.Render()
	if err != nil {
		return "", err
	}

	out := g.OutputPath()
	if err := os.WriteFile(out, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write sitemap: %w", err)
	}

	return out, nil
}
