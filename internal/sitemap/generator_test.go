package sitemap

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alvmarrod/sitemap-weaver/internal/config"
	"github.com/alvmarrod/sitemap-weaver/internal/metrics"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedModTime = time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)

func writePage(t *testing.T, root, rel string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("<html><body>"+rel+"</body></html>"), 0644))
	require.NoError(t, os.Chtimes(path, fixedModTime, fixedModTime))
}

func testConfig(root string) *config.Config {
	return &config.Config{
		RootDir:      root,
		BaseURL:      "https://example.org/site",
		OutputFile:   config.DefaultOutputFile,
		ExcludedDirs: config.DefaultExcludedDirs,
	}
}

func TestDiscover_FiltersAndSorts(t *testing.T) {
	root := t.TempDir()
	for _, rel := range []string{
		"index.html",
		"a-b/x.html",
		"a/x.html",
		"guides/z.html",
		"guides/deep/index.html",
		"assets/skip.html",
		"templates/base.html",
		".git/hooks.html",
		"notes.md",
		"guides/style.css",
	} {
		writePage(t, root, rel)
	}

	var skipped, pruned []string
	pages, err := Discover(root, ExcludedSet(config.DefaultExcludedDirs), func(rel string, dir bool) {
		if dir {
			pruned = append(pruned, rel)
			return
		}
		skipped = append(skipped, rel)
	})
	require.NoError(t, err)

	var got []string
	for _, page := range pages {
		got = append(got, page.RelPath)
		assert.True(t, filepath.IsAbs(page.Path))
		assert.True(t, page.ModTime.Equal(fixedModTime))
	}

	want := []string{
		"a/x.html",
		"a-b/x.html",
		"guides/deep/index.html",
		"guides/z.html",
		"index.html",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Discover() mismatch (-want +got):\n%s", diff)
	}
	assert.Empty(t, skipped, "excluded directories are not descended into")
	assert.ElementsMatch(t, []string{".git", "assets", "templates"}, pruned)
}

func TestDiscover_SkipsDirectoryNamedLikePage(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "odd.html"), 0755))
	writePage(t, root, "odd.html/inner.html")

	pages, err := Discover(root, nil, nil)
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, "odd.html/inner.html", pages[0].RelPath)
}

func TestDiscover_ReportsHiddenRootPages(t *testing.T) {
	root := t.TempDir()
	writePage(t, root, ".draft.html")
	writePage(t, root, "index.html")

	var skipped []string
	pages, err := Discover(root, nil, func(rel string, dir bool) {
		require.False(t, dir)
		skipped = append(skipped, rel)
	})
	require.NoError(t, err)

	assert.Len(t, pages, 1)
	assert.Equal(t, []string{".draft.html"}, skipped)
}

func TestDiscover_MissingRoot(t *testing.T) {
	_, err := Discover(filepath.Join(t.TempDir(), "missing"), nil, nil)
	assert.Error(t, err)
}

func TestComparePaths(t *testing.T) {
	assert.Negative(t, ComparePaths("a/x.html", "a-b/x.html"))
	assert.Negative(t, ComparePaths("guides/a.html", "index.html"))
	assert.Positive(t, ComparePaths("tools/b.html", "index.html"))
	assert.Zero(t, ComparePaths("x/y.html", "x/y.html"))
}

func TestGenerator_RoundTrip(t *testing.T) {
	root := t.TempDir()
	for _, rel := range []string{"index.html", "guides/a.html", "assets/skip.html", "tools/b.html"} {
		writePage(t, root, rel)
	}

	tracker := metrics.NewTracker()
	gen := NewGenerator(testConfig(root), tracker)

	out, err := gen.Run()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "sitemap.xml"), out)

	set, err := ReadFile(out)
	require.NoError(t, err)
	require.Len(t, set.URLs, 3)

	priorities := make(map[string]string)
	for _, entry := range set.URLs {
		priorities[entry.Loc] = entry.Priority
	}
	assert.Equal(t, map[string]string{
		"https://example.org/site/index.html":    "1.0",
		"https://example.org/site/guides/a.html": "0.9",
		"https://example.org/site/tools/b.html":  "0.8",
	}, priorities)

	snapshot := tracker.GetSnapshot()
	assert.Equal(t, 3, snapshot.EntriesWritten)
	assert.Equal(t, 3, snapshot.PagesScanned)
	assert.Equal(t, 0, snapshot.PagesSkipped)
	assert.Equal(t, 1, snapshot.DirsPruned)
}

func TestGenerator_ExactDocument(t *testing.T) {
	root := t.TempDir()
	writePage(t, root, "index.html")
	writePage(t, root, "guides/a.html")

	data, err := NewGenerator(testConfig(root), nil).Render()
	require.NoError(t, err)

	want := `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url>
    <loc>https://example.org/site/guides/a.html</loc>
    <lastmod>2024-03-05</lastmod>
    <changefreq>monthly</changefreq>
    <priority>0.9</priority>
  </url>
  <url>
    <loc>https://example.org/site/index.html</loc>
    <lastmod>2024-03-05</lastmod>
    <changefreq>weekly</changefreq>
    <priority>1.0</priority>
  </url>
</urlset>
`
	if diff := cmp.Diff(want, string(data)); diff != "" {
		t.Errorf("Render() mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerator_EscapesLocations(t *testing.T) {
	root := t.TempDir()
	writePage(t, root, "misc/r&d.html")

	data, err := NewGenerator(testConfig(root), nil).Render()
	require.NoError(t, err)
	assert.Contains(t, string(data), "<loc>https://example.org/site/misc/r&amp;d.html</loc>")
}

func TestGenerator_RunTwiceIsByteIdentical(t *testing.T) {
	root := t.TempDir()
	for _, rel := range []string{"index.html", "guides/a.html", "learn/x.html", "misc/bar.html"} {
		writePage(t, root, rel)
	}

	gen := NewGenerator(testConfig(root), nil)

	out, err := gen.Run()
	require.NoError(t, err)
	first, err := os.ReadFile(out)
	require.NoError(t, err)

	_, err = gen.Run()
	require.NoError(t, err)
	second, err := os.ReadFile(out)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestGenerator_OverwritesPreviousOutput(t *testing.T) {
	root := t.TempDir()
	writePage(t, root, "index.html")
	require.NoError(t, os.WriteFile(filepath.Join(root, "sitemap.xml"), []byte("stale content that is much longer than nothing"), 0644))

	out, err := NewGenerator(testConfig(root), nil).Run()
	require.NoError(t, err)

	set, err := ReadFile(out)
	require.NoError(t, err)
	require.Len(t, set.URLs, 1)
	assert.Equal(t, "https://example.org/site/index.html", set.URLs[0].Loc)
}

func TestGenerator_EmptyTree(t *testing.T) {
	root := t.TempDir()

	data, err := NewGenerator(testConfig(root), nil).Render()
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(root, "empty.xml"), data, 0644))
	set, err := ReadFile(filepath.Join(root, "empty.xml"))
	require.NoError(t, err)
	assert.Empty(t, set.URLs)
}

func TestGenerator_MissingRootWritesNothing(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(filepath.Join(dir, "missing"))
	cfg.OutputFile = filepath.Join(dir, "sitemap.xml")

	_, err := NewGenerator(cfg, nil).Run()
	require.Error(t, err)

	_, statErr := os.Stat(cfg.OutputFile)
	assert.ErrorIs(t, statErr, os.ErrNotExist)
}
