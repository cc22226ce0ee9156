package metrics

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/alvmarrod/sitemap-weaver/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracker_ConcurrentIncrements(t *testing.T) {
	tracker := NewTracker()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tracker.IncrementPagesAudited()
			tracker.IncrementLinksRecorded()
		}()
	}
	wg.Wait()

	snapshot := tracker.GetSnapshot()
	assert.Equal(t, 50, snapshot.PagesAudited)
	assert.Equal(t, 50, snapshot.LinksRecorded)
}

func TestTracker_WriteToFile(t *testing.T) {
	tracker := NewTracker()
	tracker.IncrementPagesScanned()
	tracker.IncrementPagesScanned()
	tracker.IncrementPagesSkipped()
	tracker.IncrementDirsPruned()
	tracker.AddEntriesWritten(1)

	path := filepath.Join(t.TempDir(), "metrics.json")
	require.NoError(t, tracker.WriteToFile(path, "completed"))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var got storage.Metrics
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, 2, got.PagesScanned)
	assert.Equal(t, 1, got.PagesSkipped)
	assert.Equal(t, 1, got.DirsPruned)
	assert.Equal(t, 1, got.EntriesWritten)
	assert.Equal(t, "completed", got.TerminationReason)
	assert.False(t, got.EndTime.Before(got.StartTime))
}

func TestTracker_LogProgress(t *testing.T) {
	tracker := NewTracker()
	tracker.AddEntriesWritten(3)
	tracker.IncrementDirsPruned()
	tracker.IncrementBrokenLinks()

	assert.Equal(t,
		"Pages: 0 scanned, 0 skipped, 1 dirs pruned, 3 written | Audit: 0 pages, 0 failed, 0 links, 1 broken",
		tracker.LogProgress())
}
