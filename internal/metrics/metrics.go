package metrics

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/alvmarrod/sitemap-weaver/internal/storage"
)

// Tracker holds and manages run metrics
type Tracker struct {
	mu   sync.Mutex
	data storage.Metrics
}

// NewTracker creates a new metrics tracker
func NewTracker() *Tracker {
	return &Tracker{
		data: storage.Metrics{
			StartTime: time.Now(),
		},
	}
}

// IncrementPagesScanned counts an HTML file examined during discovery.
// Files inside pruned directories are never examined.
func (t *Tracker) IncrementPagesScanned() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data.PagesScanned++
}

// IncrementPagesSkipped counts an HTML file rejected by the inclusion rules
func (t *Tracker) IncrementPagesSkipped() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data.PagesSkipped++
}

// IncrementDirsPruned counts a hidden or excluded top-level directory
// that discovery did not descend into
func (t *Tracker) IncrementDirsPruned() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data.DirsPruned++
}

// AddEntriesWritten records the number of <url> entries written
func (t *Tracker) AddEntriesWritten(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data.EntriesWritten += n
}

// IncrementPagesAudited increments the successful audit counter
func (t *Tracker) IncrementPagesAudited() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data.PagesAudited++
}

// IncrementPagesFailed increments the failed load counter
func (t *Tracker) IncrementPagesFailed() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data.PagesFailed++
}

// IncrementLinksRecorded increments the internal link counter
func (t *Tracker) IncrementLinksRecorded() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data.LinksRecorded++
}

// IncrementBrokenLinks increments the broken link counter
func (t *Tracker) IncrementBrokenLinks() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data.BrokenLinks++
}

// GetSnapshot returns a copy of current metrics
func (t *Tracker) GetSnapshot() storage.Metrics {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.data
}

// WriteToFile exports metrics to a JSON file
func (t *Tracker) WriteToFile(path, reason string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.data.EndTime = time.Now()
	t.data.TerminationReason = reason

	jsonData, err := json.MarshalIndent(t.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metrics: %w", err)
	}

	if err := os.WriteFile(path, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write metrics file: %w", err)
	}

	return nil
}

// LogProgress formats current metrics for the console
func (t *Tracker) LogProgress() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	return fmt.Sprintf("Pages: %d scanned, %d skipped, %d dirs pruned, %d written | Audit: %d pages, %d failed, %d links, %d broken",
		t.data.PagesScanned,
		t.data.PagesSkipped,
		t.data.DirsPruned,
		t.data.EntriesWritten,
		t.data.PagesAudited,
		t.data.PagesFailed,
		t.data.LinksRecorded,
		t.data.BrokenLinks,
	)
}
