package storage

import "time"

// Page status values
const (
	StatusListed  = "listed"  // present in the sitemap and audited
	StatusLinked  = "linked"  // not in the sitemap, but an existing link target
	StatusMissing = "missing" // link target with no file behind it
)

// Page represents a site page in the link graph
type Page struct {
	PageID      int
	Path        string
	Description string
	Status      string
	CreatedAt   time.Time
}

// Link represents a directed link between two pages
type Link struct {
	LinkID     int
	FromPageID int
	ToPageID   int
	Weight     int
}

// Metrics tracks run statistics for export on exit
type Metrics struct {
	StartTime         time.Time `json:"start_time"`
	EndTime           time.Time `json:"end_time"`
	PagesScanned      int       `json:"pages_scanned"`
	PagesSkipped      int       `json:"pages_skipped"`
	DirsPruned        int       `json:"dirs_pruned"`
	EntriesWritten    int       `json:"entries_written"`
	PagesAudited      int       `json:"pages_audited"`
	PagesFailed       int       `json:"pages_failed"`
	LinksRecorded     int       `json:"links_recorded"`
	BrokenLinks       int       `json:"broken_links"`
	TerminationReason string    `json:"termination_reason"`
}
