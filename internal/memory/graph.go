package memory

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/alvmarrod/sitemap-weaver/internal/storage"
	"github.com/sirupsen/logrus"
)

type linkKey struct {
	from, to int
}

// PageGraph holds the site link graph in memory while pages are audited
type PageGraph struct {
	pages       map[string]*storage.Page // path -> page
	pagesByID   map[int]*storage.Page
	links       map[linkKey]int // weight
	pageCounter int
	mu          sync.RWMutex
}

// NewPageGraph creates an empty graph
func NewPageGraph() *PageGraph {
	return &PageGraph{
		pages:     make(map[string]*storage.Page),
		pagesByID: make(map[int]*storage.Page),
		links:     make(map[linkKey]int),
	}
}

// UpsertPage inserts a page or updates an existing one.
// The description is only filled in when still empty, and a listed page
// never loses its listed status. Returns the page's in-memory ID.
func (g *PageGraph) UpsertPage(path, description, status string) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	if page, exists := g.pages[path]; exists {
		if description != "" && page.Description == "" {
			page.Description = description
		}
		if status == storage.StatusListed || page.Status != storage.StatusListed {
			page.Status = status
		}
		return page.PageID
	}

	g.pageCounter++
	page := &storage.Page{
		PageID:      g.pageCounter,
		Path:        path,
		Description: description,
		Status:      status,
		CreatedAt:   time.Now(),
	}

	g.pages[path] = page
	g.pagesByID[page.PageID] = page

	return page.PageID
}

// GetPage retrieves a copy of a page by path, nil if unknown
func (g *PageGraph) GetPage(path string) *storage.Page {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if page, exists := g.pages[path]; exists {
		pageCopy := *page
		return &pageCopy
	}
	return nil
}

// AddLink records a link between two known pages, adding to its weight
func (g *PageGraph) AddLink(fromID, toID int) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.pagesByID[fromID]; !exists {
		return fmt.Errorf("source page %d not found", fromID)
	}
	if _, exists := g.pagesByID[toID]; !exists {
		return fmt.Errorf("target page %d not found", toID)
	}

	g.links[linkKey{from: fromID, to: toID}]++
	return nil
}

// GetStats returns current graph statistics
func (g *PageGraph) GetStats() (pageCount, linkCount int) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return len(g.pages), len(g.links)
}

// Flush writes the graph to storage, replacing any earlier audit
func (g *PageGraph) Flush(store *storage.Storage) error {
	g.mu.RLock()
	defer g.mu.RUnlock()

	startTime := time.Now()
	logrus.Info("Starting flush to database...")

	if err := store.Reset(); err != nil {
		return err
	}

	paths := make([]string, 0, len(g.pages))
	for path := range g.pages {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	// Memory IDs and database IDs diverge once rows are reused
	idMap := make(map[int]int, len(paths))
	var firstErr error

	for _, path := range paths {
		page := g.pages[path]
		dbID, err := store.UpsertPage(page.Path, page.Description, page.Status)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			logrus.Warnf("Failed to flush page %s: %v", page.Path, err)
			continue
		}
		idMap[page.PageID] = dbID
	}

	linksWritten := 0
	for key, weight := range g.links {
		dbFromID, fromExists := idMap[key.from]
		dbToID, toExists := idMap[key.to]
		if !fromExists || !toExists {
			logrus.Warnf("Skipping link %d->%d: page ID mapping not found", key.from, key.to)
			continue
		}

		if err := store.UpsertLink(dbFromID, dbToID, weight); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			logrus.Warnf("Failed to flush link %d->%d: %v", dbFromID, dbToID, err)
			continue
		}
		linksWritten++
	}

	logrus.Infof("Flush complete: %d pages, %d links written in %v", len(idMap), linksWritten, time.Since(startTime))

	return firstErr
}
