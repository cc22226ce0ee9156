package audit

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/alvmarrod/sitemap-weaver/internal/config"
	"github.com/alvmarrod/sitemap-weaver/internal/memory"
	"github.com/alvmarrod/sitemap-weaver/internal/metrics"
	"github.com/alvmarrod/sitemap-weaver/internal/sitemap"
	"github.com/alvmarrod/sitemap-weaver/internal/storage"
	"github.com/gocolly/colly/v2"
	"github.com/sirupsen/logrus"
)

// BrokenLink is an internal link whose target has no file behind it
type BrokenLink struct {
	Source string
	Target string
}

// CanonicalMismatch is a page whose canonical URL differs from its sitemap location
type CanonicalMismatch struct {
	Page      string
	Loc       string
	Canonical string
}

// Report summarizes an audit run
type Report struct {
	PagesVisited      int
	PagesFailed       int
	LinksRecorded     int
	Broken            []BrokenLink
	Orphans           []string
	NoIndex           []string
	CanonicalMismatch []CanonicalMismatch

	// Size of the link graph once the audit finished
	PagesInGraph int
	LinksInGraph int
}

// Auditor loads every sitemap page through colly and checks its links
type Auditor struct {
	cfg       *config.Config
	site      *Site
	storage   *storage.Storage
	graph     *memory.PageGraph
	tracker   *metrics.Tracker
	queue     *Queue
	collector *colly.Collector

	mu        sync.Mutex
	report    Report
	brokenSet map[BrokenLink]bool
}

// NewAuditor creates an auditor for the configured site
func NewAuditor(cfg *config.Config, store *storage.Storage, tracker *metrics.Tracker) (*Auditor, error) {
	site, err := NewSite(cfg.RootDir, cfg.BaseURL, cfg.ExistsCacheSize)
	if err != nil {
		return nil, err
	}

	if tracker == nil {
		tracker = metrics.NewTracker()
	}

	a := &Auditor{
		cfg:       cfg,
		site:      site,
		storage:   store,
		graph:     memory.NewPageGraph(),
		tracker:   tracker,
		queue:     NewQueue(),
		brokenSet: make(map[BrokenLink]bool),
	}

	if err := a.setupColly(); err != nil {
		return nil, err
	}
	return a, nil
}

// setupColly configures the collector with the local transport and callbacks
func (a *Auditor) setupColly() error {
	a.collector = colly.NewCollector(
		colly.Async(true),
		colly.MaxDepth(0),
		colly.MaxBodySize(a.cfg.MaxBodyBytes),
		colly.IgnoreRobotsTxt(),
	)
	a.collector.WithTransport(NewPageTransport(a.site))

	if err := a.collector.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: a.cfg.ConcurrentWorkers,
	}); err != nil {
		return fmt.Errorf("failed to set collector limits: %w", err)
	}

	// Title first so that it wins over the meta description
	a.collector.OnHTML("title", func(e *colly.HTMLElement) {
		rel, ok := a.site.Resolve(e.Request.URL)
		if !ok {
			return
		}
		a.graph.UpsertPage(rel, truncate(e.Text), storage.StatusListed)
	})

	a.collector.OnHTML("meta[name=description]", func(e *colly.HTMLElement) {
		rel, ok := a.site.Resolve(e.Request.URL)
		if !ok {
			return
		}
		a.graph.UpsertPage(rel, truncate(e.Attr("content")), storage.StatusListed)
	})

	a.collector.OnHTML("head", func(e *colly.HTMLElement) {
		rel, ok := a.site.Resolve(e.Request.URL)
		if !ok {
			return
		}
		a.inspectHead(rel, e.Request.URL, e.DOM)
	})

	a.collector.OnHTML("a[href]", func(e *colly.HTMLElement) {
		rel, ok := a.site.Resolve(e.Request.URL)
		if !ok {
			return
		}
		a.handleLink(rel, e.Request.URL, e.Attr("href"))
	})

	a.collector.OnResponse(func(r *colly.Response) {
		logrus.Debugf("Loaded %s (status=%d, %d bytes)", r.Request.URL, r.StatusCode, len(r.Body))
		a.tracker.IncrementPagesAudited()
		a.mu.Lock()
		a.report.PagesVisited++
		a.mu.Unlock()
	})

	a.collector.OnError(func(r *colly.Response, err error) {
		if r != nil && r.Request != nil {
			logrus.Errorf("Failed to load %s: %v (status: %d)", r.Request.URL, err, r.StatusCode)
		} else {
			logrus.Errorf("Failed to load page: %v", err)
		}
		a.tracker.IncrementPagesFailed()
		a.mu.Lock()
		a.report.PagesFailed++
		a.mu.Unlock()
	})

	return nil
}

// Run audits every page listed in set and flushes the link graph to storage
func (a *Auditor) Run(ctx context.Context, set *sitemap.URLSet) (*Report, error) {
	for _, entry := range set.URLs {
		u, err := url.Parse(strings.TrimSpace(entry.Loc))
		if err != nil {
			logrus.Warnf("Skipping malformed location %q: %v", entry.Loc, err)
			continue
		}
		rel, ok := a.site.Resolve(u)
		if !ok {
			logrus.Warnf("Skipping location outside the site: %s", entry.Loc)
			continue
		}
		if !a.queue.Push(Target{Loc: u.String(), RelPath: rel}) {
			logrus.Warnf("Duplicate sitemap location: %s", entry.Loc)
			continue
		}
		a.graph.UpsertPage(rel, "", storage.StatusListed)
	}

	logrus.Infof("Auditing %d pages with %d workers", a.queue.Size(), a.cfg.ConcurrentWorkers)

	for {
		if err := ctx.Err(); err != nil {
			a.collector.Wait()
			return nil, fmt.Errorf("audit interrupted: %w", err)
		}

		target, ok := a.queue.Pop()
		if !ok {
			break
		}
		if err := a.collector.Visit(target.Loc); err != nil {
			logrus.Warnf("Visit failed for %s: %v", target.Loc, err)
			a.tracker.IncrementPagesFailed()
			a.mu.Lock()
			a.report.PagesFailed++
			a.mu.Unlock()
		}
	}

	a.collector.Wait()

	if err := a.graph.Flush(a.storage); err != nil {
		return nil, fmt.Errorf("failed to flush link graph: %w", err)
	}

	orphans, err := a.findOrphans()
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	report := a.report
	report.Orphans = orphans
	report.PagesInGraph, report.LinksInGraph = a.graph.GetStats()
	report.Broken = append([]BrokenLink(nil), a.report.Broken...)
	sort.Slice(report.Broken, func(i, j int) bool {
		if report.Broken[i].Source != report.Broken[j].Source {
			return sitemap.ComparePaths(report.Broken[i].Source, report.Broken[j].Source) < 0
		}
		return sitemap.ComparePaths(report.Broken[i].Target, report.Broken[j].Target) < 0
	})
	report.NoIndex = append([]string(nil), a.report.NoIndex...)
	sort.Slice(report.NoIndex, func(i, j int) bool {
		return sitemap.ComparePaths(report.NoIndex[i], report.NoIndex[j]) < 0
	})
	report.CanonicalMismatch = append([]CanonicalMismatch(nil), a.report.CanonicalMismatch...)
	sort.Slice(report.CanonicalMismatch, func(i, j int) bool {
		return sitemap.ComparePaths(report.CanonicalMismatch[i].Page, report.CanonicalMismatch[j].Page) < 0
	})

	return &report, nil
}

// handleLink processes a single extracted link
func (a *Auditor) handleLink(sourceRel string, pageURL *url.URL, href string) {
	targetRel, ok := ResolveLink(a.site, pageURL, href)
	if !ok {
		return
	}

	status := storage.StatusLinked
	if !a.site.Exists(targetRel) {
		status = storage.StatusMissing
	}

	sourceID := a.graph.UpsertPage(sourceRel, "", storage.StatusListed)
	targetID := a.graph.UpsertPage(targetRel, "", status)
	if err := a.graph.AddLink(sourceID, targetID); err != nil {
		logrus.Warnf("Failed to record link %s -> %s: %v", sourceRel, targetRel, err)
		return
	}
	a.tracker.IncrementLinksRecorded()

	a.mu.Lock()
	defer a.mu.Unlock()
	a.report.LinksRecorded++

	if status != storage.StatusMissing {
		return
	}
	broken := BrokenLink{Source: sourceRel, Target: targetRel}
	if a.brokenSet[broken] {
		return
	}
	a.brokenSet[broken] = true
	a.report.Broken = append(a.report.Broken, broken)
	a.tracker.IncrementBrokenLinks()
	logrus.Warnf("Broken link: %s -> %s", sourceRel, targetRel)
}

// inspectHead checks robots directives and the canonical URL of a page
func (a *Auditor) inspectHead(rel string, pageURL *url.URL, head *goquery.Selection) {
	robots := strings.ToLower(head.Find(`meta[name="robots"]`).AttrOr("content", ""))
	noIndex := strings.Contains(robots, "noindex")

	var mismatch *CanonicalMismatch
	if href, ok := head.Find(`link[rel="canonical"]`).Attr("href"); ok && strings.TrimSpace(href) != "" {
		canonical, err := pageURL.Parse(strings.TrimSpace(href))
		if err == nil {
			// Compare the files both URLs are served from, not their spelling
			if canonicalRel, ok := a.site.Resolve(canonical); !ok || canonicalRel != rel {
				mismatch = &CanonicalMismatch{Page: rel, Loc: pageURL.String(), Canonical: canonical.String()}
			}
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if noIndex {
		logrus.Warnf("Page %s is listed but marked noindex", rel)
		a.report.NoIndex = append(a.report.NoIndex, rel)
	}
	if mismatch != nil {
		logrus.Warnf("Page %s declares canonical %s", rel, mismatch.Canonical)
		a.report.CanonicalMismatch = append(a.report.CanonicalMismatch, *mismatch)
	}
}

// findOrphans lists sitemap pages nothing else links to, except the root index
func (a *Auditor) findOrphans() ([]string, error) {
	counts, err := a.storage.InboundCounts()
	if err != nil {
		return nil, err
	}

	var orphans []string
	for rel, inbound := range counts {
		if inbound > 0 || rel == sitemap.IndexName {
			continue
		}
		page := a.graph.GetPage(rel)
		if page == nil || page.Status != storage.StatusListed {
			continue
		}
		orphans = append(orphans, rel)
	}
	sort.Slice(orphans, func(i, j int) bool {
		return sitemap.ComparePaths(orphans[i], orphans[j]) < 0
	})
	return orphans, nil
}
