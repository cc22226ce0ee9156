package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alvmarrod/sitemap-weaver/internal/audit"
	"github.com/alvmarrod/sitemap-weaver/internal/config"
	"github.com/alvmarrod/sitemap-weaver/internal/metrics"
	"github.com/alvmarrod/sitemap-weaver/internal/sitemap"
	"github.com/alvmarrod/sitemap-weaver/internal/storage"
	"github.com/alvmarrod/sitemap-weaver/internal/version"
	"github.com/sirupsen/logrus"
)

// exitBrokenLinks is returned when the audit found broken internal links
const exitBrokenLinks = 2

func main() {
	// Configure logging
	logrus.SetLevel(logrus.InfoLevel)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	logrus.Infof("Sitemap Weaver audit v%s starting...", version.Version)

	cfg, err := config.LoadConfig(config.DefaultPath)
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	logrus.SetLevel(cfg.Level())

	gen := sitemap.NewGenerator(cfg, nil)
	set, err := sitemap.ReadFile(gen.OutputPath())
	if err != nil {
		logrus.Fatalf("Failed to read sitemap (run sitemapgen first): %v", err)
	}
	logrus.Infof("Sitemap loaded: %d locations from %s", len(set.URLs), gen.OutputPath())

	store, err := storage.NewStorage(cfg.DBPath)
	if err != nil {
		logrus.Fatalf("Failed to initialize storage: %v", err)
	}
	defer store.Close()

	logrus.Infof("Database initialized: %s", cfg.DBPath)

	tracker := metrics.NewTracker()

	auditor, err := audit.NewAuditor(cfg, store, tracker)
	if err != nil {
		logrus.Fatalf("Failed to initialize auditor: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := auditor.Run(ctx, set)
	if err != nil {
		if writeErr := tracker.WriteToFile(cfg.MetricsPath, "failed"); writeErr != nil {
			logrus.Errorf("Failed to write metrics: %v", writeErr)
		}
		logrus.Fatalf("Audit failed: %v", err)
	}

	for _, link := range report.Broken {
		logrus.Warnf("BROKEN   %s -> %s", link.Source, link.Target)
	}
	for _, page := range report.Orphans {
		logrus.Warnf("ORPHAN   %s", page)
	}
	for _, page := range report.NoIndex {
		logrus.Warnf("NOINDEX  %s", page)
	}
	for _, m := range report.CanonicalMismatch {
		logrus.Warnf("CANONICAL %s: listed as %s, canonical %s", m.Page, m.Loc, m.Canonical)
	}

	logrus.Info("Final stats: " + tracker.LogProgress())
	logrus.Infof("Link graph: %d pages, %d links", report.PagesInGraph, report.LinksInGraph)

	if err := tracker.WriteToFile(cfg.MetricsPath, "completed"); err != nil {
		logrus.Errorf("Failed to write metrics: %v", err)
	} else {
		logrus.Infof("Metrics written to %s", cfg.MetricsPath)
	}

	if len(report.Broken) > 0 {
		store.Close()
		os.Exit(exitBrokenLinks)
	}
}
