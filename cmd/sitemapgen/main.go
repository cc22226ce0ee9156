package main

import (
	"time"

	"github.com/alvmarrod/sitemap-weaver/internal/config"
	"github.com/alvmarrod/sitemap-weaver/internal/metrics"
	"github.com/alvmarrod/sitemap-weaver/internal/sitemap"
	"github.com/alvmarrod/sitemap-weaver/internal/version"
	"github.com/sirupsen/logrus"
)

func main() {
	// Configure logging
	logrus.SetLevel(logrus.InfoLevel)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	logrus.Infof("Sitemap Weaver v%s starting...", version.Version)

	cfg, err := config.LoadConfig(config.DefaultPath)
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	logrus.SetLevel(cfg.Level())

	logrus.Infof("Configuration loaded: root=%s, base=%s, excluded=%v",
		cfg.RootDir, cfg.BaseURL, cfg.ExcludedDirs)

	tracker := metrics.NewTracker()
	start := time.Now()

	out, err := sitemap.NewGenerator(cfg, tracker).Run()
	if err != nil {
		logrus.Fatalf("Failed to generate sitemap: %v", err)
	}

	logrus.Info(tracker.LogProgress())
	logrus.Infof("Sitemap written to %s in %v", out, time.Since(start))
}
