package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// DefaultPath is the config file looked up when no path is given
const DefaultPath = "sitemap.json"

// Environment overrides, applied after the config file
const (
	EnvRootDir    = "SITEMAP_ROOT_DIR"
	EnvBaseURL    = "SITEMAP_BASE_URL"
	EnvOutputFile = "SITEMAP_OUTPUT_FILE"
	EnvLogLevel   = "SITEMAP_LOG_LEVEL"
)

// Defaults used when neither the config file nor the environment set a value
const (
	DefaultRootDir    = "."
	DefaultBaseURL    = "https://thomasschmitz.github.io/ai-optimization"
	DefaultOutputFile = "sitemap.xml"
)

// DefaultExcludedDirs are top-level directories that never hold published pages
var DefaultExcludedDirs = []string{"components", "downloads", "templates", "scripts", "assets"}

// Config holds all runtime configuration parameters
type Config struct {
	RootDir           string   `json:"root_dir"`
	BaseURL           string   `json:"base_url"`
	OutputFile        string   `json:"output_file"`
	ExcludedDirs      []string `json:"excluded_dirs"`
	LogLevel          string   `json:"log_level"`
	DBPath            string   `json:"db_path"`
	MetricsPath       string   `json:"metrics_path"`
	ConcurrentWorkers int      `json:"concurrent_workers"`
	MaxBodyBytes      int      `json:"max_body_bytes"`
	ExistsCacheSize   int      `json:"exists_cache_size"`
}

// LoadConfig reads and validates configuration from a JSON file.
// A missing file is not an error: the defaults are used instead.
func LoadConfig(path string) (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
	}

	var cfg Config

	file, err := os.Open(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		logrus.Debugf("Config file %s not found, using defaults", path)
	case err != nil:
		return nil, fmt.Errorf("failed to open config file: %w", err)
	default:
		defer file.Close()
		decoder := json.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyEnv overrides file values with non-empty environment variables
func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvRootDir)); v != "" {
		cfg.RootDir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvBaseURL)); v != "" {
		cfg.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvOutputFile)); v != "" {
		cfg.OutputFile = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.LogLevel = v
	}
}

// applyDefaults sets default values for unspecified fields
func applyDefaults(cfg *Config) {
	if cfg.RootDir == "" {
		cfg.RootDir = DefaultRootDir
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.OutputFile == "" {
		cfg.OutputFile = DefaultOutputFile
	}
	if cfg.ExcludedDirs == nil {
		cfg.ExcludedDirs = append([]string(nil), DefaultExcludedDirs...)
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "audit.db"
	}
	if cfg.MetricsPath == "" {
		cfg.MetricsPath = "metrics.json"
	}
	if cfg.ConcurrentWorkers == 0 {
		cfg.ConcurrentWorkers = 3
	}
	if cfg.MaxBodyBytes == 0 {
		cfg.MaxBodyBytes = 4 << 20
	}
	if cfg.ExistsCacheSize == 0 {
		cfg.ExistsCacheSize = 1024
	}
}

// validate checks that required fields are present and values are sensible
func validate(cfg *Config) error {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return fmt.Errorf("base_url is not a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base_url must use http or https, got %q", cfg.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("base_url must include a host")
	}
	for _, dir := range cfg.ExcludedDirs {
		if dir == "" || strings.ContainsAny(dir, `/\`) {
			return fmt.Errorf("excluded_dirs entry %q must be a single directory name", dir)
		}
	}
	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	if cfg.ConcurrentWorkers < 1 {
		return fmt.Errorf("concurrent_workers must be >= 1")
	}
	if cfg.MaxBodyBytes < 1 {
		return fmt.Errorf("max_body_bytes must be >= 1")
	}
	if cfg.ExistsCacheSize < 1 {
		return fmt.Errorf("exists_cache_size must be >= 1")
	}
	return nil
}

// Level returns the parsed log level; validate guarantees it parses
func (c *Config) Level() logrus.Level {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}
