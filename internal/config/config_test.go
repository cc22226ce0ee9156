package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvRootDir, EnvBaseURL, EnvOutputFile, EnvLogLevel} {
		t.Setenv(key, "")
	}
	// LoadConfig looks for .env in the working directory
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sitemap.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)

	assert.Equal(t, DefaultRootDir, cfg.RootDir)
	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, DefaultOutputFile, cfg.OutputFile)
	assert.Equal(t, DefaultExcludedDirs, cfg.ExcludedDirs)
	assert.Equal(t, "audit.db", cfg.DBPath)
	assert.Equal(t, "metrics.json", cfg.MetricsPath)
	assert.Equal(t, 3, cfg.ConcurrentWorkers)
	assert.Equal(t, 4<<20, cfg.MaxBodyBytes)
	assert.Equal(t, 1024, cfg.ExistsCacheSize)
	assert.Equal(t, logrus.InfoLevel, cfg.Level())
}

func TestLoadConfig_FileValues(t *testing.T) {
	clearEnv(t)

	path := writeConfig(t, `{
		"root_dir": "site",
		"base_url": "https://example.org/docs/",
		"excluded_dirs": ["drafts"],
		"log_level": "debug",
		"concurrent_workers": 8
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "site", cfg.RootDir)
	assert.Equal(t, "https://example.org/docs", cfg.BaseURL, "trailing slash is trimmed")
	assert.Equal(t, []string{"drafts"}, cfg.ExcludedDirs)
	assert.Equal(t, logrus.DebugLevel, cfg.Level())
	assert.Equal(t, 8, cfg.ConcurrentWorkers)
	assert.Equal(t, DefaultOutputFile, cfg.OutputFile)
}

func TestLoadConfig_EmptyExcludedDirsIsKept(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig(writeConfig(t, `{"excluded_dirs": []}`))
	require.NoError(t, err)
	assert.Empty(t, cfg.ExcludedDirs)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvBaseURL, "http://localhost:8080")
	t.Setenv(EnvOutputFile, "out.xml")

	cfg, err := LoadConfig(writeConfig(t, `{"base_url": "https://example.org"}`))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", cfg.BaseURL)
	assert.Equal(t, "out.xml", cfg.OutputFile)
}

func TestLoadConfig_DotEnv(t *testing.T) {
	clearEnv(t)
	require.NoError(t, os.Unsetenv(EnvRootDir))
	require.NoError(t, os.WriteFile(".env", []byte(EnvRootDir+"=public\n"), 0644))

	cfg, err := LoadConfig("absent.json")
	require.NoError(t, err)
	assert.Equal(t, "public", cfg.RootDir)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"base_url": `},
		{"unknown field", `{"seed_url": "https://example.org"}`},
		{"relative base url", `{"base_url": "/docs"}`},
		{"ftp base url", `{"base_url": "ftp://example.org"}`},
		{"nested excluded dir", `{"excluded_dirs": ["a/b"]}`},
		{"bad log level", `{"log_level": "loud"}`},
		{"negative workers", `{"concurrent_workers": -1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			_, err := LoadConfig(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}
