package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "27174", cfg.StationID)
	assert.Equal(t, "Winnipeg", cfg.LocationName)
	assert.Equal(t, "table.table-striped", cfg.TableSelector)
	assert.Equal(t, 8, cfg.CrawlWorkers)
	assert.Equal(t, 30*time.Second, cfg.CrawlTimeout)
	assert.Empty(t, cfg.UserAgentList())
	assert.Empty(t, cfg.ProxyList())

	start, err := cfg.BackfillStartDate()
	require.NoError(t, err)
	assert.Equal(t, time.Date(1840, 1, 1, 0, 0, 0, 0, time.UTC), start)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CRAWL_WORKERS", "3")
	t.Setenv("CRAWL_TIMEOUT", "5s")
	t.Setenv("LOCATION_NAME", "Brandon")
	t.Setenv("USER_AGENTS", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko)|curl/8.0")
	t.Setenv("PROXY_URLS", "http://a:1, http://b:2")

	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.CrawlWorkers)
	assert.Equal(t, 5*time.Second, cfg.CrawlTimeout)
	assert.Equal(t, "Brandon", cfg.LocationName)
	assert.Equal(t, []string{
		"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko)",
		"curl/8.0",
	}, cfg.UserAgentList())
	assert.Equal(t, []string{"http://a:1", "http://b:2"}, cfg.ProxyList())
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("STATION_ID=3698\nBACKFILL_START=1872-01-01\n"), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "3698", cfg.StationID)
	assert.Equal(t, "1872-01-01", cfg.BackfillStart)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			DBDriver:      "sqlite",
			SQLitePath:    "x.db",
			FetchMode:     "http",
			CrawlWorkers:  1,
			CrawlTimeout:  time.Second,
			LockTTL:       time.Minute,
			SourceBaseURL: "http://example.com",
			StationID:     "1",
			LocationName:  "Here",
			BackfillStart: "1840-01-01",
		}
	}
	require.NoError(t, base().Validate())

	tests := map[string]func(c *Config){
		"bad driver":     func(c *Config) { c.DBDriver = "mysql" },
		"bad fetch mode": func(c *Config) { c.FetchMode = "ftp" },
		"zero workers":   func(c *Config) { c.CrawlWorkers = 0 },
		"zero timeout":   func(c *Config) { c.CrawlTimeout = 0 },
		"bad start":      func(c *Config) { c.BackfillStart = "1840/01/01" },
		"bad schedule":   func(c *Config) { c.UpdateSchedule = "every day" },
		"no location":    func(c *Config) { c.LocationName = "" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			c := base()
			mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}
