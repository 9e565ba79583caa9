package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Content.MaxPostLength != 280 {
		t.Fatalf("expected max post length 280, got %d", cfg.Content.MaxPostLength)
	}
	if cfg.Content.FreshnessHours != 24 {
		t.Fatalf("expected freshness window 24h, got %d", cfg.Content.FreshnessHours)
	}
	if len(cfg.Sources.RSSFeeds) == 0 {
		t.Fatal("expected default RSS feeds")
	}
	if cfg.Database.RetentionDays != 30 {
		t.Fatalf("expected retention 30 days, got %d", cfg.Database.RetentionDays)
	}
}

func TestLoadMergesFileConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
database:
  path: /tmp/other.db
content:
  maxPostLength: 240
  baseHashtags: ["#tech"]
schedule:
  postingTimes: ["08:30"]
  timezone: UTC
`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(configPathEnv, path)

	cfg := Load()

	if cfg.Database.Path != "/tmp/other.db" {
		t.Fatalf("file path not applied: %s", cfg.Database.Path)
	}
	if cfg.Content.MaxPostLength != 240 {
		t.Fatalf("max length not applied: %d", cfg.Content.MaxPostLength)
	}
	if len(cfg.Schedule.PostingTimes) != 1 || cfg.Schedule.PostingTimes[0] != "08:30" {
		t.Fatalf("posting times not applied: %v", cfg.Schedule.PostingTimes)
	}
	if cfg.Schedule.Location().String() != "UTC" {
		t.Fatalf("timezone not bound: %s", cfg.Schedule.Location())
	}
	// untouched keys keep defaults
	if cfg.Content.MinPostLength != 50 {
		t.Fatalf("defaults lost in merge: %d", cfg.Content.MinPostLength)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv(configPathEnv, "")
	t.Setenv(newsAPIKeyEnv, "key-from-env")
	t.Setenv(twitterTokenEnv, "token-from-env")
	t.Setenv(logLevelEnv, "debug")

	cfg := Load()

	if cfg.Sources.NewsAPI.APIKey != "key-from-env" {
		t.Fatalf("news api key override missing: %s", cfg.Sources.NewsAPI.APIKey)
	}
	if cfg.Twitter.AccessToken != "token-from-env" {
		t.Fatalf("twitter token override missing")
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("log level override missing: %s", cfg.Logging.Level)
	}
}
