package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/thefranke/rss-librarian/internal/token"
)

func TestLoadCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "librarian.json")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if !cfg.ExtractContent {
		t.Error("expected extract_content default true")
	}
	if cfg.MaxItems != 100 {
		t.Errorf("max_items = %d, want 100", cfg.MaxItems)
	}
	if !cfg.UseRSSFormat {
		t.Error("expected use_rss_format default true")
	}
	if cfg.DirFeeds != "feeds" {
		t.Errorf("dir_feeds = %q, want %q", cfg.DirFeeds, "feeds")
	}
	if cfg.Icon != DefaultIcon {
		t.Errorf("icon = %q, want default icon", cfg.Icon)
	}
	if !token.Valid(cfg.AdminID) {
		t.Errorf("admin_id %q is not a valid token", cfg.AdminID)
	}

	// The file must have been created with the generated admin token inside.
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("config file was not created: %v", err)
	}
	var onDisk map[string]any
	if err := json.Unmarshal(raw, &onDisk); err != nil {
		t.Fatalf("config file is not valid JSON: %v", err)
	}
	if onDisk["admin_id"] != cfg.AdminID {
		t.Errorf("persisted admin_id = %v, want %q", onDisk["admin_id"], cfg.AdminID)
	}
}

func TestLoadAdminIDStable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "librarian.json")

	first, err := Load(path)
	if err != nil {
		t.Fatalf("first Load() returned error: %v", err)
	}
	second, err := Load(path)
	if err != nil {
		t.Fatalf("second Load() returned error: %v", err)
	}

	if first.AdminID != second.AdminID {
		t.Errorf("admin_id changed between loads: %q then %q", first.AdminID, second.AdminID)
	}
}

func TestLoadPartialOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "librarian.json")
	partial := `{"max_items": 5, "use_rss_format": false, "admin_id": "0000000000000000000000000000000000000000000000000000000000000000"}`
	if err := os.WriteFile(path, []byte(partial), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.MaxItems != 5 {
		t.Errorf("max_items = %d, want 5", cfg.MaxItems)
	}
	if cfg.UseRSSFormat {
		t.Error("use_rss_format should be overridden to false")
	}
	// Untouched keys keep their defaults.
	if !cfg.ExtractContent {
		t.Error("extract_content should keep default true")
	}
	if cfg.DirFeeds != "feeds" {
		t.Errorf("dir_feeds = %q, want default %q", cfg.DirFeeds, "feeds")
	}
}

func TestRetentionWindows(t *testing.T) {
	cfg := &Config{DeleteAbandonedAfter: 1000, DeleteBogusAfter: 10}
	if cfg.AbandonedAfter().Seconds() != 1000 {
		t.Errorf("AbandonedAfter = %v, want 1000s", cfg.AbandonedAfter())
	}
	if cfg.BogusAfter().Seconds() != 10 {
		t.Errorf("BogusAfter = %v, want 10s", cfg.BogusAfter())
	}
}

func TestFeedLogoFallsBackToIcon(t *testing.T) {
	cfg := &Config{Icon: "https://example.com/icon.svg"}
	if got := cfg.FeedLogo(); got != cfg.Icon {
		t.Errorf("FeedLogo() = %q, want icon %q", got, cfg.Icon)
	}

	cfg.Logo = "https://example.com/logo.svg"
	if got := cfg.FeedLogo(); got != cfg.Logo {
		t.Errorf("FeedLogo() = %q, want logo %q", got, cfg.Logo)
	}
}
