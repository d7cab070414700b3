package maintenance

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/thefranke/rss-librarian/internal/config"
	"github.com/thefranke/rss-librarian/internal/feed"
)

var sweepNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestSweeper(t *testing.T, abandonedAfter, bogusAfter int) (*Sweeper, *config.Config) {
	t.Helper()

	cfg := &config.Config{
		MaxItems:             100,
		UseRSSFormat:         true,
		DirFeeds:             t.TempDir(),
		Icon:                 config.DefaultIcon,
		URLBase:              "https://localhost",
		DeleteAbandonedAfter: abandonedAfter,
		DeleteBogusAfter:     bogusAfter,
	}

	s := NewSweeper(cfg)
	s.now = func() time.Time { return sweepNow }
	return s, cfg
}

// writeFeed creates a feed file with n items whose modification time lies
// ageSeconds in the past.
func writeFeed(t *testing.T, cfg *config.Config, ownerID string, n, ageSeconds int) {
	t.Helper()

	items := make([]feed.Item, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, feed.Item{
			URL:       "https://example.com/" + ownerID + "/" + string(rune('a'+i)),
			Title:     "Item",
			Content:   "Body",
			Published: sweepNow.Add(-time.Duration(ageSeconds) * time.Second),
		})
	}

	raw, err := feed.Encode(ownerID, feed.FormatRSS, cfg, items, sweepNow)
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(cfg.DirFeeds, ownerID+".xml")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatal(err)
	}

	mtime := sweepNow.Add(-time.Duration(ageSeconds) * time.Second)
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatal(err)
	}
}

func candidateByOwner(candidates []Candidate, ownerID string) *Candidate {
	for i := range candidates {
		if candidates[i].OwnerID == ownerID {
			return &candidates[i]
		}
	}
	return nil
}

func TestScanAbandonedIgnoresItemCount(t *testing.T) {
	s, cfg := newTestSweeper(t, 1000, 100)

	writeFeed(t, cfg, "old5items", 5, 2000)

	candidates, err := s.Scan()
	if err != nil {
		t.Fatalf("Scan() returned error: %v", err)
	}

	candidate := candidateByOwner(candidates, "old5items")
	if candidate == nil {
		t.Fatal("feed past the abandoned window was not a candidate")
	}
	if candidate.Reason != ReasonAbandoned {
		t.Errorf("reason = %q, want %q", candidate.Reason, ReasonAbandoned)
	}
	if candidate.ItemCount != 5 {
		t.Errorf("item count = %d, want 5", candidate.ItemCount)
	}
}

func TestScanBogusClassification(t *testing.T) {
	s, cfg := newTestSweeper(t, 100000, 5000)

	writeFeed(t, cfg, "oneitem", 1, 8000)
	writeFeed(t, cfg, "twoitems", 2, 8000)
	writeFeed(t, cfg, "freshsingle", 1, 1000)

	candidates, err := s.Scan()
	if err != nil {
		t.Fatalf("Scan() returned error: %v", err)
	}

	candidate := candidateByOwner(candidates, "oneitem")
	if candidate == nil {
		t.Fatal("aged single-item feed was not a candidate")
	}
	if candidate.Reason != ReasonBogus {
		t.Errorf("reason = %q, want %q", candidate.Reason, ReasonBogus)
	}

	if candidateByOwner(candidates, "twoitems") != nil {
		t.Error("two-item feed must not be a bogus candidate")
	}
	if candidateByOwner(candidates, "freshsingle") != nil {
		t.Error("feed inside the bogus window must not be a candidate")
	}
}

func TestScanMalformedFeedCountsAsEmpty(t *testing.T) {
	s, cfg := newTestSweeper(t, 100000, 5000)

	path := filepath.Join(cfg.DirFeeds, "broken.xml")
	if err := os.WriteFile(path, []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}
	mtime := sweepNow.Add(-8000 * time.Second)
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatal(err)
	}

	candidates, err := s.Scan()
	if err != nil {
		t.Fatalf("Scan() returned error: %v", err)
	}

	candidate := candidateByOwner(candidates, "broken")
	if candidate == nil {
		t.Fatal("aged malformed feed was not a candidate")
	}
	if candidate.ItemCount != 0 {
		t.Errorf("item count = %d, want 0", candidate.ItemCount)
	}
}

func TestScanMissingDirectory(t *testing.T) {
	s, cfg := newTestSweeper(t, 1000, 100)
	cfg.DirFeeds = filepath.Join(cfg.DirFeeds, "does-not-exist")

	candidates, err := s.Scan()
	if err != nil {
		t.Fatalf("Scan() returned error: %v", err)
	}
	if len(candidates) != 0 {
		t.Errorf("got %d candidates from missing directory, want 0", len(candidates))
	}
}

func TestApplyDeletesCandidates(t *testing.T) {
	s, cfg := newTestSweeper(t, 1000, 100)

	writeFeed(t, cfg, "doomed", 1, 2000)
	writeFeed(t, cfg, "spared", 3, 10)

	candidates, err := s.Scan()
	if err != nil {
		t.Fatal(err)
	}

	deleted, err := s.Apply(candidates)
	if err != nil {
		t.Fatalf("Apply() returned error: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}

	if _, err := os.Stat(filepath.Join(cfg.DirFeeds, "doomed.xml")); !os.IsNotExist(err) {
		t.Error("doomed feed still exists")
	}
	if _, err := os.Stat(filepath.Join(cfg.DirFeeds, "spared.xml")); err != nil {
		t.Errorf("spared feed was touched: %v", err)
	}
}

func TestApplyMissingFileIsNoOp(t *testing.T) {
	s, cfg := newTestSweeper(t, 1000, 100)

	deleted, err := s.Apply([]Candidate{{
		OwnerID: "ghost",
		Path:    filepath.Join(cfg.DirFeeds, "ghost.xml"),
		Reason:  ReasonAbandoned,
	}})
	if err != nil {
		t.Fatalf("Apply() returned error for missing file: %v", err)
	}
	if deleted != 0 {
		t.Errorf("deleted = %d, want 0", deleted)
	}
}
