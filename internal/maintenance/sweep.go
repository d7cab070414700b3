// Package maintenance reclaims disk space from feeds nobody reads anymore:
// feeds untouched past the long retention window, and single-item feeds
// untouched past the short window, which were almost always created by
// accident and never revisited.
package maintenance

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/thefranke/rss-librarian/internal/config"
	"github.com/thefranke/rss-librarian/internal/feed"
)

// Reasons a feed becomes a deletion candidate.
const (
	ReasonAbandoned = "abandoned"
	ReasonBogus     = "bogus"
)

// Candidate is one feed file marked for deletion.
type Candidate struct {
	OwnerID   string
	Path      string
	Reason    string
	Age       time.Duration
	ItemCount int
}

// Sweeper scans the feed directory and deletes candidates.
type Sweeper struct {
	cfg *config.Config
	now func() time.Time
}

// NewSweeper creates a sweeper over the configured feed directory.
func NewSweeper(cfg *config.Config) *Sweeper {
	return &Sweeper{cfg: cfg, now: time.Now}
}

// Scan classifies every feed file. Feeds older than the abandoned window are
// candidates unconditionally; feeds older than the bogus window with at most
// one item are candidates too. Classification uses the state observed at
// scan time, so a feed being written concurrently can at worst be
// misclassified for one sweep cycle.
func (s *Sweeper) Scan() ([]Candidate, error) {
	entries, err := os.ReadDir(s.cfg.DirFeeds)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list feed directory: %w", err)
	}

	now := s.now()
	var candidates []Candidate

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".xml") {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			slog.Warn("Skipping unreadable feed file", "file", entry.Name(), "error", err)
			continue
		}

		path := filepath.Join(s.cfg.DirFeeds, entry.Name())
		ownerID := strings.TrimSuffix(entry.Name(), ".xml")
		age := now.Sub(info.ModTime())

		switch {
		case age > s.cfg.AbandonedAfter():
			candidates = append(candidates, Candidate{
				OwnerID:   ownerID,
				Path:      path,
				Reason:    ReasonAbandoned,
				Age:       age,
				ItemCount: s.itemCount(path),
			})
		case age > s.cfg.BogusAfter():
			count := s.itemCount(path)
			if count <= 1 {
				candidates = append(candidates, Candidate{
					OwnerID:   ownerID,
					Path:      path,
					Reason:    ReasonBogus,
					Age:       age,
					ItemCount: count,
				})
			}
		}
	}

	return candidates, nil
}

// itemCount reads the feed's item count for bogus classification. A file
// that no longer parses counts as zero items.
func (s *Sweeper) itemCount(path string) int {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0
	}
	items, _, err := feed.Decode(raw)
	if err != nil {
		return 0
	}
	return len(items)
}

// Apply deletes the candidate files and returns how many were removed. A
// file already gone is a no-op, not an error.
func (s *Sweeper) Apply(candidates []Candidate) (int, error) {
	deleted := 0
	for _, candidate := range candidates {
		if err := os.Remove(candidate.Path); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return deleted, fmt.Errorf("failed to delete %s: %w", candidate.Path, err)
		}
		slog.Info("Feed deleted", "owner", candidate.OwnerID, "reason", candidate.Reason, "age", candidate.Age)
		deleted++
	}
	return deleted, nil
}
