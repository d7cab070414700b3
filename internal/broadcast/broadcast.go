// Package broadcast delivers instance-wide notices by prepending an item to
// every feed on disk. Notices are plain items with no URL, so subscribers see
// them once in their reader without anything to click through.
package broadcast

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/thefranke/rss-librarian/internal/config"
	"github.com/thefranke/rss-librarian/internal/feed"
	"github.com/thefranke/rss-librarian/internal/store"
	"github.com/thefranke/rss-librarian/pkg/sanitize"
)

const noticeAuthor = "Admin"

// Broadcaster writes a notice item into every feed the store knows about.
type Broadcaster struct {
	cfg   *config.Config
	store *store.Store
	now   func() time.Time
}

// New creates a broadcaster over the given store.
func New(cfg *config.Config, s *store.Store) *Broadcaster {
	return &Broadcaster{cfg: cfg, store: s, now: time.Now}
}

// Send prepends the message to every feed and returns the number of feeds
// updated. A feed that fails to read or write is skipped with a warning so a
// single corrupt file cannot block the rest of the instance.
func (b *Broadcaster) Send(message string) (int, error) {
	ownerIDs, err := b.store.OwnerIDs()
	if err != nil {
		return 0, fmt.Errorf("failed to list feeds: %w", err)
	}

	now := b.now()
	notice := feed.Item{
		Title:     sanitize.Clean("Instance Notice " + now.Format(time.RFC1123Z)),
		Content:   sanitize.Clean(message),
		Author:    noticeAuthor,
		Published: now,
	}

	updated := 0
	for _, ownerID := range ownerIDs {
		items, err := b.store.Read(ownerID)
		if err != nil {
			slog.Warn("Skipping feed during broadcast", "owner", ownerID, "error", err)
			continue
		}

		items = store.CapItems(items, b.cfg.MaxItems)
		items = append([]feed.Item{notice}, items...)

		if err := b.store.Write(ownerID, items); err != nil {
			slog.Warn("Failed to write feed during broadcast", "owner", ownerID, "error", err)
			continue
		}
		updated++
	}

	return updated, nil
}
