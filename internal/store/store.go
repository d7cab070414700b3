// Package store owns read-modify-write on a single owner's feed file: load,
// add, remove, cap enforcement and atomic persistence.
//
// Access to one feed is not transactionally protected. Two concurrent
// mutations of the same owner race and the later write wins, silently
// discarding the earlier one; the atomic replace only guarantees readers
// never see a half-written document.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/thefranke/rss-librarian/internal/config"
	"github.com/thefranke/rss-librarian/internal/extract"
	"github.com/thefranke/rss-librarian/internal/feed"
	"github.com/thefranke/rss-librarian/pkg/filesystem"
	"github.com/thefranke/rss-librarian/pkg/sanitize"
)

// AddStatus is the outcome of an Add call.
type AddStatus int

// Add outcomes. A duplicate is normal control flow, not an error. The zero
// value is reserved for the error return and is neither outcome.
const (
	Added AddStatus = iota + 1
	Duplicate
)

// RemoveStatus is the outcome of a Remove call.
type RemoveStatus int

// Remove outcomes. As with AddStatus, the zero value accompanies an error.
const (
	Removed RemoveStatus = iota + 1
	NotFound
)

// Extractor produces feed content for a URL. Satisfied by
// internal/extract.Extractor and by test stubs.
type Extractor interface {
	Extract(ctx context.Context, articleURL string) extract.Result
}

// Store performs feed mutations for any owner under the configured feed
// directory.
type Store struct {
	cfg       *config.Config
	extractor Extractor
	now       func() time.Time
}

// New creates a store using cfg for layout, format and cap decisions.
func New(cfg *config.Config, extractor Extractor) *Store {
	return &Store{cfg: cfg, extractor: extractor, now: time.Now}
}

// FeedPath returns the on-disk location of an owner's feed document.
func (s *Store) FeedPath(ownerID string) string {
	return filepath.Join(s.cfg.DirFeeds, ownerID+".xml")
}

// Read loads an owner's items, newest first. A missing file is an empty
// feed. A file that no longer parses is also treated as empty: the warning
// is logged and the next write replaces the corrupted document, so a bad
// file never blocks new saves.
func (s *Store) Read(ownerID string) ([]feed.Item, error) {
	raw, err := os.ReadFile(s.FeedPath(ownerID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read feed for %s: %w", ownerID, err)
	}

	items, _, err := feed.Decode(raw)
	if err != nil {
		if errors.Is(err, feed.ErrMalformedDocument) {
			slog.Warn("Feed file unparseable, treating as empty", "owner", ownerID, "error", err)
			return nil, nil
		}
		return nil, err
	}

	feed.SortNewestFirst(items)
	return items, nil
}

// Write regenerates the whole document from the current configuration and
// atomically replaces the feed file. Header metadata is re-derived on every
// write, so configuration changes reach existing feeds.
func (s *Store) Write(ownerID string, items []feed.Item) error {
	raw, err := feed.Encode(ownerID, feed.FormatFromConfig(s.cfg), s.cfg, items, s.now())
	if err != nil {
		return err
	}

	if err := filesystem.WriteFileAtomic(s.FeedPath(ownerID), raw); err != nil {
		return fmt.Errorf("failed to persist feed for %s: %w", ownerID, err)
	}

	return nil
}

// Add saves rawURL into the owner's feed. The URL is normalized (https://
// prefixed when schemeless), deduplicated against existing items, run
// through content extraction and prepended as the newest item, evicting the
// oldest items when the cap would be exceeded.
func (s *Store) Add(ctx context.Context, ownerID, rawURL string) (AddStatus, error) {
	articleURL := sanitize.Clean(NormalizeURL(rawURL))

	items, err := s.Read(ownerID)
	if err != nil {
		return 0, err
	}

	for _, existing := range items {
		if existing.URL == articleURL {
			slog.Debug("URL already present", "owner", ownerID, "url", articleURL)
			return Duplicate, nil
		}
	}

	extracted := s.extractor.Extract(ctx, articleURL)

	item := feed.Item{
		URL:       articleURL,
		Title:     sanitize.Clean(extracted.Title),
		Content:   sanitize.Clean(extracted.Content),
		Author:    sanitize.Clean(extracted.Author),
		Published: s.now(),
	}
	if item.Title == "" {
		item.Title = articleURL
	}
	if item.Content == "" {
		item.Content = sanitize.Clean(extract.PlaceholderFailed)
	}

	items = CapItems(items, s.cfg.MaxItems)
	items = append([]feed.Item{item}, items...)

	if err := s.Write(ownerID, items); err != nil {
		return 0, err
	}

	slog.Info("URL added", "owner", ownerID, "url", articleURL, "items", len(items))
	return Added, nil
}

// Remove deletes the first item matching rawURL. When no item matches the
// feed file is left untouched.
func (s *Store) Remove(ownerID, rawURL string) (RemoveStatus, error) {
	articleURL := sanitize.Clean(NormalizeURL(rawURL))

	items, err := s.Read(ownerID)
	if err != nil {
		return 0, err
	}

	for i, existing := range items {
		if existing.URL == articleURL {
			items = append(items[:i], items[i+1:]...)
			if err := s.Write(ownerID, items); err != nil {
				return 0, err
			}
			slog.Info("URL removed", "owner", ownerID, "url", articleURL, "items", len(items))
			return Removed, nil
		}
	}

	return NotFound, nil
}

// CountFeeds returns the number of feed files hosted by this instance.
func (s *Store) CountFeeds() (int, error) {
	matches, err := filepath.Glob(filepath.Join(s.cfg.DirFeeds, "*.xml"))
	if err != nil {
		return 0, fmt.Errorf("failed to list feed directory: %w", err)
	}
	return len(matches), nil
}

// OwnerIDs lists every owner with a feed file on disk.
func (s *Store) OwnerIDs() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(s.cfg.DirFeeds, "*.xml"))
	if err != nil {
		return nil, fmt.Errorf("failed to list feed directory: %w", err)
	}

	ids := make([]string, 0, len(matches))
	for _, match := range matches {
		ids = append(ids, strings.TrimSuffix(filepath.Base(match), ".xml"))
	}
	return ids, nil
}

// CapItems evicts tail (oldest) items until there is room to prepend one
// more without exceeding maxItems.
func CapItems(items []feed.Item, maxItems int) []feed.Item {
	if maxItems <= 0 {
		return items
	}
	for len(items) >= maxItems {
		items = items[:len(items)-1]
	}
	return items
}

// NormalizeURL turns user input into a fully qualified URL, defaulting the
// scheme to https.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)

	parsed, err := url.Parse(raw)
	if err != nil || parsed.Scheme == "" {
		return "https://" + strings.TrimLeft(raw, "/")
	}
	return raw
}
