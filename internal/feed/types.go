// Package feed implements the document codec: decoding stored RSS/Atom files
// into an ordered item list and encoding an item list back into a complete
// document. XML only exists at this boundary; everything above works with
// Item values.
package feed

import (
	"sort"
	"time"
)

// Format selects the document format written on the next persist. Both
// formats are always readable regardless of the current setting, since a
// stored feed may predate a configuration change.
type Format string

// Supported document formats.
const (
	FormatRSS  Format = "rss"
	FormatAtom Format = "atom"
)

// Item is one saved article. All text fields are kept in sanitized form
// (see pkg/sanitize), so they can be embedded in XML as-is. URL is the
// unique key within a feed.
type Item struct {
	URL       string
	Title     string
	Content   string
	Author    string
	Published time.Time
}

// DisplayTitle returns the title, falling back to the URL when empty.
func (i Item) DisplayTitle() string {
	if i.Title != "" {
		return i.Title
	}
	return i.URL
}

// SortNewestFirst orders items by publication time, newest first. The sort
// is stable so items sharing a timestamp keep their relative order.
func SortNewestFirst(items []Item) {
	sort.SliceStable(items, func(a, b int) bool {
		return items[a].Published.After(items[b].Published)
	})
}
