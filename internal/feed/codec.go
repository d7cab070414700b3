package feed

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/thefranke/rss-librarian/internal/config"
	"github.com/thefranke/rss-librarian/pkg/sanitize"
	"github.com/thefranke/rss-librarian/templates"
)

// ErrMalformedDocument reports that a stored feed file could not be parsed.
// Callers decide the recovery policy; the store treats such feeds as empty.
var ErrMalformedDocument = errors.New("malformed feed document")

const (
	productName = "RSS-Librarian"
	productURL  = "https://github.com/thefranke/rss-librarian"
	feedTagline = "A read-it-later service for RSS purists"

	rssTimeLayout  = time.RFC1123Z
	atomTimeLayout = "2006-01-02T15:04:05Z"
)

var feedTemplates = template.Must(template.ParseFS(templates.FeedTemplates, "*.tmpl"))

// FormatFromConfig maps the use_rss_format switch to a document format.
func FormatFromConfig(cfg *config.Config) Format {
	if cfg.UseRSSFormat {
		return FormatRSS
	}
	return FormatAtom
}

// Decode parses a stored document into its items, auto-detecting RSS vs
// Atom from the root element. Every text field passes through the sanitizer,
// so decoded items are always in canonical sanitized form. Returns
// ErrMalformedDocument when the bytes are not a parseable feed.
func Decode(raw []byte) ([]Item, Format, error) {
	parsed, err := gofeed.NewParser().Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}

	format := FormatAtom
	if parsed.FeedType == "rss" {
		format = FormatRSS
	}

	items := make([]Item, 0, len(parsed.Items))
	for _, entry := range parsed.Items {
		items = append(items, decodeItem(entry))
	}

	return items, format, nil
}

// decodeItem maps a parsed entry onto an Item. RSS items carry the URL in
// guid and the content in description; Atom entries use id and content. The
// gofeed parser normalizes both shapes, so only the fallbacks differ here.
func decodeItem(entry *gofeed.Item) Item {
	url := entry.GUID
	if url == "" {
		url = entry.Link
	}

	content := entry.Content
	if content == "" {
		content = entry.Description
	}

	var published time.Time
	if entry.PublishedParsed != nil {
		published = *entry.PublishedParsed
	} else if entry.UpdatedParsed != nil {
		published = *entry.UpdatedParsed
	}

	return Item{
		URL:       sanitize.Clean(url),
		Title:     sanitize.Clean(entry.Title),
		Content:   sanitize.Clean(content),
		Author:    sanitize.Clean(decodeAuthor(entry)),
		Published: published,
	}
}

// decodeAuthor prefers dc:creator over the plain author element, matching
// how the documents are written.
func decodeAuthor(entry *gofeed.Item) string {
	if entry.DublinCoreExt != nil && len(entry.DublinCoreExt.Creator) > 0 {
		return entry.DublinCoreExt.Creator[0]
	}
	for _, person := range entry.Authors {
		if person == nil {
			continue
		}
		if person.Name != "" {
			return person.Name
		}
		if person.Email != "" {
			return person.Email
		}
	}
	return ""
}

// templateData is the document-level payload handed to the feed templates.
// Every string in it is already XML-safe.
type templateData struct {
	Title        string
	Subtitle     string
	PersonalURL  string
	FeedURL      string
	Generator    string
	GeneratorURI string
	AuthorName   string
	Icon         string
	Logo         string
	XSLT         string
	Updated      string
	Items        []templateItem
}

type templateItem struct {
	URL       string
	Title     string
	Content   string
	Author    string
	Published string
}

// Encode renders a complete document for ownerID in the given format. The
// header is derived entirely from cfg, so configuration changes reach
// existing feeds on their next write. Items are emitted in the given order;
// callers pass them sorted newest first.
func Encode(ownerID string, format Format, cfg *config.Config, items []Item, now time.Time) ([]byte, error) {
	layout := rssTimeLayout
	name := "rss.tmpl"
	if format == FormatAtom {
		layout = atomTimeLayout
		name = "atom.tmpl"
	}

	data := templateData{
		Title:        fmt.Sprintf("%s (%s)", productName, idPrefix(ownerID)),
		Subtitle:     feedTagline,
		PersonalURL:  PersonalURL(cfg, ownerID),
		FeedURL:      FeedURL(cfg, ownerID),
		Generator:    productName,
		GeneratorURI: productURL,
		AuthorName:   feedAuthorName(cfg),
		Icon:         sanitize.Clean(cfg.Icon),
		Logo:         sanitize.Clean(cfg.FeedLogo()),
		XSLT:         sanitize.Clean(cfg.CustomXSLT),
		Updated:      formatTime(now, atomTimeLayout, now),
		Items:        make([]templateItem, 0, len(items)),
	}

	for _, item := range items {
		data.Items = append(data.Items, templateItem{
			URL:       item.URL,
			Title:     item.Title,
			Content:   item.Content,
			Author:    item.Author,
			Published: formatTime(item.Published, layout, now),
		})
	}

	var buf bytes.Buffer
	if err := feedTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("failed to render %s document: %w", format, err)
	}

	return buf.Bytes(), nil
}

// FeedURL returns the public URL of the owner's feed document.
func FeedURL(cfg *config.Config, ownerID string) string {
	base := strings.TrimRight(cfg.URLBase, "/")
	return sanitize.Clean(fmt.Sprintf("%s/%s/%s.xml", base, feedDirName(cfg), ownerID))
}

// PersonalURL returns the owner's management URL.
func PersonalURL(cfg *config.Config, ownerID string) string {
	base := strings.TrimRight(cfg.URLBase, "/")
	return sanitize.Clean(fmt.Sprintf("%s/?id=%s", base, ownerID))
}

// feedDirName maps the feed directory onto its public path segment.
func feedDirName(cfg *config.Config) string {
	dir := strings.Trim(cfg.DirFeeds, "/")
	if idx := strings.LastIndexByte(dir, '/'); idx >= 0 {
		dir = dir[idx+1:]
	}
	if dir == "" || dir == "." {
		return "feeds"
	}
	return dir
}

func feedAuthorName(cfg *config.Config) string {
	if cfg.InstanceContact != "" {
		return sanitize.Clean(cfg.InstanceContact)
	}
	return productName
}

func idPrefix(ownerID string) string {
	if len(ownerID) > 4 {
		return ownerID[:4]
	}
	return ownerID
}

func formatTime(t time.Time, layout string, now time.Time) string {
	if t.IsZero() {
		t = now
	}
	if layout == atomTimeLayout {
		t = t.UTC()
	}
	return t.Format(layout)
}
