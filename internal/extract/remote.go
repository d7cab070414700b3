package extract

import (
	"bytes"
	"context"
	"fmt"
	"net/url"

	"github.com/mmcdole/gofeed"
)

// DefaultFullTextEndpoint is the public FiveFilters instance used when no
// local extraction succeeded.
const DefaultFullTextEndpoint = "https://ftr.fivefilters.net/makefulltextfeed.php"

// fullTextServiceStrategy delegates extraction to a remote full-text
// service. The service answers with a single-item RSS feed whose first item
// holds the extracted title and content; it knows nothing about authors.
type fullTextServiceStrategy struct {
	fetcher  Fetcher
	endpoint string
}

func (s *fullTextServiceStrategy) Name() string { return "fulltext-service" }

func (s *fullTextServiceStrategy) Extract(ctx context.Context, articleURL string) (*Result, error) {
	requestURL := fmt.Sprintf("%s?url=%s", s.endpoint, url.QueryEscape(articleURL))

	body, err := s.fetcher.FetchBody(ctx, requestURL)
	if err != nil {
		return nil, fmt.Errorf("full-text service fetch failed: %w", err)
	}

	// The service occasionally prepends PHP warnings; drop everything
	// before the first XML bracket.
	start := bytes.IndexByte(body, '<')
	if start < 0 {
		return nil, fmt.Errorf("full-text service returned no XML for %s", articleURL)
	}

	parsed, err := gofeed.NewParser().Parse(bytes.NewReader(body[start:]))
	if err != nil {
		return nil, fmt.Errorf("full-text service response unparseable: %w", err)
	}
	if len(parsed.Items) == 0 {
		return nil, fmt.Errorf("full-text service returned no items for %s", articleURL)
	}

	item := parsed.Items[0]
	content := item.Content
	if content == "" {
		content = item.Description
	}

	return &Result{
		Title:   item.Title,
		Content: content,
		Author:  "",
	}, nil
}
