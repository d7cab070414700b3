package extract

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

// contentPolicy strips scripts, event handlers and other unsafe markup from
// extracted article HTML before it is embedded in a feed.
var contentPolicy = bluemonday.UGCPolicy()

// readabilityStrategy fetches the page itself and runs a readability-style
// main-content extraction, with relative links resolved against the article
// URL.
type readabilityStrategy struct {
	fetcher Fetcher
}

func (s *readabilityStrategy) Name() string { return "readability" }

func (s *readabilityStrategy) Extract(ctx context.Context, articleURL string) (*Result, error) {
	pageURL, err := url.Parse(articleURL)
	if err != nil {
		return nil, fmt.Errorf("invalid article URL: %w", err)
	}

	body, err := s.fetcher.FetchBody(ctx, articleURL)
	if err != nil {
		return nil, fmt.Errorf("page fetch failed: %w", err)
	}

	repaired := repairMarkup(body)

	article, err := readability.FromReader(strings.NewReader(repaired), pageURL)
	if err != nil {
		return nil, fmt.Errorf("readability parse failed: %w", err)
	}

	content := strings.TrimSpace(contentPolicy.Sanitize(article.Content))
	if content == "" {
		return nil, fmt.Errorf("no main content found in %s", articleURL)
	}

	return &Result{
		Title:   article.Title,
		Content: content,
		Author:  article.Byline,
	}, nil
}

// repairMarkup re-parses the raw page through the tolerant HTML parser,
// which closes dangling tags and normalizes the tree, then drops elements
// that never contain article text. Readability gets a cleaner document to
// work with; on any failure the original bytes are used unchanged.
func repairMarkup(raw []byte) string {
	root, err := html.Parse(bytes.NewReader(raw))
	if err != nil {
		return string(raw)
	}

	doc := goquery.NewDocumentFromNode(root)
	doc.Find("script, style, noscript, iframe, embed, object").Remove()

	repaired, err := doc.Html()
	if err != nil || repaired == "" {
		return string(raw)
	}
	return repaired
}
