// Package extract turns an article URL into feed-ready title/content/author.
// Extraction is an ordered chain of strategies; the first one that succeeds
// wins, and when all of them fail the caller still gets a usable placeholder
// item. Extraction failures never propagate; a failed fetch must not stop a
// URL from being saved.
package extract

import (
	"context"
	"log/slog"
)

// Placeholder content stored when no article text is available.
const (
	PlaceholderDisabled = "Content extraction disabled, please enable reader mode for this feed."
	PlaceholderFailed   = "Content extraction failed, please enable reader mode for this feed."
)

// Result is the extracted article. Content is raw HTML/text straight from
// the strategy; the feed store sanitizes it before persisting.
type Result struct {
	Title   string
	Content string
	Author  string
}

// Fetcher retrieves the body of a URL. Satisfied by pkg/http.Client and by
// test stubs.
type Fetcher interface {
	FetchBody(ctx context.Context, url string) ([]byte, error)
}

// Strategy is one way of producing article content for a URL.
type Strategy interface {
	Name() string
	Extract(ctx context.Context, articleURL string) (*Result, error)
}

// Extractor walks a strategy chain for every URL.
type Extractor struct {
	enabled    bool
	strategies []Strategy
}

// New builds the standard two-stage extractor: local readability extraction
// first, the remote full-text service as fallback.
func New(enabled bool, fetcher Fetcher) *Extractor {
	return &Extractor{
		enabled: enabled,
		strategies: []Strategy{
			&readabilityStrategy{fetcher: fetcher},
			&fullTextServiceStrategy{fetcher: fetcher, endpoint: DefaultFullTextEndpoint},
		},
	}
}

// NewWithStrategies builds an extractor over an explicit chain.
func NewWithStrategies(enabled bool, strategies ...Strategy) *Extractor {
	return &Extractor{enabled: enabled, strategies: strategies}
}

// Extract runs the chain for articleURL. It always returns a populated
// result: a placeholder when extraction is disabled or every stage failed.
// The title is left empty in the disabled case so the caller can default it
// to the URL.
func (e *Extractor) Extract(ctx context.Context, articleURL string) Result {
	if !e.enabled {
		return Result{Content: PlaceholderDisabled}
	}

	for _, strategy := range e.strategies {
		result, err := strategy.Extract(ctx, articleURL)
		if err != nil {
			slog.Warn("Extraction stage failed", "stage", strategy.Name(), "url", articleURL, "error", err)
			continue
		}
		slog.Debug("Extraction succeeded", "stage", strategy.Name(), "url", articleURL, "title", result.Title)
		return *result
	}

	slog.Warn("All extraction stages failed", "url", articleURL)
	return Result{Title: articleURL, Content: PlaceholderFailed}
}
