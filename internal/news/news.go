// Package news fetches crypto market headlines from RSS feeds.
package news

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/sync/errgroup"
)

// Headline is one news item merged from the configured feeds.
type Headline struct {
	Title     string    `json:"title"`
	Link      string    `json:"link"`
	Source    string    `json:"source"`
	Published time.Time `json:"published"`
}

// Fetcher pulls headlines from a fixed set of RSS feeds.
type Fetcher struct {
	feeds []string
}

// NewFetcher creates a fetcher for the given feed URLs.
func NewFetcher(feeds []string) *Fetcher {
	return &Fetcher{feeds: feeds}
}

// Fetch pulls all feeds concurrently and returns up to limit headlines
// merged newest-first. A single failing feed only degrades the result;
// an error is returned when every feed fails.
func (f *Fetcher) Fetch(ctx context.Context, limit int) ([]Headline, error) {
	if len(f.feeds) == 0 {
		return nil, fmt.Errorf("no news feeds configured")
	}

	var mu sync.Mutex
	var headlines []Headline
	var failures []error

	g, gctx := errgroup.WithContext(ctx)
	for _, url := range f.feeds {
		g.Go(func() error {
			// gofeed parsers are not safe for concurrent use.
			feed, err := gofeed.NewParser().ParseURLWithContext(url, gctx)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures = append(failures, fmt.Errorf("feed %s: %w", url, err))
				return nil
			}
			for _, item := range feed.Items {
				h := Headline{
					Title:  item.Title,
					Link:   item.Link,
					Source: feed.Title,
				}
				if item.PublishedParsed != nil {
					h.Published = *item.PublishedParsed
				}
				headlines = append(headlines, h)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(headlines) == 0 && len(failures) > 0 {
		return nil, fmt.Errorf("all %d feeds failed, first error: %w", len(failures), failures[0])
	}

	sort.SliceStable(headlines, func(i, j int) bool {
		return headlines[i].Published.After(headlines[j].Published)
	})

	if limit > 0 && len(headlines) > limit {
		headlines = headlines[:limit]
	}
	return headlines, nil
}
