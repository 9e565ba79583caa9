package source

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"ztechbot/internal/domain"
	"ztechbot/internal/ports"
)

const maxItemsPerFeed = 10

// RSSAdapter pulls the latest entries from a single RSS/Atom feed.
type RSSAdapter struct {
	name   string
	url    string
	parser *gofeed.Parser
}

var _ ports.SourceAdapter = (*RSSAdapter)(nil)

// NewRSSAdapter builds an adapter for one feed endpoint.
func NewRSSAdapter(name, url string) *RSSAdapter {
	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: 30 * time.Second}
	return &RSSAdapter{
		name:   name,
		url:    url,
		parser: parser,
	}
}

func (a *RSSAdapter) Name() string { return a.name }

// Fetch parses the feed and converts its entries. Entries without a title or
// link are skipped; entries without a parseable timestamp carry a zero
// publish time.
func (a *RSSAdapter) Fetch(ctx context.Context) ([]domain.ContentRecord, error) {
	feed, err := a.parser.ParseURLWithContext(a.url, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", a.url, err)
	}

	items := feed.Items
	if len(items) > maxItemsPerFeed {
		items = items[:maxItemsPerFeed]
	}

	records := make([]domain.ContentRecord, 0, len(items))
	for _, item := range items {
		if item.Title == "" || item.Link == "" {
			continue
		}

		var published time.Time
		if item.PublishedParsed != nil {
			published = *item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			published = *item.UpdatedParsed
		}

		records = append(records, domain.NewContentRecord(
			item.Title,
			item.Description,
			item.Link,
			a.name,
			a.url,
			published,
		))
	}
	return records, nil
}
