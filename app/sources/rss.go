package sources

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/svirin/newswatch/app/admission"
)

// RSSCollector polls one syndication feed and turns its entries into
// candidate items. The raw pubDate string is passed through untouched so the
// date cascade sees exactly what the feed published.
type RSSCollector struct {
	config   *Config
	fetcher  *fetcher
	parser   *gofeed.Parser
	filterer *Filterer
}

var _ Collector = (*RSSCollector)(nil)

func NewRSSCollector(config *Config, client *http.Client, userAgent string) *RSSCollector {
	return &RSSCollector{
		config:   config,
		fetcher:  newFetcher(client, userAgent),
		parser:   gofeed.NewParser(),
		filterer: NewFilterer(),
	}
}

func (c *RSSCollector) Name() string { return c.config.Name }

func (c *RSSCollector) Type() string { return TypeRSS }

func (c *RSSCollector) Collect(ctx context.Context) ([]admission.Item, error) {
	timeout := time.Duration(c.config.Settings.Timeout) * time.Second

	data, err := c.fetcher.fetch(ctx, c.config.URL, timeout, true)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}

	feed, err := c.parser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	entries := feed.Items
	if len(entries) > c.config.Settings.MaxItems {
		entries = entries[:c.config.Settings.MaxItems]
	}

	items := make([]admission.Item, 0, len(entries))
	for _, entry := range entries {
		title := strings.TrimSpace(entry.Title)
		if title == "" {
			continue
		}

		items = append(items, admission.Item{
			Title:   title,
			Body:    strings.TrimSpace(entry.Description),
			Link:    strings.TrimSpace(entry.Link),
			RawDate: entry.Published,
			Source:  c.config.SourceLabel(),
		})
	}

	return c.filterer.Run(items, c.config.Filters), nil
}
