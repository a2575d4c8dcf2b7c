package sources

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"

	"github.com/svirin/newswatch/app/admission"
)

// PageCollector scrapes a news listing page that offers no feed. It pulls
// anchor texts that look like headlines and, when extract_content is set,
// follows each link and runs readability over the article page.
type PageCollector struct {
	config   *Config
	fetcher  *fetcher
	filterer *Filterer
}

var _ Collector = (*PageCollector)(nil)

var (
	reAnchor  = regexp.MustCompile(`(?is)<a[^>]+href=["']([^"']+)["'][^>]*>(.*?)</a>`)
	reTag     = regexp.MustCompile(`(?s)<[^>]+>`)
	reDateCtx = regexp.MustCompile(`\d{1,2}[.\s]\d{2}[.\s]\d{4}|\d{4}-\d{2}-\d{2}|\d{1,2}\s+[А-Яа-яЁёA-Za-z]+\s+\d{4}`)
)

// Anchor texts starting with these are navigation chrome, not headlines.
var boilerplatePrefixes = []string{
	"подпис", "читать далее", "подробнее", "все новости", "реклама", "cookie",
}

func NewPageCollector(config *Config, client *http.Client, userAgent string) *PageCollector {
	return &PageCollector{
		config:   config,
		fetcher:  newFetcher(client, userAgent),
		filterer: NewFilterer(),
	}
}

func (c *PageCollector) Name() string { return c.config.Name }

func (c *PageCollector) Type() string { return TypePage }

func (c *PageCollector) Collect(ctx context.Context) ([]admission.Item, error) {
	timeout := time.Duration(c.config.Settings.Timeout) * time.Second

	data, err := c.fetcher.fetch(ctx, c.config.URL, timeout, false)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page: %w", err)
	}

	items := c.extractHeadlines(string(data))
	if len(items) > c.config.Settings.MaxItems {
		items = items[:c.config.Settings.MaxItems]
	}

	if c.config.Settings.ExtractContent {
		for i := range items {
			body, err := c.extractBody(ctx, items[i].Link, timeout)
			if err != nil {
				slog.Debug("Article content extraction failed", "source", c.config.Name, "link", items[i].Link, "error", err)
				continue
			}
			items[i].Body = body
		}
	}

	return c.filterer.Run(items, c.config.Filters), nil
}

// extractHeadlines walks every anchor on the page, keeps the ones whose text
// reads like a headline and resolves relative links against the page URL.
// Order is preserved and repeated links are taken once.
func (c *PageCollector) extractHeadlines(html string) []admission.Item {
	base, err := url.Parse(c.config.URL)
	if err != nil {
		base = nil
	}

	seen := make(map[string]bool)
	var items []admission.Item

	for _, match := range reAnchor.FindAllStringSubmatch(html, -1) {
		link := strings.TrimSpace(match[1])
		title := cleanText(match[2])

		if !looksLikeHeadline(title) {
			continue
		}

		link = resolveLink(base, link)
		if link == "" || seen[link] {
			continue
		}
		seen[link] = true

		items = append(items, admission.Item{
			Title:   title,
			Link:    link,
			RawDate: harvestDate(match[2]),
			Source:  c.config.SourceLabel(),
		})
	}

	return items
}

func (c *PageCollector) extractBody(ctx context.Context, link string, timeout time.Duration) (string, error) {
	data, err := c.fetcher.fetch(ctx, link, timeout, false)
	if err != nil {
		return "", err
	}

	article, err := readability.FromReader(strings.NewReader(string(data)), nil)
	if err != nil {
		return "", fmt.Errorf("failed to extract content: %w", err)
	}

	text := strings.TrimSpace(article.TextContent)
	if text == "" {
		return "", fmt.Errorf("no content extracted from article page")
	}

	const maxBody = 1000
	runes := []rune(text)
	if len(runes) > maxBody {
		text = string(runes[:maxBody])
	}

	return text, nil
}

func cleanText(s string) string {
	s = reTag.ReplaceAllString(s, " ")
	s = strings.ReplaceAll(s, "&nbsp;", " ")
	s = strings.ReplaceAll(s, "&amp;", "&")
	s = strings.ReplaceAll(s, "&quot;", `"`)
	s = strings.ReplaceAll(s, "&#39;", "'")
	s = strings.ReplaceAll(s, "&lt;", "<")
	s = strings.ReplaceAll(s, "&gt;", ">")
	return strings.Join(strings.Fields(s), " ")
}

func looksLikeHeadline(title string) bool {
	if len([]rune(title)) < 10 {
		return false
	}

	lower := strings.ToLower(title)
	for _, prefix := range boilerplatePrefixes {
		if strings.HasPrefix(lower, prefix) {
			return false
		}
	}

	return true
}

// harvestDate pulls a date-looking fragment out of the raw anchor markup so
// listing pages that print the date next to the headline still get one.
func harvestDate(rawAnchor string) string {
	return reDateCtx.FindString(cleanText(rawAnchor))
}

func resolveLink(base *url.URL, link string) string {
	if link == "" || strings.HasPrefix(link, "#") || strings.HasPrefix(link, "javascript:") {
		return ""
	}

	ref, err := url.Parse(link)
	if err != nil {
		return ""
	}

	if ref.IsAbs() {
		return ref.String()
	}
	if base == nil {
		return ""
	}

	return base.ResolveReference(ref).String()
}
