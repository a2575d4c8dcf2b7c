package sources

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/encoding/htmlindex"
)

// fetcher performs HTTP GETs with browser-like headers. Several Russian news
// sites refuse requests that do not look like a browser, and some still serve
// windows-1251; responses are decoded to UTF-8 before parsing.
type fetcher struct {
	client    *http.Client
	userAgent string
}

func newFetcher(client *http.Client, userAgent string) *fetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &fetcher{client: client, userAgent: userAgent}
}

func (f *fetcher) fetch(ctx context.Context, url string, timeout time.Duration, acceptXML bool) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	if acceptXML {
		req.Header.Set("Accept", "application/rss+xml, application/xml, text/xml, text/html, */*")
	} else {
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	}
	req.Header.Set("Accept-Language", "ru-RU,ru;q=0.9,en-US;q=0.8,en;q=0.7")
	req.Header.Set("Connection", "keep-alive")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return decodeCharset(data, resp.Header.Get("Content-Type")), nil
}

// decodeCharset converts data to UTF-8 according to the Content-Type charset
// parameter. Unknown or missing charsets leave the data untouched.
func decodeCharset(data []byte, contentType string) []byte {
	if contentType == "" {
		return data
	}

	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return data
	}

	name := strings.ToLower(params["charset"])
	if name == "" || name == "utf-8" || name == "utf8" {
		return data
	}

	enc, err := htmlindex.Get(name)
	if err != nil {
		return data
	}

	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return data
	}

	return decoded
}
