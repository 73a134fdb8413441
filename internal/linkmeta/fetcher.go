// Package linkmeta fetches page titles for web links on a best-effort
// basis.
package linkmeta

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// ErrNoTitle is returned when the page could not be fetched or carries
// no usable title.
var ErrNoTitle = errors.New("no title found")

// Page titles only; cap the read so a huge document cannot stall us
const maxBodyBytes = 512 * 1024

// Fetcher retrieves page titles with a hard timeout
type Fetcher struct {
	client  *http.Client
	timeout time.Duration
}

// NewFetcher creates a fetcher with the given per-request timeout
func NewFetcher(timeout time.Duration) *Fetcher {
	return &Fetcher{
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
	}
}

// Title fetches the page at rawURL and extracts its <title>. Failures
// are expected and cheap; callers treat them as "no metadata".
func (f *Fetcher) Title(ctx context.Context, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("invalid url: %q", rawURL)
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("unexpected status %d fetching %q", resp.StatusCode, u.String())
	}

	title := extractTitle(io.LimitReader(resp.Body, maxBodyBytes))
	if title == "" {
		return "", ErrNoTitle
	}
	return title, nil
}

// extractTitle tokenizes HTML until the first <title> text node
func extractTitle(r io.Reader) string {
	tokenizer := html.NewTokenizer(r)
	inTitle := false

	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return ""
		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			inTitle = string(name) == "title"
		case html.EndTagToken:
			inTitle = false
		case html.TextToken:
			if inTitle {
				if title := strings.TrimSpace(tokenizer.Token().Data); title != "" {
					return title
				}
			}
		}
	}
}
