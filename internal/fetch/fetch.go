// Package fetch retrieves a page title and a bounded plain-text excerpt
// for a URL. The core consumes the Fetcher interface; HTTPFetcher is
// the production implementation.
package fetch

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/intelfuse-ai/intelfuse/internal/classify"
)

// DefaultMaxExcerpt bounds the body excerpt so downstream
// classification cost stays bounded regardless of page size.
const DefaultMaxExcerpt = 5000

// DefaultTimeout applies when the config does not set one.
const DefaultTimeout = 15 * time.Second

// untitledSource labels pages without a <title> element.
const untitledSource = "Untitled source"

// Page is the reduced representation of a fetched URL.
type Page struct {
	Title   string
	Excerpt string
}

// Text is the classification payload for the page.
func (p Page) Text() string {
	return p.Title + ". " + p.Excerpt
}

// Fetcher retrieves and reduces one URL.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (Page, error)
}

// HTTPError reports a non-success status code.
type HTTPError struct {
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

// NetworkError reports a transport-level failure.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return e.Err.Error()
}

func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPFetcher fetches pages over HTTP and reduces HTML to text.
type HTTPFetcher struct {
	client     *http.Client
	userAgent  string
	maxExcerpt int
}

// Config controls the production fetcher.
type Config struct {
	Timeout    time.Duration
	UserAgent  string
	MaxExcerpt int
}

func NewHTTPFetcher(cfg Config) *HTTPFetcher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	maxExcerpt := cfg.MaxExcerpt
	if maxExcerpt <= 0 {
		maxExcerpt = DefaultMaxExcerpt
	}
	return &HTTPFetcher{
		client:     &http.Client{Timeout: timeout},
		userAgent:  cfg.UserAgent,
		maxExcerpt: maxExcerpt,
	}
}

// Fetch retrieves the URL and reduces it to title plus body excerpt.
// Non-2xx responses return HTTPError; transport failures return
// NetworkError.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Page{}, &NetworkError{Err: err}
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return Page{}, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Page{}, &HTTPError{StatusCode: resp.StatusCode}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return Page{}, &NetworkError{Err: fmt.Errorf("parse html: %w", err)}
	}

	title := classify.CleanText(doc.Find("title").First().Text())
	if title == "" {
		title = untitledSource
	}

	body := classify.CleanText(doc.Find("body").Text())
	if len(body) > f.maxExcerpt {
		body = body[:f.maxExcerpt]
	}

	return Page{Title: title, Excerpt: body}, nil
}
