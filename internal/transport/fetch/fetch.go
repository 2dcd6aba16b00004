// Package fetch downloads web pages and reduces them to readable text.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultTimeout bounds a single page download.
	DefaultTimeout = 20 * time.Second
	// DefaultMaxBytes caps the response body read per page.
	DefaultMaxBytes int64 = 5 << 20
)

// Page is a fetched document.
type Page struct {
	URL   string
	Title string
	Text  string
}

// Fetcher downloads pages over HTTP.
type Fetcher struct {
	client   *http.Client
	maxBytes int64
	logger   *zap.Logger
}

// New creates a fetcher. timeout <= 0 uses DefaultTimeout.
func New(timeout time.Duration, logger *zap.Logger) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Fetcher{
		client:   &http.Client{Timeout: timeout},
		maxBytes: DefaultMaxBytes,
		logger:   logger,
	}
}

// Fetch downloads rawURL and extracts its text. Non-2xx responses are errors.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (Page, error) {
	u := strings.TrimSpace(rawURL)
	if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		u = "https://" + u
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Page{}, fmt.Errorf("fetch %s: invalid url: %w", u, err)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/plain;q=0.9,*/*;q=0.5")
	req.Header.Set("User-Agent", "fewshot-research/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return Page{}, fmt.Errorf("fetch %s: %w", u, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Page{}, fmt.Errorf("fetch %s: unexpected status %d", u, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return Page{}, fmt.Errorf("fetch %s: read body: %w", u, err)
	}

	page := Page{URL: u}
	ct := strings.ToLower(resp.Header.Get("Content-Type"))
	if strings.Contains(ct, "html") || ct == "" {
		page.Title, page.Text = ExtractHTML(string(body))
	} else {
		page.Text = strings.TrimSpace(string(body))
	}

	f.logger.Debug("Page fetched",
		zap.String("url", u),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(body)),
		zap.Int("text_chars", len(page.Text)),
	)
	return page, nil
}

// FetchText downloads rawURL and returns only its readable text.
func (f *Fetcher) FetchText(ctx context.Context, rawURL string) (string, error) {
	p, err := f.Fetch(ctx, rawURL)
	if err != nil {
		return "", err
	}
	return p.Text, nil
}
