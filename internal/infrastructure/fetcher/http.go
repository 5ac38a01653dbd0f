// Package fetcher retrieves article pages over HTTP.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"ArticleArchiver/internal/domain"
	"ArticleArchiver/internal/ports"
)

// DefaultUserAgent identifies as a desktop Chrome browser.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// Options configures an HTTPFetcher.
type Options struct {
	UserAgent      string
	AcceptLanguage string
	MaxBytes       int64
}

// HTTPFetcher performs a direct GET with browser-like headers.
type HTTPFetcher struct {
	client *http.Client
	opts   Options
	logger *slog.Logger
}

var _ ports.Fetcher = (*HTTPFetcher)(nil)

// NewHTTPFetcher wires an HTTP client; a nil client gets a 20s timeout.
func NewHTTPFetcher(client *http.Client, opts Options, logger *slog.Logger) *HTTPFetcher {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.AcceptLanguage == "" {
		opts.AcceptLanguage = "zh-CN,zh;q=0.9"
	}
	return &HTTPFetcher{client: client, opts: opts, logger: logger}
}

// Fetch returns the page body decoded as UTF-8. Any failure wraps domain.ErrFetch.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: build request: %w", domain.ErrFetch, err)
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", f.opts.AcceptLanguage)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: %s returned %s", domain.ErrFetch, url, resp.Status)
	}

	body, err := ReadLimited(resp.Body, f.opts.MaxBytes)
	if err != nil {
		return "", fmt.Errorf("%w: read body: %w", domain.ErrFetch, err)
	}

	if f.logger != nil {
		f.logger.Debug("page fetched", "url", url, "bytes", len(body))
	}
	return decodeUTF8(body), nil
}

// ReadLimited reads at most limit bytes and fails when the body is larger.
// A non-positive limit reads everything.
func ReadLimited(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("response body exceeds %d bytes", limit)
	}
	return data, nil
}

// decodeUTF8 treats the body as UTF-8 regardless of the declared charset.
func decodeUTF8(body []byte) string {
	if utf8.Valid(body) {
		return string(body)
	}
	return strings.ToValidUTF8(string(body), "\uFFFD")
}
