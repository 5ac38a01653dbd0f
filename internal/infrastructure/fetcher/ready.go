package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"ArticleArchiver/internal/domain"
	"ArticleArchiver/internal/ports"
)

// ReadyFetcher re-fetches a page until a readiness marker element is present,
// for pages whose content is populated after the first response.
type ReadyFetcher struct {
	next     ports.Fetcher
	marker   string
	attempts int
	interval time.Duration
	logger   *slog.Logger
}

var _ ports.Fetcher = (*ReadyFetcher)(nil)

// NewReadyFetcher decorates next; attempts below 1 are treated as 1.
func NewReadyFetcher(next ports.Fetcher, marker string, attempts int, interval time.Duration, logger *slog.Logger) *ReadyFetcher {
	if attempts < 1 {
		attempts = 1
	}
	return &ReadyFetcher{next: next, marker: marker, attempts: attempts, interval: interval, logger: logger}
}

// Fetch returns the first markup that contains the marker. When the marker
// never shows up the last markup is returned anyway and extraction degrades
// on its own; only the wrapped fetcher's errors and cancellation are fatal.
func (r *ReadyFetcher) Fetch(ctx context.Context, url string) (string, error) {
	for attempt := 1; ; attempt++ {
		raw, err := r.next.Fetch(ctx, url)
		if err != nil {
			return "", err
		}
		if ready(raw, r.marker) {
			return raw, nil
		}
		if attempt >= r.attempts {
			if r.logger != nil {
				r.logger.Warn("readiness marker never appeared, using last response", "url", url, "marker", r.marker, "attempts", attempt)
			}
			return raw, nil
		}
		if r.logger != nil {
			r.logger.Warn("page not ready, retrying", "url", url, "marker", r.marker, "attempt", attempt)
		}

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("%w: %w", domain.ErrFetch, ctx.Err())
		case <-time.After(r.interval):
		}
	}
}

func ready(raw, marker string) bool {
	if marker == "" {
		return true
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return false
	}
	return doc.Find(marker).Length() > 0
}
