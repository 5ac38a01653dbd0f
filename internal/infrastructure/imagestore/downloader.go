// Package imagestore downloads article images with retries.
package imagestore

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"ArticleArchiver/internal/domain"
	"ArticleArchiver/internal/infrastructure/fetcher"
	"ArticleArchiver/internal/ports"
)

// DefaultReferer satisfies the platform's hotlink protection.
const DefaultReferer = "https://mp.weixin.qq.com/"

// Options configures a Downloader.
type Options struct {
	UserAgent string
	Referer   string
	Attempts  int
	Timeout   time.Duration
	Backoff   time.Duration
	MaxBytes  int64
	Verify    bool
}

// Downloader saves images to disk, retrying each one a fixed number of times.
type Downloader struct {
	client *http.Client
	opts   Options
	logger *slog.Logger
}

var _ ports.ImageDownloader = (*Downloader)(nil)

// NewDownloader fills unset options with the defaults:
// 3 attempts, 20s per attempt, mp.weixin.qq.com referer.
func NewDownloader(client *http.Client, opts Options, logger *slog.Logger) *Downloader {
	if client == nil {
		client = &http.Client{}
	}
	if opts.UserAgent == "" {
		opts.UserAgent = fetcher.DefaultUserAgent
	}
	if opts.Referer == "" {
		opts.Referer = DefaultReferer
	}
	if opts.Attempts < 1 {
		opts.Attempts = 3
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 20 * time.Second
	}
	return &Downloader{client: client, opts: opts, logger: logger}
}

// Download fetches url into dest. After the last failed attempt it returns
// an error wrapping domain.ErrImageDownload and leaves no file behind.
func (d *Downloader) Download(ctx context.Context, url, dest string) error {
	var lastErr error
	for attempt := 1; attempt <= d.opts.Attempts; attempt++ {
		data, err := d.fetch(ctx, url)
		if err == nil {
			if err := os.WriteFile(dest, data, 0o644); err != nil {
				_ = os.Remove(dest)
				return fmt.Errorf("%w: %s: %w", domain.ErrImageDownload, url, err)
			}
			return nil
		}
		lastErr = err

		if attempt < d.opts.Attempts {
			d.warn("image download retry", "url", url, "attempt", attempt, "of", d.opts.Attempts, "error", err)
			if d.opts.Backoff > 0 {
				select {
				case <-ctx.Done():
					return fmt.Errorf("%w: %s: %w", domain.ErrImageDownload, url, ctx.Err())
				case <-time.After(d.opts.Backoff):
				}
			}
		}
	}
	return fmt.Errorf("%w: %s after %d attempts: %w", domain.ErrImageDownload, url, d.opts.Attempts, lastErr)
}

func (d *Downloader) fetch(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, d.opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", d.opts.UserAgent)
	req.Header.Set("Referer", d.opts.Referer)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	data, err := fetcher.ReadLimited(resp.Body, d.opts.MaxBytes)
	if err != nil {
		return nil, err
	}

	if d.opts.Verify {
		if err := d.verify(url, data, resp.Header.Get("Content-Type")); err != nil {
			return nil, err
		}
	}
	return data, nil
}

// verify accepts bodies that decode as a known raster format, or that the
// server labels image/* when the format is not one we can decode.
func (d *Downloader) verify(url string, data []byte, contentType string) error {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err == nil {
		if d.logger != nil {
			d.logger.Debug("image verified", "url", url, "format", format, "width", cfg.Width, "height", cfg.Height)
		}
		return nil
	}
	if strings.HasPrefix(strings.ToLower(contentType), "image/") {
		return nil
	}
	return fmt.Errorf("body is not an image (content-type %q)", contentType)
}

func (d *Downloader) warn(msg string, args ...any) {
	if d.logger != nil {
		d.logger.Warn(msg, args...)
	}
}
