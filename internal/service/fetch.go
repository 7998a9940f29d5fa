package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// ImageFetcher retrieves the byte content behind a URL.
type ImageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// HTTPImageFetcher fetches image content over HTTP.
type HTTPImageFetcher struct {
	client   *resty.Client
	maxBytes int64
}

// FetcherConfig holds configuration for the HTTP image fetcher.
type FetcherConfig struct {
	Timeout  time.Duration
	MaxBytes int64 // 0 disables the size cap
}

// NewHTTPImageFetcher creates a new HTTP image fetcher.
func NewHTTPImageFetcher(cfg *FetcherConfig) *HTTPImageFetcher {
	client := resty.New()

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	client.SetTimeout(timeout)

	return &HTTPImageFetcher{
		client:   client,
		maxBytes: cfg.MaxBytes,
	}
}

// Fetch retrieves the content at url. Any non-success status or transport
// error is returned as an error; the URL itself is not validated beyond
// reachability.
func (f *HTTPImageFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	resp, err := f.client.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return nil, err
	}

	if !resp.IsSuccess() {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode())
	}

	body := resp.Body()
	if f.maxBytes > 0 && int64(len(body)) > f.maxBytes {
		return nil, fmt.Errorf("response of %d bytes exceeds limit of %d", len(body), f.maxBytes)
	}
	return body, nil
}
