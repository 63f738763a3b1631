// Package netfetch is the single network primitive of the pipeline.
// All remote access funnels through a Client so that offline mode is
// an injected setting, not process-global state.
package netfetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// returned when the network is disabled or every attempt failed;
// callers treat it as "this asset is unavailable" and carry on
var ErrUnavailable = errors.New("network unavailable")

// returned by Save for content types with no known file extension
var ErrUnsupportedType = errors.New("unsupported content type")

// content types Save knows how to store
var extByContentType = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"audio/mpeg": ".mp3",
}

type Client struct {
	Enabled bool
	Retries int

	httpClient *http.Client
	backoff    time.Duration
}

type Option func(*Client)

// WithBackoff overrides the base backoff unit between attempts.
func WithBackoff(d time.Duration) Option {
	return func(c *Client) { c.backoff = d }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

func NewClient(enabled bool, retries int, opts ...Option) *Client {
	if retries < 1 {
		retries = 1
	}
	c := &Client{
		Enabled:    enabled,
		Retries:    retries,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		backoff:    30 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get fetches url, retrying with a linearly growing pause between
// attempts. The response body and its Content-Type are returned.
func (c *Client) Get(ctx context.Context, url string) ([]byte, string, error) {
	if !c.Enabled {
		return nil, "", ErrUnavailable
	}

	var lastErr error
	for attempt := 0; attempt < c.Retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, "", ctx.Err()
			case <-time.After(c.backoff * time.Duration(attempt)):
			}
		}

		body, contentType, err := c.getOnce(ctx, url)
		if err == nil {
			return body, contentType, nil
		}
		lastErr = err
	}

	return nil, "", fmt.Errorf("%w: %v", ErrUnavailable, lastErr)
}

func (c *Client) getOnce(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}

	contentType := resp.Header.Get("Content-Type")
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = contentType[:i]
	}

	return body, strings.TrimSpace(contentType), nil
}

// Save fetches url and writes it to pathPrefix plus an extension
// chosen from the response Content-Type. Unsupported types write
// nothing and return ErrUnsupportedType.
func (c *Client) Save(ctx context.Context, pathPrefix, url string) (string, error) {
	body, contentType, err := c.Get(ctx, url)
	if err != nil {
		return "", err
	}

	ext, ok := extByContentType[contentType]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}

	pathname := pathPrefix + ext
	if err := os.WriteFile(pathname, body, 0o666); err != nil {
		return "", fmt.Errorf("write %s: %w", pathname, err)
	}

	return pathname, nil
}
