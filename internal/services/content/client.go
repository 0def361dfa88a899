package content

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultBaseURL     = "https://inoue.szy.lol/api"
	defaultUserAgent   = "ttrsync/dev"
	defaultHTTPTimeout = 2 * time.Minute
)

// Config describes the content client configuration.
type Config struct {
	BaseURL    string
	UserAgent  string
	HTTPClient *http.Client
}

// Client downloads replay payloads from the content service.
type Client struct {
	baseURL   *url.URL
	userAgent string
	http      *http.Client
}

// StatusError reports a non-2xx response from the content service.
type StatusError struct {
	ReplayID   string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("content: replay %s: unexpected status %s", e.ReplayID, e.Status)
}

// RateLimited reports whether the service asked the caller to slow down.
func (e *StatusError) RateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// New creates a Client from the supplied configuration.
func New(cfg Config) (*Client, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = defaultBaseURL
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("content: parse base url: %w", err)
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &Client{
		baseURL:   baseURL,
		userAgent: userAgent,
		http:      client,
	}, nil
}

// ReplayURL returns the download endpoint for a replay id.
func (c *Client) ReplayURL(id string) string {
	return c.baseURL.JoinPath("replay", id).String()
}

// Fetch downloads the full replay payload. Non-2xx responses, including 429,
// come back as *StatusError; anything else is a transport failure.
func (c *Client) Fetch(ctx context.Context, id string) ([]byte, error) {
	if c == nil {
		return nil, errors.New("content: client is nil")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.ReplayURL(id), nil)
	if err != nil {
		return nil, fmt.Errorf("content: build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("content: request replay %s: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{ReplayID: id, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("content: read replay %s: %w", id, err)
	}
	return data, nil
}
