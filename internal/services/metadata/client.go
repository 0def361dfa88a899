package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ttrsync/internal/replay"
)

const (
	defaultBaseURL     = "https://ch.tetr.io/api"
	defaultUserAgent   = "ttrsync/dev"
	defaultHTTPTimeout = 30 * time.Second
)

// Config describes the metadata client configuration.
type Config struct {
	BaseURL    string
	UserAgent  string
	HTTPClient *http.Client
}

// Client reads replay records from the metadata service's streams.
type Client struct {
	baseURL   *url.URL
	userAgent string
	http      *http.Client
}

// New creates a Client from the supplied configuration.
func New(cfg Config) (*Client, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = defaultBaseURL
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("metadata: parse base url: %w", err)
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

// StreamURL returns the endpoint serving the named stream.
func (c *Client) StreamURL(stream string) string {
	return c.baseURL.JoinPath("streams", stream).String()
}

// Stream fetches the records currently listed in the named stream. A response
// without a data payload is a StreamDataMissingError; an empty record list is
// not an error.
func (c *Client) Stream(ctx context.Context, stream string) ([]replay.Record, error) {
	if c == nil {
		return nil, errors.New("metadata: client is nil")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.StreamURL(stream), nil)
	if err != nil {
		return nil, &StreamFetchError{Stream: stream, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &StreamFetchError{Stream: stream, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &StreamFetchError{
			Stream:     stream,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %s: %s", resp.Status, strings.TrimSpace(string(body))),
		}
	}

	var payload streamResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &StreamFetchError{Stream: stream, Err: fmt.Errorf("decode response: %w", err)}
	}
	if payload.Data == nil {
		return nil, &StreamDataMissingError{Stream: stream, Reason: strings.TrimSpace(payload.Error)}
	}

	records := make([]replay.Record, 0, len(payload.Data.Records))
	for _, entry := range payload.Data.Records {
		records = append(records, entry.toRecord())
	}
	return records, nil
}

type streamResponse struct {
	Error string      `json:"error"`
	Data  *streamData `json:"data"`
}

type streamData struct {
	Records []streamRecord `json:"records"`
}

// encoding/json matches keys case-insensitively, so replayid/replayId and
// ismulti/isMulti both land in the same field.
type streamRecord struct {
	ReplayID   string `json:"replayid"`
	IsMulti    *bool  `json:"ismulti"`
	TS         string `json:"ts"`
	RecordedAt string `json:"recordedAt"`
}

func (r streamRecord) toRecord() replay.Record {
	recordedAt := r.RecordedAt
	if recordedAt == "" {
		recordedAt = r.TS
	}
	return replay.Record{
		ReplayID:   r.ReplayID,
		IsMulti:    r.IsMulti,
		RecordedAt: recordedAt,
	}
}
