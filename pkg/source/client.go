// Package source talks to the appointment availability API and turns its
// per-location records into observations.
package source

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultURL is the slots v3 endpoint.
const DefaultURL = "https://app.checkvisaslots.com/slots/v3"

// maxBodySize caps how much of a response is read.
const maxBodySize = 10 * 1024 * 1024

var (
	// ErrUnexpectedStatus is returned for non-2xx responses.
	ErrUnexpectedStatus = errors.New("unexpected status")
	// ErrEmptyResponse is returned when the body decodes to nothing.
	ErrEmptyResponse = errors.New("empty response")
)

// ClientConfig holds the request settings for the availability API.
type ClientConfig struct {
	URL       string
	APIKey    string
	Origin    string
	UserAgent string
	Timeout   time.Duration
}

// Client fetches availability documents over HTTP.
type Client struct {
	cfg    ClientConfig
	client *http.Client
}

// NewClient creates an availability API client. A zero Timeout leaves the
// request bounded only by ctx.
func NewClient(cfg ClientConfig) *Client {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	return &Client{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Fetch retrieves and decodes the current availability document.
func (c *Client) Fetch(ctx context.Context) (Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "*/*")
	if c.cfg.APIKey != "" {
		req.Header.Set("X-Api-Key", c.cfg.APIKey)
	}
	if c.cfg.Origin != "" {
		req.Header.Set("Origin", c.cfg.Origin)
	}
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch slots: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	return Decode(body)
}

// Decode parses an availability document, keeping numbers as json.Number.
func Decode(body []byte) (Response, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var out Response
	if err := dec.Decode(&out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyResponse
		}
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(out) == 0 {
		return nil, ErrEmptyResponse
	}
	return out, nil
}
