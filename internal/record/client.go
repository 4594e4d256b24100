// Package record talks to the external generation-record API. The engine
// saves one Generation at the end of each successful fill cycle; a save
// failure is the caller's to log and swallow, a cycle never fails on it.
package record

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/kfalck/ghostfill-cli/api/schemas"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Client is the HTTP client for the record API.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient builds a client against the API base endpoint. A zero timeout
// falls back to ten seconds.
func NewClient(endpoint string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.Named("record"),
	}
}

// Save persists one generation under its base URL grouping key.
func (c *Client) Save(ctx context.Context, baseURL string, gen schemas.Generation) error {
	body, err := json.Marshal(gen)
	if err != nil {
		return fmt.Errorf("failed to encode generation: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.generationsURL(baseURL), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create save request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to save generation: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("record API rejected save: status %d, body: %s", resp.StatusCode, respBody)
	}

	c.logger.Info("Generation persisted",
		zap.String("id", gen.ID),
		zap.String("base_url", baseURL),
		zap.Int("fields", len(gen.Fields)),
	)
	return nil
}

// Load fetches the generations recorded for a base URL, most recent first.
func (c *Client) Load(ctx context.Context, baseURL string) ([]schemas.Generation, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.generationsURL(baseURL), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create load request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to load generations: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("record API rejected load: status %d, body: %s", resp.StatusCode, respBody)
	}

	var generations []schemas.Generation
	if err := json.NewDecoder(resp.Body).Decode(&generations); err != nil {
		return nil, fmt.Errorf("failed to decode generations: %w", err)
	}
	return generations, nil
}

func (c *Client) generationsURL(baseURL string) string {
	return fmt.Sprintf("%s/generations?baseUrl=%s", c.endpoint, url.QueryEscape(baseURL))
}
