// Package adminclient talks to a running almanac over its HTTP API.
package adminclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/talgya/almanac/internal/api"
)

// Client reads state from the public endpoints and drives the admin ones.
type Client struct {
	BaseURL    string
	AdminKey   string
	HTTPClient *http.Client
}

// New creates a Client targeting the given API base URL.
func New(baseURL, adminKey string, timeout time.Duration) *Client {
	return &Client{
		BaseURL:  baseURL,
		AdminKey: adminKey,
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Status fetches GET /api/v1/status.
func (c *Client) Status(ctx context.Context) (*api.Status, error) {
	var st api.Status
	if err := c.fetchJSON(ctx, "/api/v1/status", &st); err != nil {
		return nil, fmt.Errorf("fetch status: %w", err)
	}
	return &st, nil
}

// Placeholder resolves one token for a participant.
func (c *Client) Placeholder(ctx context.Context, participant, token string) (string, error) {
	q := url.Values{"participant": {participant}, "token": {token}}
	var body map[string]string
	if err := c.fetchJSON(ctx, "/api/v1/placeholder?"+q.Encode(), &body); err != nil {
		return "", fmt.Errorf("fetch placeholder: %w", err)
	}
	return body["value"], nil
}

// Placeholders resolves every token for a participant.
func (c *Client) Placeholders(ctx context.Context, participant string) (map[string]string, error) {
	q := url.Values{"participant": {participant}}
	var body map[string]string
	if err := c.fetchJSON(ctx, "/api/v1/placeholders?"+q.Encode(), &body); err != nil {
		return nil, fmt.Errorf("fetch placeholders: %w", err)
	}
	return body, nil
}

// Broadcasts lists the most recent journal entries.
func (c *Client) Broadcasts(ctx context.Context, limit int) ([]api.BroadcastView, error) {
	var rows []api.BroadcastView
	if err := c.fetchJSON(ctx, "/api/v1/broadcasts?limit="+strconv.Itoa(limit), &rows); err != nil {
		return nil, fmt.Errorf("fetch broadcasts: %w", err)
	}
	return rows, nil
}

// Reload asks the server to re-read its configuration.
func (c *Client) Reload(ctx context.Context) (*api.CommandResult, error) {
	return c.command(ctx, "/api/v1/reload", nil)
}

// Set moves one calendar field of the server's clock.
func (c *Client) Set(ctx context.Context, field, value string) (*api.CommandResult, error) {
	return c.command(ctx, "/api/v1/set", api.SetRequest{Field: field, Value: value})
}

// SetSpeed changes the engine speed multiplier.
func (c *Client) SetSpeed(ctx context.Context, speed float64) (float64, error) {
	var out map[string]float64
	status, body, err := c.post(ctx, "/api/v1/speed", map[string]float64{"speed": speed})
	if err != nil {
		return 0, err
	}
	if status != http.StatusOK {
		return 0, fmt.Errorf("speed failed (%d): %s", status, string(body))
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return 0, fmt.Errorf("decode response: %w", err)
	}
	return out["speed"], nil
}

// command POSTs to an admin endpoint. A rejected command still returns the
// server's reply alongside the error.
func (c *Client) command(ctx context.Context, path string, payload any) (*api.CommandResult, error) {
	status, body, err := c.post(ctx, path, payload)
	if err != nil {
		return nil, err
	}

	var result api.CommandResult
	if jsonErr := json.Unmarshal(body, &result); jsonErr != nil {
		if status != http.StatusOK {
			return nil, fmt.Errorf("POST %s failed (%d): %s", path, status, bytes.TrimSpace(body))
		}
		return nil, fmt.Errorf("decode response: %w", jsonErr)
	}
	if status != http.StatusOK {
		return &result, fmt.Errorf("POST %s failed (%d): %s", path, status, result.Error)
	}
	return &result, nil
}

func (c *Client) post(ctx context.Context, path string, payload any) (int, []byte, error) {
	var reader io.Reader = http.NoBody
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.AdminKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("POST %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, body, nil
}

// fetchJSON GETs a path and decodes the JSON response into target.
func (c *Client) fetchJSON(ctx context.Context, path string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("GET %s returned %d: %s", path, resp.StatusCode, bytes.TrimSpace(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
