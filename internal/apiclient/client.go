// Package apiclient is the HTTP client the CLI uses to talk to a
// running snatch daemon.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"snatch/internal/api"
)

// Client talks to the daemon API over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// New constructs a client for the daemon listening at bind, given as
// either host:port or a full http URL.
func New(bind string) *Client {
	base := strings.TrimSpace(bind)
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}
	return &Client{
		baseURL: strings.TrimRight(base, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Health checks daemon liveness.
func (c *Client) Health(ctx context.Context) (api.HealthResponse, error) {
	var resp api.HealthResponse
	err := c.do(ctx, http.MethodGet, "/api/health", nil, &resp)
	return resp, err
}

// SubmitBulk submits a batch of URLs for download.
func (c *Client) SubmitBulk(ctx context.Context, req api.BulkDownloadRequest) (api.BulkDownloadResponse, error) {
	var resp api.BulkDownloadResponse
	err := c.do(ctx, http.MethodPost, "/api/download/bulk", req, &resp)
	return resp, err
}

// ListDownloads returns all job records, newest first.
func (c *Client) ListDownloads(ctx context.Context) ([]api.DownloadItem, error) {
	var items []api.DownloadItem
	err := c.do(ctx, http.MethodGet, "/api/downloads", nil, &items)
	return items, err
}

// Stats returns aggregate job counts.
func (c *Client) Stats(ctx context.Context) (api.StatsResponse, error) {
	var resp api.StatsResponse
	err := c.do(ctx, http.MethodGet, "/api/downloads/stats", nil, &resp)
	return resp, err
}

// Retry schedules a failed download for another run.
func (c *Client) Retry(ctx context.Context, id string) (api.StatusResponse, error) {
	var resp api.StatusResponse
	err := c.do(ctx, http.MethodPost, "/api/downloads/"+id+"/retry", nil, &resp)
	return resp, err
}

// Remove deletes one job record.
func (c *Client) Remove(ctx context.Context, id string) (api.StatusResponse, error) {
	var resp api.StatusResponse
	err := c.do(ctx, http.MethodDelete, "/api/downloads/"+id, nil, &resp)
	return resp, err
}

// Clear removes every job record.
func (c *Client) Clear(ctx context.Context) (api.StatusResponse, error) {
	var resp api.StatusResponse
	err := c.do(ctx, http.MethodDelete, "/api/downloads", nil, &resp)
	return resp, err
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("daemon unreachable: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(payload, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("daemon: %s", apiErr.Error)
		}
		return fmt.Errorf("daemon: unexpected status %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
