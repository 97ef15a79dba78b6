package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"gaffer/internal/api"
)

// apiClient is a thin HTTP client for the daemon API.
type apiClient struct {
	baseURL string
	token   string
	client  *http.Client
}

func newAPIClient(bind, token string) *apiClient {
	return &apiClient{
		baseURL: "http://" + strings.TrimSpace(bind),
		token:   token,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Ping reports whether the daemon API is reachable.
func (c *apiClient) Ping(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return false
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode == http.StatusOK
}

func (c *apiClient) Status(ctx context.Context) (*api.DaemonStatus, error) {
	var out api.DaemonStatus
	if err := c.get(ctx, "/api/status", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *apiClient) QueueRun(ctx context.Context, req api.QueueRunRequest) (*api.Run, error) {
	var out api.RunResponse
	if err := c.post(ctx, "/api/runs", req, &out); err != nil {
		return nil, err
	}
	return &out.Run, nil
}

func (c *apiClient) ListRuns(ctx context.Context, statuses []string) ([]api.Run, error) {
	path := "/api/runs"
	if len(statuses) > 0 {
		values := url.Values{}
		for _, status := range statuses {
			values.Add("status", status)
		}
		path += "?" + values.Encode()
	}
	var out api.RunListResponse
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out.Runs, nil
}

func (c *apiClient) GetRun(ctx context.Context, id string) (*api.Run, error) {
	var out api.RunResponse
	if err := c.get(ctx, "/api/runs/"+url.PathEscape(id), &out); err != nil {
		return nil, err
	}
	return &out.Run, nil
}

func (c *apiClient) RetryRun(ctx context.Context, id string) (int64, error) {
	var out api.RetryResponse
	if err := c.post(ctx, "/api/runs/"+url.PathEscape(id)+"/retry", nil, &out); err != nil {
		return 0, err
	}
	return out.Retried, nil
}

func (c *apiClient) ListAssets(ctx context.Context, projectID string) ([]api.Asset, error) {
	path := "/api/assets"
	if strings.TrimSpace(projectID) != "" {
		path += "?project=" + url.QueryEscape(projectID)
	}
	var out api.AssetListResponse
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out.Assets, nil
}

func (c *apiClient) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *apiClient) post(ctx context.Context, path string, payload, out any) error {
	return c.do(ctx, http.MethodPost, path, payload, out)
}

func (c *apiClient) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("daemon request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Error != "" {
		return fmt.Errorf("daemon: %s", payload.Error)
	}
	return fmt.Errorf("daemon returned status %d", resp.StatusCode)
}
