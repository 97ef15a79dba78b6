// Package videogen wraps a task-based image-to-video generation API: create
// a task, poll until it settles, download the output.
package videogen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"gaffer/internal/config"
	"gaffer/internal/executor"
)

const defaultHTTPTimeout = 60 * time.Second

// Config captures the runtime settings required to talk to the provider.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	TimeoutSeconds int
	PollInterval   time.Duration
	PollTimeout    time.Duration
}

// Client drives the create/poll/download lifecycle. It satisfies
// executor.VideoGenerator.
type Client struct {
	cfg        Config
	httpClient *http.Client
	sleeper    func(time.Duration)
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithSleeper overrides how poll sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		c.sleeper = sleeper
	}
}

// NewClient constructs a video generation client.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Second
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = 10 * time.Minute
	}
	client := &Client{
		cfg: Config{
			APIKey:         strings.TrimSpace(cfg.APIKey),
			BaseURL:        strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
			Model:          strings.TrimSpace(cfg.Model),
			TimeoutSeconds: cfg.TimeoutSeconds,
			PollInterval:   cfg.PollInterval,
			PollTimeout:    cfg.PollTimeout,
		},
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return client
}

// FromConfig builds a client from the application configuration.
func FromConfig(cfg *config.Config, opts ...Option) *Client {
	return NewClient(Config{
		APIKey:         cfg.VideoProvider.APIKey,
		BaseURL:        cfg.VideoProvider.BaseURL,
		Model:          cfg.VideoProvider.Model,
		TimeoutSeconds: cfg.VideoProvider.TimeoutSeconds,
		PollInterval:   time.Duration(cfg.VideoProvider.PollIntervalSeconds) * time.Second,
		PollTimeout:    time.Duration(cfg.VideoProvider.PollTimeoutSeconds) * time.Second,
	}, opts...)
}

type createTaskRequest struct {
	Model       string `json:"model"`
	PromptImage string `json:"promptImage"`
	PromptText  string `json:"promptText,omitempty"`
	Duration    int    `json:"duration,omitempty"`
}

type taskResponse struct {
	ID      string   `json:"id"`
	Status  string   `json:"status"`
	Output  []string `json:"output"`
	Failure string   `json:"failure"`
}

// GenerateVideo runs one full generation: create the task, poll until it
// succeeds or fails, and download the produced file.
func (c *Client) GenerateVideo(ctx context.Context, req executor.VideoRequest) (executor.GeneratedMedia, error) {
	var empty executor.GeneratedMedia
	if strings.TrimSpace(req.KeyframeURL) == "" {
		return empty, errors.New("videogen: keyframe url required")
	}
	if c.cfg.APIKey == "" {
		return empty, errors.New("videogen: api key required")
	}

	taskID, err := c.createTask(ctx, req)
	if err != nil {
		return empty, err
	}

	outputURL, err := c.pollTask(ctx, taskID)
	if err != nil {
		return empty, err
	}

	return c.download(ctx, outputURL)
}

func (c *Client) createTask(ctx context.Context, req executor.VideoRequest) (string, error) {
	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = c.cfg.Model
	}
	payload := createTaskRequest{
		Model:       model,
		PromptImage: req.KeyframeURL,
		PromptText:  strings.TrimSpace(req.Prompt),
		Duration:    req.DurationSeconds,
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("videogen create: encode body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/image_to_video", bytes.NewReader(encoded))
	if err != nil {
		return "", fmt.Errorf("videogen create: new request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	var task taskResponse
	if err := c.doJSON(httpReq, &task); err != nil {
		return "", fmt.Errorf("videogen create: %w", err)
	}
	if task.ID == "" {
		return "", errors.New("videogen create: provider returned no task id")
	}
	return task.ID, nil
}

func (c *Client) pollTask(ctx context.Context, taskID string) (string, error) {
	deadline := time.Now().Add(c.cfg.PollTimeout)

	for {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/tasks/"+taskID, nil)
		if err != nil {
			return "", fmt.Errorf("videogen poll: new request: %w", err)
		}
		httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

		var task taskResponse
		if err := c.doJSON(httpReq, &task); err != nil {
			return "", fmt.Errorf("videogen poll: %w", err)
		}

		switch strings.ToUpper(strings.TrimSpace(task.Status)) {
		case "SUCCEEDED":
			if len(task.Output) == 0 || task.Output[0] == "" {
				return "", errors.New("videogen poll: task succeeded without output")
			}
			return task.Output[0], nil
		case "FAILED", "CANCELLED":
			failure := strings.TrimSpace(task.Failure)
			if failure == "" {
				failure = "no failure detail"
			}
			return "", fmt.Errorf("videogen poll: task %s: %s", strings.ToLower(task.Status), failure)
		}

		if time.Now().After(deadline) {
			return "", fmt.Errorf("videogen poll: task %s did not settle within %s", taskID, c.cfg.PollTimeout)
		}
		if err := c.sleep(ctx, c.cfg.PollInterval); err != nil {
			return "", err
		}
	}
}

func (c *Client) download(ctx context.Context, rawURL string) (executor.GeneratedMedia, error) {
	var empty executor.GeneratedMedia
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return empty, fmt.Errorf("videogen download: new request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return empty, fmt.Errorf("videogen download: http error: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusMultipleChoices {
		return empty, fmt.Errorf("videogen download: http %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return empty, fmt.Errorf("videogen download: read body: %w", err)
	}
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "video/mp4"
	}
	return executor.GeneratedMedia{Data: data, ContentType: contentType}, nil
}

func (c *Client) doJSON(req *http.Request, target any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http error: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	if c.sleeper != nil {
		c.sleeper(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
