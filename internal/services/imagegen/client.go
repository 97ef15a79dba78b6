// Package imagegen wraps an OpenAI-style image generation API.
package imagegen

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"gaffer/internal/config"
	"gaffer/internal/executor"
)

const (
	defaultHTTPTimeout    = 120 * time.Second
	defaultRetryMaxDelay  = 10 * time.Second
	defaultRetryBaseDelay = 1 * time.Second
	defaultRetryAttempts  = 3
)

// Config captures the runtime settings required to talk to the provider.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	TimeoutSeconds int
}

// Client calls the image generation endpoint with retry on transient
// failures. It satisfies executor.ImageGenerator.
type Client struct {
	cfg        Config
	httpClient *http.Client

	retryMaxAttempts int
	retryBaseDelay   time.Duration
	retryMaxDelay    time.Duration
	sleeper          func(time.Duration)
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

// WithRetryMaxAttempts overrides the default retry count.
func WithRetryMaxAttempts(attempts int) Option {
	return func(c *Client) {
		c.retryMaxAttempts = attempts
	}
}

// WithRetryBackoff overrides the retry backoff delays.
func WithRetryBackoff(baseDelay, maxDelay time.Duration) Option {
	return func(c *Client) {
		c.retryBaseDelay = baseDelay
		c.retryMaxDelay = maxDelay
	}
}

// WithSleeper overrides how retry sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		c.sleeper = sleeper
	}
}

// NewClient constructs an image generation client.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			APIKey:         strings.TrimSpace(cfg.APIKey),
			BaseURL:        strings.TrimSpace(cfg.BaseURL),
			Model:          strings.TrimSpace(cfg.Model),
			TimeoutSeconds: cfg.TimeoutSeconds,
		},
		httpClient:       &http.Client{Timeout: timeout},
		retryMaxAttempts: defaultRetryAttempts,
		retryBaseDelay:   defaultRetryBaseDelay,
		retryMaxDelay:    defaultRetryMaxDelay,
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
		APIKey:         cfg.ImageProvider.APIKey,
		BaseURL:        cfg.ImageProvider.BaseURL,
		Model:          cfg.ImageProvider.Model,
		TimeoutSeconds: cfg.ImageProvider.TimeoutSeconds,
	}, opts...)
}

type generationRequest struct {
	Model          string   `json:"model"`
	Prompt         string   `json:"prompt"`
	N              int      `json:"n"`
	ResponseFormat string   `json:"response_format"`
	ImageURLs      []string `json:"image_urls,omitempty"`
}

type generationResponse struct {
	Data []struct {
		B64JSON string `json:"b64_json"`
		URL     string `json:"url"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

type httpStatusError struct {
	StatusCode int
	Body       string
	RetryAfter time.Duration
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("imagegen request: http %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

// GenerateImage produces image bytes for a prompt, optionally conditioned on
// reference image URLs.
func (c *Client) GenerateImage(ctx context.Context, req executor.ImageRequest) (executor.GeneratedMedia, error) {
	var empty executor.GeneratedMedia
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return empty, errors.New("imagegen: prompt required")
	}
	if c.cfg.APIKey == "" {
		return empty, errors.New("imagegen: api key required")
	}

	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = c.cfg.Model
	}
	payload := generationRequest{
		Model:          model,
		Prompt:         prompt,
		N:              1,
		ResponseFormat: "b64_json",
	}
	for _, ref := range req.ReferenceImages {
		if ref.URL != "" {
			payload.ImageURLs = append(payload.ImageURLs, ref.URL)
		}
	}

	response, err := c.sendWithRetry(ctx, payload)
	if err != nil {
		return empty, err
	}
	if len(response.Data) == 0 {
		return empty, errors.New("imagegen: provider returned no images")
	}

	entry := response.Data[0]
	if entry.B64JSON != "" {
		data, err := base64.StdEncoding.DecodeString(entry.B64JSON)
		if err != nil {
			return empty, fmt.Errorf("imagegen: decode image payload: %w", err)
		}
		return executor.GeneratedMedia{Data: data, ContentType: "image/png"}, nil
	}
	if entry.URL != "" {
		return c.download(ctx, entry.URL)
	}
	return empty, errors.New("imagegen: provider returned neither inline data nor a url")
}

func (c *Client) sendWithRetry(ctx context.Context, payload generationRequest) (generationResponse, error) {
	attempts := c.retryAttempts()
	var (
		response generationResponse
		lastErr  error
	)

	for attempt := 1; attempt <= attempts; attempt++ {
		result, err := c.sendOnce(ctx, payload)
		if err == nil {
			return result, nil
		}

		delay, retry := c.retryDelay(ctx, err, attempt, attempts)
		if !retry {
			return response, err
		}
		if serr := c.sleep(ctx, delay); serr != nil {
			return response, serr
		}
		lastErr = err
	}

	if lastErr == nil {
		lastErr = errors.New("unknown retry failure")
	}
	return response, fmt.Errorf("imagegen: failed after %d attempts: %w", attempts, lastErr)
}

func (c *Client) sendOnce(ctx context.Context, payload generationRequest) (generationResponse, error) {
	var response generationResponse
	encoded, err := json.Marshal(payload)
	if err != nil {
		return response, fmt.Errorf("imagegen request: encode body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(encoded))
	if err != nil {
		return response, fmt.Errorf("imagegen request: new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return response, fmt.Errorf("imagegen request: http error: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return response, fmt.Errorf("imagegen request: read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		retryAfter, _ := parseRetryAfter(resp.Header.Get("Retry-After"))
		return response, &httpStatusError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
			RetryAfter: retryAfter,
		}
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return response, fmt.Errorf("imagegen request: decode response: %w", err)
	}
	if response.Error != nil {
		return response, fmt.Errorf("imagegen request: api error: %s", strings.TrimSpace(response.Error.Message))
	}
	return response, nil
}

func (c *Client) download(ctx context.Context, rawURL string) (executor.GeneratedMedia, error) {
	var empty executor.GeneratedMedia
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return empty, fmt.Errorf("imagegen download: new request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return empty, fmt.Errorf("imagegen download: http error: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusMultipleChoices {
		return empty, fmt.Errorf("imagegen download: http %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return empty, fmt.Errorf("imagegen download: read body: %w", err)
	}
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/png"
	}
	return executor.GeneratedMedia{Data: data, ContentType: contentType}, nil
}

func (c *Client) retryAttempts() int {
	if c == nil || c.retryMaxAttempts <= 0 {
		return 1
	}
	return c.retryMaxAttempts
}

func (c *Client) retryDelay(ctx context.Context, err error, attempt, maxAttempts int) (time.Duration, bool) {
	if attempt >= maxAttempts || err == nil || ctx == nil || ctx.Err() != nil {
		return 0, false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return 0, false
	}

	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.StatusCode == http.StatusRequestTimeout,
			statusErr.StatusCode == http.StatusTooManyRequests,
			statusErr.StatusCode >= http.StatusInternalServerError:
			if statusErr.RetryAfter > 0 {
				return c.capDelay(statusErr.RetryAfter), true
			}
			return c.backoffDelay(attempt), true
		default:
			return 0, false
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return c.backoffDelay(attempt), true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return c.backoffDelay(attempt), true
	}
	return 0, false
}

func (c *Client) backoffDelay(attempt int) time.Duration {
	base := c.retryBaseDelay
	if base <= 0 {
		base = defaultRetryBaseDelay
	}
	maxDelay := c.retryMaxDelay
	if maxDelay <= 0 {
		maxDelay = defaultRetryMaxDelay
	}

	delay := base
	for i := 1; i < attempt; i++ {
		if delay > maxDelay/2 {
			delay = maxDelay
			break
		}
		delay *= 2
	}
	return c.capDelay(delay)
}

func (c *Client) capDelay(delay time.Duration) time.Duration {
	if delay < 0 {
		return 0
	}
	maxDelay := c.retryMaxDelay
	if maxDelay <= 0 {
		maxDelay = defaultRetryMaxDelay
	}
	if delay > maxDelay {
		return maxDelay
	}
	return delay
}

func (c *Client) sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
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

func parseRetryAfter(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0, false
		}
		return time.Duration(seconds) * time.Second, true
	}
	if when, err := http.ParseTime(value); err == nil {
		delay := time.Until(when)
		if delay < 0 {
			return 0, false
		}
		return delay, true
	}
	return 0, false
}
