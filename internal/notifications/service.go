package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"gaffer/internal/config"
)

const userAgent = "Gaffer-Go/0.1.0"

// Service defines the notification surface exposed to workflow components.
type Service interface {
	NotifyRunCompleted(ctx context.Context, runID, nodeType string) error
	NotifyRunFailed(ctx context.Context, runID, message string) error
	NotifyAssetReady(ctx context.Context, assetType, url string) error
	NotifyError(ctx context.Context, err error, context string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint:     topic,
		client:       &http.Client{Timeout: timeout},
		notifyRuns:   cfg.Notifications.Runs,
		notifyAssets: cfg.Notifications.Assets,
		notifyErrors: cfg.Notifications.Errors,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint     string
	client       *http.Client
	notifyRuns   bool
	notifyAssets bool
	notifyErrors bool
}

func (n *ntfyService) NotifyRunCompleted(ctx context.Context, runID, nodeType string) error {
	if !n.notifyRuns {
		return nil
	}
	data := payload{
		title:   "Gaffer - Run Complete",
		message: fmt.Sprintf("Run %s completed (%s)", runID, nodeType),
		tags:    []string{"gaffer", "run", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyRunFailed(ctx context.Context, runID, message string) error {
	if !n.notifyRuns {
		return nil
	}
	data := payload{
		title:    "Gaffer - Run Failed",
		message:  fmt.Sprintf("Run %s failed: %s", runID, strings.TrimSpace(message)),
		tags:     []string{"gaffer", "run", "failed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyAssetReady(ctx context.Context, assetType, url string) error {
	if !n.notifyAssets {
		return nil
	}
	message := fmt.Sprintf("New %s asset ready", assetType)
	if url = strings.TrimSpace(url); url != "" {
		message = fmt.Sprintf("%s\n%s", message, url)
	}
	data := payload{
		title:   "Gaffer - Asset Ready",
		message: message,
		tags:    []string{"gaffer", "asset", "ready"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	if !n.notifyErrors {
		return nil
	}
	var builder strings.Builder
	builder.WriteString("Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "Gaffer - Error",
		message:  builder.String(),
		tags:     []string{"gaffer", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Gaffer - Test",
		message:  "Notification system test",
		tags:     []string{"gaffer", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyRunCompleted(context.Context, string, string) error { return nil }
func (noopService) NotifyRunFailed(context.Context, string, string) error    { return nil }
func (noopService) NotifyAssetReady(context.Context, string, string) error   { return nil }
func (noopService) NotifyError(context.Context, error, string) error         { return nil }
func (noopService) TestNotification(context.Context) error                   { return nil }
