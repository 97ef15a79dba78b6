package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"gaffer/internal/notifications"
	"gaffer/internal/testsupport"
)

type recordedRequest struct {
	body     string
	title    string
	tags     string
	priority string
}

func newNtfyServer(t *testing.T, status int) (*httptest.Server, *[]recordedRequest) {
	t.Helper()
	var requests []recordedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		requests = append(requests, recordedRequest{
			body:     string(body),
			title:    r.Header.Get("Title"),
			tags:     r.Header.Get("Tags"),
			priority: r.Header.Get("Priority"),
		})
		w.WriteHeader(status)
	}))
	t.Cleanup(server.Close)
	return server, &requests
}

func TestNotifyRunCompletedPostsToTopic(t *testing.T) {
	server, requests := newNtfyServer(t, http.StatusOK)
	cfg := testsupport.NewConfig(t, testsupport.WithNtfyTopic(server.URL))
	svc := notifications.NewService(cfg)

	if err := svc.NotifyRunCompleted(context.Background(), "run-1", "imageGen"); err != nil {
		t.Fatalf("NotifyRunCompleted failed: %v", err)
	}
	if len(*requests) != 1 {
		t.Fatalf("expected one request, got %d", len(*requests))
	}
	got := (*requests)[0]
	if got.title != "Gaffer - Run Complete" || got.tags != "gaffer,run,completed" {
		t.Fatalf("unexpected headers: %#v", got)
	}
	if got.body != "Run run-1 completed (imageGen)" {
		t.Fatalf("unexpected body: %q", got.body)
	}
}

func TestNotifyRunFailedUsesHighPriority(t *testing.T) {
	server, requests := newNtfyServer(t, http.StatusOK)
	cfg := testsupport.NewConfig(t, testsupport.WithNtfyTopic(server.URL))
	svc := notifications.NewService(cfg)

	if err := svc.NotifyRunFailed(context.Background(), "run-1", "provider exploded"); err != nil {
		t.Fatalf("NotifyRunFailed failed: %v", err)
	}
	got := (*requests)[0]
	if got.priority != "high" {
		t.Fatalf("expected high priority, got %q", got.priority)
	}
}

func TestNotifyErrorRespectsDisabledCategory(t *testing.T) {
	server, requests := newNtfyServer(t, http.StatusOK)
	cfg := testsupport.NewConfig(t, testsupport.WithNtfyTopic(server.URL))
	cfg.Notifications.Errors = false
	svc := notifications.NewService(cfg)

	if err := svc.NotifyError(context.Background(), errors.New("boom"), "worker"); err != nil {
		t.Fatalf("NotifyError failed: %v", err)
	}
	if len(*requests) != 0 {
		t.Fatal("disabled category must not send")
	}
}

func TestSendReportsServerError(t *testing.T) {
	server, _ := newNtfyServer(t, http.StatusForbidden)
	cfg := testsupport.NewConfig(t, testsupport.WithNtfyTopic(server.URL))
	svc := notifications.NewService(cfg)

	err := svc.TestNotification(context.Background())
	if err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}

func TestNoopServiceWithoutTopic(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	svc := notifications.NewService(cfg)

	if err := svc.NotifyRunCompleted(context.Background(), "run-1", "prompt"); err != nil {
		t.Fatalf("noop service must not error: %v", err)
	}
	if err := svc.TestNotification(context.Background()); err != nil {
		t.Fatalf("noop service must not error: %v", err)
	}
}
