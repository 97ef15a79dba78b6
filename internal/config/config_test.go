package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gaffer/internal/config"
)

func setProviderKeys(t *testing.T) {
	t.Helper()
	t.Setenv("GAFFER_IMAGE_API_KEY", "img-key")
	t.Setenv("GAFFER_VIDEO_API_KEY", "vid-key")
}

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	setProviderKeys(t)

	path := filepath.Join(t.TempDir(), "absent.toml")
	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false for a missing file")
	}
	if resolved != path {
		t.Fatalf("expected resolved path %s, got %s", path, resolved)
	}
	if cfg.Paths.APIBind != "127.0.0.1:7718" {
		t.Fatalf("unexpected default bind: %s", cfg.Paths.APIBind)
	}
	if cfg.ImageProvider.Model != "gpt-image-1" || cfg.VideoProvider.Model != "gen4_turbo" {
		t.Fatalf("unexpected default models: %s / %s", cfg.ImageProvider.Model, cfg.VideoProvider.Model)
	}
	if cfg.ImageProvider.APIKey != "img-key" || cfg.VideoProvider.APIKey != "vid-key" {
		t.Fatal("expected provider keys picked up from environment")
	}
	if !filepath.IsAbs(cfg.Paths.DataDir) {
		t.Fatalf("expected expanded data dir, got %s", cfg.Paths.DataDir)
	}
}

func TestLoadParsesFile(t *testing.T) {
	base := t.TempDir()
	path := writeConfig(t, `
[paths]
data_dir = "`+filepath.Join(base, "data")+`"
api_bind = "127.0.0.1:9000"
api_token = "secret"

[image_provider]
api_key = "file-img-key"
model = "custom-image-model"

[video_provider]
api_key = "file-vid-key"

[storage]
upload_url = "https://storage.example/upload"
public_base_url = "https://cdn.example"

[workflow]
queue_poll_interval = 2
`)

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists {
		t.Fatal("expected exists=true")
	}
	if cfg.Paths.APIBind != "127.0.0.1:9000" || cfg.Paths.APIToken != "secret" {
		t.Fatalf("unexpected paths: %#v", cfg.Paths)
	}
	if cfg.ImageProvider.Model != "custom-image-model" {
		t.Fatalf("unexpected image model: %s", cfg.ImageProvider.Model)
	}
	if cfg.Storage.PublicBaseURL != "https://cdn.example" {
		t.Fatalf("unexpected storage config: %#v", cfg.Storage)
	}
	if cfg.Workflow.QueuePollInterval != 2 {
		t.Fatalf("unexpected poll interval: %d", cfg.Workflow.QueuePollInterval)
	}
	if cfg.Workflow.ErrorRetryInterval != 10 {
		t.Fatalf("unset workflow fields should keep defaults, got %d", cfg.Workflow.ErrorRetryInterval)
	}
}

func TestLoadRequiresImageAPIKey(t *testing.T) {
	t.Setenv("GAFFER_IMAGE_API_KEY", "")
	t.Setenv("GAFFER_VIDEO_API_KEY", "vid-key")

	_, _, _, err := config.Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err == nil || !strings.Contains(err.Error(), "image_provider.api_key") {
		t.Fatalf("expected image api key error, got %v", err)
	}
}

func TestLoadRejectsInvertedPollWindow(t *testing.T) {
	setProviderKeys(t)
	path := writeConfig(t, `
[video_provider]
poll_interval_seconds = 30
poll_timeout_seconds = 10
`)

	_, _, _, err := config.Load(path)
	if err == nil || !strings.Contains(err.Error(), "poll_timeout_seconds") {
		t.Fatalf("expected poll window error, got %v", err)
	}
}

func TestLoadRequiresPublicBaseURLWithUploadURL(t *testing.T) {
	setProviderKeys(t)
	path := writeConfig(t, `
[storage]
upload_url = "https://storage.example/upload"
`)

	_, _, _, err := config.Load(path)
	if err == nil || !strings.Contains(err.Error(), "public_base_url") {
		t.Fatalf("expected storage error, got %v", err)
	}
}

func TestLoadRejectsNonPositiveIntervals(t *testing.T) {
	setProviderKeys(t)
	path := writeConfig(t, `
[workflow]
queue_poll_interval = -1
`)

	_, _, _, err := config.Load(path)
	if err == nil || !strings.Contains(err.Error(), "must be positive") {
		t.Fatalf("expected interval error, got %v", err)
	}
}

func TestLoadRejectsHeartbeatTimeoutBelowInterval(t *testing.T) {
	setProviderKeys(t)
	path := writeConfig(t, `
[workflow]
heartbeat_interval = 30
heartbeat_timeout = 20
`)

	_, _, _, err := config.Load(path)
	if err == nil || !strings.Contains(err.Error(), "heartbeat_timeout") {
		t.Fatalf("expected heartbeat error, got %v", err)
	}
}

func TestLoadNormalizesLoggingFormat(t *testing.T) {
	setProviderKeys(t)
	path := writeConfig(t, `
[logging]
format = "JSON"
`)

	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected normalized json format, got %s", cfg.Logging.Format)
	}

	path = writeConfig(t, `
[logging]
format = "fancy"
`)
	cfg, _, _, err = config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Logging.Format != "console" {
		t.Fatalf("unknown format should fall back to console, got %s", cfg.Logging.Format)
	}
}

func TestAPITokenFallsBackToEnvironment(t *testing.T) {
	setProviderKeys(t)
	t.Setenv("GAFFER_API_TOKEN", "env-token")

	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Paths.APIToken != "env-token" {
		t.Fatalf("expected token from environment, got %q", cfg.Paths.APIToken)
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	setProviderKeys(t)
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load of sample failed: %v", err)
	}
	if !exists {
		t.Fatal("expected sample file to exist")
	}
	if cfg.Paths.APIBind == "" {
		t.Fatal("expected populated config from sample")
	}
}

func TestExpandPathResolvesTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}
	expanded, err := config.ExpandPath("~/gaffer-test")
	if err != nil {
		t.Fatalf("ExpandPath failed: %v", err)
	}
	if expanded != filepath.Join(home, "gaffer-test") {
		t.Fatalf("unexpected expansion: %s", expanded)
	}
}
