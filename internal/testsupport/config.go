package testsupport

import (
	"path/filepath"
	"testing"

	"gaffer/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.MediaDir = filepath.Join(base, "media")
	cfg.Paths.APIBind = "127.0.0.1:0"
	cfg.ImageProvider.APIKey = "test-image-key"
	cfg.VideoProvider.APIKey = "test-video-key"

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithNtfyTopic sets the ntfy topic on the test config.
func WithNtfyTopic(topic string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Notifications.NtfyTopic = topic
	}
}

// WithStorageUpload points the storage section at a remote upload endpoint.
func WithStorageUpload(uploadURL, publicBaseURL string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Storage.UploadURL = uploadURL
		cfg.Storage.PublicBaseURL = publicBaseURL
	}
}
