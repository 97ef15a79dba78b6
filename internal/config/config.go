package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	DataDir  string `toml:"data_dir"`
	LogDir   string `toml:"log_dir"`
	MediaDir string `toml:"media_dir"`
	APIBind  string `toml:"api_bind"`
	APIToken string `toml:"api_token"`
}

// Provider contains connection settings for a generation provider API.
type Provider struct {
	APIKey              string `toml:"api_key"`
	BaseURL             string `toml:"base_url"`
	Model               string `toml:"model"`
	TimeoutSeconds      int    `toml:"timeout_seconds"`
	PollIntervalSeconds int    `toml:"poll_interval_seconds"`
	PollTimeoutSeconds  int    `toml:"poll_timeout_seconds"`
}

// Storage contains configuration for the media upload target. When UploadURL
// is empty, files are written under Paths.MediaDir instead.
type Storage struct {
	UploadURL      string `toml:"upload_url"`
	PublicBaseURL  string `toml:"public_base_url"`
	APIKey         string `toml:"api_key"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	Runs           bool   `toml:"runs"`
	Assets         bool   `toml:"assets"`
	Errors         bool   `toml:"errors"`
}

// Workflow contains configuration for daemon timing and intervals.
type Workflow struct {
	QueuePollInterval  int `toml:"queue_poll_interval"`
	ErrorRetryInterval int `toml:"error_retry_interval"`
	HeartbeatInterval  int `toml:"heartbeat_interval"`
	HeartbeatTimeout   int `toml:"heartbeat_timeout"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for Gaffer.
//
// Configuration sections by subsystem:
//   - Paths: directories, API bind address, and API token
//   - ImageProvider: image generation API connection settings
//   - VideoProvider: video generation API connection settings
//   - Storage: media upload target (HTTP or local directory fallback)
//   - Notifications: ntfy push notification settings
//   - Workflow: daemon polling intervals and heartbeat timing
//   - Logging: log format, level, and retention
type Config struct {
	Paths         Paths         `toml:"paths"`
	ImageProvider Provider      `toml:"image_provider"`
	VideoProvider Provider      `toml:"video_provider"`
	Storage       Storage       `toml:"storage"`
	Notifications Notifications `toml:"notifications"`
	Workflow      Workflow      `toml:"workflow"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/gaffer/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("gaffer.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir, c.Paths.MediaDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
