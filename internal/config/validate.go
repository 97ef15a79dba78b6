package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateProviders(); err != nil {
		return err
	}
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateProviders() error {
	if c.ImageProvider.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/gaffer/config.toml"
		}
		return fmt.Errorf("image_provider.api_key is required. Set GAFFER_IMAGE_API_KEY env var or edit %s (create with 'gaffer config init')", defaultPath)
	}
	if c.VideoProvider.APIKey == "" {
		return errors.New("video_provider.api_key is required (or set GAFFER_VIDEO_API_KEY)")
	}
	if c.VideoProvider.PollTimeoutSeconds <= c.VideoProvider.PollIntervalSeconds {
		return errors.New("video_provider.poll_timeout_seconds must be greater than video_provider.poll_interval_seconds")
	}
	return nil
}

func (c *Config) validateStorage() error {
	if c.Storage.UploadURL != "" && strings.TrimSpace(c.Storage.PublicBaseURL) == "" {
		return errors.New("storage.public_base_url must be set when storage.upload_url is set")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if err := ensurePositiveMap(map[string]int{
		"workflow.queue_poll_interval":    c.Workflow.QueuePollInterval,
		"workflow.error_retry_interval":   c.Workflow.ErrorRetryInterval,
		"notifications.request_timeout":   c.Notifications.RequestTimeout,
		"storage.request_timeout":         c.Storage.RequestTimeout,
		"image_provider.timeout_seconds":  c.ImageProvider.TimeoutSeconds,
		"video_provider.timeout_seconds":  c.VideoProvider.TimeoutSeconds,
	}); err != nil {
		return err
	}
	if c.Workflow.HeartbeatInterval <= 0 {
		return errors.New("workflow.heartbeat_interval must be positive")
	}
	if c.Workflow.HeartbeatTimeout <= 0 {
		return errors.New("workflow.heartbeat_timeout must be positive")
	}
	if c.Workflow.HeartbeatTimeout <= c.Workflow.HeartbeatInterval {
		return errors.New("workflow.heartbeat_timeout must be greater than workflow.heartbeat_interval")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
