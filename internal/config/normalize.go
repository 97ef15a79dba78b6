package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeProvider(&c.ImageProvider, defaultImageBaseURL, defaultImageModel, defaultImageTimeoutSeconds, "GAFFER_IMAGE_API_KEY")
	c.normalizeProvider(&c.VideoProvider, defaultVideoBaseURL, defaultVideoModel, defaultVideoTimeoutSeconds, "GAFFER_VIDEO_API_KEY")
	if c.VideoProvider.PollIntervalSeconds <= 0 {
		c.VideoProvider.PollIntervalSeconds = defaultVideoPollInterval
	}
	if c.VideoProvider.PollTimeoutSeconds <= 0 {
		c.VideoProvider.PollTimeoutSeconds = defaultVideoPollTimeout
	}
	c.normalizeStorage()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.MediaDir) == "" {
		c.Paths.MediaDir = defaultMediaDir
	}
	if c.Paths.MediaDir, err = expandPath(c.Paths.MediaDir); err != nil {
		return fmt.Errorf("paths.media_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	c.Paths.APIToken = strings.TrimSpace(c.Paths.APIToken)
	if c.Paths.APIToken == "" {
		if value, ok := os.LookupEnv("GAFFER_API_TOKEN"); ok {
			c.Paths.APIToken = strings.TrimSpace(value)
		}
	}
	return nil
}

func (c *Config) normalizeProvider(p *Provider, baseURL, model string, timeout int, envKey string) {
	p.BaseURL = strings.TrimSpace(p.BaseURL)
	if p.BaseURL == "" {
		p.BaseURL = baseURL
	}
	p.Model = strings.TrimSpace(p.Model)
	if p.Model == "" {
		p.Model = model
	}
	if p.TimeoutSeconds <= 0 {
		p.TimeoutSeconds = timeout
	}
	p.APIKey = strings.TrimSpace(p.APIKey)
	if p.APIKey == "" {
		if value, ok := os.LookupEnv(envKey); ok {
			p.APIKey = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeStorage() {
	c.Storage.UploadURL = strings.TrimSpace(c.Storage.UploadURL)
	c.Storage.PublicBaseURL = strings.TrimSpace(c.Storage.PublicBaseURL)
	c.Storage.APIKey = strings.TrimSpace(c.Storage.APIKey)
	if c.Storage.APIKey == "" {
		if value, ok := os.LookupEnv("GAFFER_STORAGE_API_KEY"); ok {
			c.Storage.APIKey = strings.TrimSpace(value)
		}
	}
	if c.Storage.RequestTimeout <= 0 {
		c.Storage.RequestTimeout = defaultStorageRequestTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
