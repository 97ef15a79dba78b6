// Package mediastore persists generated media bytes, either to an HTTP
// object-storage endpoint or to a local directory when none is configured.
package mediastore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gaffer/internal/config"
	"gaffer/internal/executor"
)

const defaultRequestTimeout = 60 * time.Second

// Store implements executor.Uploader.
type Store struct {
	uploadURL     string
	publicBaseURL string
	apiKey        string
	mediaDir      string
	client        *http.Client
}

// Option customizes the store.
type Option func(*Store)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Store) {
		if client != nil {
			s.client = client
		}
	}
}

// New builds a media store from configuration. With an upload URL configured
// files go to the remote endpoint; otherwise they land under the media
// directory and are addressed with file URLs.
func New(cfg *config.Config, opts ...Option) *Store {
	timeout := defaultRequestTimeout
	if cfg.Storage.RequestTimeout > 0 {
		timeout = time.Duration(cfg.Storage.RequestTimeout) * time.Second
	}
	s := &Store{
		uploadURL:     strings.TrimRight(cfg.Storage.UploadURL, "/"),
		publicBaseURL: strings.TrimRight(cfg.Storage.PublicBaseURL, "/"),
		apiKey:        cfg.Storage.APIKey,
		mediaDir:      cfg.Paths.MediaDir,
		client:        &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Upload persists one media file and returns its public location and storage
// key.
func (s *Store) Upload(ctx context.Context, data []byte, filename, contentType string) (executor.UploadResult, error) {
	var empty executor.UploadResult
	filename = filepath.Base(strings.TrimSpace(filename))
	if filename == "" || filename == "." {
		return empty, errors.New("mediastore: filename required")
	}
	if len(data) == 0 {
		return empty, errors.New("mediastore: empty payload")
	}

	if s.uploadURL == "" {
		return s.writeLocal(data, filename)
	}
	return s.putRemote(ctx, data, filename, contentType)
}

func (s *Store) writeLocal(data []byte, filename string) (executor.UploadResult, error) {
	var empty executor.UploadResult
	if s.mediaDir == "" {
		return empty, errors.New("mediastore: no upload url and no media directory configured")
	}
	if err := os.MkdirAll(s.mediaDir, 0o755); err != nil {
		return empty, fmt.Errorf("mediastore: ensure media directory: %w", err)
	}
	path := filepath.Join(s.mediaDir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return empty, fmt.Errorf("mediastore: write %s: %w", filename, err)
	}
	return executor.UploadResult{
		URL: (&url.URL{Scheme: "file", Path: path}).String(),
		Key: filename,
	}, nil
}

func (s *Store) putRemote(ctx context.Context, data []byte, filename, contentType string) (executor.UploadResult, error) {
	var empty executor.UploadResult
	endpoint := s.uploadURL + "/" + url.PathEscape(filename)

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(data))
	if err != nil {
		return empty, fmt.Errorf("mediastore: new request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}
	req.ContentLength = int64(len(data))

	resp, err := s.client.Do(req)
	if err != nil {
		return empty, fmt.Errorf("mediastore: upload %s: %w", filename, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return empty, fmt.Errorf("mediastore: upload %s: http %d: %s", filename, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	publicURL := endpoint
	if s.publicBaseURL != "" {
		publicURL = s.publicBaseURL + "/" + url.PathEscape(filename)
	}
	return executor.UploadResult{URL: publicURL, Key: filename}, nil
}
