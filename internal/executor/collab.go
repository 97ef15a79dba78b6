package executor

import (
	"context"

	"gaffer/internal/store"
)

// ImageRequest describes one image generation call.
type ImageRequest struct {
	Prompt          string
	Model           string
	ReferenceImages []AssetRef
}

// VideoRequest describes one video generation call.
type VideoRequest struct {
	Prompt          string
	KeyframeURL     string
	Model           string
	DurationSeconds int
}

// GeneratedMedia is the raw provider output before upload.
type GeneratedMedia struct {
	Data        []byte
	ContentType string
}

// ImageGenerator produces image bytes from a prompt and optional references.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, req ImageRequest) (GeneratedMedia, error)
}

// VideoGenerator produces video bytes from a keyframe image and a prompt.
type VideoGenerator interface {
	GenerateVideo(ctx context.Context, req VideoRequest) (GeneratedMedia, error)
}

// UploadResult is the durable location of an uploaded media file.
type UploadResult struct {
	URL string
	Key string
}

// Uploader persists generated media bytes and returns their public location.
type Uploader interface {
	Upload(ctx context.Context, data []byte, filename, contentType string) (UploadResult, error)
}

// AssetStore records generated assets. *store.Store satisfies it.
type AssetStore interface {
	CreateAsset(ctx context.Context, params store.NewAssetParams) (*store.Asset, error)
}
