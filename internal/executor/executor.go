package executor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"gaffer/internal/graph"
	"gaffer/internal/logging"
	"gaffer/internal/services"
	"gaffer/internal/store"
)

// Executor runs individual nodes against injected collaborators.
type Executor struct {
	images  ImageGenerator
	uploads Uploader
	assets  AssetStore
	logger  *slog.Logger
}

// New constructs an Executor. All collaborators must be non-nil for node
// types that use them; node types that never touch a collaborator run fine
// with nil ones, which keeps unit tests lightweight.
func New(images ImageGenerator, uploads Uploader, assets AssetStore, logger *slog.Logger) *Executor {
	return &Executor{
		images:  images,
		uploads: uploads,
		assets:  assets,
		logger:  logging.NewComponentLogger(logger, "executor"),
	}
}

// Execute runs one node with already-resolved inputs. It is total: validation
// failures, provider failures, and dispatch errors all come back as an
// error-state result, never as a returned error.
func (e *Executor) Execute(ctx context.Context, node *graph.Node, inputs map[string]any, rctx *Context) *Result {
	result := &Result{
		NodeID:    node.ID,
		NodeType:  node.Type,
		State:     StateRunning,
		StartedAt: time.Now().UTC(),
	}

	outputs, err := e.dispatch(ctx, node, inputs, rctx)
	result.CompletedAt = time.Now().UTC()
	if err != nil {
		result.State = StateError
		result.Err = err.Error()
		e.logger.Warn("node execution failed",
			logging.String(logging.FieldNodeID, node.ID),
			logging.String(logging.FieldNodeType, string(node.Type)),
			logging.Error(err))
		return result
	}

	result.State = StateSuccess
	result.Outputs = outputs
	e.logger.Debug("node executed",
		logging.String(logging.FieldNodeID, node.ID),
		logging.String(logging.FieldNodeType, string(node.Type)),
		logging.Duration("duration", result.CompletedAt.Sub(result.StartedAt)))
	return result
}

func (e *Executor) dispatch(ctx context.Context, node *graph.Node, inputs map[string]any, rctx *Context) (map[string]any, error) {
	if err := graph.ValidateInputs(node.Type, inputs); err != nil {
		return nil, err
	}

	switch data := node.Data.(type) {
	case graph.PromptData:
		return map[string]any{graph.KeyText: data.Text}, nil

	case graph.CombineTextData:
		return e.combineText(data, inputs)

	case graph.ReferenceImageData:
		return e.referenceImage(data)

	case graph.CombineImageData:
		return e.combineImage(inputs)

	case graph.ImageGenData:
		return e.generateImage(ctx, data, inputs, rctx)

	case graph.RouterData:
		outputs := make(map[string]any, data.Branches)
		for i := 0; i < data.Branches; i++ {
			outputs[graph.BranchKey(i)] = inputs[graph.KeyInput]
		}
		return outputs, nil

	case graph.DirectorStyleData:
		text, err := directorStyleText(data.Style)
		if err != nil {
			return nil, err
		}
		return map[string]any{graph.KeyStylePrompt: text}, nil

	case graph.CinematicSetupData:
		text, err := cinematicSetupText(data.Setup)
		if err != nil {
			return nil, err
		}
		return map[string]any{graph.KeySetupPrompt: text}, nil

	case graph.CameraMovementData:
		text, err := cameraMovementText(data.Movement)
		if err != nil {
			return nil, err
		}
		return map[string]any{graph.KeyMovementPrompt: text}, nil

	case graph.VideoGenData:
		return e.queueVideo(ctx, data, inputs, rctx)

	default:
		return nil, fmt.Errorf("unknown node type %q", node.Type)
	}
}

func (e *Executor) combineText(data graph.CombineTextData, inputs map[string]any) (map[string]any, error) {
	separator := data.Separator
	if separator == "" {
		separator = "\n"
	}
	value := inputs[graph.KeyTexts]
	arr, ok := value.([]any)
	if !ok {
		// A single upstream value passes through untouched; the separator
		// only applies once a second edge promotes the input to an array.
		return map[string]any{graph.KeyText: stringValue(value)}, nil
	}
	parts := make([]string, 0, len(arr))
	for _, v := range arr {
		parts = append(parts, stringValue(v))
	}
	return map[string]any{graph.KeyText: strings.Join(parts, separator)}, nil
}

func (e *Executor) referenceImage(data graph.ReferenceImageData) (map[string]any, error) {
	if data.AssetID == "" && data.URL == "" {
		return nil, errors.New("reference image node has no uploaded image")
	}
	ref := AssetRef{
		ID:     data.AssetID,
		Type:   string(store.AssetImage),
		Status: string(store.AssetReady),
		URL:    data.URL,
		Label:  data.Label,
	}
	return map[string]any{graph.KeyImageAsset: ref.Map()}, nil
}

func (e *Executor) combineImage(inputs map[string]any) (map[string]any, error) {
	images := asSlice(inputs[graph.KeyImages])
	if len(images) > graph.MaxCombineImages {
		return nil, fmt.Errorf("combine image accepts a maximum %d images, got %d", graph.MaxCombineImages, len(images))
	}

	normalized := make([]any, 0, len(images))
	lines := make([]string, 0, len(images))
	for i, img := range images {
		if ref, ok := AssetRefFrom(img); ok {
			normalized = append(normalized, ref.Map())
			label := ref.Label
			if label == "" {
				label = ref.URL
			}
			lines = append(lines, fmt.Sprintf("Image %d: %s", i+1, label))
			continue
		}
		normalized = append(normalized, img)
		lines = append(lines, fmt.Sprintf("Image %d: %s", i+1, stringValue(img)))
	}

	return map[string]any{
		graph.KeyImageList: strings.Join(lines, "\n"),
		graph.KeyImages:    normalized,
	}, nil
}

func (e *Executor) generateImage(ctx context.Context, data graph.ImageGenData, inputs map[string]any, rctx *Context) (map[string]any, error) {
	prompt := joinText(inputs[graph.KeyPrompt], "\n")
	if style := joinText(inputs[graph.KeyStylePrompt], "\n"); style != "" {
		prompt = style + "\n\n" + prompt
	}

	refs := assetRefs(inputs[graph.KeyReferenceImages])
	if len(refs) > 0 {
		labels := make([]string, 0, len(refs))
		for i, ref := range refs {
			if ref.Label != "" {
				labels = append(labels, fmt.Sprintf("Reference image %d: %s", i+1, ref.Label))
			}
		}
		if len(labels) > 0 {
			prompt = strings.Join(labels, "\n") + "\n\n" + prompt
		}
	}

	if e.images == nil || e.uploads == nil || e.assets == nil {
		return nil, services.Wrap(services.ErrConfiguration, "executor", "image generation", "collaborators not configured", nil)
	}

	media, err := e.images.GenerateImage(ctx, ImageRequest{Prompt: prompt, Model: data.Model, ReferenceImages: refs})
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "executor", "image generation", "provider call failed", err)
	}

	filename := uuid.NewString() + extensionFor(media.ContentType)
	uploaded, err := e.uploads.Upload(ctx, media.Data, filename, media.ContentType)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "executor", "image upload", "storage upload failed", err)
	}

	asset, err := e.assets.CreateAsset(ctx, store.NewAssetParams{
		Type:         store.AssetImage,
		Status:       store.AssetReady,
		URL:          uploaded.URL,
		StorageKey:   uploaded.Key,
		UserID:       rctx.UserID,
		ProjectID:    rctx.ProjectID,
		MetadataJSON: metadataJSON(map[string]any{"prompt": prompt}),
	})
	if err != nil {
		return nil, fmt.Errorf("record image asset: %w", err)
	}

	ref := AssetRef{
		ID:         asset.ID,
		Type:       string(store.AssetImage),
		Status:     string(store.AssetReady),
		URL:        uploaded.URL,
		StorageKey: uploaded.Key,
	}
	return map[string]any{graph.KeyImageAsset: ref.Map()}, nil
}

// queueVideo creates the placeholder asset for a video generation node and
// returns an in-flight descriptor. The actual provider call happens in the
// worker's finalize phase after the graph walk returns.
func (e *Executor) queueVideo(ctx context.Context, data graph.VideoGenData, inputs map[string]any, rctx *Context) (map[string]any, error) {
	keyframe, ok := AssetRefFrom(firstValue(inputs[graph.KeyReferenceImage]))
	if !ok || keyframe.URL == "" {
		return nil, errors.New("video generation requires a reference image with a url")
	}

	if e.assets == nil {
		return nil, services.Wrap(services.ErrConfiguration, "executor", "video generation", "asset store not configured", nil)
	}

	prompt := joinText(inputs[graph.KeyPrompt], "\n")
	duration := data.DurationSeconds
	if duration <= 0 {
		duration = 5
	}

	asset, err := e.assets.CreateAsset(ctx, store.NewAssetParams{
		Type:      store.AssetVideo,
		Status:    store.AssetGenerating,
		UserID:    rctx.UserID,
		ProjectID: rctx.ProjectID,
		MetadataJSON: metadataJSON(map[string]any{
			"prompt":           prompt,
			"keyframe_url":     keyframe.URL,
			"duration_seconds": duration,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("record placeholder video asset: %w", err)
	}

	ref := AssetRef{
		ID:     asset.ID,
		Type:   string(store.AssetVideo),
		Status: string(store.AssetGenerating),
	}
	return map[string]any{
		graph.KeyVideoAsset: ref.Map(),
		graph.KeyPrompt:     prompt,
	}, nil
}

func stringValue(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprint(s)
	}
}

func asSlice(v any) []any {
	switch val := v.(type) {
	case nil:
		return nil
	case []any:
		return val
	default:
		return []any{val}
	}
}

func firstValue(v any) any {
	if arr, ok := v.([]any); ok {
		if len(arr) == 0 {
			return nil
		}
		return arr[0]
	}
	return v
}

func joinText(v any, sep string) string {
	arr, ok := v.([]any)
	if !ok {
		return stringValue(v)
	}
	parts := make([]string, 0, len(arr))
	for _, item := range arr {
		if s := stringValue(item); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, sep)
}

func assetRefs(v any) []AssetRef {
	values := asSlice(v)
	refs := make([]AssetRef, 0, len(values))
	for _, value := range values {
		if ref, ok := AssetRefFrom(value); ok {
			refs = append(refs, ref)
		}
	}
	return refs
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "video/mp4":
		return ".mp4"
	case "video/webm":
		return ".webm"
	default:
		return ".bin"
	}
}

func metadataJSON(m map[string]any) string {
	raw, err := json.Marshal(m)
	if err != nil {
		return "{}"
	}
	return string(raw)
}
