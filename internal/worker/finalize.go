package worker

import (
	"context"
	"fmt"
	"log/slog"

	"gaffer/internal/executor"
	"gaffer/internal/graph"
	"gaffer/internal/logging"
	"gaffer/internal/store"
)

// finalizeVideo performs the long-running provider call for a video node
// after the synchronous graph walk returned its placeholder. Inputs are
// re-resolved so prompt fragments contributed by upstream nodes (camera
// movement, combined text) are recovered from the already-populated context.
// The asset promotion and run completion land in one storage transaction; so
// do the failure-path updates.
func (w *Worker) finalizeVideo(
	ctx context.Context,
	logger *slog.Logger,
	run *store.Run,
	g *graph.Graph,
	node *graph.Node,
	rctx *executor.Context,
	result *executor.Result,
	placeholder executor.AssetRef,
) error {
	logger = logger.With(logging.String(logging.FieldAssetID, placeholder.ID))
	logger.Info("finalizing video generation")

	if w.videos == nil || w.uploads == nil {
		w.failRun(ctx, logger, run, "video generation collaborators not configured", placeholder.ID)
		return nil
	}

	inputs, err := executor.ResolveInputs(g, node, rctx)
	if err != nil || inputs == nil {
		w.failRun(ctx, logger, run, "video inputs could not be re-resolved for finalize", placeholder.ID)
		return nil
	}

	keyframe, ok := executor.AssetRefFrom(firstInput(inputs[graph.KeyReferenceImage]))
	if !ok || keyframe.URL == "" {
		w.failRun(ctx, logger, run, "video finalize missing keyframe reference image", placeholder.ID)
		return nil
	}

	prompt, _ := result.Outputs[graph.KeyPrompt].(string)
	data, _ := node.Data.(graph.VideoGenData)
	duration := data.DurationSeconds
	if duration <= 0 {
		duration = 5
	}

	media, err := w.videos.GenerateVideo(ctx, executor.VideoRequest{
		Prompt:          prompt,
		KeyframeURL:     keyframe.URL,
		Model:           data.Model,
		DurationSeconds: duration,
	})
	if err != nil {
		w.failRun(ctx, logger, run, fmt.Sprintf("video generation failed: %v", err), placeholder.ID)
		return nil
	}

	filename := placeholder.ID + videoExtension(media.ContentType)
	uploaded, err := w.uploads.Upload(ctx, media.Data, filename, media.ContentType)
	if err != nil {
		w.failRun(ctx, logger, run, fmt.Sprintf("video upload failed: %v", err), placeholder.ID)
		return nil
	}

	readyRef := executor.AssetRef{
		ID:         placeholder.ID,
		Type:       string(store.AssetVideo),
		Status:     string(store.AssetReady),
		URL:        uploaded.URL,
		StorageKey: uploaded.Key,
	}
	outputs := make(map[string]any, len(result.Outputs))
	for key, value := range result.Outputs {
		outputs[key] = value
	}
	outputs[graph.KeyVideoAsset] = readyRef.Map()

	payload, err := EncodePayload(&executor.Result{
		NodeID:   node.ID,
		NodeType: node.Type,
		State:    executor.StateSuccess,
		Outputs:  outputs,
	})
	if err != nil {
		w.failRun(ctx, logger, run, fmt.Sprintf("encode video payload: %v", err), placeholder.ID)
		return nil
	}

	if err := w.store.CompleteVideoRun(ctx, run.ID, placeholder.ID, uploaded.URL, uploaded.Key, payload); err != nil {
		return fmt.Errorf("finalize video run: %w", err)
	}

	if w.metrics != nil {
		w.metrics.RunsCompleted.Inc()
	}
	logger.Info("video run completed", logging.String("url", uploaded.URL))
	if w.notifier != nil {
		if err := w.notifier.NotifyAssetReady(ctx, string(store.AssetVideo), uploaded.URL); err != nil {
			logger.Warn("asset ready notification failed", logging.Error(err))
		}
		if err := w.notifier.NotifyRunCompleted(ctx, run.ID, string(node.Type)); err != nil {
			logger.Warn("run completion notification failed", logging.Error(err))
		}
	}
	return nil
}

func firstInput(value any) any {
	if arr, ok := value.([]any); ok {
		if len(arr) == 0 {
			return nil
		}
		return arr[0]
	}
	return value
}

func videoExtension(contentType string) string {
	switch contentType {
	case "video/webm":
		return ".webm"
	case "video/quicktime":
		return ".mov"
	default:
		return ".mp4"
	}
}
