package worker_test

import (
	"context"
	"strings"
	"testing"

	"gaffer/internal/executor"
	"gaffer/internal/graph"
	"gaffer/internal/logging"
	"gaffer/internal/store"
	"gaffer/internal/testsupport"
	"gaffer/internal/worker"
)

type fakeImageGen struct {
	calls int
}

func (f *fakeImageGen) GenerateImage(ctx context.Context, req executor.ImageRequest) (executor.GeneratedMedia, error) {
	f.calls++
	return executor.GeneratedMedia{Data: []byte("png-bytes"), ContentType: "image/png"}, nil
}

type fakeVideoGen struct {
	calls int
	err   error
	req   executor.VideoRequest
}

func (f *fakeVideoGen) GenerateVideo(ctx context.Context, req executor.VideoRequest) (executor.GeneratedMedia, error) {
	f.calls++
	f.req = req
	if f.err != nil {
		return executor.GeneratedMedia{}, f.err
	}
	return executor.GeneratedMedia{Data: []byte("mp4-bytes"), ContentType: "video/mp4"}, nil
}

type fakeUploader struct {
	calls int
}

func (f *fakeUploader) Upload(ctx context.Context, data []byte, filename, contentType string) (executor.UploadResult, error) {
	f.calls++
	return executor.UploadResult{URL: "https://cdn/" + filename, Key: filename}, nil
}

type workerFixture struct {
	store   *store.Store
	images  *fakeImageGen
	videos  *fakeVideoGen
	uploads *fakeUploader
	worker  *worker.Worker
}

func newWorkerFixture(t *testing.T) *workerFixture {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	images := &fakeImageGen{}
	videos := &fakeVideoGen{}
	uploads := &fakeUploader{}
	logger := logging.NewNop()
	exec := executor.New(images, uploads, st, logger)
	return &workerFixture{
		store:   st,
		images:  images,
		videos:  videos,
		uploads: uploads,
		worker:  worker.New(st, exec, videos, uploads, nil, nil, logger),
	}
}

func imageGraphJSON(t *testing.T) string {
	t.Helper()
	raw := testsupport.NewGraph().
		Node("p1", graph.PromptData{Text: "a lighthouse at dusk"}).
		Node("c1", graph.CombineTextData{}).
		Node("i1", graph.ImageGenData{}).
		Edge("p1", "", "c1", "").
		Edge("c1", "", "i1", "").
		MustEncode(t)
	return string(raw)
}

func TestProcessRunExecutesGraph(t *testing.T) {
	f := newWorkerFixture(t)
	run := testsupport.QueueRun(t, f.store, "graph-1", "i1", imageGraphJSON(t))

	if err := f.worker.ProcessRun(context.Background(), run.ID); err != nil {
		t.Fatalf("ProcessRun failed: %v", err)
	}

	updated, err := f.store.GetRun(context.Background(), run.ID)
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if updated.Status != store.RunCompleted {
		t.Fatalf("expected completed run, got %s (%s)", updated.Status, updated.ErrorMessage)
	}
	if f.images.calls != 1 {
		t.Fatalf("expected one image generation call, got %d", f.images.calls)
	}

	payload, err := worker.DecodePayload(updated.OutputPayload)
	if err != nil {
		t.Fatalf("DecodePayload failed: %v", err)
	}
	if payload.NodeID != "i1" {
		t.Fatalf("unexpected payload node: %s", payload.NodeID)
	}
	ref, ok := executor.AssetRefFrom(payload.Outputs[graph.KeyImageAsset])
	if !ok || ref.URL == "" || ref.Status != string(store.AssetReady) {
		t.Fatalf("unexpected asset in payload: %#v", payload.Outputs)
	}
}

func TestProcessRunLosingClaimIsNoOp(t *testing.T) {
	f := newWorkerFixture(t)
	run := testsupport.QueueRun(t, f.store, "graph-1", "i1", imageGraphJSON(t))

	claimed, err := f.store.ClaimRun(context.Background(), run.ID)
	if err != nil || !claimed {
		t.Fatalf("pre-claim failed: claimed=%v err=%v", claimed, err)
	}

	if err := f.worker.ProcessRun(context.Background(), run.ID); err != nil {
		t.Fatalf("ProcessRun failed: %v", err)
	}
	if f.images.calls != 0 {
		t.Fatal("a lost claim must not execute the graph")
	}

	updated, err := f.store.GetRun(context.Background(), run.ID)
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if updated.Status != store.RunProcessing {
		t.Fatalf("expected run untouched in processing, got %s", updated.Status)
	}
}

func TestProcessRunReusesPriorResults(t *testing.T) {
	f := newWorkerFixture(t)
	graphJSON := imageGraphJSON(t)

	first := testsupport.QueueRun(t, f.store, "graph-1", "i1", graphJSON)
	if err := f.worker.ProcessRun(context.Background(), first.ID); err != nil {
		t.Fatalf("first ProcessRun failed: %v", err)
	}
	if f.images.calls != 1 {
		t.Fatalf("expected one image generation call, got %d", f.images.calls)
	}

	second := testsupport.QueueRun(t, f.store, "graph-1", "i1", graphJSON)
	if err := f.worker.ProcessRun(context.Background(), second.ID); err != nil {
		t.Fatalf("second ProcessRun failed: %v", err)
	}

	updated, err := f.store.GetRun(context.Background(), second.ID)
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if updated.Status != store.RunCompleted {
		t.Fatalf("expected completed run, got %s (%s)", updated.Status, updated.ErrorMessage)
	}
	if f.images.calls != 1 {
		t.Fatalf("cached result should skip regeneration, got %d calls", f.images.calls)
	}
}

func TestProcessRunReportsDependencyFailure(t *testing.T) {
	f := newWorkerFixture(t)
	raw := testsupport.NewGraph().
		Node("d1", graph.DirectorStyleData{Style: "unknown-director"}).
		Node("c1", graph.CombineTextData{}).
		Edge("d1", "", "c1", "").
		MustEncode(t)

	run := testsupport.QueueRun(t, f.store, "graph-1", "c1", string(raw))
	if err := f.worker.ProcessRun(context.Background(), run.ID); err != nil {
		t.Fatalf("ProcessRun failed: %v", err)
	}

	updated, err := f.store.GetRun(context.Background(), run.ID)
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if updated.Status != store.RunFailed {
		t.Fatalf("expected failed run, got %s", updated.Status)
	}
	if !strings.Contains(updated.ErrorMessage, "dependency d1 failed:") {
		t.Fatalf("unexpected error message: %s", updated.ErrorMessage)
	}
}

func TestProcessRunDetectsCycles(t *testing.T) {
	f := newWorkerFixture(t)
	raw := testsupport.NewGraph().
		Node("c1", graph.CombineTextData{}).
		Node("c2", graph.CombineTextData{}).
		Edge("c1", "", "c2", "").
		Edge("c2", "", "c1", "").
		MustEncode(t)

	run := testsupport.QueueRun(t, f.store, "graph-1", "c1", string(raw))
	if err := f.worker.ProcessRun(context.Background(), run.ID); err != nil {
		t.Fatalf("ProcessRun failed: %v", err)
	}

	updated, err := f.store.GetRun(context.Background(), run.ID)
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if updated.Status != store.RunFailed || !strings.Contains(updated.ErrorMessage, "cycle") {
		t.Fatalf("expected cycle failure, got %s (%s)", updated.Status, updated.ErrorMessage)
	}
}

func videoGraphJSON(t *testing.T) string {
	t.Helper()
	raw := testsupport.NewGraph().
		Node("ri1", graph.ReferenceImageData{AssetID: "a1", URL: "https://cdn/keyframe.png"}).
		Node("m1", graph.CameraMovementData{Movement: "dolly-in"}).
		Node("v1", graph.VideoGenData{DurationSeconds: 8}).
		Edge("ri1", "", "v1", "image").
		Edge("m1", "", "v1", "movement").
		MustEncode(t)
	return string(raw)
}

func TestProcessRunFinalizesVideo(t *testing.T) {
	f := newWorkerFixture(t)
	run := testsupport.QueueRun(t, f.store, "graph-1", "v1", videoGraphJSON(t))

	if err := f.worker.ProcessRun(context.Background(), run.ID); err != nil {
		t.Fatalf("ProcessRun failed: %v", err)
	}

	updated, err := f.store.GetRun(context.Background(), run.ID)
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if updated.Status != store.RunCompleted {
		t.Fatalf("expected completed run, got %s (%s)", updated.Status, updated.ErrorMessage)
	}
	if f.videos.calls != 1 {
		t.Fatalf("expected one video generation call, got %d", f.videos.calls)
	}
	if f.videos.req.KeyframeURL != "https://cdn/keyframe.png" || f.videos.req.DurationSeconds != 8 {
		t.Fatalf("unexpected provider request: %#v", f.videos.req)
	}

	payload, err := worker.DecodePayload(updated.OutputPayload)
	if err != nil {
		t.Fatalf("DecodePayload failed: %v", err)
	}
	ref, ok := executor.AssetRefFrom(payload.Outputs[graph.KeyVideoAsset])
	if !ok || ref.Status != string(store.AssetReady) || ref.URL == "" {
		t.Fatalf("expected ready video asset in payload, got %#v", payload.Outputs)
	}

	asset, err := f.store.GetAsset(context.Background(), ref.ID)
	if err != nil {
		t.Fatalf("GetAsset failed: %v", err)
	}
	if asset.Status != store.AssetReady || asset.URL != ref.URL {
		t.Fatalf("asset not promoted: %#v", asset)
	}
}

func TestProcessRunVideoProviderFailureFailsRunAndAsset(t *testing.T) {
	f := newWorkerFixture(t)
	f.videos.err = context.DeadlineExceeded

	run := testsupport.QueueRun(t, f.store, "graph-1", "v1", videoGraphJSON(t))
	if err := f.worker.ProcessRun(context.Background(), run.ID); err != nil {
		t.Fatalf("ProcessRun failed: %v", err)
	}

	updated, err := f.store.GetRun(context.Background(), run.ID)
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if updated.Status != store.RunFailed || !strings.Contains(updated.ErrorMessage, "video generation failed") {
		t.Fatalf("unexpected run state: %s (%s)", updated.Status, updated.ErrorMessage)
	}

	assets, err := f.store.ListAssets(context.Background(), "")
	if err != nil {
		t.Fatalf("ListAssets failed: %v", err)
	}
	var placeholder *store.Asset
	for _, a := range assets {
		if a.Type == store.AssetVideo {
			placeholder = a
		}
	}
	if placeholder == nil || placeholder.Status != store.AssetFailed {
		t.Fatalf("expected failed placeholder asset, got %#v", placeholder)
	}
}

func TestProcessRunSkipsGeneratingPlaceholderCache(t *testing.T) {
	f := newWorkerFixture(t)

	// A completed run whose payload still carries an in-flight placeholder
	// must not be reused as a cached result.
	payload, err := worker.EncodePayload(&executor.Result{
		NodeID:   "v1",
		NodeType: graph.NodeVideoGen,
		State:    executor.StateSuccess,
		Outputs: map[string]any{
			graph.KeyVideoAsset: executor.AssetRef{
				ID:     "stale-asset",
				Type:   string(store.AssetVideo),
				Status: string(store.AssetGenerating),
			}.Map(),
		},
	})
	if err != nil {
		t.Fatalf("EncodePayload failed: %v", err)
	}
	stale := testsupport.QueueRun(t, f.store, "graph-1", "v1", videoGraphJSON(t))
	if claimed, err := f.store.ClaimRun(context.Background(), stale.ID); err != nil || !claimed {
		t.Fatalf("claim failed: %v", err)
	}
	if err := f.store.MarkRunCompleted(context.Background(), stale.ID, payload); err != nil {
		t.Fatalf("MarkRunCompleted failed: %v", err)
	}

	run := testsupport.QueueRun(t, f.store, "graph-1", "v1", videoGraphJSON(t))
	if err := f.worker.ProcessRun(context.Background(), run.ID); err != nil {
		t.Fatalf("ProcessRun failed: %v", err)
	}
	if f.videos.calls != 1 {
		t.Fatalf("expected fresh video generation despite stale cache, got %d calls", f.videos.calls)
	}

	updated, err := f.store.GetRun(context.Background(), run.ID)
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if updated.Status != store.RunCompleted {
		t.Fatalf("expected completed run, got %s (%s)", updated.Status, updated.ErrorMessage)
	}
}
