package api_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"gaffer/internal/api"
	"gaffer/internal/graph"
	"gaffer/internal/store"
	"gaffer/internal/testsupport"
)

func validGraphJSON(t *testing.T) json.RawMessage {
	t.Helper()
	return json.RawMessage(testsupport.NewGraph().
		Node("p1", graph.PromptData{Text: "hello"}).
		Node("c1", graph.CombineTextData{}).
		Edge("p1", "", "c1", "").
		MustEncode(t))
}

func TestQueueCreatesRun(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	svc := api.NewRunService(st)

	run, err := svc.Queue(context.Background(), api.QueueRunRequest{
		GraphID:   "graph-1",
		NodeID:    "c1",
		UserID:    "user-1",
		ProjectID: "proj-1",
		Graph:     validGraphJSON(t),
	})
	if err != nil {
		t.Fatalf("Queue failed: %v", err)
	}
	if run.ID == "" || run.Status != string(store.RunQueued) {
		t.Fatalf("unexpected run DTO: %#v", run)
	}
	if run.GraphID != "graph-1" || run.NodeID != "c1" {
		t.Fatalf("unexpected run DTO: %#v", run)
	}

	stored, err := st.GetRun(context.Background(), run.ID)
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if stored.UserID != "user-1" || stored.ProjectID != "proj-1" {
		t.Fatalf("request attribution not persisted: %#v", stored)
	}
}

func TestQueueValidatesRequest(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	svc := api.NewRunService(st)
	valid := validGraphJSON(t)

	cases := []struct {
		name    string
		req     api.QueueRunRequest
		wantErr string
	}{
		{
			name:    "missing graph id",
			req:     api.QueueRunRequest{NodeID: "c1", Graph: valid},
			wantErr: "graphId",
		},
		{
			name:    "missing node id",
			req:     api.QueueRunRequest{GraphID: "graph-1", Graph: valid},
			wantErr: "nodeId",
		},
		{
			name:    "missing graph",
			req:     api.QueueRunRequest{GraphID: "graph-1", NodeID: "c1"},
			wantErr: "graph is required",
		},
		{
			name:    "malformed graph",
			req:     api.QueueRunRequest{GraphID: "graph-1", NodeID: "c1", Graph: json.RawMessage(`{"nodes": [{}]}`)},
			wantErr: "decode graph",
		},
		{
			name:    "target node absent",
			req:     api.QueueRunRequest{GraphID: "graph-1", NodeID: "nope", Graph: valid},
			wantErr: "not present in graph",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Queue(context.Background(), tc.req)
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}

	runs, err := st.ListRuns(context.Background())
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 0 {
		t.Fatalf("rejected requests must not create runs, found %d", len(runs))
	}
}

func TestQueueRejectsInvalidGraphStructure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	svc := api.NewRunService(st)

	// A prompt feeding image generation directly is a malformed graph.
	raw := testsupport.NewGraph().
		Node("p1", graph.PromptData{Text: "hello"}).
		Node("i1", graph.ImageGenData{}).
		Edge("p1", "", "i1", "").
		MustEncode(t)

	_, err := svc.Queue(context.Background(), api.QueueRunRequest{
		GraphID: "graph-1",
		NodeID:  "i1",
		Graph:   json.RawMessage(raw),
	})
	if err == nil || !strings.Contains(err.Error(), "validate graph") {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestFromRunFormatsTimestamps(t *testing.T) {
	created := time.Date(2026, 3, 14, 9, 26, 53, 589_000_000, time.UTC)
	started := created.Add(time.Second)
	run := &store.Run{
		ID:            "run-1",
		GraphID:       "graph-1",
		NodeID:        "n1",
		Status:        store.RunProcessing,
		OutputPayload: `{"node_id":"n1"}`,
		CreatedAt:     created,
		UpdatedAt:     created,
		StartedAt:     &started,
	}

	dto := api.FromRun(run)
	if dto.CreatedAt != "2026-03-14T09:26:53.589Z" {
		t.Fatalf("unexpected createdAt: %s", dto.CreatedAt)
	}
	if dto.StartedAt != "2026-03-14T09:26:54.589Z" {
		t.Fatalf("unexpected startedAt: %s", dto.StartedAt)
	}
	if dto.CompletedAt != "" {
		t.Fatalf("expected empty completedAt, got %s", dto.CompletedAt)
	}
	if string(dto.OutputPayload) != `{"node_id":"n1"}` {
		t.Fatalf("payload must pass through untouched: %s", dto.OutputPayload)
	}

	encoded, err := json.Marshal(dto)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if strings.Contains(string(encoded), "completedAt") {
		t.Fatalf("zero timestamps must be omitted: %s", encoded)
	}
}

func TestDescribeAbsentRunReturnsNil(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	svc := api.NewRunService(st)

	run, err := svc.Describe(context.Background(), "missing")
	if err != nil {
		t.Fatalf("Describe failed: %v", err)
	}
	if run != nil {
		t.Fatalf("expected nil for an absent run, got %#v", run)
	}
}

func TestMergeRunStats(t *testing.T) {
	merged := api.MergeRunStats(map[store.RunStatus]int{
		store.RunQueued:    2,
		store.RunCompleted: 5,
	})
	if merged["queued"] != 2 || merged["completed"] != 5 {
		t.Fatalf("unexpected merge: %#v", merged)
	}
}
