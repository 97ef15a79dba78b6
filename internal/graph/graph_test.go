package graph_test

import (
	"errors"
	"strings"
	"testing"

	"gaffer/internal/graph"
)

func TestParseNodeTypeNormalizesCase(t *testing.T) {
	cases := []struct {
		raw      string
		expected graph.NodeType
	}{
		{"prompt", graph.NodePrompt},
		{"Prompt", graph.NodePrompt},
		{"COMBINETEXT", graph.NodeCombineText},
		{"imagegen", graph.NodeImageGen},
		{"VideoGen", graph.NodeVideoGen},
		{"directorstyle", graph.NodeDirectorStyle},
	}
	for _, tc := range cases {
		parsed, err := graph.ParseNodeType(tc.raw)
		if err != nil {
			t.Fatalf("ParseNodeType(%q) failed: %v", tc.raw, err)
		}
		if parsed != tc.expected {
			t.Fatalf("ParseNodeType(%q) = %s, want %s", tc.raw, parsed, tc.expected)
		}
	}
}

func TestParseNodeTypeRejectsUnknown(t *testing.T) {
	if _, err := graph.ParseNodeType("teleport"); err == nil {
		t.Fatal("expected error for unknown node type")
	}
}

func TestDecodeNormalizesTypesAndData(t *testing.T) {
	raw := []byte(`{
		"nodes": [
			{"id": "p1", "type": "PROMPT", "data": {"text": "a lighthouse"}},
			{"id": "r1", "type": "Router", "data": {"branches": 3}}
		],
		"edges": [
			{"id": "e1", "source": "p1", "target": "r1", "targetHandle": "input"}
		]
	}`)

	g, err := graph.Decode(raw)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	prompt := g.NodeByID("p1")
	if prompt == nil || prompt.Type != graph.NodePrompt {
		t.Fatalf("expected normalized prompt node, got %#v", prompt)
	}
	data, ok := prompt.Data.(graph.PromptData)
	if !ok || data.Text != "a lighthouse" {
		t.Fatalf("unexpected prompt data: %#v", prompt.Data)
	}

	router := g.NodeByID("r1")
	routerData, ok := router.Data.(graph.RouterData)
	if !ok || routerData.Branches != 3 {
		t.Fatalf("unexpected router data: %#v", router.Data)
	}
}

func TestEncodeEmitsCanonicalTypeStrings(t *testing.T) {
	raw := []byte(`{"nodes": [{"id": "c1", "type": "combinetext", "data": {}}], "edges": []}`)
	g, err := graph.Decode(raw)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	encoded, err := g.Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if !strings.Contains(string(encoded), `"combineText"`) {
		t.Fatalf("expected canonical type string in %s", encoded)
	}
}

func TestValidateRejectsPromptFeedingImageGen(t *testing.T) {
	g := &graph.Graph{
		Nodes: []graph.Node{
			{ID: "p1", Type: graph.NodePrompt, Data: graph.PromptData{Text: "x"}},
			{ID: "i1", Type: graph.NodeImageGen, Data: graph.ImageGenData{}},
		},
		Edges: []graph.Edge{
			{ID: "e1", Source: "p1", Target: "i1", TargetHandle: "prompt"},
		},
	}
	err := g.Validate()
	if err == nil {
		t.Fatal("expected validation error for prompt feeding imageGen")
	}
	if !strings.Contains(err.Error(), "combine text") {
		t.Fatalf("unexpected error message: %v", err)
	}
}

func TestValidateRejectsCycles(t *testing.T) {
	g := &graph.Graph{
		Nodes: []graph.Node{
			{ID: "a", Type: graph.NodeCombineText, Data: graph.CombineTextData{}},
			{ID: "b", Type: graph.NodeCombineText, Data: graph.CombineTextData{}},
		},
		Edges: []graph.Edge{
			{ID: "e1", Source: "a", Target: "b"},
			{ID: "e2", Source: "b", Target: "a"},
		},
	}
	err := g.Validate()
	if !errors.Is(err, graph.ErrCycle) {
		t.Fatalf("expected ErrCycle, got %v", err)
	}
}

func TestValidateRejectsUnknownEdgeEndpoints(t *testing.T) {
	g := &graph.Graph{
		Nodes: []graph.Node{
			{ID: "p1", Type: graph.NodePrompt, Data: graph.PromptData{Text: "x"}},
		},
		Edges: []graph.Edge{
			{ID: "e1", Source: "p1", Target: "ghost"},
		},
	}
	if err := g.Validate(); err == nil {
		t.Fatal("expected validation error for unknown target node")
	}
}

func TestValidateRouterBranchBounds(t *testing.T) {
	for _, branches := range []int{0, graph.MaxRouterBranches + 1} {
		g := &graph.Graph{
			Nodes: []graph.Node{
				{ID: "r1", Type: graph.NodeRouter, Data: graph.RouterData{Branches: branches}},
			},
		}
		if err := g.Validate(); err == nil {
			t.Fatalf("expected validation error for %d branches", branches)
		}
	}
}

func TestResolveOutputKeyStrict(t *testing.T) {
	key, err := graph.ResolveOutputKey(graph.NodePrompt, "")
	if err != nil || key != graph.KeyText {
		t.Fatalf("default prompt output = (%q, %v)", key, err)
	}
	key, err = graph.ResolveOutputKey(graph.NodeImageGen, "image")
	if err != nil || key != graph.KeyImageAsset {
		t.Fatalf("imageGen image output = (%q, %v)", key, err)
	}
	if _, err := graph.ResolveOutputKey(graph.NodePrompt, "bogus"); err == nil {
		t.Fatal("expected error for unknown output handle")
	}
}

func TestResolveOutputKeyRouterBranches(t *testing.T) {
	key, err := graph.ResolveOutputKey(graph.NodeRouter, "branch_B")
	if err != nil || key != "branch_B" {
		t.Fatalf("router branch output = (%q, %v)", key, err)
	}
	for _, handle := range []string{"", "output", "branch_", "branch_AB"} {
		if _, err := graph.ResolveOutputKey(graph.NodeRouter, handle); err == nil {
			t.Fatalf("expected error for router handle %q", handle)
		}
	}
}

func TestResolveInputKeyLenientFallback(t *testing.T) {
	if key := graph.ResolveInputKey(graph.NodeCombineText, "text_input"); key != graph.KeyTexts {
		t.Fatalf("mapped handle = %q, want %q", key, graph.KeyTexts)
	}
	if key := graph.ResolveInputKey(graph.NodeCombineText, "custom_handle"); key != "custom_handle" {
		t.Fatalf("unmapped handle = %q, want raw handle id", key)
	}
	if key := graph.ResolveInputKey(graph.NodePrompt, ""); key != graph.KeyInput {
		t.Fatalf("empty unmapped handle = %q, want %q", key, graph.KeyInput)
	}
}

func TestBranchKey(t *testing.T) {
	if key := graph.BranchKey(0); key != "branch_A" {
		t.Fatalf("BranchKey(0) = %q", key)
	}
	if key := graph.BranchKey(25); key != "branch_Z" {
		t.Fatalf("BranchKey(25) = %q", key)
	}
}

func TestValidateInputs(t *testing.T) {
	if err := graph.ValidateInputs(graph.NodeImageGen, map[string]any{}); err == nil {
		t.Fatal("expected error for missing prompt input")
	}
	if err := graph.ValidateInputs(graph.NodeImageGen, map[string]any{graph.KeyPrompt: "  "}); err == nil {
		t.Fatal("expected error for blank prompt input")
	}
	if err := graph.ValidateInputs(graph.NodeCombineImage, map[string]any{graph.KeyImages: []any{}}); err == nil {
		t.Fatal("expected error for empty image list")
	}
	if err := graph.ValidateInputs(graph.NodeRouter, map[string]any{}); err == nil {
		t.Fatal("expected error for router without input")
	}
	if err := graph.ValidateInputs(graph.NodeRouter, map[string]any{graph.KeyInput: ""}); err != nil {
		t.Fatalf("router accepts any present input, got %v", err)
	}
	if err := graph.ValidateInputs(graph.NodePrompt, nil); err != nil {
		t.Fatalf("prompt takes no inputs, got %v", err)
	}
}
