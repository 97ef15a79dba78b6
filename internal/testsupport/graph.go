package testsupport

import (
	"testing"

	"gaffer/internal/graph"
)

// GraphBuilder assembles graphs node by node for tests.
type GraphBuilder struct {
	g graph.Graph
}

// NewGraph returns an empty builder.
func NewGraph() *GraphBuilder {
	return &GraphBuilder{}
}

// Node appends a node with the given id and data.
func (b *GraphBuilder) Node(id string, data graph.NodeData) *GraphBuilder {
	b.g.Nodes = append(b.g.Nodes, graph.Node{ID: id, Data: data})
	return b
}

// Edge appends an edge; handles may be empty for default routing.
func (b *GraphBuilder) Edge(source, sourceHandle, target, targetHandle string) *GraphBuilder {
	id := source + "-" + target
	if sourceHandle != "" {
		id += "-" + sourceHandle
	}
	if targetHandle != "" {
		id += "-" + targetHandle
	}
	b.g.Edges = append(b.g.Edges, graph.Edge{
		ID:           id,
		Source:       source,
		Target:       target,
		SourceHandle: sourceHandle,
		TargetHandle: targetHandle,
	})
	return b
}

// Build finalizes the graph, filling node types from their data payloads.
func (b *GraphBuilder) Build(t testing.TB) *graph.Graph {
	t.Helper()

	raw := b.MustEncode(t)
	g, err := graph.Decode(raw)
	if err != nil {
		t.Fatalf("decode built graph: %v", err)
	}
	return g
}

// MustEncode serializes the graph under construction to wire JSON.
func (b *GraphBuilder) MustEncode(t testing.TB) []byte {
	t.Helper()

	for i := range b.g.Nodes {
		if b.g.Nodes[i].Type == "" {
			b.g.Nodes[i].Type = graph.TypeOf(b.g.Nodes[i].Data)
		}
	}
	raw, err := b.g.Encode()
	if err != nil {
		t.Fatalf("encode graph: %v", err)
	}
	return raw
}
