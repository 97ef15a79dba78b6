package graph

import (
	"fmt"
	"strings"
)

// NodeType identifies a kind of node in a creative graph. The string values
// are the wire contract used in stored graph JSON.
type NodeType string

const (
	NodePrompt         NodeType = "prompt"
	NodeCombineText    NodeType = "combineText"
	NodeReferenceImage NodeType = "referenceImage"
	NodeImageGen       NodeType = "imageGen"
	NodeRouter         NodeType = "router"
	NodeVideoGen       NodeType = "videoGen"
	NodeDirectorStyle  NodeType = "directorStyle"
	NodeCinematicSetup NodeType = "cinematicSetup"
	NodeCameraMovement NodeType = "cameraMovement"
	NodeCombineImage   NodeType = "combineImage"
)

var allNodeTypes = []NodeType{
	NodePrompt,
	NodeCombineText,
	NodeReferenceImage,
	NodeImageGen,
	NodeRouter,
	NodeVideoGen,
	NodeDirectorStyle,
	NodeCinematicSetup,
	NodeCameraMovement,
	NodeCombineImage,
}

var nodeTypeByLower = func() map[string]NodeType {
	m := make(map[string]NodeType, len(allNodeTypes))
	for _, t := range allNodeTypes {
		m[strings.ToLower(string(t))] = t
	}
	return m
}()

// AllNodeTypes returns the ordered list of known node types.
func AllNodeTypes() []NodeType {
	cp := make([]NodeType, len(allNodeTypes))
	copy(cp, allNodeTypes)
	return cp
}

// ParseNodeType normalizes a wire string into a canonical NodeType.
// Matching is case-insensitive; unknown types are a hard error, never a
// fallback.
func ParseNodeType(value string) (NodeType, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "" {
		return "", fmt.Errorf("node type is required")
	}
	t, ok := nodeTypeByLower[normalized]
	if !ok {
		return "", fmt.Errorf("unknown node type %q", value)
	}
	return t, nil
}

// Position is the editor canvas placement of a node. It has no execution
// semantics but round-trips through stored graph JSON.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is a unit of computation in the graph. Data is read-only configuration
// whose concrete shape depends on Type.
type Node struct {
	ID       string
	Type     NodeType
	Position Position
	Data     NodeData
}

// Edge is a directed data dependency: the output named by SourceHandle on the
// source node flows into the input named by TargetHandle on the target node.
type Edge struct {
	ID           string `json:"id"`
	Source       string `json:"source"`
	Target       string `json:"target"`
	SourceHandle string `json:"sourceHandle,omitempty"`
	TargetHandle string `json:"targetHandle,omitempty"`
}

// Graph is a frozen snapshot of nodes and edges, as persisted in a run record.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// NodeByID returns the node with the given id, or nil when absent.
func (g *Graph) NodeByID(id string) *Node {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return &g.Nodes[i]
		}
	}
	return nil
}

// IncomingEdges returns the edges targeting the given node, in graph order.
// Graph order is the accumulation order for fan-in inputs.
func (g *Graph) IncomingEdges(nodeID string) []Edge {
	var incoming []Edge
	for _, edge := range g.Edges {
		if edge.Target == nodeID {
			incoming = append(incoming, edge)
		}
	}
	return incoming
}
