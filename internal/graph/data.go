package graph

import (
	"encoding/json"
	"fmt"
)

// NodeData is the per-type configuration payload of a node. Exactly one
// concrete type exists per node type.
type NodeData interface {
	nodeType() NodeType
}

// PromptData configures a prompt node: a static block of text emitted as-is.
type PromptData struct {
	Text string `json:"text"`
}

// CombineTextData configures a combine-text node. Separator joins the
// accumulated upstream texts; when empty a newline is used.
type CombineTextData struct {
	Separator string `json:"separator,omitempty"`
}

// ReferenceImageData configures a reference-image node pointing at a
// previously uploaded image.
type ReferenceImageData struct {
	AssetID string `json:"asset_id,omitempty"`
	URL     string `json:"url,omitempty"`
	Label   string `json:"label,omitempty"`
}

// CombineImageData configures a combine-image fan-in node.
type CombineImageData struct {
	Label string `json:"label,omitempty"`
}

// ImageGenData configures an image-generation node.
type ImageGenData struct {
	Provider string `json:"provider,omitempty"`
	Model    string `json:"model,omitempty"`
}

// RouterData configures a router node fanning one input into Branches labeled
// outputs.
type RouterData struct {
	Branches int `json:"branches"`
}

// DirectorStyleData selects a canned director-style text block.
type DirectorStyleData struct {
	Style string `json:"style"`
}

// CinematicSetupData selects a canned cinematic-setup text block.
type CinematicSetupData struct {
	Setup string `json:"setup"`
}

// CameraMovementData selects a canned camera-movement text block.
type CameraMovementData struct {
	Movement string `json:"movement"`
}

// VideoGenData configures a video-generation node.
type VideoGenData struct {
	Provider        string `json:"provider,omitempty"`
	Model           string `json:"model,omitempty"`
	DurationSeconds int    `json:"duration_seconds,omitempty"`
}

func (PromptData) nodeType() NodeType         { return NodePrompt }
func (CombineTextData) nodeType() NodeType    { return NodeCombineText }
func (ReferenceImageData) nodeType() NodeType { return NodeReferenceImage }
func (CombineImageData) nodeType() NodeType   { return NodeCombineImage }
func (ImageGenData) nodeType() NodeType       { return NodeImageGen }
func (RouterData) nodeType() NodeType         { return NodeRouter }
func (DirectorStyleData) nodeType() NodeType  { return NodeDirectorStyle }
func (CinematicSetupData) nodeType() NodeType { return NodeCinematicSetup }
func (CameraMovementData) nodeType() NodeType { return NodeCameraMovement }
func (VideoGenData) nodeType() NodeType       { return NodeVideoGen }

// TypeOf returns the node type a data payload belongs to.
func TypeOf(data NodeData) NodeType {
	if data == nil {
		return ""
	}
	return data.nodeType()
}

func decodeNodeData(t NodeType, raw json.RawMessage) (NodeData, error) {
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}
	switch t {
	case NodePrompt:
		var data PromptData
		return data, json.Unmarshal(raw, &data)
	case NodeCombineText:
		var data CombineTextData
		return data, json.Unmarshal(raw, &data)
	case NodeReferenceImage:
		var data ReferenceImageData
		return data, json.Unmarshal(raw, &data)
	case NodeCombineImage:
		var data CombineImageData
		return data, json.Unmarshal(raw, &data)
	case NodeImageGen:
		var data ImageGenData
		return data, json.Unmarshal(raw, &data)
	case NodeRouter:
		var data RouterData
		return data, json.Unmarshal(raw, &data)
	case NodeDirectorStyle:
		var data DirectorStyleData
		return data, json.Unmarshal(raw, &data)
	case NodeCinematicSetup:
		var data CinematicSetupData
		return data, json.Unmarshal(raw, &data)
	case NodeCameraMovement:
		var data CameraMovementData
		return data, json.Unmarshal(raw, &data)
	case NodeVideoGen:
		var data VideoGenData
		return data, json.Unmarshal(raw, &data)
	default:
		return nil, fmt.Errorf("unknown node type %q", t)
	}
}

type nodeEnvelope struct {
	ID       string          `json:"id"`
	Type     string          `json:"type"`
	Position Position        `json:"position"`
	Data     json.RawMessage `json:"data,omitempty"`
}

// UnmarshalJSON decodes a node, normalizing the type once at the boundary and
// decoding Data into the concrete per-type shape.
func (n *Node) UnmarshalJSON(raw []byte) error {
	var env nodeEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return err
	}
	if env.ID == "" {
		return fmt.Errorf("node id is required")
	}
	t, err := ParseNodeType(env.Type)
	if err != nil {
		return fmt.Errorf("node %s: %w", env.ID, err)
	}
	data, err := decodeNodeData(t, env.Data)
	if err != nil {
		return fmt.Errorf("node %s: decode %s data: %w", env.ID, t, err)
	}
	n.ID = env.ID
	n.Type = t
	n.Position = env.Position
	n.Data = data
	return nil
}

// MarshalJSON emits the node with its canonical wire type string.
func (n Node) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(n.Data)
	if err != nil {
		return nil, fmt.Errorf("node %s: encode data: %w", n.ID, err)
	}
	return json.Marshal(nodeEnvelope{
		ID:       n.ID,
		Type:     string(n.Type),
		Position: n.Position,
		Data:     data,
	})
}

// Decode parses graph JSON into a validated Graph.
func Decode(raw []byte) (*Graph, error) {
	var g Graph
	if err := json.Unmarshal(raw, &g); err != nil {
		return nil, fmt.Errorf("decode graph: %w", err)
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return &g, nil
}

// Encode serializes the graph to its wire JSON.
func (g *Graph) Encode() ([]byte, error) {
	raw, err := json.Marshal(g)
	if err != nil {
		return nil, fmt.Errorf("encode graph: %w", err)
	}
	return raw, nil
}
