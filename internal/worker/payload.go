package worker

import (
	"encoding/json"
	"fmt"
	"strings"

	"gaffer/internal/executor"
	"gaffer/internal/graph"
)

// RunPayload is the JSON shape stored in a completed run's output_payload.
// It carries enough to reseed a future run's context as a success result.
type RunPayload struct {
	NodeID   string         `json:"node_id"`
	NodeType string         `json:"node_type"`
	Outputs  map[string]any `json:"outputs"`
}

// EncodePayload renders a success result as run payload JSON.
func EncodePayload(result *executor.Result) (string, error) {
	if result == nil {
		return "", fmt.Errorf("nil result")
	}
	raw, err := json.Marshal(RunPayload{
		NodeID:   result.NodeID,
		NodeType: string(result.NodeType),
		Outputs:  result.Outputs,
	})
	if err != nil {
		return "", fmt.Errorf("encode run payload: %w", err)
	}
	return string(raw), nil
}

// DecodePayload parses stored payload JSON. Empty input yields (nil, nil).
func DecodePayload(raw string) (*RunPayload, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var payload RunPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("decode run payload: %w", err)
	}
	return &payload, nil
}

// Result converts a stored payload back into a success result suitable for
// seeding an execution context.
func (p *RunPayload) Result() *executor.Result {
	return &executor.Result{
		NodeID:   p.NodeID,
		NodeType: graph.NodeType(p.NodeType),
		State:    executor.StateSuccess,
		Outputs:  p.Outputs,
	}
}
