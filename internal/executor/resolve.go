package executor

import (
	"fmt"

	"gaffer/internal/graph"
)

// ResolveInputs gathers a node's inputs from its upstream results.
//
// It returns (nil, nil) when any dependency is missing from the context or
// not yet in success state; that is "not ready", not an error. It returns an
// error only for malformed graphs: an edge from an unknown node, an output
// handle with no mapping, or a resolved output key the source never produced.
//
// When several edges deliver values to the same input key, the first value is
// kept as-is and the second write promotes it to an array; later writes
// append. Values arrive in edge-iteration order.
func ResolveInputs(g *graph.Graph, node *graph.Node, rctx *Context) (map[string]any, error) {
	incoming := g.IncomingEdges(node.ID)
	inputs := make(map[string]any, len(incoming))
	writes := make(map[string]int, len(incoming))

	for _, edge := range incoming {
		source := g.NodeByID(edge.Source)
		if source == nil {
			return nil, fmt.Errorf("edge %s references unknown source node %s", edge.ID, edge.Source)
		}

		result, ok := rctx.Result(source.ID)
		if !ok || result.State != StateSuccess {
			return nil, nil
		}

		outputKey, err := graph.ResolveOutputKey(source.Type, edge.SourceHandle)
		if err != nil {
			return nil, err
		}
		value, ok := result.Outputs[outputKey]
		if !ok {
			return nil, fmt.Errorf("node %s produced no output %q", source.ID, outputKey)
		}

		inputKey := graph.ResolveInputKey(node.Type, edge.TargetHandle)
		switch writes[inputKey] {
		case 0:
			inputs[inputKey] = value
		case 1:
			inputs[inputKey] = []any{inputs[inputKey], value}
		default:
			inputs[inputKey] = append(inputs[inputKey].([]any), value)
		}
		writes[inputKey]++
	}

	return inputs, nil
}
