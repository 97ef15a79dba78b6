package graph

import (
	"errors"
	"fmt"
)

// ErrCycle marks graphs rejected for containing a dependency cycle.
var ErrCycle = errors.New("graph contains a cycle")

// Validate checks structural graph validity: unique node ids, edges that
// reference known nodes, the prompt-to-imageGen edge prohibition, router
// branch bounds, and acyclicity.
func (g *Graph) Validate() error {
	if len(g.Nodes) == 0 {
		return fmt.Errorf("graph has no nodes")
	}

	byID := make(map[string]*Node, len(g.Nodes))
	for i := range g.Nodes {
		node := &g.Nodes[i]
		if _, exists := byID[node.ID]; exists {
			return fmt.Errorf("duplicate node id %q", node.ID)
		}
		byID[node.ID] = node

		if node.Type == NodeRouter {
			data, ok := node.Data.(RouterData)
			if !ok || data.Branches < 1 || data.Branches > MaxRouterBranches {
				return fmt.Errorf("router %s: branches must be between 1 and %d", node.ID, MaxRouterBranches)
			}
		}
	}

	for _, edge := range g.Edges {
		source, ok := byID[edge.Source]
		if !ok {
			return fmt.Errorf("edge %s: unknown source node %q", edge.ID, edge.Source)
		}
		target, ok := byID[edge.Target]
		if !ok {
			return fmt.Errorf("edge %s: unknown target node %q", edge.ID, edge.Target)
		}
		// A raw prompt may never feed image generation directly; a combine
		// text node must intermediate.
		if source.Type == NodePrompt && target.Type == NodeImageGen {
			return fmt.Errorf("edge %s: prompt node %s may not feed image generation %s directly; route it through a combine text node", edge.ID, source.ID, target.ID)
		}
	}

	return g.checkAcyclic()
}

// checkAcyclic rejects cyclic graphs so the dependency walk can never
// recurse forever.
func (g *Graph) checkAcyclic() error {
	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[string]int, len(g.Nodes))

	incoming := make(map[string][]Edge, len(g.Nodes))
	for _, edge := range g.Edges {
		incoming[edge.Target] = append(incoming[edge.Target], edge)
	}

	var walk func(id string) error
	walk = func(id string) error {
		switch state[id] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("%w: node %s depends on itself", ErrCycle, id)
		}
		state[id] = visiting
		for _, edge := range incoming[id] {
			if err := walk(edge.Source); err != nil {
				return err
			}
		}
		state[id] = done
		return nil
	}

	for i := range g.Nodes {
		if err := walk(g.Nodes[i].ID); err != nil {
			return err
		}
	}
	return nil
}
