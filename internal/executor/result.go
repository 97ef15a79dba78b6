package executor

import (
	"time"

	"gaffer/internal/graph"
)

// State is the lifecycle state of one node execution.
type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
	StateSuccess State = "success"
	StateError   State = "error"
)

// Result captures the outcome of executing one node. A result transitions to
// success or error exactly once and is immutable afterwards.
type Result struct {
	NodeID      string
	NodeType    graph.NodeType
	State       State
	Outputs     map[string]any
	Err         string
	StartedAt   time.Time
	CompletedAt time.Time
}

// Context is the in-memory execution state for one run. It is owned by a
// single worker invocation and never shared across runs. Results accumulate
// monotonically; entries are added, never removed or replaced.
type Context struct {
	RunID     string
	GraphID   string
	UserID    string
	ProjectID string

	results map[string]*Result
}

// NewContext constructs an empty execution context for a run.
func NewContext(runID, graphID, userID, projectID string) *Context {
	return &Context{
		RunID:     runID,
		GraphID:   graphID,
		UserID:    userID,
		ProjectID: projectID,
		results:   make(map[string]*Result),
	}
}

// Result returns the recorded result for a node, if any.
func (c *Context) Result(nodeID string) (*Result, bool) {
	r, ok := c.results[nodeID]
	return r, ok
}

// SetResult records a node's result. The first terminal result for a node id
// wins; later writes for the same node are ignored.
func (c *Context) SetResult(r *Result) {
	if r == nil || r.NodeID == "" {
		return
	}
	if existing, ok := c.results[r.NodeID]; ok {
		if existing.State == StateSuccess || existing.State == StateError {
			return
		}
	}
	c.results[r.NodeID] = r
}

// ResultCount reports how many node results the context holds.
func (c *Context) ResultCount() int {
	return len(c.results)
}
