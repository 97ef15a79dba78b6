// Package graph defines the wire schema for creative dataflow graphs: the
// closed set of node types, their per-type configuration payloads, edges
// between named handles, and the static handle-to-key contracts the executor
// resolves inputs with.
//
// Node types are matched case-insensitively at decode time and normalized to
// their canonical wire strings. The wire strings themselves are a
// compatibility contract and must not change.
//
// # Handle contracts
//
// Output handles resolve strictly: an edge whose source handle has no mapping
// for the source node's type is a malformed graph and resolution fails.
// Target handles resolve leniently: an unmapped target handle falls back to
// the raw handle id. The asymmetry is intentional; see ResolveOutputKey and
// ResolveInputKey.
package graph
