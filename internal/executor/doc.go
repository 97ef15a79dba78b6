// Package executor resolves and runs individual graph nodes.
//
// Resolution and execution are deliberately split. ResolveInputs walks a
// node's incoming edges and gathers upstream outputs; it returns nil inputs
// (without error) when a dependency has not produced output yet, and an error
// only for a malformed graph such as an unknown source handle. Execute is a
// total function: it validates inputs against the node type's contract,
// dispatches to the per-type logic, and converts every failure into an
// error-state result instead of returning an error.
//
// Provider, upload, and asset-record collaborators are injected at
// construction so node logic stays testable without network access.
package executor
