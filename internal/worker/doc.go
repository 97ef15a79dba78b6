// Package worker turns queued runs into completed or failed ones.
//
// A worker claims a run with an atomic conditional update, reconstructs the
// graph from the run's frozen snapshot, seeds the execution context with
// results cached from prior completed runs on the same graph, and walks the
// target node's dependency chain depth first. Video generation nodes return a
// generating placeholder from the graph walk; the worker then performs the
// provider call out of band and finalizes the asset and the run in one
// storage transaction.
//
// Concurrency control lives entirely in the claim: two workers racing on the
// same run id see exactly one successful conditional update. The package also
// provides Manager, the daemon-side poll loop that feeds runs to a worker and
// reclaims runs whose heartbeat expired.
package worker
