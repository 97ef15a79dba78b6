// Package store persists run records and generated-asset records in SQLite.
//
// A run is one execution attempt of a graph targeting a specific node. Runs
// are created queued and claimed by exactly one worker via a conditional
// update; the claim is the only concurrency-control mechanism in the system.
// Assets track generated media, including placeholder rows created before a
// slow video generation completes.
//
// All write paths retry on SQLITE_BUSY with bounded backoff because multiple
// worker goroutines and the API server share one database file.
package store
