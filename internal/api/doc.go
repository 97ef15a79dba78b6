// Package api defines transport-friendly DTOs for daemon endpoints and the
// CLI, plus converters from store records and services that bundle the common
// read/queue workflows both consumers share.
package api
