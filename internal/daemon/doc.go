// Package daemon hosts the long-running gafferd process: single-instance
// locking, the background workflow manager, and the local HTTP API the CLI
// talks to.
package daemon
