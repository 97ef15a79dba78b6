// Command gaffer is the CLI for inspecting and driving the gaffer daemon:
// queueing runs, listing runs and assets, and checking daemon status. It
// talks to gafferd over the local HTTP API and falls back to direct database
// access when the daemon is not running.
package main
