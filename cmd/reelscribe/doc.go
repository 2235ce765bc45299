// Package main hosts the reelscribe CLI entrypoint and command graph.
//
// The Cobra command tree wires configuration, the store, the feed source,
// media fetching, transcription, and enrichment into an ingest run, and
// exposes the maintenance commands (retitle, stats, health) plus the
// read-only API server. Configuration is resolved lazily so that commands
// such as "config init" work before a config file exists.
//
// Keep this package lean: behaviour lives in internal packages and is
// surfaced here through commands and flags.
package main
