// Package preflight provides readiness checks for the store, filesystem
// paths, external binaries, and services reelscribe depends on.
//
// The "reelscribe health" command runs RunAll and renders the results. Each
// check is gated by its configuration: an LLM without a key, or a provider
// that needs no local binaries, is skipped rather than failed.
package preflight
