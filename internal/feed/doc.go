// Package feed reads profile snapshots and their posts, newest first.
//
// Two sources are provided. ExportSource reads a directory dump with one
// profile.json and a posts/ directory of per-post JSON files per handle.
// HTTPSource pages through a JSON endpoint, throttled with a token bucket
// and sending the configured headers and session cookies.
//
// Both return a lazy iter.Seq2 so the pipeline can stop early without
// fetching pages it will not evaluate.
package feed
