// Package ingest drives one deduplicating, resumable ingestion run for a
// profile handle.
//
// A run takes the per-handle run lock, opens the feed, ensures the agent row,
// and loads the stored and filtered shortcode sets once. Posts are then
// evaluated newest-first, one at a time:
//
//	Known -> PreFiltered -> Fetch -> Transcribe -> QualityGate -> Enrich -> Persist
//
// Each evaluation yields exactly one Outcome. Unsuitable content is recorded
// in the filter ledger and never reconsidered; transient failures are left
// unrecorded so the next run retries them. The run stops once the target
// number of posts has been saved or the feed is exhausted, then relocates the
// saved posts into the library.
//
// Work inside a post is not interrupted by cancellation; the context is
// checked between posts.
package ingest
