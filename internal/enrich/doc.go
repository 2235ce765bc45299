// Package enrich turns raw transcripts and captions into publishable post
// content: a cleaned body, a marketing title, and a caption block with
// mentions and hashtags.
//
// Every language model call is guarded by WithFallback. When the backend is
// absent, errors, or returns output that fails validation, the operation
// yields its deterministic alternative instead, so enrichment never fails a
// post.
package enrich
