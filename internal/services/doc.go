// Package services defines shared utilities consumed by the ingestion pipeline
// and its external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, agent IDs, shortcodes, stage names,
//     and correlation identifiers for logging.
//   - Structured error markers plus the Wrap helper so failures can be
//     classified consistently (setup failure vs per-post failure).
//
// Subpackages hold the concrete collaborators: llm (chat completions),
// elevenlabs (hosted speech-to-text), and whisperx (local speech-to-text).
package services
