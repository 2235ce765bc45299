// Package store persists agents, posts, and filtered records in SQLite or
// Postgres.
//
// Schema changes ship as embedded goose migrations, one directory per dialect,
// and queries are built with squirrel so placeholders follow the dialect.
//
// SavePost performs the existence check, post numbering, and insert in one
// transaction that holds a per-agent lock: SELECT ... FOR UPDATE on the agent
// row under Postgres, an immediate write transaction under SQLite. Post numbers
// therefore stay contiguous and start at 1 even with concurrent writers, and a
// shortcode can be stored at most once per agent. RecordFiltered refuses
// shortcodes that already exist as posts, and SavePost refuses shortcodes that
// were filtered, so the two sets never overlap.
package store
