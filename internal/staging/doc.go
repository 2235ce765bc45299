// Package staging manages the per-post working directories that hold
// downloaded media and transcripts until the post is persisted and its files
// are relocated into the library.
package staging
