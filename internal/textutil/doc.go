// Package textutil provides the text helpers shared by ingestion and
// enrichment: script-aware character counting, Instagram handle conversion,
// whitespace tokenization, and filename sanitization.
//
// Counting and matching operate on NFC-normalized text so that decomposed
// Persian letters (for example alef with madda) count once.
package textutil
