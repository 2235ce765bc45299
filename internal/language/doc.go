// Package language normalizes transcription language codes.
//
// Providers disagree on code style: ElevenLabs expects ISO 639-3 ("fas"),
// WhisperX expects ISO 639-1 ("fa"). Configuration may use either form or a
// plain word such as "persian" or "farsi".
package language
