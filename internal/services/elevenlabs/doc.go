// Package elevenlabs uploads post videos to the ElevenLabs speech-to-text API.
//
// The video file is sent as multipart form data together with the model and
// an ISO 639-3 language code. Rate limiting and server errors are reported as
// transient so callers can retry the post on a later run.
package elevenlabs
