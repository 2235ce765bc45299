// Package whisperx transcribes downloaded post videos locally with WhisperX.
//
// Transcribe extracts the first audio stream to a mono 16kHz WAV next to the
// video, runs WhisperX through uvx, and concatenates the segment text from its
// JSON output. Model, CUDA, and VAD settings come from Config.
package whisperx
