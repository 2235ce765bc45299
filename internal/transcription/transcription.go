// Package transcription selects the speech-to-text provider configured for a
// run.
package transcription

import (
	"context"
	"errors"
	"fmt"

	"reelscribe/internal/config"
	"reelscribe/internal/services"
	"reelscribe/internal/services/elevenlabs"
	"reelscribe/internal/services/whisperx"
)

// ErrDisabled is returned by the "none" provider. It is treated as a
// per-post error so posts stay eligible once a provider is configured.
var ErrDisabled = errors.New("transcription: provider disabled")

// Transcriber turns a downloaded video into text.
type Transcriber interface {
	Name() string
	Transcribe(ctx context.Context, videoPath, language string) (string, error)
}

// New builds the transcriber named by cfg.Transcription.Provider.
func New(cfg *config.Config) (Transcriber, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "transcribe", "new", "config required", nil)
	}
	t := cfg.Transcription
	switch t.Provider {
	case config.TranscriptionElevenLabs:
		return elevenlabs.NewService(elevenlabs.Config{
			APIKey:         t.ElevenLabsAPIKey,
			BaseURL:        t.ElevenLabsBaseURL,
			Model:          t.ElevenLabsModel,
			TimeoutSeconds: t.TimeoutSeconds,
		}), nil
	case config.TranscriptionWhisperX:
		return &timeoutTranscriber{
			Transcriber: whisperx.NewService(whisperx.Config{
				Model:       t.WhisperXModel,
				CUDAEnabled: t.WhisperXCUDAEnabled,
				VADMethod:   t.WhisperXVADMethod,
				HFToken:     t.WhisperXHuggingFace,
			}, cfg.FFmpegBinary()),
			seconds: t.TimeoutSeconds,
		}, nil
	case config.TranscriptionNone:
		return Disabled{}, nil
	default:
		return nil, services.Wrap(services.ErrConfiguration, "transcribe", "new",
			fmt.Sprintf("unsupported provider %q", t.Provider), nil)
	}
}

// IsRetryable reports whether a transcription error should leave the post
// eligible for a later run instead of filtering it.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrDisabled) ||
		errors.Is(err, services.ErrTransient) ||
		errors.Is(err, services.ErrTimeout) ||
		errors.Is(err, services.ErrConfiguration) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled)
}

// Disabled is the "none" provider.
type Disabled struct{}

// Name identifies the provider in logs.
func (Disabled) Name() string { return config.TranscriptionNone }

// Transcribe always fails with ErrDisabled.
func (Disabled) Transcribe(context.Context, string, string) (string, error) {
	return "", ErrDisabled
}
