package transcription

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"reelscribe/internal/config"
	"reelscribe/internal/services"
)

func TestNewSelectsProvider(t *testing.T) {
	tests := []struct {
		provider string
		want     string
	}{
		{config.TranscriptionElevenLabs, "elevenlabs"},
		{config.TranscriptionWhisperX, "whisperx"},
		{config.TranscriptionNone, "none"},
	}
	for _, tc := range tests {
		cfg := config.Default()
		cfg.Transcription.Provider = tc.provider
		tr, err := New(&cfg)
		if err != nil {
			t.Fatalf("%s: %v", tc.provider, err)
		}
		if tr.Name() != tc.want {
			t.Fatalf("%s: name = %q", tc.provider, tr.Name())
		}
	}

	cfg := config.Default()
	cfg.Transcription.Provider = "carrier-pigeon"
	if _, err := New(&cfg); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestIsRetryable(t *testing.T) {
	retryable := []error{
		ErrDisabled,
		services.Wrap(services.ErrTransient, "transcribe", "x", "429", nil),
		services.Wrap(services.ErrTimeout, "transcribe", "x", "slow", nil),
		fmt.Errorf("wrapped: %w", context.DeadlineExceeded),
	}
	for _, err := range retryable {
		if !IsRetryable(err) {
			t.Fatalf("expected %v to be retryable", err)
		}
	}
	permanent := []error{
		errors.New("no speech"),
		services.Wrap(services.ErrExternalTool, "transcribe", "x", "bad media", nil),
	}
	for _, err := range permanent {
		if IsRetryable(err) {
			t.Fatalf("expected %v to be permanent", err)
		}
	}
}

type slowTranscriber struct{}

func (slowTranscriber) Name() string { return "slow" }

func (slowTranscriber) Transcribe(ctx context.Context, _, _ string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func TestTimeoutTranscriberReportsTimeout(t *testing.T) {
	tr := &timeoutTranscriber{Transcriber: slowTranscriber{}, seconds: 1}
	start := time.Now()
	_, err := tr.Transcribe(context.Background(), "v.mp4", "fa")
	if !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("expected timeout, got %v", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Fatalf("timeout not honored")
	}
}
