package transcription

import (
	"context"
	"errors"
	"time"

	"reelscribe/internal/services"
)

// timeoutTranscriber bounds a local transcriber with a per-call deadline.
type timeoutTranscriber struct {
	Transcriber
	seconds int
}

func (t *timeoutTranscriber) Transcribe(ctx context.Context, videoPath, language string) (string, error) {
	if t.seconds <= 0 {
		return t.Transcriber.Transcribe(ctx, videoPath, language)
	}
	callCtx, cancel := context.WithTimeout(ctx, time.Duration(t.seconds)*time.Second)
	defer cancel()
	text, err := t.Transcriber.Transcribe(callCtx, videoPath, language)
	if err != nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return "", services.Wrap(services.ErrTimeout, "transcribe", t.Name(), "deadline exceeded", err)
	}
	return text, err
}
