package services_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"reelscribe/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "transcribe", "whisperx", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"transcribe", "whisperx", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestCategory(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "none"},
		{services.Wrap(services.ErrValidation, "enrich", "title", "too short", nil), "validation"},
		{services.Wrap(services.ErrConfiguration, "store", "open", "bad dsn", nil), "configuration"},
		{fmt.Errorf("fetch: %w", context.DeadlineExceeded), "timeout"},
		{errors.New("connection reset"), "transient"},
	}
	for _, tt := range tests {
		if got := services.Category(tt.err); got != tt.want {
			t.Fatalf("Category(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestIsSetupFailure(t *testing.T) {
	if !services.IsSetupFailure(services.Wrap(services.ErrConfiguration, "", "", "x", nil)) {
		t.Fatal("expected configuration error to be a setup failure")
	}
	if services.IsSetupFailure(services.Wrap(services.ErrTransient, "", "", "x", nil)) {
		t.Fatal("expected transient error to be per-post")
	}
}
