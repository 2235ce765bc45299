package runlock

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestAcquireIsExclusivePerHandle(t *testing.T) {
	dir := t.TempDir()

	first, err := Acquire(dir, "@Agent.One")
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer first.Release()

	if _, err := Acquire(dir, "agent.one"); !errors.Is(err, ErrHeld) {
		t.Fatalf("expected ErrHeld for the same handle, got %v", err)
	}

	other, err := Acquire(dir, "agent.two")
	if err != nil {
		t.Fatalf("different handle should lock: %v", err)
	}
	_ = other.Release()

	if err := first.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	again, err := Acquire(dir, "agent.one")
	if err != nil {
		t.Fatalf("lock should be free after release: %v", err)
	}
	_ = again.Release()
}

func TestPath(t *testing.T) {
	got := Path("/locks", " @Some.Agent ")
	if filepath.Base(got) != "some.agent.lock" {
		t.Fatalf("unexpected path %s", got)
	}
}
