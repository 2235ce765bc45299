// Package runlock serializes ingestion runs per handle with an advisory file
// lock, so a second concurrent run for the same agent fails fast.
package runlock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"reelscribe/internal/services"
	"reelscribe/internal/textutil"
)

// ErrHeld reports that another process holds the lock.
var ErrHeld = errors.New("runlock: another run holds the lock")

// Lock is a held run lock.
type Lock struct {
	path string
	fl   *flock.Flock
}

// Path returns the lock file location.
func Path(dir, handle string) string {
	name := textutil.SanitizeFileName(textutil.NormalizeHandle(handle))
	return filepath.Join(dir, name+".lock")
}

// Acquire takes the lock for handle under dir without blocking.
func Acquire(dir, handle string) (*Lock, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "runlock", "acquire", "create lock dir", err)
	}
	path := Path(dir, handle)
	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", path, err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrValidation, "runlock", "acquire", path, ErrHeld)
	}
	return &Lock{path: path, fl: fl}, nil
}

// Path returns the lock file location.
func (l *Lock) Path() string { return l.path }

// Release drops the lock. It is safe to call more than once.
func (l *Lock) Release() error {
	if l == nil || l.fl == nil {
		return nil
	}
	return l.fl.Unlock()
}
