package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// mp4Header is the smallest ftyp box mimetype recognizes as video/mp4.
var mp4Header = []byte{
	0x00, 0x00, 0x00, 0x18, 'f', 't', 'y', 'p',
	'i', 's', 'o', 'm', 0x00, 0x00, 0x02, 0x00,
	'i', 's', 'o', 'm', 'i', 's', 'o', '2',
}

// jpegHeader starts a JFIF file.
var jpegHeader = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}

// WriteFile fills the target path with the requested number of bytes using a
// simple repeating pattern. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	buf := make([]byte, size)
	for i := range buf {
		buf[i] = 0x42
	}
	writeBytes(t, path, buf)
}

// WriteMP4 writes a file that sniffs as video/mp4, padded to size bytes.
func WriteMP4(t testing.TB, path string, size int) {
	t.Helper()
	writeBytes(t, path, padded(mp4Header, size))
}

// WriteJPEG writes a file that sniffs as image/jpeg, padded to size bytes.
func WriteJPEG(t testing.TB, path string, size int) {
	t.Helper()
	writeBytes(t, path, padded(jpegHeader, size))
}

// MP4Bytes returns an in-memory MP4 payload of size bytes.
func MP4Bytes(size int) []byte { return padded(mp4Header, size) }

// JPEGBytes returns an in-memory JPEG payload of size bytes.
func JPEGBytes(size int) []byte { return padded(jpegHeader, size) }

func padded(header []byte, size int) []byte {
	if size < len(header) {
		size = len(header)
	}
	out := make([]byte, size)
	copy(out, header)
	return out
}

func writeBytes(t testing.TB, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
