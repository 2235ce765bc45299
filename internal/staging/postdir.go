package staging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"reelscribe/internal/fileutil"
	"reelscribe/internal/textutil"
)

// Text artifact names written beside the media.
const (
	TranscriptOriginal = "transcription_original.txt"
	TranscriptCleaned  = "transcription_cleaned.txt"
	Transcript         = "transcription.txt"
	Caption            = "caption.txt"
)

// Media file suffixes; the relocator matches on these.
const (
	ThumbnailSuffix = "_thumbnail.jpg"
	VideoSuffix     = "_video.mp4"
)

// PostDir is one post's staging directory. Provisional is the post number
// expected at the time staging began; the store may assign a different one.
type PostDir struct {
	Path        string
	Provisional int
}

// NewPostDir creates post_<N>_<YYYYMMDD_HHMMSS>_<shortcode> under root.
func NewPostDir(root string, provisional int, shortcode string, now time.Time) (PostDir, error) {
	name := fmt.Sprintf("post_%d_%s_%s", provisional, now.Format("20060102_150405"), textutil.SanitizeFileName(shortcode))
	path := filepath.Join(root, name)
	if err := os.MkdirAll(path, 0o755); err != nil {
		return PostDir{}, fmt.Errorf("create staging dir: %w", err)
	}
	return PostDir{Path: path, Provisional: provisional}, nil
}

// ThumbnailPath is where the thumbnail download lands.
func (d PostDir) ThumbnailPath() string {
	return filepath.Join(d.Path, fmt.Sprintf("post_%d%s", d.Provisional, ThumbnailSuffix))
}

// VideoPath is where the video download lands.
func (d PostDir) VideoPath() string {
	return filepath.Join(d.Path, fmt.Sprintf("post_%d%s", d.Provisional, VideoSuffix))
}

// WriteText stores a text artifact; an empty value is skipped.
func (d PostDir) WriteText(name, content string) error {
	if strings.TrimSpace(content) == "" {
		return nil
	}
	return fileutil.WriteFileAtomic(filepath.Join(d.Path, name), []byte(content), 0o644)
}

// Remove deletes the directory and everything in it.
func (d PostDir) Remove() error {
	if d.Path == "" {
		return nil
	}
	return os.RemoveAll(d.Path)
}
