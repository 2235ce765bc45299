package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"reelscribe/internal/services"
	"reelscribe/internal/textutil"
)

// ExportSource reads <dir>/<handle>/profile.json and
// <dir>/<handle>/posts/*.json. Relative media references are resolved
// against the post file's directory.
type ExportSource struct {
	dir string
}

// NewExportSource creates a source rooted at dir.
func NewExportSource(dir string) *ExportSource {
	return &ExportSource{dir: dir}
}

// Open implements Source.
func (s *ExportSource) Open(_ context.Context, handle string) (Profile, iter.Seq2[Post, error], error) {
	handle = textutil.NormalizeHandle(handle)
	root := filepath.Join(s.dir, handle)

	var profile Profile
	data, err := os.ReadFile(filepath.Join(root, "profile.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return Profile{}, nil, services.Wrap(services.ErrNotFound, "feed", "open", "no export for "+handle, ErrProfileNotFound)
		}
		return Profile{}, nil, fmt.Errorf("read profile: %w", err)
	}
	if err := json.Unmarshal(data, &profile); err != nil {
		return Profile{}, nil, services.Wrap(services.ErrValidation, "feed", "open", "decode profile.json", err)
	}
	if profile.Handle == "" {
		profile.Handle = handle
	}
	profile.ProfilePicURL = resolveRef(root, profile.ProfilePicURL)

	files, err := filepath.Glob(filepath.Join(root, "posts", "*.json"))
	if err != nil {
		return Profile{}, nil, fmt.Errorf("list posts: %w", err)
	}

	// Posts are decoded eagerly so ordering is known; exports are local
	// and small relative to media.
	posts := make([]Post, 0, len(files))
	var decodeErrs []error
	for _, file := range files {
		post, err := readPostFile(file)
		if err != nil {
			decodeErrs = append(decodeErrs, err)
			continue
		}
		posts = append(posts, post)
	}
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].TakenAt.After(posts[j].TakenAt)
	})

	seq := func(yield func(Post, error) bool) {
		for _, err := range decodeErrs {
			if !yield(Post{}, err) {
				return
			}
		}
		for _, post := range posts {
			if !yield(post, nil) {
				return
			}
		}
	}
	return profile, seq, nil
}

func readPostFile(path string) (Post, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Post{}, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	var post Post
	if err := json.Unmarshal(data, &post); err != nil {
		return Post{}, services.Wrap(services.ErrValidation, "feed", "decode", filepath.Base(path), err)
	}
	if post.Shortcode == "" {
		post.Shortcode = strings.TrimSuffix(filepath.Base(path), ".json")
	}
	dir := filepath.Dir(path)
	post.VideoURL = resolveRef(dir, post.VideoURL)
	post.ThumbnailURL = resolveRef(dir, post.ThumbnailURL)
	return normalizePost(post), nil
}

// resolveRef turns a relative file reference into an absolute path and
// leaves URLs and absolute paths untouched.
func resolveRef(base, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" || strings.Contains(ref, "://") || filepath.IsAbs(ref) {
		return ref
	}
	return filepath.Join(base, ref)
}
