package feed

import (
	"context"
	"errors"
	"iter"
	"net/http"
	"strings"
	"time"

	"reelscribe/internal/config"
	"reelscribe/internal/services"
)

// ErrProfileNotFound is returned when the handle has no profile.
var ErrProfileNotFound = errors.New("feed: profile not found")

// Profile is the snapshot of an account at run start.
type Profile struct {
	Handle        string `json:"username"`
	FullName      string `json:"full_name"`
	Biography     string `json:"biography"`
	ProfilePicURL string `json:"profile_pic_url"`
}

// Post is one candidate post.
type Post struct {
	Shortcode    string    `json:"shortcode"`
	TakenAt      time.Time `json:"taken_at"`
	Caption      string    `json:"caption"`
	Mentions     []string  `json:"mentions"`
	Hashtags     []string  `json:"hashtags"`
	IsVideo      bool      `json:"is_video"`
	VideoURL     string    `json:"video_url"`
	ThumbnailURL string    `json:"thumbnail_url"`
}

// Source opens a profile and yields its posts newest first. The sequence is
// restartable only by calling Open again.
type Source interface {
	Open(ctx context.Context, handle string) (Profile, iter.Seq2[Post, error], error)
}

// NewSource builds the configured source.
func NewSource(cfg config.Feed, client *http.Client) (Source, error) {
	switch cfg.Source {
	case config.FeedSourceExport:
		return NewExportSource(cfg.ExportDir), nil
	case config.FeedSourceHTTP:
		return NewHTTPSource(cfg, client)
	default:
		return nil, services.Wrap(services.ErrConfiguration, "feed", "open", "unknown feed source "+cfg.Source, nil)
	}
}

// normalizePost fills mentions and hashtags from the caption when the source
// omitted them.
func normalizePost(p Post) Post {
	p.Shortcode = strings.TrimSpace(p.Shortcode)
	if len(p.Mentions) == 0 {
		p.Mentions = ExtractMentions(p.Caption)
	}
	if len(p.Hashtags) == 0 {
		p.Hashtags = ExtractHashtags(p.Caption)
	}
	if p.VideoURL != "" {
		p.IsVideo = true
	}
	return p
}
