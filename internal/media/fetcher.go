package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
	"github.com/gabriel-vasile/mimetype"

	"reelscribe/internal/config"
	"reelscribe/internal/feed"
	"reelscribe/internal/fileutil"
	"reelscribe/internal/logging"
	"reelscribe/internal/services"
	"reelscribe/internal/staging"
)

// ErrNoVideo reports that a post carries no video reference.
var ErrNoVideo = errors.New("media: post has no video")

// Result lists the files written for a post.
type Result struct {
	VideoPath     string
	ThumbnailPath string
}

// HasThumbnail reports whether a thumbnail was stored.
func (r Result) HasThumbnail() bool { return r.ThumbnailPath != "" }

// Fetcher downloads media references.
type Fetcher struct {
	client    *http.Client
	userAgent string
	timeout   time.Duration
	retry     retrypolicy.RetryPolicy[any]
	logger    *slog.Logger
}

// FetcherOption customizes a Fetcher.
type FetcherOption func(*fetcherOptions)

type fetcherOptions struct {
	client    *http.Client
	baseDelay time.Duration
	maxDelay  time.Duration
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) FetcherOption {
	return func(o *fetcherOptions) { o.client = client }
}

// WithBackoff overrides the retry backoff bounds.
func WithBackoff(base, max time.Duration) FetcherOption {
	return func(o *fetcherOptions) {
		o.baseDelay = base
		o.maxDelay = max
	}
}

// NewFetcher builds a Fetcher from configuration.
func NewFetcher(cfg config.Media, logger *slog.Logger, opts ...FetcherOption) *Fetcher {
	o := fetcherOptions{
		client:    &http.Client{},
		baseDelay: time.Second,
		maxDelay:  10 * time.Second,
	}
	for _, opt := range opts {
		opt(&o)
	}
	retries := cfg.MaxRetries
	if retries < 0 {
		retries = 0
	}
	policy := retrypolicy.NewBuilder[any]().
		WithBackoff(o.baseDelay, o.maxDelay).
		WithMaxRetries(retries).
		WithJitterFactor(0.1).
		HandleIf(func(_ any, err error) bool {
			return err != nil && errors.Is(err, services.ErrTransient)
		}).
		ReturnLastFailure().
		Build()

	return &Fetcher{
		client:    o.client,
		userAgent: cfg.UserAgent,
		timeout:   time.Duration(cfg.TimeoutSeconds) * time.Second,
		retry:     policy,
		logger:    logging.NewComponentLogger(logger, "media"),
	}
}

// Fetch downloads a post's video and, best effort, its thumbnail into dir.
// ErrNoVideo is returned only when the post itself carries no video. A
// payload that does not sniff as video (a login wall or CDN error page) is
// transient so the post is retried on a later run.
func (f *Fetcher) Fetch(ctx context.Context, post feed.Post, dir staging.PostDir) (Result, error) {
	if !post.IsVideo || strings.TrimSpace(post.VideoURL) == "" {
		return Result{}, ErrNoVideo
	}

	videoPath := dir.VideoPath()
	if err := f.Download(ctx, post.VideoURL, videoPath); err != nil {
		return Result{}, err
	}
	mtype, err := mimetype.DetectFile(videoPath)
	if err != nil {
		return Result{}, fmt.Errorf("sniff video: %w", err)
	}
	if !strings.HasPrefix(mtype.String(), "video/") {
		_ = os.Remove(videoPath)
		f.logger.Debug("downloaded media is not a video",
			logging.String(logging.FieldShortcode, post.Shortcode),
			logging.String("mime", mtype.String()),
		)
		return Result{}, services.Wrap(services.ErrTransient, "media", "fetch",
			fmt.Sprintf("payload is %s, not video", mtype.String()), nil)
	}

	result := Result{VideoPath: videoPath}
	if post.ThumbnailURL != "" {
		thumbPath := dir.ThumbnailPath()
		if err := f.Download(ctx, post.ThumbnailURL, thumbPath); err != nil {
			logging.WarnWithContext(f.logger, "thumbnail download failed", "thumbnail_fetch_failed",
				logging.String(logging.FieldShortcode, post.Shortcode),
				logging.Error(err),
				logging.String(logging.FieldImpact, "post saved without thumbnail"),
				logging.String(logging.FieldErrorHint, "check media.timeout_seconds and the feed's thumbnail URLs"),
			)
		} else {
			result.ThumbnailPath = thumbPath
		}
	}
	return result, nil
}

// Download stores ref at dest.
func (f *Fetcher) Download(ctx context.Context, ref, dest string) error {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return services.Wrap(services.ErrValidation, "media", "download", "empty reference", nil)
	}
	if local, ok := localPath(ref); ok {
		return copyLocal(local, dest)
	}
	return failsafe.With[any](f.retry).WithContext(ctx).Run(func() error {
		return f.downloadOnce(ctx, ref, dest)
	})
}

func (f *Fetcher) downloadOnce(ctx context.Context, ref, dest string) error {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return services.Wrap(services.ErrValidation, "media", "download", "build request", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return services.Wrap(services.ErrTimeout, "media", "download", ref, err)
		}
		return services.Wrap(services.ErrTransient, "media", "download", ref, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return services.Wrap(services.ErrTransient, "media", "download", fmt.Sprintf("status %d", resp.StatusCode), nil)
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return services.Wrap(services.ErrNotFound, "media", "download", fmt.Sprintf("status %d", resp.StatusCode), nil)
	case resp.StatusCode != http.StatusOK:
		return services.Wrap(services.ErrExternalTool, "media", "download", fmt.Sprintf("status %d", resp.StatusCode), nil)
	}

	if err := writeStream(resp.Body, dest); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return services.Wrap(services.ErrTimeout, "media", "download", ref, err)
		}
		return services.Wrap(services.ErrTransient, "media", "download", "write body", err)
	}
	return nil
}

func writeStream(r io.Reader, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	tmp := dest + ".part"
	out, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		_ = out.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, dest)
}

func localPath(ref string) (string, bool) {
	if strings.HasPrefix(ref, "file://") {
		u, err := url.Parse(ref)
		if err != nil {
			return "", false
		}
		return u.Path, true
	}
	if strings.Contains(ref, "://") {
		return "", false
	}
	return ref, true
}

func copyLocal(src, dest string) error {
	if _, err := os.Stat(src); err != nil {
		if os.IsNotExist(err) {
			return services.Wrap(services.ErrNotFound, "media", "download", src, err)
		}
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	return fileutil.CopyFileVerified(src, dest)
}
