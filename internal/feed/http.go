package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"reelscribe/internal/config"
	"reelscribe/internal/services"
	"reelscribe/internal/textutil"
)

const maxPages = 1000

// HTTPSource reads profiles from a JSON endpoint:
//
//	GET {base}/profiles/{handle}
//	GET {base}/profiles/{handle}/posts?cursor={cursor}
//
// The posts endpoint returns {"posts": [...], "next_cursor": "..."} with
// posts newest first; an empty next_cursor ends pagination.
type HTTPSource struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	headers http.Header
}

type postsPage struct {
	Posts      []Post `json:"posts"`
	NextCursor string `json:"next_cursor"`
}

// NewHTTPSource builds a source from configuration. A cookie file, when
// configured, must exist.
func NewHTTPSource(cfg config.Feed, client *http.Client) (*HTTPSource, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "feed", "open", "feed.base_url required for http source", nil)
	}
	if client == nil {
		client = &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second}
	}
	limit := rate.Inf
	if cfg.PagesPerSecond > 0 {
		limit = rate.Limit(cfg.PagesPerSecond)
	}

	headers := make(http.Header, len(cfg.Headers)+2)
	headers.Set("Accept", "application/json")
	for key, value := range cfg.Headers {
		headers.Set(key, value)
	}
	if cfg.CookieFile != "" {
		cookie, err := LoadCookieHeader(cfg.CookieFile)
		if err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "feed", "open", "load cookie file", err)
		}
		if cookie != "" {
			headers.Set("Cookie", cookie)
		}
	}

	return &HTTPSource{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  client,
		limiter: rate.NewLimiter(limit, 1),
		headers: headers,
	}, nil
}

// Open implements Source. Only the profile request happens here; post pages
// are fetched as the sequence is consumed.
func (s *HTTPSource) Open(ctx context.Context, handle string) (Profile, iter.Seq2[Post, error], error) {
	handle = textutil.NormalizeHandle(handle)
	profileURL := fmt.Sprintf("%s/profiles/%s", s.baseURL, url.PathEscape(handle))

	var profile Profile
	if err := s.getJSON(ctx, profileURL, &profile); err != nil {
		return Profile{}, nil, err
	}
	if profile.Handle == "" {
		profile.Handle = handle
	}

	seq := func(yield func(Post, error) bool) {
		cursor := ""
		for page := 0; page < maxPages; page++ {
			pageURL := profileURL + "/posts"
			if cursor != "" {
				pageURL += "?cursor=" + url.QueryEscape(cursor)
			}
			var body postsPage
			if err := s.getJSON(ctx, pageURL, &body); err != nil {
				yield(Post{}, err)
				return
			}
			for _, raw := range body.Posts {
				post := normalizePost(raw)
				if post.Shortcode == "" {
					if !yield(Post{}, services.Wrap(services.ErrValidation, "feed", "decode", "post without shortcode", nil)) {
						return
					}
					continue
				}
				if !yield(post, nil) {
					return
				}
			}
			if body.NextCursor == "" || body.NextCursor == cursor {
				return
			}
			cursor = body.NextCursor
		}
	}
	return profile, seq, nil
}

func (s *HTTPSource) getJSON(ctx context.Context, target string, out any) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("feed throttle: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("build feed request: %w", err)
	}
	req.Header = s.headers.Clone()

	resp, err := s.client.Do(req)
	if err != nil {
		return services.Wrap(services.ErrTransient, "feed", "fetch", target, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return services.Wrap(services.ErrNotFound, "feed", "fetch", target, ErrProfileNotFound)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return services.Wrap(services.ErrTransient, "feed", "fetch", fmt.Sprintf("%s: status %d", target, resp.StatusCode), nil)
	case resp.StatusCode != http.StatusOK:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return services.Wrap(services.ErrExternalTool, "feed", "fetch",
			fmt.Sprintf("%s: status %d: %s", target, resp.StatusCode, strings.TrimSpace(string(snippet))), nil)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return services.Wrap(services.ErrValidation, "feed", "decode", target, err)
	}
	return nil
}
