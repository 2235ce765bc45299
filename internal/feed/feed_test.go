package feed

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"reelscribe/internal/config"
	"reelscribe/internal/services"
)

func writeJSON(t *testing.T, path string, v any) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestExportSourceOrdersNewestFirst(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "agent.one")
	writeJSON(t, filepath.Join(root, "profile.json"), map[string]string{"full_name": "Agent One", "profile_pic_url": "pic.jpg"})
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	writeJSON(t, filepath.Join(root, "posts", "old.json"), map[string]any{"shortcode": "OLD", "taken_at": base})
	writeJSON(t, filepath.Join(root, "posts", "new.json"), map[string]any{
		"shortcode": "NEW", "taken_at": base.Add(48 * time.Hour), "video_url": "media/new.mp4",
		"caption": "خانه جدید @friend.one #دبی #luxury",
	})
	writeJSON(t, filepath.Join(root, "posts", "MID.json"), map[string]any{"taken_at": base.Add(24 * time.Hour)})

	profile, posts, err := NewExportSource(dir).Open(context.Background(), "@Agent.One")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if profile.Handle != "agent.one" || profile.FullName != "Agent One" {
		t.Fatalf("unexpected profile %+v", profile)
	}
	if profile.ProfilePicURL != filepath.Join(root, "pic.jpg") {
		t.Fatalf("profile picture not resolved: %q", profile.ProfilePicURL)
	}

	var codes []string
	var first Post
	for post, err := range posts {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(codes) == 0 {
			first = post
		}
		codes = append(codes, post.Shortcode)
	}
	if !reflect.DeepEqual(codes, []string{"NEW", "MID", "OLD"}) {
		t.Fatalf("unexpected order %v", codes)
	}
	if !first.IsVideo || first.VideoURL != filepath.Join(root, "posts", "media", "new.mp4") {
		t.Fatalf("video ref not resolved: %+v", first)
	}
	if !reflect.DeepEqual(first.Mentions, []string{"friend.one"}) || !reflect.DeepEqual(first.Hashtags, []string{"دبی", "luxury"}) {
		t.Fatalf("unexpected caption entities %v %v", first.Mentions, first.Hashtags)
	}
}

func TestExportSourceMissingProfile(t *testing.T) {
	_, _, err := NewExportSource(t.TempDir()).Open(context.Background(), "nobody")
	if err == nil {
		t.Fatal("expected error for missing export")
	}
}

func TestExportSourceYieldsDecodeErrors(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "a")
	writeJSON(t, filepath.Join(root, "profile.json"), map[string]string{})
	if err := os.MkdirAll(filepath.Join(root, "posts"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "posts", "bad.json"), []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, posts, err := NewExportSource(dir).Open(context.Background(), "a")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	errs := 0
	for _, err := range posts {
		if err != nil {
			errs++
		}
	}
	if errs != 1 {
		t.Fatalf("expected one decode error, got %d", errs)
	}
}

func TestHTTPSourcePaginatesLazily(t *testing.T) {
	var pageTwoHits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /profiles/agent", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-IG-App-ID") != "936" || r.Header.Get("Cookie") != "sessionid=abc; csrftoken=def" {
			http.Error(w, "missing headers", http.StatusForbidden)
			return
		}
		_ = json.NewEncoder(w).Encode(Profile{FullName: "Agent"})
	})
	mux.HandleFunc("GET /profiles/agent/posts", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("cursor") == "p2" {
			pageTwoHits.Add(1)
			_ = json.NewEncoder(w).Encode(postsPage{Posts: []Post{{Shortcode: "C"}}})
			return
		}
		_ = json.NewEncoder(w).Encode(postsPage{Posts: []Post{{Shortcode: "A"}, {Shortcode: "B"}}, NextCursor: "p2"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cookies := filepath.Join(t.TempDir(), "cookies.txt")
	content := "# Netscape HTTP Cookie File\n.instagram.com\tTRUE\t/\tTRUE\t0\tsessionid\tabc\n#HttpOnly_.instagram.com\tTRUE\t/\tTRUE\t0\tcsrftoken\tdef\n"
	if err := os.WriteFile(cookies, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	src, err := NewHTTPSource(config.Feed{
		BaseURL:    srv.URL,
		Headers:    map[string]string{"X-IG-App-ID": "936"},
		CookieFile: cookies,
	}, srv.Client())
	if err != nil {
		t.Fatalf("NewHTTPSource: %v", err)
	}

	profile, posts, err := src.Open(context.Background(), "agent")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if profile.FullName != "Agent" || profile.Handle != "agent" {
		t.Fatalf("unexpected profile %+v", profile)
	}

	var codes []string
	for post, err := range posts {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		codes = append(codes, post.Shortcode)
		if len(codes) == 2 {
			break
		}
	}
	if pageTwoHits.Load() != 0 {
		t.Fatal("second page must not be fetched after early stop")
	}

	codes = codes[:0]
	for post := range posts {
		codes = append(codes, post.Shortcode)
	}
	if !reflect.DeepEqual(codes, []string{"A", "B", "C"}) {
		t.Fatalf("unexpected codes %v", codes)
	}
}

func TestHTTPSourceRejectsPostWithoutShortcode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/profiles/agent/posts" {
			_ = json.NewEncoder(w).Encode(postsPage{Posts: []Post{{Shortcode: "A"}, {Shortcode: "  "}, {Shortcode: "B"}}})
			return
		}
		_ = json.NewEncoder(w).Encode(Profile{FullName: "Agent"})
	}))
	defer srv.Close()

	src, err := NewHTTPSource(config.Feed{BaseURL: srv.URL}, srv.Client())
	if err != nil {
		t.Fatal(err)
	}
	_, posts, err := src.Open(context.Background(), "agent")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	var codes []string
	var errs []error
	for post, err := range posts {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		codes = append(codes, post.Shortcode)
	}
	if !reflect.DeepEqual(codes, []string{"A", "B"}) {
		t.Fatalf("unexpected codes %v", codes)
	}
	if len(errs) != 1 || !errors.Is(errs[0], services.ErrValidation) {
		t.Fatalf("expected one validation error, got %v", errs)
	}
}

func TestHTTPSourceNotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	src, err := NewHTTPSource(config.Feed{BaseURL: srv.URL}, srv.Client())
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := src.Open(context.Background(), "ghost"); err == nil {
		t.Fatal("expected not found error")
	}
}

func TestExtractCaptionEntities(t *testing.T) {
	caption := "تماس با @Broker_1. و @broker_1 و email a@b.com #ویلا #ویلا #sea_view"
	if got := ExtractMentions(caption); !reflect.DeepEqual(got, []string{"Broker_1"}) {
		t.Fatalf("mentions = %v", got)
	}
	if got := ExtractHashtags(caption); !reflect.DeepEqual(got, []string{"ویلا", "sea_view"}) {
		t.Fatalf("hashtags = %v", got)
	}
}

func TestLoadCookieHeaderRawLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookie")
	if err := os.WriteFile(path, []byte("Cookie: sessionid=x; ds_user_id=1\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	got, err := LoadCookieHeader(path)
	if err != nil || got != "sessionid=x; ds_user_id=1" {
		t.Fatalf("LoadCookieHeader = %q, %v", got, err)
	}
}
