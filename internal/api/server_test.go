package api_test

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"reelscribe/internal/api"
	"reelscribe/internal/logging"
	"reelscribe/internal/relocate"
	"reelscribe/internal/store"
	"reelscribe/internal/testsupport"
)

type fixture struct {
	server  *api.Server
	agent   store.Agent
	postID  string
	library string
}

func newFixture(t *testing.T, token string) fixture {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	agent := testsupport.MustCreateAgent(t, st, "agent.one")
	res := st.SavePost(context.Background(), agent.ID, "ABC", store.PostFields{Title: "عنوان", Content: "متن", HasThumbnail: true})
	if res.Outcome != store.Saved {
		t.Fatalf("seed post: %v", res.Err)
	}
	testsupport.WriteJPEG(t, filepath.Join(relocate.PostsDir(cfg.Paths.LibraryDir, agent.ID), "post_1_thumbnail.jpg"), 128)

	srv, err := api.New(st, api.Options{Token: token, LibraryDir: cfg.Paths.LibraryDir, Logger: logging.NewNop()})
	if err != nil {
		t.Fatalf("api.New: %v", err)
	}
	return fixture{server: srv, agent: agent, postID: res.PostID, library: cfg.Paths.LibraryDir}
}

func get(t *testing.T, h http.Handler, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
	return out
}

func TestReadEndpoints(t *testing.T) {
	f := newFixture(t, "")
	h := f.server.Handler()

	rec := get(t, h, "/api/agents", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("agents status %d", rec.Code)
	}
	agents := decode[api.AgentListResponse](t, rec)
	if len(agents.Agents) != 1 || agents.Agents[0].ID != f.agent.ID {
		t.Fatalf("unexpected agents %+v", agents)
	}

	agent := decode[api.AgentResponse](t, get(t, h, "/api/agents/"+f.agent.ID, ""))
	if agent.Posts != 1 {
		t.Fatalf("expected 1 post, got %d", agent.Posts)
	}

	posts := decode[api.PostListResponse](t, get(t, h, "/api/agents/"+f.agent.ID+"/posts", ""))
	if len(posts.Posts) != 1 || posts.Posts[0].Shortcode != "ABC" {
		t.Fatalf("unexpected posts %+v", posts)
	}

	post := decode[api.PostResponse](t, get(t, h, "/api/posts/"+f.postID, ""))
	if post.Post.Title != "عنوان" || post.Post.Thumbnail != store.ThumbnailRef(f.agent.ID, 1) {
		t.Fatalf("unexpected post %+v", post.Post)
	}

	stats := decode[store.Stats](t, get(t, h, "/api/stats", ""))
	if stats.Agents != 1 || stats.Posts != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}

	health := decode[api.HealthResponse](t, get(t, h, "/api/health", ""))
	if health.Status != "ok" || health.Driver != "sqlite" {
		t.Fatalf("unexpected health %+v", health)
	}
}

func TestNotFound(t *testing.T) {
	h := newFixture(t, "").server.Handler()
	for _, path := range []string{"/api/agents/missing", "/api/agents/missing/posts", "/api/posts/missing"} {
		if rec := get(t, h, path, ""); rec.Code != http.StatusNotFound {
			t.Fatalf("%s: status %d", path, rec.Code)
		}
	}
}

func TestStaticMediaUsesStoredReference(t *testing.T) {
	f := newFixture(t, "")
	rec := get(t, f.server.Handler(), store.ThumbnailRef(f.agent.ID, 1), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("thumbnail status %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/jpeg" {
		t.Fatalf("content type %q", ct)
	}
}

func TestBearerToken(t *testing.T) {
	h := newFixture(t, "s3cret").server.Handler()
	if rec := get(t, h, "/api/stats", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing token: status %d", rec.Code)
	}
	if rec := get(t, h, "/api/stats", "wrong"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong token: status %d", rec.Code)
	}
	rec := get(t, h, "/api/stats", "s3cret")
	if rec.Code != http.StatusOK {
		t.Fatalf("valid token: status %d", rec.Code)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatalf("expected request id header")
	}
}

func TestMethodNotAllowed(t *testing.T) {
	h := newFixture(t, "").server.Handler()
	req := httptest.NewRequest(http.MethodPost, "/api/agents", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status %d", rec.Code)
	}
}

func TestServeStopsWithContext(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	probe, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := probe.Addr().String()
	_ = probe.Close()

	srv, err := api.New(st, api.Options{Bind: addr, Logger: logging.NewNop()})
	if err != nil {
		t.Fatalf("api.New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()

	deadline := time.Now().Add(5 * time.Second)
	for {
		resp, err := http.Get("http://" + addr + "/api/health")
		if err == nil {
			_ = resp.Body.Close()
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("server never came up: %v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Serve returned %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatalf("Serve did not stop")
	}
}
