package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"reelscribe/internal/logging"
	"reelscribe/internal/services"
	"reelscribe/internal/store"
)

// Reader is the store surface the API reads from.
type Reader interface {
	Driver() string
	Ping(ctx context.Context) error
	ListAgents(ctx context.Context) ([]store.Agent, error)
	GetAgent(ctx context.Context, id string) (store.Agent, bool, error)
	ListPosts(ctx context.Context, agentID string) ([]store.Post, error)
	GetPost(ctx context.Context, id string) (store.Post, error)
	Stats(ctx context.Context) (store.Stats, error)
}

// Options configure a Server.
type Options struct {
	Bind       string
	Token      string
	LibraryDir string
	Logger     *slog.Logger
}

// Server is the read-only HTTP API.
type Server struct {
	reader  Reader
	opts    Options
	logger  *slog.Logger
	handler http.Handler
}

// New builds a Server. The handler is usable without calling Serve.
func New(reader Reader, opts Options) (*Server, error) {
	if reader == nil {
		return nil, errors.New("api: store reader is required")
	}
	s := &Server{
		reader: reader,
		opts:   opts,
		logger: logging.NewComponentLogger(opts.Logger, "api"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("GET /api/agents", s.handleAgents)
	mux.HandleFunc("GET /api/agents/{id}", s.handleAgent)
	mux.HandleFunc("GET /api/agents/{id}/posts", s.handleAgentPosts)
	mux.HandleFunc("GET /api/posts/{id}", s.handlePost)
	if dir := strings.TrimSpace(opts.LibraryDir); dir != "" {
		files := http.FileServer(http.Dir(dir))
		mux.Handle("GET /agents/", files)
	}

	s.handler = requestIDMiddleware(authMiddleware(opts.Token, mux))
	return s, nil
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.handler }

// Serve listens on the configured address until ctx ends.
func (s *Server) Serve(ctx context.Context) error {
	bind := strings.TrimSpace(s.opts.Bind)
	if bind == "" {
		return services.Wrap(services.ErrConfiguration, "api", "serve", "api.bind is empty", nil)
	}
	listener, err := net.Listen("tcp", bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	return s.serve(ctx, listener)
}

func (s *Server) serve(ctx context.Context, listener net.Listener) error {
	server := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(listener)
	}()
	s.logger.Info("api server listening",
		logging.String("address", listener.Addr().String()),
		logging.Bool("auth", s.opts.Token != ""),
		logging.String("library_dir", filepath.Clean(s.opts.LibraryDir)),
	)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("api serve: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("api shutdown: %w", err)
		}
		return nil
	}
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get("X-Request-ID"))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(services.WithRequestID(r.Context(), id)))
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	if err != nil {
		logging.WithContext(r.Context(), s.logger).Error("api request failed",
			logging.String("path", r.URL.Path),
			logging.Int("status", status),
			logging.Error(err),
		)
	}
	s.writeJSON(w, status, map[string]string{"error": message})
}
