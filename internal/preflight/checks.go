package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"reelscribe/internal/config"
	"reelscribe/internal/services/llm"
)

// CheckLLM verifies that the LLM API is reachable and the key is valid.
// It uses a 30-second timeout and a single attempt (no retries).
func CheckLLM(ctx context.Context, name string, cfg config.LLMConfig) Result {
	if cfg.APIKey == "" {
		return Result{Name: name, Detail: "API key missing"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	client := llm.NewClient(llm.Config{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
		Referer: cfg.Referer,
		Title:   cfg.Title,
	}, llm.WithRetryMaxAttempts(1))

	if err := client.HealthCheck(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeNetError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "API reachable"}
}

// CheckStore pings the database.
func CheckStore(ctx context.Context, driver string, pinger Pinger) Result {
	name := "Store (" + driver + ")"
	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pinger.Ping(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeNetError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "reachable"}
}

// CheckFeed verifies the configured feed source is usable.
func CheckFeed(ctx context.Context, cfg config.Feed) Result {
	const name = "Feed"
	switch cfg.Source {
	case config.FeedSourceExport:
		info, err := os.Stat(cfg.ExportDir)
		if err != nil {
			return Result{Name: name, Detail: fmt.Sprintf("export dir %s (error: %v)", cfg.ExportDir, err)}
		}
		if !info.IsDir() {
			return Result{Name: name, Detail: fmt.Sprintf("export dir %s (error: is not a directory)", cfg.ExportDir)}
		}
		if err := unix.Access(cfg.ExportDir, unix.R_OK|unix.X_OK); err != nil {
			return Result{Name: name, Detail: fmt.Sprintf("export dir %s (error: not readable: %v)", cfg.ExportDir, err)}
		}
		return Result{Name: name, Passed: true, Detail: "export " + cfg.ExportDir}
	case config.FeedSourceHTTP:
		return CheckFeedHTTP(ctx, cfg.BaseURL, cfg.Headers)
	default:
		return Result{Name: name, Detail: fmt.Sprintf("unknown source %q", cfg.Source)}
	}
}

// CheckFeedHTTP verifies the feed endpoint answers and accepts the configured
// headers.
func CheckFeedHTTP(ctx context.Context, baseURL string, headers map[string]string) Result {
	const name = "Feed"

	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return Result{Name: name, Detail: "missing base url"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	client := &http.Client{Timeout: 5 * time.Second}
	req, err := http.NewRequestWithContext(checkCtx, http.MethodGet, base+"/", nil)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("request failed (%v)", err)}
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("unreachable (%s)", summarizeNetError(err))}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return Result{Name: name, Detail: "auth failed (check feed.headers and feed.cookie_file)"}
	case resp.StatusCode >= 500:
		return Result{Name: name, Detail: fmt.Sprintf("server error (%d)", resp.StatusCode)}
	default:
		return Result{Name: name, Passed: true, Detail: "reachable " + base}
	}
}

// CheckTranscription verifies the provider has what it needs to run.
func CheckTranscription(cfg config.Transcription) Result {
	const name = "Transcription"
	switch cfg.Provider {
	case config.TranscriptionElevenLabs:
		if strings.TrimSpace(cfg.ElevenLabsAPIKey) == "" {
			return Result{Name: name, Detail: "elevenlabs api key missing"}
		}
		return Result{Name: name, Passed: true, Detail: "elevenlabs " + cfg.ElevenLabsModel}
	case config.TranscriptionWhisperX:
		return Result{Name: name, Passed: true, Detail: "whisperx " + cfg.WhisperXModel}
	case config.TranscriptionNone:
		return Result{Name: name, Detail: "disabled; every post will error until a provider is set"}
	default:
		return Result{Name: name, Detail: fmt.Sprintf("unknown provider %q", cfg.Provider)}
	}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// summarizeNetError produces a human-readable summary for timeouts.
func summarizeNetError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "timed out (service unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timed out (service unreachable)"
	}
	return err.Error()
}
