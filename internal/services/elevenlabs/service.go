package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"

	langpkg "reelscribe/internal/language"
	"reelscribe/internal/services"
)

const (
	defaultBaseURL = "https://api.elevenlabs.io/v1/speech-to-text"
	defaultModel   = "scribe_v1"
	defaultTimeout = 5 * time.Minute
	maxErrorBody   = 2048
)

// ErrEmptyTranscript is returned when the API answered without text.
var ErrEmptyTranscript = errors.New("elevenlabs: empty transcript")

// Config holds API settings.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	TimeoutSeconds int
}

// Service calls the speech-to-text endpoint.
type Service struct {
	cfg        Config
	httpClient *http.Client
	retry      retrypolicy.RetryPolicy[string]
}

// Option customizes the service.
type Option func(*options)

type options struct {
	client     *http.Client
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) { o.client = client }
}

// WithRetries sets how many times transient failures are retried.
func WithRetries(n int, base, max time.Duration) Option {
	return func(o *options) {
		o.maxRetries = n
		o.baseDelay = base
		o.maxDelay = max
	}
}

// NewService creates a client for the configured endpoint.
func NewService(cfg Config, opts ...Option) *Service {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = defaultModel
	}
	timeout := defaultTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	o := options{
		client:     &http.Client{Timeout: timeout},
		maxRetries: 2,
		baseDelay:  2 * time.Second,
		maxDelay:   20 * time.Second,
	}
	for _, opt := range opts {
		opt(&o)
	}
	policy := retrypolicy.NewBuilder[string]().
		WithBackoff(o.baseDelay, o.maxDelay).
		WithMaxRetries(o.maxRetries).
		WithJitterFactor(0.1).
		HandleIf(func(_ string, err error) bool {
			return err != nil && errors.Is(err, services.ErrTransient)
		}).
		ReturnLastFailure().
		Build()
	return &Service{cfg: cfg, httpClient: o.client, retry: policy}
}

// Name identifies the provider in logs.
func (s *Service) Name() string { return "elevenlabs" }

// Transcribe uploads videoPath and returns the recognized text.
func (s *Service) Transcribe(ctx context.Context, videoPath, language string) (string, error) {
	if s.cfg.APIKey == "" {
		return "", services.Wrap(services.ErrConfiguration, "transcribe", "elevenlabs", "api key required", nil)
	}
	if strings.TrimSpace(videoPath) == "" {
		return "", services.Wrap(services.ErrValidation, "transcribe", "elevenlabs", "video path required", nil)
	}
	body, contentType, err := s.buildForm(videoPath, language)
	if err != nil {
		return "", err
	}
	return failsafe.With[string](s.retry).WithContext(ctx).Get(func() (string, error) {
		return s.post(ctx, body, contentType)
	})
}

func (s *Service) buildForm(videoPath, language string) ([]byte, string, error) {
	file, err := os.Open(videoPath)
	if err != nil {
		return nil, "", services.Wrap(services.ErrValidation, "transcribe", "elevenlabs", "open video", err)
	}
	defer file.Close()

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("file", filepath.Base(videoPath))
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, "", fmt.Errorf("elevenlabs: read video: %w", err)
	}
	if err := form.WriteField("model_id", s.cfg.Model); err != nil {
		return nil, "", err
	}
	if code := langpkg.ToISO3(language); code != "" {
		if err := form.WriteField("language_code", code); err != nil {
			return nil, "", err
		}
	}
	if err := form.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), form.FormDataContentType(), nil
}

type transcriptResponse struct {
	Text string `json:"text"`
}

func (s *Service) post(ctx context.Context, body []byte, contentType string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.BaseURL, bytes.NewReader(body))
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "transcribe", "elevenlabs", "build request", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("xi-api-key", s.cfg.APIKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return "", services.Wrap(services.ErrTimeout, "transcribe", "elevenlabs", "request timed out", err)
		}
		return "", services.Wrap(services.ErrTransient, "transcribe", "elevenlabs", "request failed", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "transcribe", "elevenlabs", "read response", err)
	}
	if resp.StatusCode != http.StatusOK {
		detail := fmt.Sprintf("status %d: %s", resp.StatusCode, truncate(payload))
		switch {
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			return "", services.Wrap(services.ErrTransient, "transcribe", "elevenlabs", detail, nil)
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			return "", services.Wrap(services.ErrConfiguration, "transcribe", "elevenlabs", detail, nil)
		default:
			return "", services.Wrap(services.ErrExternalTool, "transcribe", "elevenlabs", detail, nil)
		}
	}

	var decoded transcriptResponse
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "transcribe", "elevenlabs", "decode response", err)
	}
	text := strings.TrimSpace(decoded.Text)
	if text == "" {
		return "", ErrEmptyTranscript
	}
	return text, nil
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}

func truncate(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > maxErrorBody {
		return s[:maxErrorBody]
	}
	return s
}
