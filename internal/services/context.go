package services

import "context"

type contextKey string

const (
	runIDKey     contextKey = "run_id"
	agentIDKey   contextKey = "agent_id"
	shortcodeKey contextKey = "shortcode"
	stageKey     contextKey = "stage"
	requestIDKey contextKey = "request_id"
)

func withString(ctx context.Context, key contextKey, value string) context.Context {
	if value == "" {
		return ctx
	}
	return context.WithValue(ctx, key, value)
}

func stringFrom(ctx context.Context, key contextKey) (string, bool) {
	if v, ok := ctx.Value(key).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithRunID annotates context with the ingestion run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	return withString(ctx, runIDKey, id)
}

// RunIDFromContext extracts the run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	return stringFrom(ctx, runIDKey)
}

// WithAgentID annotates context with the agent being ingested.
func WithAgentID(ctx context.Context, id string) context.Context {
	return withString(ctx, agentIDKey, id)
}

// AgentIDFromContext extracts the agent identifier if present.
func AgentIDFromContext(ctx context.Context) (string, bool) {
	return stringFrom(ctx, agentIDKey)
}

// WithShortcode annotates context with the post shortcode under evaluation.
func WithShortcode(ctx context.Context, code string) context.Context {
	return withString(ctx, shortcodeKey, code)
}

// ShortcodeFromContext extracts the post shortcode if present.
func ShortcodeFromContext(ctx context.Context) (string, bool) {
	return stringFrom(ctx, shortcodeKey)
}

// WithStage annotates context with the pipeline stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	return withString(ctx, stageKey, stage)
}

// StageFromContext returns the stage name if present.
func StageFromContext(ctx context.Context) (string, bool) {
	return stringFrom(ctx, stageKey)
}

// WithRequestID annotates context with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	return withString(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	return stringFrom(ctx, requestIDKey)
}
