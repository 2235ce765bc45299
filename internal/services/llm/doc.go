// Package llm provides an OpenAI-compatible chat completion client (Groq,
// OpenRouter) used by the content enricher.
//
// # Entry Points
//
// NewClient: construct client from Config.
// Client.Complete: send a Prompt, receive plain text.
// Client.CompleteJSON: send system/user prompts, receive a JSON payload.
// Client.HealthCheck: verify API key and model availability.
//
// # Retry Behaviour
//
// The client retries on HTTP 408/429/5xx errors, empty completions, and network
// timeouts with exponential backoff (base 1s, max 10s, up to 5 attempts by
// default). A Retry-After header overrides the computed delay. Context
// cancellation aborts retries immediately.
//
// Callers are expected to treat every error as soft and fall back to their own
// defaults.
package llm
