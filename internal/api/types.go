package api

import "reelscribe/internal/store"

// HealthResponse is returned by /api/health.
type HealthResponse struct {
	Status string `json:"status"`
	Store  string `json:"store"`
	Driver string `json:"driver,omitempty"`
}

// AgentListResponse wraps /api/agents.
type AgentListResponse struct {
	Agents []store.Agent `json:"agents"`
}

// AgentResponse wraps /api/agents/{id}.
type AgentResponse struct {
	Agent store.Agent `json:"agent"`
	Posts int         `json:"posts"`
}

// PostListResponse wraps /api/agents/{id}/posts.
type PostListResponse struct {
	AgentID string       `json:"agent_id"`
	Posts   []store.Post `json:"posts"`
}

// PostResponse wraps /api/posts/{id}.
type PostResponse struct {
	Post store.Post `json:"post"`
}
