// Package api serves the ingested library over read-only HTTP.
//
// JSON endpoints:
//
//	GET /api/health
//	GET /api/stats
//	GET /api/agents
//	GET /api/agents/{id}
//	GET /api/agents/{id}/posts
//	GET /api/posts/{id}
//
// Relocated media are served as static files under /agents/ from the library
// directory, matching the references stored on posts and agents. When a token
// is configured every request must carry "Authorization: Bearer <token>".
package api
