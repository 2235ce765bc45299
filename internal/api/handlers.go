package api

import (
	"errors"
	"net/http"

	"reelscribe/internal/store"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok", Store: "ok", Driver: s.reader.Driver()}
	status := http.StatusOK
	if err := s.reader.Ping(r.Context()); err != nil {
		resp.Status = "degraded"
		resp.Store = err.Error()
		status = http.StatusServiceUnavailable
	}
	s.writeJSON(w, status, resp)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.reader.Stats(r.Context())
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, "stats unavailable", err)
		return
	}
	s.writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleAgents(w http.ResponseWriter, r *http.Request) {
	agents, err := s.reader.ListAgents(r.Context())
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, "agents unavailable", err)
		return
	}
	if agents == nil {
		agents = []store.Agent{}
	}
	s.writeJSON(w, http.StatusOK, AgentListResponse{Agents: agents})
}

func (s *Server) handleAgent(w http.ResponseWriter, r *http.Request) {
	agent, ok := s.lookupAgent(w, r)
	if !ok {
		return
	}
	posts, err := s.reader.ListPosts(r.Context(), agent.ID)
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, "posts unavailable", err)
		return
	}
	s.writeJSON(w, http.StatusOK, AgentResponse{Agent: agent, Posts: len(posts)})
}

func (s *Server) handleAgentPosts(w http.ResponseWriter, r *http.Request) {
	agent, ok := s.lookupAgent(w, r)
	if !ok {
		return
	}
	posts, err := s.reader.ListPosts(r.Context(), agent.ID)
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, "posts unavailable", err)
		return
	}
	if posts == nil {
		posts = []store.Post{}
	}
	s.writeJSON(w, http.StatusOK, PostListResponse{AgentID: agent.ID, Posts: posts})
}

func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	post, err := s.reader.GetPost(r.Context(), r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		s.writeError(w, r, http.StatusNotFound, "post not found", nil)
		return
	}
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, "post unavailable", err)
		return
	}
	s.writeJSON(w, http.StatusOK, PostResponse{Post: post})
}

func (s *Server) lookupAgent(w http.ResponseWriter, r *http.Request) (store.Agent, bool) {
	agent, found, err := s.reader.GetAgent(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, "agent unavailable", err)
		return store.Agent{}, false
	}
	if !found {
		s.writeError(w, r, http.StatusNotFound, "agent not found", nil)
		return store.Agent{}, false
	}
	return agent, true
}
