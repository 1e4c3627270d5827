package server

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/colonyops/annosync/internal/client/transport"
	"github.com/colonyops/annosync/internal/protocol"
	"github.com/colonyops/annosync/internal/server/github"
)

// gatewayError is the per-item status for failures that are neither a
// caller mistake nor an upstream GitHub verdict: network errors, bad
// upstream bodies.
const gatewayError = http.StatusBadGateway

type errorBody struct {
	Error string `json:"error"`
}

// handleSync processes one batch. Request-level problems (method,
// secret, malformed body, missing target) reject the whole batch;
// everything past that point is per-item, and one item's failure never
// stops the rest.
func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "method not allowed"})
		return
	}

	if !s.authorized(r) {
		s.writeJSON(w, http.StatusUnauthorized, errorBody{Error: "unauthorized"})
		return
	}

	if s.cfg.Token == "" {
		s.log.Error().Msg("sync request received but no github token is configured")
		s.writeJSON(w, http.StatusInternalServerError, errorBody{Error: "server has no GitHub token configured"})
		return
	}

	var req protocol.SyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorBody{Error: "malformed request body"})
		return
	}
	if req.Owner == "" || req.Repo == "" {
		s.writeJSON(w, http.StatusBadRequest, errorBody{Error: "owner and repo are required"})
		return
	}
	if len(req.Issues) == 0 {
		s.writeJSON(w, http.StatusBadRequest, errorBody{Error: "no issues in request"})
		return
	}

	// Resolve the board once per batch. A failed or empty resolution
	// leaves project nil and the batch proceeds without attachment.
	project := s.resolveProject(r, req)

	resp := protocol.SyncResponse{Results: make([]protocol.IssueResult, 0, len(req.Issues))}
	for _, issue := range req.Issues {
		result := s.createOne(r, req, issue, project)
		if result.Succeeded() {
			resp.Created++
		} else {
			resp.Failed++
		}
		resp.Results = append(resp.Results, result)
	}

	s.log.Info().
		Str("owner", req.Owner).
		Str("repo", req.Repo).
		Int("created", resp.Created).
		Int("failed", resp.Failed).
		Msg("batch processed")

	s.writeJSON(w, http.StatusOK, resp)
}

// createOne creates a single issue and, when a board is resolved,
// attaches it. Attachment failure is reported alongside the result but
// never downgrades a created issue.
func (s *Server) createOne(r *http.Request, req protocol.SyncRequest, issue protocol.IssueRequest, project *github.Project) protocol.IssueResult {
	result := protocol.IssueResult{NodeID: issue.NodeID, Signature: issue.Signature}

	if issue.Title == "" || issue.Body == "" {
		result.Status = http.StatusBadRequest
		result.Error = "title and body are required"
		return result
	}

	created, err := s.github.CreateIssue(r.Context(), req.Owner, req.Repo, github.IssueParams{
		Title:  issue.Title,
		Body:   issue.Body,
		Labels: issue.Labels,
	})
	if err != nil {
		var apiErr *github.APIError
		if errors.As(err, &apiErr) {
			result.Status = apiErr.StatusCode
			result.Error = apiErr.Message
		} else {
			result.Status = gatewayError
			result.Error = err.Error()
		}
		s.log.Warn().Err(err).Str("node", issue.NodeID).Msg("issue creation failed")
		return result
	}

	result.Status = http.StatusCreated
	result.URL = created.HTMLURL

	if project != nil {
		if err := s.github.AttachIssue(r.Context(), project.ID, created.NodeID); err != nil {
			s.log.Warn().Err(err).Int("issue", created.Number).Msg("project attachment failed")
			result.Project = &protocol.ProjectStatus{Status: gatewayError, Error: err.Error()}
		} else {
			result.Project = &protocol.ProjectStatus{Status: http.StatusOK}
		}
	}

	return result
}

func (s *Server) resolveProject(r *http.Request, req protocol.SyncRequest) *github.Project {
	owner := req.ProjectOwner
	if owner == "" {
		owner = req.Owner
	}
	ref := github.ProjectRef{Owner: owner, Name: req.ProjectName, Number: req.ProjectNumber}
	if !ref.Configured() {
		return nil
	}

	project, err := s.github.ResolveProject(r.Context(), ref)
	if err != nil || project == nil {
		s.log.Warn().Err(err).Str("owner", owner).Str("name", req.ProjectName).Int("number", req.ProjectNumber).
			Msg("project not resolved, syncing without attachment")
		return nil
	}
	return project
}

func (s *Server) authorized(r *http.Request) bool {
	if s.cfg.SharedSecret == "" {
		return true
	}
	got := r.Header.Get(transport.SecretHeader)
	return subtle.ConstantTimeCompare([]byte(got), []byte(s.cfg.SharedSecret)) == 1
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error().Err(err).Msg("write response")
	}
}
