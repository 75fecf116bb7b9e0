package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/briefpress/briefpress/internal/domain"
	"github.com/briefpress/briefpress/internal/taskstore"
)

// RunResponse is the API response for a journaled run
type RunResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Task      string `json:"task"`
	Round     int    `json:"round"`
	Status    string `json:"status"`
	RepoURL   string `json:"repo_url,omitempty"`
	CommitSHA string `json:"commit_sha,omitempty"`
	PagesURL  string `json:"pages_url,omitempty"`
	Error     string `json:"error,omitempty"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// StatusResponse is the API response for overall status
type StatusResponse struct {
	Total      int `json:"total"`
	Received   int `json:"received"`
	InProgress int `json:"in_progress"`
	Complete   int `json:"complete"`
	Failed     int `json:"failed"`
}

func runToResponse(r *domain.Run) RunResponse {
	return RunResponse{
		ID:        r.ID,
		Email:     r.Email,
		Task:      r.Task,
		Round:     r.Round,
		Status:    string(r.Status),
		RepoURL:   r.RepoURL,
		CommitSHA: r.CommitSHA,
		PagesURL:  r.PagesURL,
		Error:     r.Error,
		CreatedAt: r.CreatedAt.Format(time.RFC3339),
		UpdatedAt: r.UpdatedAt.Format(time.RFC3339),
	}
}

func (s *Server) rootHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		writeJSON(w, map[string]string{"message": "briefpress is running"})
	}
}

func (s *Server) taskHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		var req domain.TaskRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		// Secret check comes first: a rejected request must trigger zero
		// downstream work.
		if req.Secret != s.secret {
			writeError(w, http.StatusForbidden, "invalid secret")
			return
		}

		if err := req.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		log.Printf("received task %s round %d from %s (%d checks, %d attachments)",
			req.Task, req.Round, req.Email, len(req.Checks), len(req.Attachments))

		id := s.dispatcher.Dispatch(&req)
		log.Printf("task %s round %d dispatched as run %s", req.Task, req.Round, id)

		// Acknowledge immediately; the background outcome is observable only
		// through the journal, the event streams and the callback.
		writeJSON(w, map[string]string{"status": "received"})
	}
}

func (s *Server) listRunsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		opts := taskstore.ListOptions{
			Task:   r.URL.Query().Get("task"),
			Status: domain.RunStatus(r.URL.Query().Get("status")),
			Limit:  100,
		}

		runs, err := s.store.ListRuns(opts)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		resp := make([]RunResponse, len(runs))
		for i, run := range runs {
			resp[i] = runToResponse(run)
		}
		writeJSON(w, resp)
	}
}

func (s *Server) getRunHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		id := strings.TrimPrefix(r.URL.Path, "/api/runs/")
		if id == "" {
			writeError(w, http.StatusBadRequest, "run id required")
			return
		}

		run, err := s.store.GetRun(id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if run == nil {
			writeError(w, http.StatusNotFound, "run not found")
			return
		}
		writeJSON(w, runToResponse(run))
	}
}

func (s *Server) statusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		counts, err := s.store.CountByStatus()
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		var status StatusResponse
		for st, n := range counts {
			status.Total += n
			switch st {
			case domain.RunReceived:
				status.Received += n
			case domain.RunGenerating, domain.RunPublishing, domain.RunNotifying:
				status.InProgress += n
			case domain.RunComplete:
				status.Complete += n
			case domain.RunFailed:
				status.Failed += n
			}
		}
		writeJSON(w, status)
	}
}
