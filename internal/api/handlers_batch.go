package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/MohanBalaji3/TestCaseStudio/internal/pipeline"
	"github.com/go-chi/chi/v5"
)

const maxBatchIssues = 50

type batchRequest struct {
	IssueKeys []string `json:"issue_keys"`
}

func (s *Server) handleSubmitBatch(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	keys := make([]string, 0, len(req.IssueKeys))
	for _, k := range req.IssueKeys {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		jsonError(w, "issue_keys is required", http.StatusBadRequest)
		return
	}
	if len(keys) > maxBatchIssues {
		jsonError(w, fmt.Sprintf("too many issues in one batch (max %d)", maxBatchIssues), http.StatusBadRequest)
		return
	}

	creds := CredentialsFrom(r.Context())
	if !creds.Valid() {
		jsonError(w, "jira credentials required (X-Jira-Url, X-Jira-Email, X-Jira-Token or server defaults)", http.StatusUnauthorized)
		return
	}

	job := pipeline.NewJob(keys, creds)
	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"job_id":   job.ID,
		"status":   job.Status,
		"issues":   len(keys),
		"poll_url": fmt.Sprintf("/api/batch/%s/status", job.ID),
	})
}

func (s *Server) handleBatchStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(job.Snapshot())
}
