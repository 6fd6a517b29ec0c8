package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/MohanBalaji3/TestCaseStudio/internal/jira"
	"github.com/MohanBalaji3/TestCaseStudio/internal/story"
	"github.com/MohanBalaji3/TestCaseStudio/internal/testcase"
	"github.com/go-chi/chi/v5"
)

// fetchStory fetches an issue with the request's credentials and resolves
// it into a story. It writes the error response itself and returns false
// when anything goes wrong.
func (s *Server) fetchStory(w http.ResponseWriter, r *http.Request) (*jira.Client, story.Detail, bool) {
	creds := CredentialsFrom(r.Context())
	if !creds.Valid() {
		jsonError(w, "jira credentials required (X-Jira-Url, X-Jira-Email, X-Jira-Token or server defaults)", http.StatusUnauthorized)
		return nil, story.Detail{}, false
	}

	key := chi.URLParam(r, "key")
	client := jira.NewClient(creds)
	issue, err := client.GetIssue(r.Context(), key)
	if err != nil {
		var re *jira.RetryableError
		if errors.As(err, &re) {
			jsonError(w, err.Error(), http.StatusBadGateway)
		} else {
			jsonError(w, err.Error(), http.StatusBadRequest)
		}
		return nil, story.Detail{}, false
	}

	detail := story.Resolve(story.Issue{
		Key:                 issue.Key,
		Summary:             issue.Summary,
		Fields:              issue.Fields,
		RenderedDescription: issue.RenderedDescription,
		Names:               issue.Names,
	}, story.Options{AcceptanceFieldID: s.cfg.AcceptanceFieldID})
	return client, detail, true
}

func (s *Server) handleGetIssue(w http.ResponseWriter, r *http.Request) {
	_, detail, ok := s.fetchStory(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(detail)
}

func (s *Server) handleGenerateForIssue(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	_, detail, ok := s.fetchStory(w, r)
	if !ok {
		return
	}

	cases := generateValid(detail)
	s.stats.Record(time.Since(start).Milliseconds())

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"story": detail,
		"cases": cases,
		"count": len(cases),
	})
}

type subtaskParams struct {
	ProjectKey string `json:"project_key"`
	Summary    string `json:"summary"`
	AttachCSV  bool   `json:"attach_csv"`
	// Cases, when present, are used as-is (reviewed by the caller) instead
	// of regenerating from the story.
	Cases []testcase.Case `json:"cases"`
}

func (s *Server) handleCreateSubtask(w http.ResponseWriter, r *http.Request) {
	var params subtaskParams
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
			jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
			return
		}
	}

	client, detail, ok := s.fetchStory(w, r)
	if !ok {
		return
	}

	cases := params.Cases
	if len(cases) > 0 {
		kept := cases[:0]
		for i := range cases {
			if testcase.ValidateCase(&cases[i]) {
				kept = append(kept, cases[i])
			}
		}
		cases = kept
	} else {
		cases = generateValid(detail)
	}
	if len(cases) == 0 {
		jsonError(w, "no test cases could be generated for this issue", http.StatusUnprocessableEntity)
		return
	}

	projectKey := params.ProjectKey
	if projectKey == "" {
		// Issue keys are PROJECT-123; the prefix is the project.
		projectKey, _, _ = strings.Cut(detail.Key, "-")
	}
	summary := params.Summary
	if summary == "" {
		summary = "Test cases: " + detail.Title
	}

	created, err := client.CreateSubtask(r.Context(), jira.SubtaskRequest{
		ProjectKey: projectKey,
		ParentKey:  detail.Key,
		Summary:    summary,
		Body:       testcase.SubtaskBody(cases),
	})
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadGateway)
		return
	}

	resp := map[string]any{
		"subtask_key": created.Key,
		"subtask_id":  created.ID,
		"parent_key":  detail.Key,
		"case_count":  len(cases),
	}

	if params.AttachCSV {
		var buf bytes.Buffer
		if err := testcase.WriteCSV(&buf, cases); err == nil {
			name := fmt.Sprintf("%s-testcases.csv", detail.Key)
			if err := client.AttachFile(r.Context(), created.Key, name, buf.Bytes()); err != nil {
				s.log.Warn("attach csv failed", "subtask", created.Key, "error", err)
				resp["attachment_error"] = err.Error()
			} else {
				resp["attachment"] = name
			}
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(resp)
}

// generateValid derives cases from a story and drops any that fail
// validation.
func generateValid(detail story.Detail) []testcase.Case {
	cases := testcase.Generate(detail)
	kept := cases[:0]
	for i := range cases {
		if testcase.ValidateCase(&cases[i]) {
			kept = append(kept, cases[i])
		}
	}
	return kept
}
