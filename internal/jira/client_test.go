package jira

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGetIssue_DecodesEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/api/3/issue/TCS-7" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("expand") != "renderedFields,names" {
			t.Errorf("expected renderedFields,names expansion, got %q", r.URL.RawQuery)
		}
		if r.Header.Get("Authorization") == "" {
			t.Error("missing basic auth header")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"key": "TCS-7",
			"fields": {"summary": "Login story", "customfield_1": "- AC"},
			"renderedFields": {"description": "<p>body</p>"},
			"names": {"customfield_1": "Acceptance Criteria"}
		}`))
	}))
	defer srv.Close()

	c := NewClient(Credentials{BaseURL: srv.URL + "/", Email: "u@example.com", APIToken: "tok"})
	defer c.Close()

	issue, err := c.GetIssue(context.Background(), "TCS-7")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if issue.Key != "TCS-7" || issue.Summary != "Login story" {
		t.Errorf("unexpected issue %+v", issue)
	}
	if issue.RenderedDescription != "<p>body</p>" {
		t.Errorf("rendered description: got %q", issue.RenderedDescription)
	}
	if issue.Names["customfield_1"] != "Acceptance Criteria" {
		t.Errorf("names not decoded: %v", issue.Names)
	}
	var cf string
	if err := json.Unmarshal(issue.Fields["customfield_1"], &cf); err != nil || cf != "- AC" {
		t.Errorf("raw field map not preserved: %v %v", cf, err)
	}
}

func TestGetIssue_RetryableStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(Credentials{BaseURL: srv.URL, Email: "u", APIToken: "t"})
	_, err := c.GetIssue(context.Background(), "TCS-1")
	var retryErr *RetryableError
	if !errors.As(err, &retryErr) {
		t.Fatalf("expected RetryableError, got %v", err)
	}
}

func TestGetIssue_ClientErrorIsFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errorMessages":["Issue does not exist"]}`, http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(Credentials{BaseURL: srv.URL, Email: "u", APIToken: "t"})
	_, err := c.GetIssue(context.Background(), "NOPE-1")
	if err == nil {
		t.Fatal("expected an error")
	}
	var retryErr *RetryableError
	if errors.As(err, &retryErr) {
		t.Fatal("404 must not be retryable")
	}
}

func TestCreateSubtask(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/rest/api/3/issue" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		var payload struct {
			Fields map[string]json.RawMessage `json:"fields"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("bad payload: %v", err)
		}
		for _, f := range []string{"project", "parent", "issuetype", "summary", "description"} {
			if _, ok := payload.Fields[f]; !ok {
				t.Errorf("payload missing %q", f)
			}
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"10001","key":"TCS-8"}`))
	}))
	defer srv.Close()

	c := NewClient(Credentials{BaseURL: srv.URL, Email: "u", APIToken: "t"})
	created, err := c.CreateSubtask(context.Background(), SubtaskRequest{
		ProjectKey: "TCS",
		ParentKey:  "TCS-7",
		Summary:    "Test cases for TCS-7",
		Body:       "1. Verify login",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.Key != "TCS-8" {
		t.Errorf("expected key TCS-8, got %q", created.Key)
	}
}

func TestCredentialsValid(t *testing.T) {
	if (Credentials{}).Valid() {
		t.Error("empty credentials must not be valid")
	}
	if !(Credentials{BaseURL: "https://x.atlassian.net", Email: "u", APIToken: "t"}).Valid() {
		t.Error("complete credentials should be valid")
	}
}
