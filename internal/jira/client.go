// Package jira is a thin client for the Jira Cloud REST API. Clients are
// cheap and are constructed per session: credentials arrive with each
// request and are never stored server-side.
package jira

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Credentials identify one Jira site and user.
type Credentials struct {
	BaseURL  string
	Email    string
	APIToken string
}

// Valid reports whether the credentials are complete enough to call Jira.
func (c Credentials) Valid() bool {
	return c.BaseURL != "" && c.Email != "" && c.APIToken != ""
}

// Client talks to one Jira site on behalf of one user.
type Client struct {
	creds      Credentials
	httpClient *http.Client
}

func NewClient(creds Credentials) *Client {
	creds.BaseURL = strings.TrimSuffix(creds.BaseURL, "/")
	return &Client{
		creds: creds,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Issue is the decoded issue payload, keeping the raw field map so callers
// can resolve custom fields by id.
type Issue struct {
	Key                 string
	Summary             string
	Fields              map[string]json.RawMessage
	RenderedDescription string
	Names               map[string]string
}

type issueEnvelope struct {
	Key            string                     `json:"key"`
	Fields         map[string]json.RawMessage `json:"fields"`
	RenderedFields struct {
		Description string `json:"description"`
	} `json:"renderedFields"`
	Names map[string]string `json:"names"`
}

// GetIssue fetches an issue with its rendered fields and field labels.
func (c *Client) GetIssue(ctx context.Context, key string) (*Issue, error) {
	u := fmt.Sprintf("%s/rest/api/3/issue/%s?expand=renderedFields,names", c.creds.BaseURL, url.PathEscape(key))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.setAuth(req)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch issue %s: %w", key, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if err := statusErr(resp.StatusCode, body, "get issue "+key); err != nil {
		return nil, err
	}

	var env issueEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode issue %s: %w", key, err)
	}

	issue := &Issue{
		Key:                 env.Key,
		Fields:              env.Fields,
		RenderedDescription: env.RenderedFields.Description,
		Names:               env.Names,
	}
	if raw, ok := env.Fields["summary"]; ok {
		// Summary is a plain string field; ignore anything else.
		_ = json.Unmarshal(raw, &issue.Summary)
	}
	return issue, nil
}

// SubtaskRequest describes a subtask to create under a parent issue.
type SubtaskRequest struct {
	ProjectKey string
	ParentKey  string
	Summary    string
	// Body is the plain-text description; it is wrapped into a one-paragraph
	// ADF document, the only body shape the v3 API accepts.
	Body string
}

// CreatedIssue is Jira's response to an issue creation.
type CreatedIssue struct {
	ID  string `json:"id"`
	Key string `json:"key"`
}

// CreateSubtask creates a subtask and returns its key.
func (c *Client) CreateSubtask(ctx context.Context, sub SubtaskRequest) (*CreatedIssue, error) {
	payload := map[string]any{
		"fields": map[string]any{
			"project":   map[string]string{"key": sub.ProjectKey},
			"parent":    map[string]string{"key": sub.ParentKey},
			"issuetype": map[string]string{"name": "Sub-task"},
			"summary":   sub.Summary,
			"description": map[string]any{
				"type":    "doc",
				"version": 1,
				"content": []any{
					map[string]any{
						"type": "paragraph",
						"content": []any{
							map[string]any{"type": "text", "text": sub.Body},
						},
					},
				},
			},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal subtask: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.creds.BaseURL+"/rest/api/3/issue", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.setAuth(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("create subtask: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if err := statusErr(resp.StatusCode, respBody, "create subtask under "+sub.ParentKey); err != nil {
		return nil, err
	}

	var created CreatedIssue
	if err := json.Unmarshal(respBody, &created); err != nil {
		return nil, fmt.Errorf("decode created issue: %w", err)
	}
	return &created, nil
}

// AttachFile uploads a file as an attachment on the given issue.
func (c *Client) AttachFile(ctx context.Context, key, filename string, data []byte) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return fmt.Errorf("write form file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("close multipart: %w", err)
	}

	u := fmt.Sprintf("%s/rest/api/3/issue/%s/attachments", c.creds.BaseURL, url.PathEscape(key))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, &buf)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	c.setAuth(req)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("X-Atlassian-Token", "no-check")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("attach file: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	return statusErr(resp.StatusCode, respBody, "attach "+filename+" to "+key)
}

func (c *Client) setAuth(req *http.Request) {
	auth := base64.StdEncoding.EncodeToString([]byte(c.creds.Email + ":" + c.creds.APIToken))
	req.Header.Set("Authorization", "Basic "+auth)
}

// statusErr maps a non-2xx status to an error; 429 and 5xx become
// retryable so the batch pipeline can back off and try again.
func statusErr(status int, body []byte, op string) error {
	if status >= 200 && status < 300 {
		return nil
	}
	if status == http.StatusTooManyRequests || status >= 500 {
		return &RetryableError{StatusCode: status, Message: string(body)}
	}
	return fmt.Errorf("%s: status %d: %s", op, status, truncate(string(body), 200))
}

// RetryableError indicates a transient Jira failure worth retrying.
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable error (status %d): %s", e.StatusCode, truncate(e.Message, 200))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
