package pipeline

import (
	"sync"
	"time"

	"github.com/MohanBalaji3/TestCaseStudio/internal/jira"
	"github.com/MohanBalaji3/TestCaseStudio/internal/story"
	"github.com/MohanBalaji3/TestCaseStudio/internal/testcase"
)

// JobStatus represents the state of a batch generation job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusFetching   JobStatus = "fetching"
	StatusGenerating JobStatus = "generating"
	StatusCompleted  JobStatus = "completed"
	StatusPartial    JobStatus = "partial"
	StatusFailed     JobStatus = "failed"
)

// IssueResult is the outcome for one issue within a batch.
type IssueResult struct {
	Key   string          `json:"key"`
	Story story.Detail    `json:"story"`
	Cases []testcase.Case `json:"cases"`
	Error string          `json:"error,omitempty"`
}

// Job tracks the state of one batch of issues.
type Job struct {
	mu sync.Mutex

	ID        string    `json:"job_id"`
	IssueKeys []string  `json:"issue_keys"`
	Status    JobStatus `json:"status"`
	Phase     string    `json:"phase"`

	Progress Progress `json:"progress"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	creds   jira.Credentials
	results []IssueResult
	errors  []string
}

// Progress tracks batch progress.
type Progress struct {
	TotalIssues     int      `json:"total_issues"`
	IssuesProcessed int      `json:"issues_processed"`
	CasesGenerated  int      `json:"cases_generated"`
	Errors          []string `json:"errors"`
}

// NewJob builds a queued job for the given issue keys, carrying the
// session credentials it will fetch with.
func NewJob(keys []string, creds jira.Credentials) *Job {
	now := time.Now()
	return &Job{
		ID:        NewJobID(),
		IssueKeys: keys,
		Status:    StatusQueued,
		Phase:     "queued",
		Progress:  Progress{TotalIssues: len(keys)},
		CreatedAt: now,
		UpdatedAt: now,
		creds:     creds,
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if now.Sub(job.UpdatedAt) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// AddResult records the outcome for one issue.
func (j *Job) AddResult(res IssueResult) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.results = append(j.results, res)
	j.Progress.IssuesProcessed++
	j.Progress.CasesGenerated += len(res.Cases)
	j.UpdatedAt = time.Now()
}

// Credentials returns the session credentials the job was submitted with.
func (j *Job) Credentials() jira.Credentials {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.creds
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID        string        `json:"job_id"`
	IssueKeys []string      `json:"issue_keys"`
	Status    JobStatus     `json:"status"`
	Phase     string        `json:"phase"`
	Progress  Progress      `json:"progress"`
	Results   []IssueResult `json:"results"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := j.Progress.Errors
	if errs == nil {
		errs = []string{}
	}
	results := make([]IssueResult, len(j.results))
	copy(results, j.results)
	return JobSnapshot{
		ID:        j.ID,
		IssueKeys: j.IssueKeys,
		Status:    j.Status,
		Phase:     j.Phase,
		Progress: Progress{
			TotalIssues:     j.Progress.TotalIssues,
			IssuesProcessed: j.Progress.IssuesProcessed,
			CasesGenerated:  j.Progress.CasesGenerated,
			Errors:          errs,
		},
		Results: results,
	}
}
