package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/MohanBalaji3/TestCaseStudio/internal/jira"
	"github.com/MohanBalaji3/TestCaseStudio/internal/story"
	"github.com/MohanBalaji3/TestCaseStudio/internal/testcase"
)

// IssueFetcher fetches issues on behalf of one credential set. *jira.Client
// satisfies it; tests substitute a fake.
type IssueFetcher interface {
	GetIssue(ctx context.Context, key string) (*jira.Issue, error)
}

// ClientFactory builds a fetcher for a job's session credentials.
type ClientFactory func(creds jira.Credentials) IssueFetcher

// Worker processes a single batch job.
type Worker struct {
	newClient  ClientFactory
	log        *slog.Logger
	stats      *testcase.Stats
	opts       story.Options
	maxRetries int
}

func NewWorker(newClient ClientFactory, log *slog.Logger, stats *testcase.Stats, opts story.Options, maxRetries int) *Worker {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	return &Worker{
		newClient:  newClient,
		log:        log,
		stats:      stats,
		opts:       opts,
		maxRetries: maxRetries,
	}
}

// Process fetches every issue in the job, resolves its story, and
// generates test cases. Transient Jira failures are retried with backoff;
// a single issue failing does not abort the batch.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID)

	creds := job.Credentials()
	if !creds.Valid() {
		job.AddError("missing jira credentials")
		job.SetStatus(StatusFailed, "fetching")
		return
	}
	client := w.newClient(creds)

	job.SetStatus(StatusFetching, "fetching")
	failed := 0
	for _, key := range job.IssueKeys {
		select {
		case <-ctx.Done():
			job.AddError(ctx.Err().Error())
			job.SetStatus(StatusFailed, "fetching")
			return
		default:
		}

		start := time.Now()
		issue, err := w.fetchWithRetry(ctx, client, key, log)
		if err != nil {
			log.Error("fetch failed", "issue", key, "error", err)
			job.AddError(fmt.Sprintf("%s: %s", key, err))
			job.AddResult(IssueResult{Key: key, Error: err.Error()})
			failed++
			continue
		}

		job.SetStatus(StatusGenerating, "generating "+key)
		detail := story.Resolve(story.Issue{
			Key:                 issue.Key,
			Summary:             issue.Summary,
			Fields:              issue.Fields,
			RenderedDescription: issue.RenderedDescription,
			Names:               issue.Names,
		}, w.opts)

		cases := testcase.Generate(detail)
		valid := cases[:0]
		for i := range cases {
			if testcase.ValidateCase(&cases[i]) {
				valid = append(valid, cases[i])
			}
		}

		if w.stats != nil {
			w.stats.Record(time.Since(start).Milliseconds())
		}
		job.AddResult(IssueResult{Key: key, Story: detail, Cases: valid})
		log.Info("issue processed", "issue", key, "cases", len(valid))
	}

	switch {
	case failed == 0:
		job.SetStatus(StatusCompleted, "done")
	case failed == len(job.IssueKeys):
		job.SetStatus(StatusFailed, "done")
	default:
		job.SetStatus(StatusPartial, "done")
	}
}

func (w *Worker) fetchWithRetry(ctx context.Context, client IssueFetcher, key string, log *slog.Logger) (*jira.Issue, error) {
	var issue *jira.Issue
	var lastErr error
	for attempt := 0; attempt < w.maxRetries; attempt++ {
		issue, lastErr = client.GetIssue(ctx, key)
		if lastErr == nil || !IsRetryable(lastErr) {
			break
		}
		log.Warn("retryable jira error", "issue", key, "attempt", attempt, "error", lastErr)
		select {
		case <-time.After(Backoff(attempt)):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return issue, lastErr
}
