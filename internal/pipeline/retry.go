package pipeline

import (
	"errors"
	"math/rand"
	"time"

	"github.com/MohanBalaji3/TestCaseStudio/internal/jira"
)

const (
	defaultMaxRetries = 3

	backoffBase = time.Second
	backoffCap  = 30 * time.Second
)

// IsRetryable checks if an error is worth retrying.
func IsRetryable(err error) bool {
	var retryErr *jira.RetryableError
	return errors.As(err, &retryErr)
}

// Backoff returns the wait before retry attempt n (0-indexed): exponential
// growth from backoffBase capped at backoffCap, plus up to 50% jitter.
func Backoff(attempt int) time.Duration {
	d := backoffBase << attempt
	if d > backoffCap || d < backoffBase {
		d = backoffCap
	}
	return d + time.Duration(rand.Int63n(int64(d/2)))
}
