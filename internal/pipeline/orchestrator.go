package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/MohanBalaji3/TestCaseStudio/internal/story"
	"github.com/MohanBalaji3/TestCaseStudio/internal/testcase"
)

// Orchestrator manages the batch generation pipeline.
type Orchestrator struct {
	jobs      *JobStore
	queue     chan *Job
	newClient ClientFactory
	log       *slog.Logger
	stats     *testcase.Stats
	opts      story.Options

	workerCount  int
	maxQueueSize int
	maxRetries   int

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Config holds the pipeline's tunables.
type Config struct {
	WorkerCount  int
	MaxQueueSize int
	JobTTL       time.Duration

	// MaxRetries bounds fetch attempts per issue on retryable Jira
	// errors; zero means the default.
	MaxRetries int
}

// NewOrchestrator creates the pipeline; Start launches its workers.
func NewOrchestrator(cfg Config, newClient ClientFactory, stats *testcase.Stats, opts story.Options, log *slog.Logger) *Orchestrator {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	return &Orchestrator{
		jobs:         NewJobStore(cfg.JobTTL),
		queue:        make(chan *Job, cfg.MaxQueueSize),
		newClient:    newClient,
		log:          log,
		stats:        stats,
		opts:         opts,
		workerCount:  cfg.WorkerCount,
		maxQueueSize: cfg.MaxQueueSize,
		maxRetries:   cfg.MaxRetries,
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for i := 0; i < o.workerCount; i++ {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			w := NewWorker(o.newClient, o.log, o.stats, o.opts, o.maxRetries)
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					w.Process(workerCtx, job)
				}
			}
		}()
	}

	// Start job store cleanup.
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

// Stop gracefully shuts down the pipeline.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	close(o.queue)
	o.wg.Wait()
}

// Submit queues a new job for processing.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return nil
	default:
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("job queue is full (%d)", o.maxQueueSize)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}
