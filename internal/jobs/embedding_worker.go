package jobs

import (
	"context"
	"fmt"
	"sync"

	"github.com/cloo-solutions/communityos/internal/domain"
	"github.com/cloo-solutions/communityos/internal/telemetry"
	"github.com/panjf2000/ants/v2"
	"github.com/sirupsen/logrus"
)

const (
	// MaxRetries is the maximum number of retries for a failed job
	MaxRetries = 3
	// DefaultPoolSize bounds concurrent embedding calls.
	DefaultPoolSize = 4
)

// EmbeddingJobRepository defines the interface for embedding job persistence
type EmbeddingJobRepository interface {
	// GetPendingJobs retrieves and claims pending embedding jobs
	GetPendingJobs(ctx context.Context) ([]*domain.EmbeddingJob, error)

	// UpdateJobStatus updates the status of an embedding job
	UpdateJobStatus(ctx context.Context, jobID string, status domain.EmbeddingJobStatus, errMsg string) error

	// IncrementRetries increments the retry count for a job
	IncrementRetries(ctx context.Context, jobID string) error
}

// EmbeddingGenerator computes and stores one participant's embedding.
type EmbeddingGenerator interface {
	GenerateEmbedding(ctx context.Context, participantID int64) error
}

// Option configures an EmbeddingWorker.
type Option func(*EmbeddingWorker)

// WithPoolSize sets how many embeddings are generated concurrently.
func WithPoolSize(size int) Option {
	return func(w *EmbeddingWorker) {
		if size < 1 {
			size = 1
		}
		w.poolSize = size
	}
}

func WithLogger(logger logrus.FieldLogger) Option {
	return func(w *EmbeddingWorker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// EmbeddingWorker processes embedding jobs on a bounded goroutine pool.
type EmbeddingWorker struct {
	repo      EmbeddingJobRepository
	generator EmbeddingGenerator
	pool      *ants.Pool
	poolSize  int
	logger    logrus.FieldLogger
}

// NewEmbeddingWorker creates a new EmbeddingWorker. Call Release when done.
func NewEmbeddingWorker(repo EmbeddingJobRepository, generator EmbeddingGenerator, opts ...Option) (*EmbeddingWorker, error) {
	w := &EmbeddingWorker{
		repo:      repo,
		generator: generator,
		poolSize:  DefaultPoolSize,
		logger:    logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.WithField("component", "embedding_worker")

	pool, err := ants.NewPool(w.poolSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}
	w.pool = pool
	return w, nil
}

// Release frees the goroutine pool.
func (w *EmbeddingWorker) Release() {
	w.pool.Release()
}

// ProcessJobs implements the JobProcessor interface
func (w *EmbeddingWorker) ProcessJobs(ctx context.Context) error {
	if w.repo == nil {
		return nil
	}

	jobs, err := w.repo.GetPendingJobs(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch pending jobs: %w", err)
	}

	if len(jobs) == 0 {
		return nil
	}

	w.logger.WithField("count", len(jobs)).Info("processing pending embedding jobs")

	w.run(len(jobs), func(i int) error {
		return w.processJob(ctx, jobs[i])
	}, func(i int, err error) {
		w.logger.WithError(err).WithField("job_id", jobs[i].ID).Error("error processing job")
	})

	return nil
}

func (w *EmbeddingWorker) processJob(ctx context.Context, job *domain.EmbeddingJob) error {
	log := w.logger.WithFields(logrus.Fields{"job_id": job.ID, "participant_id": job.ParticipantID})
	if job.ParticipantID <= 0 {
		return fmt.Errorf("job %s has no participant_id", job.ID)
	}

	log.Debug("processing job")
	if err := w.generator.GenerateEmbedding(ctx, job.ParticipantID); err != nil {
		return w.handleJobFailure(ctx, job, err)
	}

	if err := w.repo.UpdateJobStatus(ctx, job.ID, domain.EmbeddingJobStatusCompleted, ""); err != nil {
		return fmt.Errorf("failed to update job status to completed: %w", err)
	}

	log.Info("job completed")
	return nil
}

// handleJobFailure handles a failed job with retry logic
func (w *EmbeddingWorker) handleJobFailure(ctx context.Context, job *domain.EmbeddingJob, jobErr error) error {
	log := w.logger.WithFields(logrus.Fields{"job_id": job.ID, "attempt": job.Retries + 1})
	log.WithError(jobErr).Warn("job failed")

	if err := w.repo.IncrementRetries(ctx, job.ID); err != nil {
		return fmt.Errorf("failed to increment retries: %w", err)
	}

	if job.Retries+1 >= MaxRetries {
		log.WithField("max_retries", MaxRetries).Error("job exceeded max retries, marking as failed")
		telemetry.CaptureError(ctx, fmt.Errorf("embedding job %s for participant %d: %w", job.ID, job.ParticipantID, jobErr))
		errMsg := fmt.Sprintf("max retries exceeded: %v", jobErr)
		if err := w.repo.UpdateJobStatus(ctx, job.ID, domain.EmbeddingJobStatusFailed, errMsg); err != nil {
			return fmt.Errorf("failed to update job status to failed: %w", err)
		}
		return nil
	}

	errMsg := fmt.Sprintf("retry %d: %v", job.Retries+1, jobErr)
	if err := w.repo.UpdateJobStatus(ctx, job.ID, domain.EmbeddingJobStatusPending, errMsg); err != nil {
		return fmt.Errorf("failed to reset job status to pending: %w", err)
	}

	return nil
}

// run executes task(0..n-1) on the pool and waits for all of them.
// onErr is called for every failing index, serialized.
func (w *EmbeddingWorker) run(n int, task func(i int) error, onErr func(i int, err error)) {
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	report := func(i int, err error) {
		mu.Lock()
		defer mu.Unlock()
		onErr(i, err)
	}

	for i := 0; i < n; i++ {
		wg.Add(1)
		if err := w.pool.Submit(func() {
			defer wg.Done()
			if err := task(i); err != nil {
				report(i, err)
			}
		}); err != nil {
			wg.Done()
			report(i, fmt.Errorf("failed to submit task: %w", err))
		}
	}
	wg.Wait()
}
