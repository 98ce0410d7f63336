package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// failureEscalation is the number of consecutive failed polls after which
// errors are logged at error level instead of warn.
const failureEscalation = 3

// JobProcessor defines the interface for processing jobs
type JobProcessor interface {
	ProcessJobs(ctx context.Context) error
}

// Worker polls a JobProcessor: once at start, then every pollInterval.
type Worker struct {
	processor    JobProcessor
	pollInterval time.Duration
	logger       logrus.FieldLogger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewWorker(processor JobProcessor, pollInterval time.Duration, logger logrus.FieldLogger) *Worker {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Worker{
		processor:    processor,
		pollInterval: pollInterval,
		logger:       logger.WithField("component", "poller"),
	}
}

// Start blocks until ctx is done or Stop is called.
func (w *Worker) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	w.mu.Lock()
	w.cancel, w.done = cancel, done
	w.mu.Unlock()
	defer close(done)

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.logger.WithField("poll_interval", w.pollInterval.String()).Info("poller started")

	failures := 0
	for {
		failures = w.poll(ctx, failures)

		select {
		case <-ctx.Done():
			w.logger.WithField("reason", context.Cause(ctx)).Info("poller stopped")
			return
		case <-ticker.C:
		}
	}
}

func (w *Worker) poll(ctx context.Context, failures int) int {
	if ctx.Err() != nil {
		return failures
	}
	err := w.processor.ProcessJobs(ctx)
	if err == nil || ctx.Err() != nil {
		return 0
	}

	failures++
	entry := w.logger.WithError(err).WithField("consecutive_failures", failures)
	if failures >= failureEscalation {
		entry.Error("job poll failed")
	} else {
		entry.Warn("job poll failed")
	}
	return failures
}

// Stop cancels a running Start and waits for it to return. It is safe to
// call more than once and before Start.
func (w *Worker) Stop() {
	w.mu.Lock()
	cancel, done := w.cancel, w.done
	w.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}
