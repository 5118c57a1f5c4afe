// Package schedule runs periodic maintenance jobs (token-key rotation,
// kernel refresh) on fixed intervals with panic isolation.
package schedule

import (
	"context"
	"sync"
	"time"

	"github.com/signalsfoundry/space-query/internal/logging"
)

// Job is one periodic task. Run receives a context that is cancelled when
// the runner stops.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Runner drives a set of jobs, each on its own ticker. It is started once
// and stopped once.
type Runner struct {
	log  logging.Logger
	jobs []Job

	mu     sync.Mutex
	cancel context.CancelFunc
	done   sync.WaitGroup
}

// NewRunner constructs a runner; jobs are fixed at construction.
func NewRunner(log logging.Logger, jobs ...Job) *Runner {
	if log == nil {
		log = logging.Noop()
	}
	return &Runner{log: log, jobs: jobs}
}

// Start launches one goroutine per job. Calling Start on a running runner
// does nothing.
func (r *Runner) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		return
	}
	ctx, r.cancel = context.WithCancel(ctx)

	for _, job := range r.jobs {
		if job.Interval <= 0 || job.Run == nil {
			continue
		}
		r.done.Add(1)
		go r.runJob(ctx, job)
	}
}

// Stop cancels all jobs and waits for in-flight runs to finish.
func (r *Runner) Stop() {
	r.mu.Lock()
	cancel := r.cancel
	r.cancel = nil
	r.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	r.done.Wait()
}

func (r *Runner) runJob(ctx context.Context, job Job) {
	defer r.done.Done()

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.runOnce(ctx, job)
		}
	}
}

func (r *Runner) runOnce(ctx context.Context, job Job) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error(ctx, "scheduled job panicked",
				logging.String("job", job.Name), logging.Any("panic", rec))
		}
	}()

	if err := job.Run(ctx); err != nil {
		r.log.Warn(ctx, "scheduled job failed",
			logging.String("job", job.Name), logging.Err(err))
		return
	}
	r.log.Debug(ctx, "scheduled job completed", logging.String("job", job.Name))
}
