package usecase

import (
	"context"
	"sync"

	"ArticleArchiver/internal/domain"
)

// Runner executes pipeline requests on a background goroutine so a
// frontend can stay responsive and request cancellation.
type Runner struct {
	pipeline *Pipeline
}

// NewRunner returns a runner for the given pipeline.
func NewRunner(pipeline *Pipeline) *Runner {
	return &Runner{pipeline: pipeline}
}

// Job is one in-flight request started by Runner.Start.
type Job struct {
	cancel  context.CancelFunc
	done    chan struct{}
	once    sync.Once
	summary domain.ArchiveSummary
	err     error
}

// Start launches req and returns immediately.
func (r *Runner) Start(ctx context.Context, req Request) *Job {
	ctx, cancel := context.WithCancel(ctx)
	job := &Job{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(job.done)
		defer cancel()
		job.summary, job.err = r.pipeline.Process(ctx, req)
	}()

	return job
}

// Cancel asks the job to stop at the next stage boundary.
func (j *Job) Cancel() {
	j.once.Do(j.cancel)
}

// Done is closed once the job has finished.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Wait blocks until the job finishes and returns its outcome.
func (j *Job) Wait() (domain.ArchiveSummary, error) {
	<-j.done
	return j.summary, j.err
}
