package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	redisstore "github.com/u5732555133-stack/maintenance-app/internal/redis"
)

// Job is one named unit of scheduled work.
type Job struct {
	// Name doubles as the distributed lock key.
	Name string
	// Spec is a standard 5-field cron expression.
	Spec string
	// Timeout bounds one run. Zero means no deadline.
	Timeout time.Duration
	Run     func(ctx context.Context) error
}

// Runner fires cron jobs on exactly one instance at a time. Every
// replica evaluates the same schedule; the Redis lock decides which one
// actually runs the job.
type Runner struct {
	cron       *cron.Cron
	lock       redisstore.JobLock
	instanceID string
	logger     *slog.Logger
}

// NewRunner constructs a Runner. instanceID identifies this replica in
// lock ownership and logs.
func NewRunner(lock redisstore.JobLock, instanceID string, logger *slog.Logger) *Runner {
	return &Runner{
		cron:       cron.New(),
		lock:       lock,
		instanceID: instanceID,
		logger:     logger,
	}
}

// Register adds a job to the schedule. Returns an error for a bad cron spec.
func (r *Runner) Register(ctx context.Context, job Job) error {
	_, err := r.cron.AddFunc(job.Spec, func() {
		r.fire(ctx, job)
	})
	return err
}

// Start launches the scheduler in its own goroutine and stops it when
// ctx is cancelled.
func (r *Runner) Start(ctx context.Context) {
	r.cron.Start()
	go func() {
		<-ctx.Done()
		stopCtx := r.cron.Stop()
		<-stopCtx.Done()
	}()
}

func (r *Runner) fire(ctx context.Context, job Job) {
	log := r.logger.With(
		slog.String("job", job.Name),
		slog.String("instance_id", r.instanceID),
	)

	ok, err := r.lock.Acquire(ctx, job.Name, r.instanceID)
	if err != nil {
		log.Error("job lock acquire", slog.String("error", err.Error()))
		return
	}
	if !ok {
		log.Debug("job running on another instance, skipping")
		return
	}
	defer func() {
		if err := r.lock.Release(ctx, job.Name, r.instanceID); err != nil {
			log.Error("job lock release", slog.String("error", err.Error()))
		}
	}()

	runCtx := ctx
	if job.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, job.Timeout)
		defer cancel()
	}

	start := time.Now()
	log.Info("job starting")
	if err := job.Run(runCtx); err != nil {
		log.Error("job failed",
			slog.String("error", err.Error()),
			slog.Duration("took", time.Since(start)),
		)
		return
	}
	log.Info("job finished", slog.Duration("took", time.Since(start)))
}
