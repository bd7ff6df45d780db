package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// NextRollover returns the first time after now matched by expr.
func NextRollover(expr string, now time.Time) (time.Time, error) {
	sched, err := cronParser.Parse(expr)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse rollover schedule %q: %w", expr, err)
	}
	return sched.Next(now), nil
}

// Runner fires a job on a cron schedule until its context ends.
type Runner struct {
	expr     string
	c        *cron.Cron
	log      *slog.Logger
	stopJobs context.CancelFunc
}

// NewRunner registers job under expr. Overlapping runs are skipped.
func NewRunner(expr string, job func(context.Context), log *slog.Logger) (*Runner, error) {
	if log == nil {
		log = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	r := &Runner{expr: expr, log: log}
	r.c = cron.New(
		cron.WithParser(cronParser),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	_, err := r.c.AddFunc(expr, func() {
		log.Info("scheduled rollover firing", "schedule", expr)
		job(ctx)
	})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("schedule rollover %q: %w", expr, err)
	}
	r.stopJobs = cancel
	return r, nil
}

// Next is the next fire time, or zero before Run.
func (r *Runner) Next() time.Time {
	entries := r.c.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// Run starts the scheduler and blocks until ctx is done, then waits for a
// running job to finish.
func (r *Runner) Run(ctx context.Context) {
	r.c.Start()
	r.log.Info("rollover scheduler started", "schedule", r.expr, "next", r.Next())
	<-ctx.Done()
	r.stopJobs()
	<-r.c.Stop().Done()
	r.log.Info("rollover scheduler stopped")
}
