package cron

import (
	"context"
	"log/slog"
	"sync"

	"github.com/aotpy/fragcheck/internal/checker"
)

// Checker is the subset of the engine needed by the watch job. Defined here
// so tests can stub it without standing up real probes.
type Checker interface {
	Check(ctx context.Context, raw string) (checker.Result, error)
}

// WatchJob periodically re-checks a fixed set of usernames and logs outcome
// transitions. Previous outcomes live only in memory; nothing is persisted.
type WatchJob struct {
	Usernames    []string
	Checker      Checker
	Logger       *slog.Logger
	ScheduleExpr string // empty = default "*/15 * * * *"

	mu   sync.Mutex
	last map[string]checker.Outcome
}

// Compile-time interface check.
var _ Job = (*WatchJob)(nil)

// Name implements Job.
func (j *WatchJob) Name() string { return "username_watch" }

// Schedule implements Job.
func (j *WatchJob) Schedule() string {
	if j.ScheduleExpr != "" {
		return j.ScheduleExpr
	}
	return "*/15 * * * *"
}

// Run checks each watched username sequentially. Individual failures are
// logged and skipped; the job itself only fails on cancellation.
func (j *WatchJob) Run(ctx context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.last == nil {
		j.last = make(map[string]checker.Outcome, len(j.Usernames))
	}

	for _, name := range j.Usernames {
		if err := ctx.Err(); err != nil {
			return err
		}

		res, err := j.Checker.Check(ctx, name)
		if err != nil {
			j.Logger.Warn("watch: check failed", "username", name, "error", err)
			continue
		}

		prev, seen := j.last[name]
		j.last[name] = res.Outcome

		switch {
		case !seen:
			j.Logger.Info("watch: initial outcome",
				"username", res.Username,
				"outcome", res.Outcome,
				"price", res.Price,
			)
		case prev != res.Outcome:
			j.Logger.Info("watch: outcome changed",
				"username", res.Username,
				"from", prev,
				"to", res.Outcome,
				"price", res.Price,
			)
		}
	}
	return nil
}
