// Package batch runs the scheduled jobs: overdue marking and interest accrual.
// The same runner backs the CLI and the /jobs endpoints.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"loan-backoffice/internal/domain/apperr"
	"loan-backoffice/internal/infrastructure/cache"
	"loan-backoffice/internal/usecase/accrual"
	"loan-backoffice/internal/usecase/note"
	"loan-backoffice/pkg/calendar"
)

var ErrAlreadyRunning = fmt.Errorf("batch job already running: %w", apperr.ErrInvalidState)

// Locker serializes jobs across processes. cache.BatchLock implements it.
type Locker interface {
	Acquire(ctx context.Context, name string, ttl time.Duration) (func(), error)
}

type Runner struct {
	accrual *accrual.Usecase
	notes   *note.Usecase
	cfg     accrual.Config
	lock    Locker
	timeout time.Duration
}

// NewRunner wires the jobs. lock may be nil when only one instance runs.
func NewRunner(a *accrual.Usecase, n *note.Usecase, cfg accrual.Config, lock Locker, timeout time.Duration) *Runner {
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	return &Runner{accrual: a, notes: n, cfg: cfg, lock: lock, timeout: timeout}
}

type DailyResult struct {
	Date    time.Time          `json:"date"`
	Overdue int                `json:"overdue_marked"`
	Accrual *accrual.RunResult `json:"accrual"`
}

func (r *Runner) Accrue(ctx context.Context, day time.Time) (*accrual.RunResult, error) {
	var res *accrual.RunResult
	err := r.run(ctx, "accrue-interest", func(ctx context.Context) (err error) {
		res, err = r.accrual.AccrueAll(ctx, day, r.cfg)
		return err
	})
	return res, err
}

func (r *Runner) MarkOverdue(ctx context.Context, day time.Time) (int, error) {
	var n int
	err := r.run(ctx, "mark-overdue", func(ctx context.Context) (err error) {
		n, err = r.notes.MarkOverdueBatch(ctx, day)
		return err
	})
	return n, err
}

// Daily marks overdue notes first so that the accrual rows of the day see
// final statuses.
func (r *Runner) Daily(ctx context.Context, day time.Time) (*DailyResult, error) {
	out := &DailyResult{Date: calendar.Day(day)}
	err := r.run(ctx, "daily", func(ctx context.Context) (err error) {
		if out.Overdue, err = r.notes.MarkOverdueBatch(ctx, day); err != nil {
			return err
		}
		out.Accrual, err = r.accrual.AccrueAll(ctx, day, r.cfg)
		return err
	})
	return out, err
}

func (r *Runner) run(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	if r.lock != nil {
		release, err := r.lock.Acquire(ctx, name, r.timeout+time.Minute)
		if errors.Is(err, cache.ErrLocked) {
			return ErrAlreadyRunning
		}
		if err != nil {
			return fmt.Errorf("acquire %s lock: %w", name, err)
		}
		defer release()
	}
	start := time.Now()
	err := fn(ctx)
	log.Printf("job %s finished in %s (err=%v)", name, time.Since(start).Round(time.Millisecond), err)
	return err
}
