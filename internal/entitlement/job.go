package entitlement

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/leaveflow/internal"
)

const JobName = "annual-leave-recompute"

// Snapshot is the slice of an employee the recompute sweep needs.
type Snapshot struct {
	EmployeeID      int64     `db:"id"`
	HireDate        time.Time `db:"hire_date"`
	AnnualLeaveDays int       `db:"annual_leave_days"`
}

type Store interface {
	ListEntitlements(ctx context.Context) ([]Snapshot, error)
	UpdateAnnualLeaveDays(ctx context.Context, employeeID int64, days int) error
}

// Result summarises one sweep.
type Result struct {
	Scanned int `json:"scanned"`
	Updated int `json:"updated"`
	Failed  int `json:"failed"`
}

// Job re-applies Calculate to every employee, writing only values that changed.
type Job struct {
	store  Store
	now    internal.Clock
	logger *slog.Logger
}

func NewJob(store Store, now internal.Clock, logger *slog.Logger) *Job {
	if now == nil {
		now = internal.SystemClock
	}
	return &Job{store: store, now: now, logger: logger}
}

func (j *Job) Name() string {
	return JobName
}

// Run satisfies the scheduler task contract.
func (j *Job) Run(ctx context.Context) error {
	_, err := j.Sweep(ctx)
	return err
}

// Sweep recomputes every employee once. A failed update is logged and counted
// and the sweep moves on; only a failure to list employees aborts it.
func (j *Job) Sweep(ctx context.Context) (Result, error) {
	start := time.Now()
	now := j.now()

	snapshots, err := j.store.ListEntitlements(ctx)
	if err != nil {
		j.logger.Error("entitlement sweep: failed to list employees", "error", err)
		return Result{}, fmt.Errorf("list employees: %w", err)
	}

	var res Result
	for _, s := range snapshots {
		if err := ctx.Err(); err != nil {
			j.logger.Warn("entitlement sweep cancelled", "scanned", res.Scanned)
			return res, err
		}
		res.Scanned++

		days := Calculate(s.HireDate, now)
		if days == s.AnnualLeaveDays {
			continue
		}

		if err := j.store.UpdateAnnualLeaveDays(ctx, s.EmployeeID, days); err != nil {
			res.Failed++
			j.logger.Error("entitlement sweep: failed to update employee",
				"employee_id", s.EmployeeID,
				"from", s.AnnualLeaveDays,
				"to", days,
				"error", err)
			continue
		}

		res.Updated++
		j.logger.Info("annual leave allowance updated",
			"employee_id", s.EmployeeID,
			"from", s.AnnualLeaveDays,
			"to", days)
	}

	j.logger.Info("entitlement sweep completed",
		"scanned", res.Scanned,
		"updated", res.Updated,
		"failed", res.Failed,
		"duration_ms", time.Since(start).Milliseconds())

	return res, nil
}
