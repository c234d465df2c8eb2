package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/leave"
)

type LeaveJobs struct {
	earnedSvc    leave.EarnedLeaveService
	deductionSvc leave.DeductionService
	location     *time.Location
	now          func() time.Time
}

func NewLeaveJobs(earnedSvc leave.EarnedLeaveService, deductionSvc leave.DeductionService, location *time.Location) *LeaveJobs {
	return &LeaveJobs{
		earnedSvc:    earnedSvc,
		deductionSvc: deductionSvc,
		location:     location,
		now:          time.Now,
	}
}

func (j *LeaveJobs) RegisterJobs(scheduler *Scheduler) {
	// Both jobs check every hour and act once, in the first hour of their day.
	scheduler.AddJob("monthly_leave_deductions", 1*time.Hour, j.MonthlyDeductions)
	scheduler.AddJob("yearly_earned_leave", 1*time.Hour, j.YearlyEarnedLeave)
}

// MonthlyDeductions applies the previous month's deductions on the 1st.
// Reruns within the hour are absorbed by the per-user run record.
func (j *LeaveJobs) MonthlyDeductions(ctx context.Context) error {
	nowLocal := j.now().In(j.location)
	if nowLocal.Day() != 1 || nowLocal.Hour() != 0 {
		return nil
	}

	prev := nowLocal.AddDate(0, -1, 0)
	resp, err := j.deductionSvc.RunMonthlyDeductions(ctx, leave.DeductionRunRequest{
		Month: int(prev.Month()),
		Year:  prev.Year(),
	})
	if err != nil {
		return fmt.Errorf("monthly deductions for %d-%02d: %w", prev.Year(), prev.Month(), err)
	}

	slog.Info("Cron: Monthly deductions applied",
		"year", resp.Year,
		"month", resp.Month,
		"updated", resp.Summary.Updated,
		"failed", resp.Summary.Failed,
	)
	return nil
}

// YearlyEarnedLeave credits last year's accrual into the new year on Jan 1.
func (j *LeaveJobs) YearlyEarnedLeave(ctx context.Context) error {
	nowLocal := j.now().In(j.location)
	if nowLocal.YearDay() != 1 || nowLocal.Hour() != 0 {
		return nil
	}

	resp, err := j.earnedSvc.RunEarnedLeaveCalculation(ctx, leave.EarnedLeaveRunRequest{
		Year:        nowLocal.Year() - 1,
		PostingYear: nowLocal.Year(),
	})
	if err != nil {
		return fmt.Errorf("earned leave for %d: %w", nowLocal.Year()-1, err)
	}

	slog.Info("Cron: Earned leave credited",
		"year", resp.Year,
		"posting_year", resp.PostingYear,
		"updated", resp.Summary.Updated,
		"failed", resp.Summary.Failed,
	)
	return nil
}
