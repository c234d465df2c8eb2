package leave

import (
	"time"

	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/schedule"
	"github.com/shopspring/decimal"
)

// AccrualInput carries everything the yearly accrual needs for one user.
// Attendance and Holidays are keyed by "2006-01-02".
type AccrualInput struct {
	Year            int
	Config          leave.EarnedLeaveConfig
	Attendance      map[string]attendance.Status
	Holidays        map[string]bool
	PreviousBalance decimal.Decimal
}

type Accrual struct {
	DaysWorked      int
	PreviousBalance decimal.Decimal
	CarryForward    decimal.Decimal
	NewEarned       int
	TotalBalance    decimal.Decimal
}

type AccrualCalculator struct {
}

func NewAccrualCalculator() *AccrualCalculator {
	return &AccrualCalculator{}
}

// DaysWorked counts the calendar days of year that qualify for accrual.
// Weekends here are always Saturday and Sunday regardless of any office
// schedule.
func (c *AccrualCalculator) DaysWorked(year int, cfg leave.EarnedLeaveConfig, records map[string]attendance.Status, holidays map[string]bool) int {
	count := 0
	for day := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC); day.Year() == year; day = day.AddDate(0, 0, 1) {
		if schedule.IsWeekend(day) && !cfg.IncludeWeekends {
			continue
		}
		key := day.Format("2006-01-02")
		if holidays[key] && !cfg.IncludeHolidays {
			continue
		}

		status, ok := records[key]
		switch {
		case ok && status.CountsAsWorked():
			count++
		case cfg.IncludeAbsentDays:
			count++
		}
	}
	return count
}

// Calculate derives the posting-year balance from the prior year's balance
// and the days worked.
func (c *AccrualCalculator) Calculate(in AccrualInput) Accrual {
	daysWorked := c.DaysWorked(in.Year, in.Config, in.Attendance, in.Holidays)

	newEarned := 0
	if in.Config.WorkingDaysPerEarnedLeave > 0 {
		newEarned = daysWorked / in.Config.WorkingDaysPerEarnedLeave
	}

	maxDays := decimal.NewFromInt(int64(in.Config.MaxEarnedLeaveDays))
	carryForward := decimal.Min(in.PreviousBalance, maxDays)
	total := decimal.Min(carryForward.Add(decimal.NewFromInt(int64(newEarned))), maxDays)

	return Accrual{
		DaysWorked:      daysWorked,
		PreviousBalance: in.PreviousBalance,
		CarryForward:    carryForward,
		NewEarned:       newEarned,
		TotalBalance:    total,
	}
}
