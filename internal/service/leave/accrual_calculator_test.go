package leave

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/leave"
	"github.com/stretchr/testify/assert"
)

// presentOnWeekdays marks the first n weekdays of year as full_present.
func presentOnWeekdays(year, n int) map[string]attendance.Status {
	records := make(map[string]attendance.Status)
	for day := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC); len(records) < n; day = day.AddDate(0, 0, 1) {
		if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			continue
		}
		records[day.Format("2006-01-02")] = attendance.StatusFullPresent
	}
	return records
}

func TestAccrualCalculator_FloorsEarnedDays(t *testing.T) {
	calc := NewAccrualCalculator()
	cfg := leave.EarnedLeaveConfig{WorkingDaysPerEarnedLeave: 20, MaxEarnedLeaveDays: 30}

	for _, c := range []struct{ worked, earned int }{{0, 0}, {19, 0}, {20, 1}, {59, 2}, {240, 12}} {
		got := calc.Calculate(AccrualInput{
			Year:       2024,
			Config:     cfg,
			Attendance: presentOnWeekdays(2024, c.worked),
		})
		assert.Equal(t, c.worked, got.DaysWorked)
		assert.Equal(t, c.earned, got.NewEarned, "days worked %d", c.worked)
	}
}

func TestAccrualCalculator_CapsCarryForwardAndTotal(t *testing.T) {
	calc := NewAccrualCalculator()
	cfg := leave.EarnedLeaveConfig{WorkingDaysPerEarnedLeave: 20, MaxEarnedLeaveDays: 30}

	got := calc.Calculate(AccrualInput{
		Year:            2024,
		Config:          cfg,
		Attendance:      presentOnWeekdays(2024, 100),
		PreviousBalance: dec("45"),
	})

	assert.True(t, dec("30").Equal(got.CarryForward))
	assert.Equal(t, 5, got.NewEarned)
	assert.True(t, dec("30").Equal(got.TotalBalance), "total never exceeds the cap")
}

func TestAccrualCalculator_NegativePreviousBalanceCarries(t *testing.T) {
	calc := NewAccrualCalculator()
	cfg := leave.EarnedLeaveConfig{WorkingDaysPerEarnedLeave: 20, MaxEarnedLeaveDays: 30}

	got := calc.Calculate(AccrualInput{
		Year:            2024,
		Config:          cfg,
		Attendance:      presentOnWeekdays(2024, 40),
		PreviousBalance: dec("-1.5"),
	})

	assert.True(t, dec("-1.5").Equal(got.CarryForward))
	assert.True(t, dec("0.5").Equal(got.TotalBalance))
}

func TestAccrualCalculator_DaysWorkedFlags(t *testing.T) {
	calc := NewAccrualCalculator()
	records := map[string]attendance.Status{
		"2024-01-01": attendance.StatusFullPresent, // Monday, holiday
		"2024-01-02": attendance.StatusLateIn,
		"2024-01-03": attendance.StatusAbsent,
		"2024-01-06": attendance.StatusPresent, // Saturday
	}
	holidays := map[string]bool{"2024-01-01": true}

	base := leave.EarnedLeaveConfig{}
	assert.Equal(t, 1, calc.DaysWorked(2024, base, records, holidays), "only the weekday non-holiday present day counts")

	withWeekends := leave.EarnedLeaveConfig{IncludeWeekends: true}
	assert.Equal(t, 2, calc.DaysWorked(2024, withWeekends, records, holidays))

	withHolidays := leave.EarnedLeaveConfig{IncludeHolidays: true}
	assert.Equal(t, 2, calc.DaysWorked(2024, withHolidays, records, holidays))

	// 2024 has 262 weekdays, one of which is the holiday.
	withAbsent := leave.EarnedLeaveConfig{IncludeAbsentDays: true}
	assert.Equal(t, 261, calc.DaysWorked(2024, withAbsent, records, holidays))
}
