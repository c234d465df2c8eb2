package attendance

import (
	"time"

	"github.com/shopspring/decimal"
)

// Summary is the result of folding a day's entries.
type Summary struct {
	FirstClockIn      *time.Time
	LastClockOut      *time.Time
	TotalEntries      int
	TotalWorkingHours decimal.Decimal
	TotalLateMinutes  int
	TotalEarlyMinutes int
	Status            Status
}

var secondsPerHour = decimal.NewFromInt(3600)

// WorkingHours returns the elapsed hours between clock-in and clock-out,
// rounded to two decimals.
func WorkingHours(clockIn, clockOut time.Time) decimal.Decimal {
	seconds := int64(clockOut.Sub(clockIn) / time.Second)
	return decimal.NewFromInt(seconds).Div(secondsPerHour).Round(2)
}

// Aggregate folds a day's entries into totals and a status.
func Aggregate(entries []Entry) Summary {
	summary := Summary{
		TotalEntries:      len(entries),
		TotalWorkingHours: decimal.Zero,
	}

	for i := range entries {
		e := entries[i]
		if e.ClockIn != nil && (summary.FirstClockIn == nil || e.ClockIn.Before(*summary.FirstClockIn)) {
			summary.FirstClockIn = e.ClockIn
		}
		if e.ClockOut != nil && (summary.LastClockOut == nil || e.ClockOut.After(*summary.LastClockOut)) {
			summary.LastClockOut = e.ClockOut
		}
		summary.TotalLateMinutes += e.LateMinutes
		summary.TotalEarlyMinutes += e.EarlyMinutes
		if e.IsClosed() {
			summary.TotalWorkingHours = summary.TotalWorkingHours.Add(e.WorkingHours)
		}
	}

	summary.Status = DeriveStatus(entries)
	return summary
}

// DeriveStatus classifies a day from its entries. Late and early minutes
// win over completeness; an open entry only separates full_present from
// present.
func DeriveStatus(entries []Entry) Status {
	if len(entries) == 0 {
		return StatusAbsent
	}

	late, early, closed := false, false, false
	for _, e := range entries {
		if e.LateMinutes > 0 {
			late = true
		}
		if e.EarlyMinutes > 0 {
			early = true
		}
		if e.IsClosed() {
			closed = true
		}
	}

	switch {
	case late && early:
		return StatusLateInEarlyOut
	case late:
		return StatusLateIn
	case early:
		return StatusEarlyOut
	case closed:
		return StatusFullPresent
	default:
		return StatusPresent
	}
}
