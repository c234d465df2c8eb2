package attendance

import (
	"time"

	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/schedule"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusAbsent         Status = "absent"
	StatusPresent        Status = "present"
	StatusFullPresent    Status = "full_present"
	StatusLateIn         Status = "late_in"
	StatusEarlyOut       Status = "early_out"
	StatusLateInEarlyOut Status = "late_in_early_out"
	StatusHoliday        Status = "holiday"
)

// CountsAsWorked reports whether the day is credited as a worked day.
func (s Status) CountsAsWorked() bool {
	return s != StatusAbsent && s != StatusHoliday && s != ""
}

type Location struct {
	Latitude  float64
	Longitude float64
}

// Entry is a single clock-in / clock-out pair.
type Entry struct {
	ID                string
	DailyAttendanceID string
	UserID            string
	Date              time.Time
	ClockIn           *time.Time
	ClockOut          *time.Time
	ClockInLocation   *Location
	ClockOutLocation  *Location
	LateMinutes       int
	EarlyMinutes      int
	WorkingHours      decimal.Decimal
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// IsOpen reports whether the entry has a clock-in and no clock-out yet.
func (e Entry) IsOpen() bool {
	return e.ClockIn != nil && e.ClockOut == nil
}

func (e Entry) IsClosed() bool {
	return e.ClockIn != nil && e.ClockOut != nil
}

// DailyAttendance is the per-user, per-date rollup of entries.
// ScheduleSnapshot is frozen when the row is first created and never
// rewritten afterwards.
type DailyAttendance struct {
	ID                string
	UserID            string
	Date              time.Time
	FirstClockIn      *time.Time
	LastClockOut      *time.Time
	TotalEntries      int
	TotalWorkingHours decimal.Decimal
	TotalLateMinutes  int
	TotalEarlyMinutes int
	Status            Status
	ScheduleSnapshot  *schedule.OfficeTime
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Apply copies an aggregation result onto the daily record.
func (d *DailyAttendance) Apply(s Summary) {
	d.FirstClockIn = s.FirstClockIn
	d.LastClockOut = s.LastClockOut
	d.TotalEntries = s.TotalEntries
	d.TotalWorkingHours = s.TotalWorkingHours
	d.TotalLateMinutes = s.TotalLateMinutes
	d.TotalEarlyMinutes = s.TotalEarlyMinutes
	d.Status = s.Status
}

// DateOf returns the calendar date of t (in t's location) as midnight UTC.
// All attendance dates are stored in this form.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
