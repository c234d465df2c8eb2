package attendance

import (
	"context"
	"time"
)

// AttendanceService records clock events and keeps the daily rollup current.
type AttendanceService interface {
	// ClockIn opens a new entry for the user on the timestamp's date
	ClockIn(ctx context.Context, req ClockInRequest) (ClockInResponse, error)

	// ClockOut closes the user's open entry for the timestamp's date
	ClockOut(ctx context.Context, req ClockOutRequest) (ClockOutResponse, error)

	// GetDailyAttendance returns the rollup for a single date
	GetDailyAttendance(ctx context.Context, userID string, date time.Time) (DailyAttendanceResponse, error)

	// GetHistory returns the user's rollups for a date range
	GetHistory(ctx context.Context, filter HistoryFilter) ([]DailyAttendanceResponse, error)

	// MarkAbsent creates an absent rollup for a working date without any
	// clock events. It reports whether a row was created.
	MarkAbsent(ctx context.Context, userID string, date time.Time) (bool, error)
}
