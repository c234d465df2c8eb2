package attendance

import (
	"context"
	"time"

	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/schedule"
)

// EntryRepository - interface for attendance_entries table.
// At most one open entry may exist per user and date; Create reports a
// violation as ErrAlreadyClockedIn.
type EntryRepository interface {
	Create(ctx context.Context, entry Entry) (Entry, error)
	Update(ctx context.Context, entry Entry) error
	GetOpenEntry(ctx context.Context, userID string, date time.Time) (Entry, error)
	ListByDailyAttendance(ctx context.Context, dailyAttendanceID string) ([]Entry, error)
	ListByUserAndDateRange(ctx context.Context, userID string, from, to time.Time) ([]Entry, error)
}

// DailyAttendanceRepository - interface for daily_attendances table
type DailyAttendanceRepository interface {
	// GetOrCreate returns the row for (userID, date), inserting an absent
	// row with the given schedule snapshot when none exists yet.
	GetOrCreate(ctx context.Context, userID string, date time.Time, snapshot *schedule.OfficeTime) (DailyAttendance, error)
	GetByID(ctx context.Context, id string) (DailyAttendance, error)
	GetByUserAndDate(ctx context.Context, userID string, date time.Time) (DailyAttendance, error)
	UpdateSummary(ctx context.Context, daily DailyAttendance) error
	ListByUserAndDateRange(ctx context.Context, userID string, from, to time.Time) ([]DailyAttendance, error)
}
