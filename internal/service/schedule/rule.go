package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/holiday"
	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/schedule"
	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/user"
)

// WorkingDayResolver answers "is attendance expected today" for a user by
// combining their office time with the holiday calendar.
type WorkingDayResolver struct {
	officeTimes schedule.OfficeTimeRepository
	holidays    holiday.HolidayRepository
}

func NewWorkingDayResolver(officeTimes schedule.OfficeTimeRepository, holidays holiday.HolidayRepository) *WorkingDayResolver {
	return &WorkingDayResolver{
		officeTimes: officeTimes,
		holidays:    holidays,
	}
}

// ScheduleFor returns the user's current office time, or nil when the user
// has none assigned.
func (r *WorkingDayResolver) ScheduleFor(ctx context.Context, u user.User) (*schedule.OfficeTime, error) {
	if u.OfficeTimeID == nil || *u.OfficeTimeID == "" {
		return nil, nil
	}

	officeTime, err := r.officeTimes.GetByID(ctx, *u.OfficeTimeID)
	if err != nil {
		if errors.Is(err, schedule.ErrOfficeTimeNotFound) {
			slog.Warn("User references a missing office time, using default week",
				"user_id", u.ID,
				"office_time_id", *u.OfficeTimeID,
			)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get office time: %w", err)
	}

	return &officeTime, nil
}

// IsWorkingDate applies the working-day rule to date, looking the date up
// in the holiday calendar.
func (r *WorkingDayResolver) IsWorkingDate(ctx context.Context, date time.Time, sched *schedule.OfficeTime) (bool, error) {
	isHoliday, err := r.holidays.IsHoliday(ctx, date)
	if err != nil {
		return false, fmt.Errorf("failed to check holiday: %w", err)
	}

	return schedule.IsWorkingDate(date, sched, isHoliday), nil
}
