package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/user"
)

type AttendanceJobs struct {
	attendanceSvc attendance.AttendanceService
	userRepo      user.UserRepository
	location      *time.Location
	now           func() time.Time
}

func NewAttendanceJobs(
	attendanceSvc attendance.AttendanceService,
	userRepo user.UserRepository,
	location *time.Location,
) *AttendanceJobs {
	return &AttendanceJobs{
		attendanceSvc: attendanceSvc,
		userRepo:      userRepo,
		location:      location,
		now:           time.Now,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("mark_absent_users", 1*time.Hour, j.MarkAbsentUsers)
}

// MarkAbsentUsers creates absent rollups for yesterday's working dates
// that have no record. It only acts during the local midnight hour.
func (j *AttendanceJobs) MarkAbsentUsers(ctx context.Context) error {
	nowLocal := j.now().In(j.location)
	if nowLocal.Hour() != 0 {
		return nil
	}
	return j.MarkAbsentOn(ctx, nowLocal.AddDate(0, 0, -1))
}

// MarkAbsentOn runs the absence sweep for a single date.
func (j *AttendanceJobs) MarkAbsentOn(ctx context.Context, date time.Time) error {
	slog.Info("Cron: Starting mark absent users job", "date", date.Format("2006-01-02"))

	users, err := j.userRepo.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to list active users: %w", err)
	}

	marked := 0
	for _, u := range users {
		if err := ctx.Err(); err != nil {
			return err
		}
		created, err := j.attendanceSvc.MarkAbsent(ctx, u.ID, date)
		if err != nil {
			slog.Error("Cron: Failed to mark user absent", "user_id", u.ID, "error", err)
			continue
		}
		if created {
			marked++
		}
	}

	slog.Info("Cron: Marked absent users", "count", marked)
	return nil
}
