package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/schedule"
	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/user"
	"github.com/cmlabs-hris/hris-leave-engine/internal/pkg/database"
	"github.com/cmlabs-hris/hris-leave-engine/internal/pkg/metrics"
	"github.com/cmlabs-hris/hris-leave-engine/internal/pkg/validator"
	scheduleService "github.com/cmlabs-hris/hris-leave-engine/internal/service/schedule"
)

type AttendanceServiceImpl struct {
	transactor database.Transactor
	attendance.EntryRepository
	attendance.DailyAttendanceRepository
	user.UserRepository
	workingDays *scheduleService.WorkingDayResolver
	location    *time.Location
	now         func() time.Time
	locks       *userLocks
}

// Option customises an AttendanceServiceImpl.
type Option func(*AttendanceServiceImpl)

// WithClock replaces time.Now, used when a request carries no timestamp.
func WithClock(now func() time.Time) Option {
	return func(a *AttendanceServiceImpl) {
		a.now = now
	}
}

// NewAttendanceService builds the service. Dates are derived from clock
// timestamps in location.
func NewAttendanceService(
	transactor database.Transactor,
	entryRepository attendance.EntryRepository,
	dailyAttendanceRepository attendance.DailyAttendanceRepository,
	userRepository user.UserRepository,
	workingDays *scheduleService.WorkingDayResolver,
	location *time.Location,
	opts ...Option,
) attendance.AttendanceService {
	if location == nil {
		location = time.UTC
	}
	a := &AttendanceServiceImpl{
		transactor:                transactor,
		EntryRepository:           entryRepository,
		DailyAttendanceRepository: dailyAttendanceRepository,
		UserRepository:            userRepository,
		workingDays:               workingDays,
		location:                  location,
		now:                       time.Now,
		locks:                     newUserLocks(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ClockIn implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ClockIn(ctx context.Context, req attendance.ClockInRequest) (attendance.ClockInResponse, error) {
	resp, err := a.clockIn(ctx, req)
	recordClockEvent("clock_in", err)
	return resp, err
}

func (a *AttendanceServiceImpl) clockIn(ctx context.Context, req attendance.ClockInRequest) (attendance.ClockInResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.ClockInResponse{}, err
	}

	unlock := a.locks.lock(req.UserID)
	defer unlock()

	local := a.localTime(req.Timestamp)
	date := attendance.DateOf(local)

	u, err := a.UserRepository.GetByID(ctx, req.UserID)
	if err != nil {
		return attendance.ClockInResponse{}, err
	}
	if !u.IsActive {
		return attendance.ClockInResponse{}, user.ErrUserInactive
	}

	var response attendance.ClockInResponse
	err = a.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := a.EntryRepository.GetOpenEntry(ctx, u.ID, date); err == nil {
			return attendance.ErrAlreadyClockedIn
		} else if !errors.Is(err, attendance.ErrEntryNotFound) {
			return fmt.Errorf("failed to check open entry: %w", err)
		}

		daily, exists, err := a.findDaily(ctx, u.ID, date)
		if err != nil {
			return err
		}

		sched := daily.ScheduleSnapshot
		if !exists {
			sched, err = a.workingDays.ScheduleFor(ctx, u)
			if err != nil {
				return err
			}
		}

		working, err := a.workingDays.IsWorkingDate(ctx, date, sched)
		if err != nil {
			return err
		}
		if !working {
			return attendance.ErrNotWorkingDay
		}

		if !exists {
			daily, err = a.DailyAttendanceRepository.GetOrCreate(ctx, u.ID, date, sched)
			if err != nil {
				return fmt.Errorf("failed to create daily attendance: %w", err)
			}
		}

		lateMinutes := 0
		if daily.ScheduleSnapshot != nil {
			lateMinutes = schedule.LateMinutes(local, *daily.ScheduleSnapshot)
		}

		clockIn := local.UTC()
		entry, err := a.EntryRepository.Create(ctx, attendance.Entry{
			DailyAttendanceID: daily.ID,
			UserID:            u.ID,
			Date:              date,
			ClockIn:           &clockIn,
			ClockInLocation:   req.Location(),
			LateMinutes:       lateMinutes,
		})
		if err != nil {
			if errors.Is(err, attendance.ErrAlreadyClockedIn) {
				return err
			}
			return fmt.Errorf("failed to create attendance entry: %w", err)
		}

		daily, err = a.recompute(ctx, daily)
		if err != nil {
			return err
		}

		response = attendance.ClockInResponse{
			Entry:       attendance.NewEntryResponse(entry),
			LateMinutes: lateMinutes,
			Daily:       attendance.NewDailyAttendanceResponse(daily),
		}
		return nil
	})
	if err != nil {
		return attendance.ClockInResponse{}, err
	}

	slog.Info("User clocked in",
		"user_id", u.ID,
		"date", date.Format("2006-01-02"),
		"late_minutes", response.LateMinutes,
	)

	return response, nil
}

// ClockOut implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ClockOut(ctx context.Context, req attendance.ClockOutRequest) (attendance.ClockOutResponse, error) {
	resp, err := a.clockOut(ctx, req)
	recordClockEvent("clock_out", err)
	return resp, err
}

func (a *AttendanceServiceImpl) clockOut(ctx context.Context, req attendance.ClockOutRequest) (attendance.ClockOutResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.ClockOutResponse{}, err
	}

	unlock := a.locks.lock(req.UserID)
	defer unlock()

	local := a.localTime(req.Timestamp)
	date := attendance.DateOf(local)

	var response attendance.ClockOutResponse
	err := a.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		entry, err := a.EntryRepository.GetOpenEntry(ctx, req.UserID, date)
		if err != nil {
			if errors.Is(err, attendance.ErrEntryNotFound) {
				return attendance.ErrNotClockedIn
			}
			return fmt.Errorf("failed to get open entry: %w", err)
		}

		clockOut := local.UTC()
		if clockOut.Before(*entry.ClockIn) {
			return validator.ValidationErrors{{
				Field:   "timestamp",
				Message: "clock-out must not be before clock-in",
			}}
		}

		daily, err := a.DailyAttendanceRepository.GetByID(ctx, entry.DailyAttendanceID)
		if err != nil {
			return fmt.Errorf("failed to get daily attendance: %w", err)
		}

		earlyMinutes := 0
		if daily.ScheduleSnapshot != nil {
			earlyMinutes = schedule.EarlyMinutes(local, *daily.ScheduleSnapshot)
		}

		entry.ClockOut = &clockOut
		entry.ClockOutLocation = req.Location()
		entry.EarlyMinutes = earlyMinutes
		entry.WorkingHours = attendance.WorkingHours(*entry.ClockIn, clockOut)

		if err := a.EntryRepository.Update(ctx, entry); err != nil {
			return fmt.Errorf("failed to update attendance entry: %w", err)
		}

		daily, err = a.recompute(ctx, daily)
		if err != nil {
			return err
		}

		response = attendance.ClockOutResponse{
			Entry:        attendance.NewEntryResponse(entry),
			EarlyMinutes: earlyMinutes,
			WorkingHours: entry.WorkingHours,
			Daily:        attendance.NewDailyAttendanceResponse(daily),
		}
		return nil
	})
	if err != nil {
		return attendance.ClockOutResponse{}, err
	}

	slog.Info("User clocked out",
		"user_id", req.UserID,
		"date", date.Format("2006-01-02"),
		"early_minutes", response.EarlyMinutes,
		"working_hours", response.WorkingHours.String(),
	)

	return response, nil
}

// GetDailyAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetDailyAttendance(ctx context.Context, userID string, date time.Time) (attendance.DailyAttendanceResponse, error) {
	daily, err := a.DailyAttendanceRepository.GetByUserAndDate(ctx, userID, attendance.DateOf(date))
	if err != nil {
		return attendance.DailyAttendanceResponse{}, err
	}
	return attendance.NewDailyAttendanceResponse(daily), nil
}

// GetHistory implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetHistory(ctx context.Context, filter attendance.HistoryFilter) ([]attendance.DailyAttendanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	from, _ := validator.IsValidDate(filter.DateFrom)
	to, _ := validator.IsValidDate(filter.DateTo)

	dailies, err := a.DailyAttendanceRepository.ListByUserAndDateRange(ctx, filter.UserID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list daily attendance: %w", err)
	}

	responses := make([]attendance.DailyAttendanceResponse, 0, len(dailies))
	for _, d := range dailies {
		responses = append(responses, attendance.NewDailyAttendanceResponse(d))
	}
	return responses, nil
}

// MarkAbsent implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) MarkAbsent(ctx context.Context, userID string, date time.Time) (bool, error) {
	unlock := a.locks.lock(userID)
	defer unlock()

	date = attendance.DateOf(date)

	u, err := a.UserRepository.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}

	created := false
	err = a.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		_, exists, err := a.findDaily(ctx, u.ID, date)
		if err != nil || exists {
			return err
		}

		sched, err := a.workingDays.ScheduleFor(ctx, u)
		if err != nil {
			return err
		}
		working, err := a.workingDays.IsWorkingDate(ctx, date, sched)
		if err != nil || !working {
			return err
		}

		if _, err := a.DailyAttendanceRepository.GetOrCreate(ctx, u.ID, date, sched); err != nil {
			return fmt.Errorf("failed to create absent record: %w", err)
		}
		created = true
		return nil
	})
	if err != nil {
		return false, err
	}

	return created, nil
}

func (a *AttendanceServiceImpl) findDaily(ctx context.Context, userID string, date time.Time) (attendance.DailyAttendance, bool, error) {
	daily, err := a.DailyAttendanceRepository.GetByUserAndDate(ctx, userID, date)
	if err == nil {
		return daily, true, nil
	}
	if errors.Is(err, attendance.ErrDailyAttendanceNotFound) {
		return attendance.DailyAttendance{}, false, nil
	}
	return attendance.DailyAttendance{}, false, fmt.Errorf("failed to get daily attendance: %w", err)
}

// recompute folds all of the day's entries into the daily row.
func (a *AttendanceServiceImpl) recompute(ctx context.Context, daily attendance.DailyAttendance) (attendance.DailyAttendance, error) {
	entries, err := a.EntryRepository.ListByDailyAttendance(ctx, daily.ID)
	if err != nil {
		return attendance.DailyAttendance{}, fmt.Errorf("failed to list entries: %w", err)
	}

	daily.Apply(attendance.Aggregate(entries))

	if err := a.DailyAttendanceRepository.UpdateSummary(ctx, daily); err != nil {
		return attendance.DailyAttendance{}, fmt.Errorf("failed to update daily attendance: %w", err)
	}
	return daily, nil
}

func (a *AttendanceServiceImpl) localTime(ts time.Time) time.Time {
	if ts.IsZero() {
		ts = a.now()
	}
	return ts.In(a.location)
}

func recordClockEvent(event string, err error) {
	outcome := metrics.OutcomeSuccess
	if err != nil {
		outcome = metrics.OutcomeFailed
	}
	metrics.ClockEvents.WithLabelValues(event, outcome).Inc()
}
