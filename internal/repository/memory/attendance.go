package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/schedule"
	"github.com/shopspring/decimal"
)

type entryRepository struct {
	store *Store
}

func NewEntryRepository(store *Store) attendance.EntryRepository {
	return &entryRepository{store: store}
}

// Create implements attendance.EntryRepository.
func (r *entryRepository) Create(ctx context.Context, entry attendance.Entry) (attendance.Entry, error) {
	err := r.store.write(ctx, func(t *tables) error {
		if entry.IsOpen() {
			for _, e := range t.entries {
				if e.UserID == entry.UserID && e.Date.Equal(entry.Date) && e.IsOpen() {
					return attendance.ErrAlreadyClockedIn
				}
			}
		}
		now := r.store.now()
		entry.ID = newID()
		entry.CreatedAt = now
		entry.UpdatedAt = now
		t.entries[entry.ID] = entry
		return nil
	})
	if err != nil {
		return attendance.Entry{}, err
	}
	return entry, nil
}

// Update implements attendance.EntryRepository.
func (r *entryRepository) Update(ctx context.Context, entry attendance.Entry) error {
	return r.store.write(ctx, func(t *tables) error {
		if _, ok := t.entries[entry.ID]; !ok {
			return attendance.ErrEntryNotFound
		}
		entry.UpdatedAt = r.store.now()
		t.entries[entry.ID] = entry
		return nil
	})
}

// GetOpenEntry implements attendance.EntryRepository.
func (r *entryRepository) GetOpenEntry(ctx context.Context, userID string, date time.Time) (attendance.Entry, error) {
	var (
		open  attendance.Entry
		found bool
	)
	r.store.read(func(t *tables) {
		for _, e := range t.entries {
			if e.UserID == userID && e.Date.Equal(date) && e.IsOpen() {
				open, found = e, true
				return
			}
		}
	})
	if !found {
		return attendance.Entry{}, attendance.ErrEntryNotFound
	}
	return open, nil
}

// ListByDailyAttendance implements attendance.EntryRepository.
func (r *entryRepository) ListByDailyAttendance(ctx context.Context, dailyAttendanceID string) ([]attendance.Entry, error) {
	return r.list(func(e attendance.Entry) bool {
		return e.DailyAttendanceID == dailyAttendanceID
	}), nil
}

// ListByUserAndDateRange implements attendance.EntryRepository.
func (r *entryRepository) ListByUserAndDateRange(ctx context.Context, userID string, from, to time.Time) ([]attendance.Entry, error) {
	return r.list(func(e attendance.Entry) bool {
		return e.UserID == userID && inRange(e.Date, from, to)
	}), nil
}

func (r *entryRepository) list(match func(e attendance.Entry) bool) []attendance.Entry {
	var entries []attendance.Entry
	r.store.read(func(t *tables) {
		for _, e := range t.entries {
			if match(e) {
				entries = append(entries, e)
			}
		}
	})
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].ClockIn == nil || entries[j].ClockIn == nil {
			return entries[i].ID < entries[j].ID
		}
		return entries[i].ClockIn.Before(*entries[j].ClockIn)
	})
	return entries
}

type dailyAttendanceRepository struct {
	store *Store
}

func NewDailyAttendanceRepository(store *Store) attendance.DailyAttendanceRepository {
	return &dailyAttendanceRepository{store: store}
}

// GetOrCreate implements attendance.DailyAttendanceRepository.
func (r *dailyAttendanceRepository) GetOrCreate(ctx context.Context, userID string, date time.Time, snapshot *schedule.OfficeTime) (attendance.DailyAttendance, error) {
	var daily attendance.DailyAttendance
	err := r.store.write(ctx, func(t *tables) error {
		for _, d := range t.dailies {
			if d.UserID == userID && d.Date.Equal(date) {
				daily = d
				return nil
			}
		}
		now := r.store.now()
		daily = attendance.DailyAttendance{
			ID:                newID(),
			UserID:            userID,
			Date:              date,
			TotalWorkingHours: decimal.Zero,
			Status:            attendance.StatusAbsent,
			ScheduleSnapshot:  snapshot,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		t.dailies[daily.ID] = daily
		return nil
	})
	return daily, err
}

// GetByID implements attendance.DailyAttendanceRepository.
func (r *dailyAttendanceRepository) GetByID(ctx context.Context, id string) (attendance.DailyAttendance, error) {
	var (
		daily attendance.DailyAttendance
		ok    bool
	)
	r.store.read(func(t *tables) {
		daily, ok = t.dailies[id]
	})
	if !ok {
		return attendance.DailyAttendance{}, attendance.ErrDailyAttendanceNotFound
	}
	return daily, nil
}

// GetByUserAndDate implements attendance.DailyAttendanceRepository.
func (r *dailyAttendanceRepository) GetByUserAndDate(ctx context.Context, userID string, date time.Time) (attendance.DailyAttendance, error) {
	var (
		daily attendance.DailyAttendance
		found bool
	)
	r.store.read(func(t *tables) {
		for _, d := range t.dailies {
			if d.UserID == userID && d.Date.Equal(date) {
				daily, found = d, true
				return
			}
		}
	})
	if !found {
		return attendance.DailyAttendance{}, attendance.ErrDailyAttendanceNotFound
	}
	return daily, nil
}

// UpdateSummary implements attendance.DailyAttendanceRepository. The
// schedule snapshot of the stored row is kept as is.
func (r *dailyAttendanceRepository) UpdateSummary(ctx context.Context, daily attendance.DailyAttendance) error {
	return r.store.write(ctx, func(t *tables) error {
		stored, ok := t.dailies[daily.ID]
		if !ok {
			return attendance.ErrDailyAttendanceNotFound
		}
		daily.ScheduleSnapshot = stored.ScheduleSnapshot
		daily.CreatedAt = stored.CreatedAt
		daily.UpdatedAt = r.store.now()
		t.dailies[daily.ID] = daily
		return nil
	})
}

// ListByUserAndDateRange implements attendance.DailyAttendanceRepository.
func (r *dailyAttendanceRepository) ListByUserAndDateRange(ctx context.Context, userID string, from, to time.Time) ([]attendance.DailyAttendance, error) {
	var dailies []attendance.DailyAttendance
	r.store.read(func(t *tables) {
		for _, d := range t.dailies {
			if d.UserID == userID && inRange(d.Date, from, to) {
				dailies = append(dailies, d)
			}
		}
	})
	sort.Slice(dailies, func(i, j int) bool { return dailies[i].Date.Before(dailies[j].Date) })
	return dailies, nil
}
