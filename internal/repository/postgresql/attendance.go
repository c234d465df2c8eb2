package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/schedule"
	"github.com/cmlabs-hris/hris-leave-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type rowScanner interface {
	Scan(dest ...any) error
}

const entryColumns = `
	id, daily_attendance_id, user_id, date, clock_in, clock_out,
	clock_in_latitude, clock_in_longitude, clock_out_latitude, clock_out_longitude,
	late_minutes, early_minutes, working_hours, created_at, updated_at`

func scanEntry(row rowScanner) (attendance.Entry, error) {
	var (
		e              attendance.Entry
		inLat, inLng   *float64
		outLat, outLng *float64
	)
	err := row.Scan(
		&e.ID, &e.DailyAttendanceID, &e.UserID, &e.Date, &e.ClockIn, &e.ClockOut,
		&inLat, &inLng, &outLat, &outLng,
		&e.LateMinutes, &e.EarlyMinutes, &e.WorkingHours, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return attendance.Entry{}, err
	}
	e.ClockInLocation = toLocation(inLat, inLng)
	e.ClockOutLocation = toLocation(outLat, outLng)
	return e, nil
}

func toLocation(lat, lng *float64) *attendance.Location {
	if lat == nil || lng == nil {
		return nil
	}
	return &attendance.Location{Latitude: *lat, Longitude: *lng}
}

func fromLocation(loc *attendance.Location) (lat, lng *float64) {
	if loc == nil {
		return nil, nil
	}
	return &loc.Latitude, &loc.Longitude
}

type entryRepositoryImpl struct {
	db *database.DB
}

func NewEntryRepository(db *database.DB) attendance.EntryRepository {
	return &entryRepositoryImpl{db: db}
}

// Create implements attendance.EntryRepository.
func (r *entryRepositoryImpl) Create(ctx context.Context, entry attendance.Entry) (attendance.Entry, error) {
	q := GetQuerier(ctx, r.db)

	inLat, inLng := fromLocation(entry.ClockInLocation)
	outLat, outLng := fromLocation(entry.ClockOutLocation)

	query := `
		INSERT INTO attendance_entries (
			daily_attendance_id, user_id, date, clock_in, clock_out,
			clock_in_latitude, clock_in_longitude, clock_out_latitude, clock_out_longitude,
			late_minutes, early_minutes, working_hours
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
		) RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		entry.DailyAttendanceID,
		entry.UserID,
		entry.Date,
		entry.ClockIn,
		entry.ClockOut,
		inLat, inLng, outLat, outLng,
		entry.LateMinutes,
		entry.EarlyMinutes,
		entry.WorkingHours,
	).Scan(&entry.ID, &entry.CreatedAt, &entry.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return attendance.Entry{}, attendance.ErrAlreadyClockedIn
		}
		return attendance.Entry{}, fmt.Errorf("failed to create attendance entry: %w", err)
	}

	return entry, nil
}

// Update implements attendance.EntryRepository.
func (r *entryRepositoryImpl) Update(ctx context.Context, entry attendance.Entry) error {
	q := GetQuerier(ctx, r.db)

	outLat, outLng := fromLocation(entry.ClockOutLocation)

	query := `
		UPDATE attendance_entries
		SET clock_out = $1, clock_out_latitude = $2, clock_out_longitude = $3,
			late_minutes = $4, early_minutes = $5, working_hours = $6, updated_at = NOW()
		WHERE id = $7
	`

	tag, err := q.Exec(ctx, query,
		entry.ClockOut, outLat, outLng,
		entry.LateMinutes, entry.EarlyMinutes, entry.WorkingHours,
		entry.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update attendance entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrEntryNotFound
	}
	return nil
}

// GetOpenEntry implements attendance.EntryRepository.
func (r *entryRepositoryImpl) GetOpenEntry(ctx context.Context, userID string, date time.Time) (attendance.Entry, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + entryColumns + `
		FROM attendance_entries
		WHERE user_id = $1 AND date = $2 AND clock_in IS NOT NULL AND clock_out IS NULL
		LIMIT 1
		FOR UPDATE
	`

	e, err := scanEntry(q.QueryRow(ctx, query, userID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Entry{}, attendance.ErrEntryNotFound
		}
		return attendance.Entry{}, fmt.Errorf("failed to get open entry: %w", err)
	}
	return e, nil
}

// ListByDailyAttendance implements attendance.EntryRepository.
func (r *entryRepositoryImpl) ListByDailyAttendance(ctx context.Context, dailyAttendanceID string) ([]attendance.Entry, error) {
	query := `SELECT ` + entryColumns + `
		FROM attendance_entries
		WHERE daily_attendance_id = $1
		ORDER BY clock_in, id
	`
	return r.list(ctx, query, dailyAttendanceID)
}

// ListByUserAndDateRange implements attendance.EntryRepository.
func (r *entryRepositoryImpl) ListByUserAndDateRange(ctx context.Context, userID string, from, to time.Time) ([]attendance.Entry, error) {
	query := `SELECT ` + entryColumns + `
		FROM attendance_entries
		WHERE user_id = $1 AND date BETWEEN $2 AND $3
		ORDER BY clock_in, id
	`
	return r.list(ctx, query, userID, from, to)
}

func (r *entryRepositoryImpl) list(ctx context.Context, query string, args ...any) ([]attendance.Entry, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance entries: %w", err)
	}
	defer rows.Close()

	entries := make([]attendance.Entry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

const dailyColumns = `
	id, user_id, date, first_clock_in, last_clock_out, total_entries, total_working_hours,
	total_late_minutes, total_early_minutes, status, schedule_snapshot, created_at, updated_at`

func scanDaily(row rowScanner) (attendance.DailyAttendance, error) {
	var (
		d        attendance.DailyAttendance
		snapshot []byte
	)
	err := row.Scan(
		&d.ID, &d.UserID, &d.Date, &d.FirstClockIn, &d.LastClockOut, &d.TotalEntries, &d.TotalWorkingHours,
		&d.TotalLateMinutes, &d.TotalEarlyMinutes, &d.Status, &snapshot, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return attendance.DailyAttendance{}, err
	}
	if snapshot != nil {
		var o schedule.OfficeTime
		if err := json.Unmarshal(snapshot, &o); err != nil {
			return attendance.DailyAttendance{}, fmt.Errorf("failed to decode schedule snapshot: %w", err)
		}
		d.ScheduleSnapshot = &o
	}
	return d, nil
}

type dailyAttendanceRepositoryImpl struct {
	db *database.DB
}

func NewDailyAttendanceRepository(db *database.DB) attendance.DailyAttendanceRepository {
	return &dailyAttendanceRepositoryImpl{db: db}
}

// GetOrCreate implements attendance.DailyAttendanceRepository. A concurrent
// insert for the same (user, date) is absorbed by ON CONFLICT and the
// existing row is returned.
func (r *dailyAttendanceRepositoryImpl) GetOrCreate(ctx context.Context, userID string, date time.Time, snapshot *schedule.OfficeTime) (attendance.DailyAttendance, error) {
	q := GetQuerier(ctx, r.db)

	var snapshotJSON []byte
	if snapshot != nil {
		var err error
		if snapshotJSON, err = json.Marshal(snapshot); err != nil {
			return attendance.DailyAttendance{}, fmt.Errorf("failed to encode schedule snapshot: %w", err)
		}
	}

	insert := `
		INSERT INTO daily_attendances (user_id, date, status, schedule_snapshot)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, date) DO NOTHING
	`
	if _, err := q.Exec(ctx, insert, userID, date, attendance.StatusAbsent, snapshotJSON); err != nil {
		return attendance.DailyAttendance{}, fmt.Errorf("failed to create daily attendance: %w", err)
	}

	return r.GetByUserAndDate(ctx, userID, date)
}

// GetByID implements attendance.DailyAttendanceRepository.
func (r *dailyAttendanceRepositoryImpl) GetByID(ctx context.Context, id string) (attendance.DailyAttendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + dailyColumns + ` FROM daily_attendances WHERE id = $1`

	d, err := scanDaily(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.DailyAttendance{}, attendance.ErrDailyAttendanceNotFound
		}
		return attendance.DailyAttendance{}, fmt.Errorf("failed to get daily attendance: %w", err)
	}
	return d, nil
}

// GetByUserAndDate implements attendance.DailyAttendanceRepository.
func (r *dailyAttendanceRepositoryImpl) GetByUserAndDate(ctx context.Context, userID string, date time.Time) (attendance.DailyAttendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + dailyColumns + ` FROM daily_attendances WHERE user_id = $1 AND date = $2`

	d, err := scanDaily(q.QueryRow(ctx, query, userID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.DailyAttendance{}, attendance.ErrDailyAttendanceNotFound
		}
		return attendance.DailyAttendance{}, fmt.Errorf("failed to get daily attendance: %w", err)
	}
	return d, nil
}

// UpdateSummary implements attendance.DailyAttendanceRepository. The
// schedule snapshot column is never written here.
func (r *dailyAttendanceRepositoryImpl) UpdateSummary(ctx context.Context, daily attendance.DailyAttendance) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE daily_attendances
		SET first_clock_in = $1, last_clock_out = $2, total_entries = $3, total_working_hours = $4,
			total_late_minutes = $5, total_early_minutes = $6, status = $7, updated_at = NOW()
		WHERE id = $8
	`

	tag, err := q.Exec(ctx, query,
		daily.FirstClockIn, daily.LastClockOut, daily.TotalEntries, daily.TotalWorkingHours,
		daily.TotalLateMinutes, daily.TotalEarlyMinutes, daily.Status,
		daily.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update daily attendance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrDailyAttendanceNotFound
	}
	return nil
}

// ListByUserAndDateRange implements attendance.DailyAttendanceRepository.
func (r *dailyAttendanceRepositoryImpl) ListByUserAndDateRange(ctx context.Context, userID string, from, to time.Time) ([]attendance.DailyAttendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + dailyColumns + `
		FROM daily_attendances
		WHERE user_id = $1 AND date BETWEEN $2 AND $3
		ORDER BY date
	`

	rows, err := q.Query(ctx, query, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list daily attendance: %w", err)
	}
	defer rows.Close()

	dailies := make([]attendance.DailyAttendance, 0)
	for rows.Next() {
		d, err := scanDaily(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan daily attendance: %w", err)
		}
		dailies = append(dailies, d)
	}
	return dailies, rows.Err()
}
