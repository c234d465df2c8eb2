package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/schedule"
	"github.com/cmlabs-hris/hris-leave-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const timeOfDayLayout = "15:04:05"

type officeTimeRepositoryImpl struct {
	db *database.DB
}

func NewOfficeTimeRepository(db *database.DB) schedule.OfficeTimeRepository {
	return &officeTimeRepositoryImpl{db: db}
}

// GetByID implements schedule.OfficeTimeRepository.
func (r *officeTimeRepositoryImpl) GetByID(ctx context.Context, id string) (schedule.OfficeTime, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, name, start_time::text, end_time::text, late_grace_minutes, early_grace_minutes,
			   working_days, break_minutes, created_at, updated_at
		FROM office_times
		WHERE id = $1
	`

	var (
		o          schedule.OfficeTime
		start, end string
	)
	err := q.QueryRow(ctx, query, id).Scan(
		&o.ID, &o.Name, &start, &end, &o.LateGraceMinutes, &o.EarlyGraceMinutes,
		&o.WorkingDays, &o.BreakMinutes, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return schedule.OfficeTime{}, schedule.ErrOfficeTimeNotFound
		}
		return schedule.OfficeTime{}, fmt.Errorf("failed to get office time: %w", err)
	}

	if o.StartTime, err = time.Parse(timeOfDayLayout, start); err != nil {
		return schedule.OfficeTime{}, fmt.Errorf("invalid office start time %q: %w", start, err)
	}
	if o.EndTime, err = time.Parse(timeOfDayLayout, end); err != nil {
		return schedule.OfficeTime{}, fmt.Errorf("invalid office end time %q: %w", end, err)
	}

	return o, nil
}
