package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type earnedLeaveConfigRepositoryImpl struct {
	db *database.DB
}

func NewEarnedLeaveConfigRepository(db *database.DB) leave.EarnedLeaveConfigRepository {
	return &earnedLeaveConfigRepositoryImpl{db: db}
}

// GetActiveForYear implements leave.EarnedLeaveConfigRepository.
func (r *earnedLeaveConfigRepositoryImpl) GetActiveForYear(ctx context.Context, year int) (leave.EarnedLeaveConfig, error) {
	return r.find(ctx, `year = $1`, year)
}

// GetActiveDefault implements leave.EarnedLeaveConfigRepository.
func (r *earnedLeaveConfigRepositoryImpl) GetActiveDefault(ctx context.Context) (leave.EarnedLeaveConfig, error) {
	return r.find(ctx, `year IS NULL`)
}

func (r *earnedLeaveConfigRepositoryImpl) find(ctx context.Context, cond string, args ...any) (leave.EarnedLeaveConfig, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, year, working_days_per_earned_leave, max_earned_leave_days,
			   include_weekends, include_holidays, include_absent_days, is_active,
			   created_at, updated_at
		FROM earned_leave_configs
		WHERE is_active = TRUE AND ` + cond + `
		ORDER BY created_at DESC
		LIMIT 1
	`

	var c leave.EarnedLeaveConfig
	err := q.QueryRow(ctx, query, args...).Scan(
		&c.ID, &c.Year, &c.WorkingDaysPerEarnedLeave, &c.MaxEarnedLeaveDays,
		&c.IncludeWeekends, &c.IncludeHolidays, &c.IncludeAbsentDays, &c.IsActive,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.EarnedLeaveConfig{}, leave.ErrEarnedLeaveConfigNotFound
		}
		return leave.EarnedLeaveConfig{}, fmt.Errorf("failed to get earned leave config: %w", err)
	}
	return c, nil
}

type deductionRunRepositoryImpl struct {
	db *database.DB
}

func NewDeductionRunRepository(db *database.DB) leave.DeductionRunRepository {
	return &deductionRunRepositoryImpl{db: db}
}

// Exists implements leave.DeductionRunRepository.
func (r *deductionRunRepositoryImpl) Exists(ctx context.Context, userID string, year, month int) (bool, error) {
	q := GetQuerier(ctx, r.db)

	var exists bool
	err := q.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM leave_deduction_runs WHERE user_id = $1 AND year = $2 AND month = $3)`,
		userID, year, month,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check deduction run: %w", err)
	}
	return exists, nil
}

// Create implements leave.DeductionRunRepository.
func (r *deductionRunRepositoryImpl) Create(ctx context.Context, run leave.DeductionRun) (leave.DeductionRun, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_deduction_runs (user_id, year, month, total_deduction)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := q.QueryRow(ctx, query, run.UserID, run.Year, run.Month, run.TotalDeduction).
		Scan(&run.ID, &run.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return leave.DeductionRun{}, leave.ErrDeductionAlreadyRecorded
		}
		return leave.DeductionRun{}, fmt.Errorf("failed to record deduction run: %w", err)
	}
	return run, nil
}
