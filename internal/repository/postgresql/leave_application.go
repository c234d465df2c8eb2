package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-engine/internal/pkg/database"
)

type applicationRepositoryImpl struct {
	db *database.DB
}

func NewApplicationRepository(db *database.DB) leave.ApplicationRepository {
	return &applicationRepositoryImpl{db: db}
}

// Create implements leave.ApplicationRepository.
func (r *applicationRepositoryImpl) Create(ctx context.Context, application leave.Application) (leave.Application, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_applications (
			user_id, leave_type_id, start_date, end_date, days_count,
			status, reason, is_auto_approved, approved_by, approved_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		) RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		application.UserID,
		application.LeaveTypeID,
		application.StartDate,
		application.EndDate,
		application.DaysCount,
		application.Status,
		application.Reason,
		application.IsAutoApproved,
		application.ApprovedBy,
		application.ApprovedAt,
	).Scan(&application.ID, &application.CreatedAt, &application.UpdatedAt)
	if err != nil {
		return leave.Application{}, fmt.Errorf("failed to create leave application: %w", err)
	}

	return application, nil
}

// ListByUser implements leave.ApplicationRepository.
func (r *applicationRepositoryImpl) ListByUser(ctx context.Context, userID string) ([]leave.Application, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, user_id, leave_type_id, start_date, end_date, days_count,
			   status, reason, is_auto_approved, approved_by, approved_at,
			   created_at, updated_at
		FROM leave_applications
		WHERE user_id = $1
		ORDER BY created_at, id
	`

	rows, err := q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave applications: %w", err)
	}
	defer rows.Close()

	applications := make([]leave.Application, 0)
	for rows.Next() {
		var a leave.Application
		if err := rows.Scan(
			&a.ID, &a.UserID, &a.LeaveTypeID, &a.StartDate, &a.EndDate, &a.DaysCount,
			&a.Status, &a.Reason, &a.IsAutoApproved, &a.ApprovedBy, &a.ApprovedAt,
			&a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan leave application: %w", err)
		}
		applications = append(applications, a)
	}
	return applications, rows.Err()
}
