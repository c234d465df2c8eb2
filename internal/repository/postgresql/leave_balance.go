package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const balanceColumns = `
	id, user_id, leave_type_id, year, balance, consumed, accrued, carry_forward, created_at, updated_at`

func scanBalance(row rowScanner) (leave.Balance, error) {
	var b leave.Balance
	err := row.Scan(
		&b.ID, &b.UserID, &b.LeaveTypeID, &b.Year,
		&b.Balance, &b.Consumed, &b.Accrued, &b.CarryForward,
		&b.CreatedAt, &b.UpdatedAt,
	)
	return b, err
}

type balanceRepositoryImpl struct {
	db *database.DB
}

func NewBalanceRepository(db *database.DB) leave.BalanceRepository {
	return &balanceRepositoryImpl{db: db}
}

// Get implements leave.BalanceRepository.
func (r *balanceRepositoryImpl) Get(ctx context.Context, userID, leaveTypeID string, year int) (leave.Balance, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + balanceColumns + `
		FROM leave_balances
		WHERE user_id = $1 AND leave_type_id = $2 AND year = $3
	`

	b, err := scanBalance(q.QueryRow(ctx, query, userID, leaveTypeID, year))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.Balance{}, leave.ErrBalanceNotFound
		}
		return leave.Balance{}, fmt.Errorf("failed to get leave balance: %w", err)
	}
	return b, nil
}

// ListByUserAndYear implements leave.BalanceRepository.
func (r *balanceRepositoryImpl) ListByUserAndYear(ctx context.Context, userID string, year int) ([]leave.Balance, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + balanceColumns + `
		FROM leave_balances
		WHERE user_id = $1 AND year = $2
		ORDER BY leave_type_id
	`

	rows, err := q.Query(ctx, query, userID, year)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave balances: %w", err)
	}
	defer rows.Close()

	balances := make([]leave.Balance, 0)
	for rows.Next() {
		b, err := scanBalance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leave balance: %w", err)
		}
		balances = append(balances, b)
	}
	return balances, rows.Err()
}

// Create implements leave.BalanceRepository.
func (r *balanceRepositoryImpl) Create(ctx context.Context, balance leave.Balance) (leave.Balance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_balances (user_id, leave_type_id, year, balance, consumed, accrued, carry_forward)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		balance.UserID, balance.LeaveTypeID, balance.Year,
		balance.Balance, balance.Consumed, balance.Accrued, balance.CarryForward,
	).Scan(&balance.ID, &balance.CreatedAt, &balance.UpdatedAt)
	if err != nil {
		return leave.Balance{}, fmt.Errorf("failed to create leave balance: %w", err)
	}
	return balance, nil
}

// Update implements leave.BalanceRepository. Only the supplied fields are
// written.
func (r *balanceRepositoryImpl) Update(ctx context.Context, id string, fields leave.BalanceFields) error {
	if fields.IsEmpty() {
		return nil
	}
	q := GetQuerier(ctx, r.db)

	updates := []string{}
	args := []interface{}{}
	argIdx := 1

	set := func(column string, value *decimal.Decimal) {
		if value == nil {
			return
		}
		updates = append(updates, fmt.Sprintf("%s = $%d", column, argIdx))
		args = append(args, *value)
		argIdx++
	}
	set("balance", fields.Balance)
	set("consumed", fields.Consumed)
	set("accrued", fields.Accrued)
	set("carry_forward", fields.CarryForward)

	args = append(args, id)
	query := fmt.Sprintf(
		"UPDATE leave_balances SET %s, updated_at = NOW() WHERE id = $%d",
		strings.Join(updates, ", "), argIdx,
	)

	tag, err := q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update leave balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return leave.ErrBalanceNotFound
	}
	return nil
}

// Adjust implements leave.BalanceRepository.
func (r *balanceRepositoryImpl) Adjust(ctx context.Context, id string, deltaBalance, deltaConsumed decimal.Decimal) (leave.Balance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_balances
		SET balance = balance + $1, consumed = consumed + $2, updated_at = NOW()
		WHERE id = $3
		RETURNING ` + balanceColumns

	b, err := scanBalance(q.QueryRow(ctx, query, deltaBalance, deltaConsumed, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.Balance{}, leave.ErrBalanceNotFound
		}
		return leave.Balance{}, fmt.Errorf("failed to adjust leave balance: %w", err)
	}
	return b, nil
}
