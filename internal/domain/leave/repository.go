package leave

import (
	"context"

	"github.com/shopspring/decimal"
)

// LeaveTypeRepository - interface for leave_types table
type LeaveTypeRepository interface {
	GetByID(ctx context.Context, id string) (LeaveType, error)
	GetByCode(ctx context.Context, code string) (LeaveType, error)
}

// BalanceRepository - interface for leave_balances table
type BalanceRepository interface {
	Get(ctx context.Context, userID, leaveTypeID string, year int) (Balance, error)
	ListByUserAndYear(ctx context.Context, userID string, year int) ([]Balance, error)
	Create(ctx context.Context, balance Balance) (Balance, error)
	Update(ctx context.Context, id string, fields BalanceFields) error
	// Adjust adds the deltas to balance and consumed in a single statement.
	Adjust(ctx context.Context, id string, deltaBalance, deltaConsumed decimal.Decimal) (Balance, error)
}

// ApplicationRepository - interface for leave_applications table
type ApplicationRepository interface {
	Create(ctx context.Context, application Application) (Application, error)
	ListByUser(ctx context.Context, userID string) ([]Application, error)
}

// EarnedLeaveConfigRepository - interface for earned_leave_configs table
type EarnedLeaveConfigRepository interface {
	// GetActiveForYear returns the active config for year, or ErrEarnedLeaveConfigNotFound
	GetActiveForYear(ctx context.Context, year int) (EarnedLeaveConfig, error)
	// GetActiveDefault returns the active config with no year, or ErrEarnedLeaveConfigNotFound
	GetActiveDefault(ctx context.Context) (EarnedLeaveConfig, error)
}

// DeductionRunRepository - interface for leave_deduction_runs table
type DeductionRunRepository interface {
	Exists(ctx context.Context, userID string, year, month int) (bool, error)
	// Create reports a duplicate (user, year, month) as ErrDeductionAlreadyRecorded
	Create(ctx context.Context, run DeductionRun) (DeductionRun, error)
}
