package leave

import (
	"context"

	"github.com/shopspring/decimal"
)

// Ledger reads and mutates leave balances.
type Ledger interface {
	Get(ctx context.Context, userID, leaveTypeID string, year int) (Balance, error)
	List(ctx context.Context, userID string, year int) ([]BalanceResponse, error)
	// Upsert creates the row (unsupplied fields zero) or overwrites only the
	// supplied fields of an existing row.
	Upsert(ctx context.Context, userID, leaveTypeID string, year int, fields BalanceFields) (Balance, error)
	// Adjust adds the deltas to an existing row without any floor.
	Adjust(ctx context.Context, userID, leaveTypeID string, year int, deltaBalance, deltaConsumed decimal.Decimal) (Balance, error)
}

// EarnedLeaveService runs the yearly earned-leave accrual.
type EarnedLeaveService interface {
	RunEarnedLeaveCalculation(ctx context.Context, req EarnedLeaveRunRequest) (EarnedLeaveRunResponse, error)
}

// DeductionService runs the monthly attendance deductions.
type DeductionService interface {
	RunMonthlyDeductions(ctx context.Context, req DeductionRunRequest) (DeductionRunResponse, error)
}
