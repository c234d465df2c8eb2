package leave

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-engine/internal/pkg/database"
	"github.com/shopspring/decimal"
)

type LedgerImpl struct {
	transactor database.Transactor
	leave.BalanceRepository
	leave.LeaveTypeRepository
}

func NewLedger(transactor database.Transactor, balanceRepository leave.BalanceRepository, leaveTypeRepository leave.LeaveTypeRepository) *LedgerImpl {
	return &LedgerImpl{
		transactor:          transactor,
		BalanceRepository:   balanceRepository,
		LeaveTypeRepository: leaveTypeRepository,
	}
}

// Get implements leave.Ledger.
func (l *LedgerImpl) Get(ctx context.Context, userID, leaveTypeID string, year int) (leave.Balance, error) {
	return l.BalanceRepository.Get(ctx, userID, leaveTypeID, year)
}

// List implements leave.Ledger.
func (l *LedgerImpl) List(ctx context.Context, userID string, year int) ([]leave.BalanceResponse, error) {
	balances, err := l.BalanceRepository.ListByUserAndYear(ctx, userID, year)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave balances: %w", err)
	}

	responses := make([]leave.BalanceResponse, 0, len(balances))
	for _, b := range balances {
		resp := leave.BalanceResponse{
			LeaveTypeID:  b.LeaveTypeID,
			Year:         b.Year,
			Balance:      b.Balance,
			Consumed:     b.Consumed,
			Accrued:      b.Accrued,
			CarryForward: b.CarryForward,
		}
		if lt, err := l.LeaveTypeRepository.GetByID(ctx, b.LeaveTypeID); err == nil {
			resp.LeaveTypeCode = lt.Code
		}
		responses = append(responses, resp)
	}
	return responses, nil
}

// Upsert implements leave.Ledger.
func (l *LedgerImpl) Upsert(ctx context.Context, userID, leaveTypeID string, year int, fields leave.BalanceFields) (leave.Balance, error) {
	var result leave.Balance
	err := l.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		existing, err := l.BalanceRepository.Get(ctx, userID, leaveTypeID, year)
		if errors.Is(err, leave.ErrBalanceNotFound) {
			created, err := l.BalanceRepository.Create(ctx, fields.ApplyTo(leave.Balance{
				UserID:       userID,
				LeaveTypeID:  leaveTypeID,
				Year:         year,
				Balance:      decimal.Zero,
				Consumed:     decimal.Zero,
				Accrued:      decimal.Zero,
				CarryForward: decimal.Zero,
			}))
			if err != nil {
				return fmt.Errorf("failed to create leave balance: %w", err)
			}
			result = created
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to get leave balance: %w", err)
		}

		if fields.IsEmpty() {
			result = existing
			return nil
		}

		if err := l.BalanceRepository.Update(ctx, existing.ID, fields); err != nil {
			return fmt.Errorf("failed to update leave balance: %w", err)
		}
		result = fields.ApplyTo(existing)
		return nil
	})
	if err != nil {
		return leave.Balance{}, err
	}
	return result, nil
}

// Adjust implements leave.Ledger.
func (l *LedgerImpl) Adjust(ctx context.Context, userID, leaveTypeID string, year int, deltaBalance, deltaConsumed decimal.Decimal) (leave.Balance, error) {
	existing, err := l.BalanceRepository.Get(ctx, userID, leaveTypeID, year)
	if err != nil {
		return leave.Balance{}, err
	}

	adjusted, err := l.BalanceRepository.Adjust(ctx, existing.ID, deltaBalance, deltaConsumed)
	if err != nil {
		return leave.Balance{}, fmt.Errorf("failed to adjust leave balance: %w", err)
	}
	return adjusted, nil
}

// ResolveTypeMapping looks up the casual and earned leave types by code.
// Both must exist; the earned type may be inactive.
func ResolveTypeMapping(ctx context.Context, leaveTypes leave.LeaveTypeRepository, casualCode, earnedCode string) (leave.TypeMapping, error) {
	casual, err := leaveTypes.GetByCode(ctx, casualCode)
	if err != nil {
		return leave.TypeMapping{}, fmt.Errorf("%w: casual code %q: %v", leave.ErrLeaveTypeNotMapped, casualCode, err)
	}
	earned, err := leaveTypes.GetByCode(ctx, earnedCode)
	if err != nil {
		return leave.TypeMapping{}, fmt.Errorf("%w: earned code %q: %v", leave.ErrLeaveTypeNotMapped, earnedCode, err)
	}
	return leave.TypeMapping{Casual: casual, Earned: earned}, nil
}
