package leave

import (
	"time"

	"github.com/shopspring/decimal"
)

// LeaveType entity
type LeaveType struct {
	ID        string
	Code      string
	Name      string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TypeMapping holds the two leave types the engine debits and credits,
// resolved from configured codes.
type TypeMapping struct {
	Casual LeaveType
	Earned LeaveType
}

// Balance is the ledger row for (user, leave type, year). Balance may go
// negative for the earned type; there is no floor.
type Balance struct {
	ID           string
	UserID       string
	LeaveTypeID  string
	Year         int
	Balance      decimal.Decimal
	Consumed     decimal.Decimal
	Accrued      decimal.Decimal
	CarryForward decimal.Decimal
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// BalanceFields is a partial update. Nil fields are left untouched.
type BalanceFields struct {
	Balance      *decimal.Decimal
	Consumed     *decimal.Decimal
	Accrued      *decimal.Decimal
	CarryForward *decimal.Decimal
}

func (f BalanceFields) IsEmpty() bool {
	return f.Balance == nil && f.Consumed == nil && f.Accrued == nil && f.CarryForward == nil
}

// ApplyTo returns b with the supplied fields overwritten.
func (f BalanceFields) ApplyTo(b Balance) Balance {
	if f.Balance != nil {
		b.Balance = *f.Balance
	}
	if f.Consumed != nil {
		b.Consumed = *f.Consumed
	}
	if f.Accrued != nil {
		b.Accrued = *f.Accrued
	}
	if f.CarryForward != nil {
		b.CarryForward = *f.CarryForward
	}
	return b
}

// Diff returns only the fields of want that differ from b.
func (b Balance) Diff(want Balance) BalanceFields {
	var f BalanceFields
	if !b.Balance.Equal(want.Balance) {
		f.Balance = &want.Balance
	}
	if !b.Consumed.Equal(want.Consumed) {
		f.Consumed = &want.Consumed
	}
	if !b.Accrued.Equal(want.Accrued) {
		f.Accrued = &want.Accrued
	}
	if !b.CarryForward.Equal(want.CarryForward) {
		f.CarryForward = &want.CarryForward
	}
	return f
}

type ApplicationStatus string

const (
	ApplicationStatusPending  ApplicationStatus = "pending"
	ApplicationStatusApproved ApplicationStatus = "approved"
	ApplicationStatusRejected ApplicationStatus = "rejected"
)

// Application is a leave request. The deduction engine writes
// auto-approved applications as its audit trail.
type Application struct {
	ID             string
	UserID         string
	LeaveTypeID    string
	StartDate      time.Time
	EndDate        time.Time
	DaysCount      decimal.Decimal
	Status         ApplicationStatus
	Reason         string
	IsAutoApproved bool
	ApprovedBy     *string
	ApprovedAt     *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// EarnedLeaveConfig parameterises the yearly accrual. A nil Year marks
// the default config used when no year-specific one is active.
type EarnedLeaveConfig struct {
	ID                        string
	Year                      *int
	WorkingDaysPerEarnedLeave int
	MaxEarnedLeaveDays        int
	IncludeWeekends           bool
	IncludeHolidays           bool
	IncludeAbsentDays         bool
	IsActive                  bool
	CreatedAt                 time.Time
	UpdatedAt                 time.Time
}

// DeductionRun marks that the monthly deduction for (user, year, month)
// has been applied.
type DeductionRun struct {
	ID             string
	UserID         string
	Year           int
	Month          int
	TotalDeduction decimal.Decimal
	CreatedAt      time.Time
}
