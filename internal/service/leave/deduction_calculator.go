package leave

import (
	"github.com/shopspring/decimal"
)

var (
	half                = decimal.RequireFromString("0.5")
	occurrenceAllowance = 4
)

type Deduction struct {
	LateEarly decimal.Decimal
	Absent    decimal.Decimal
	Total     decimal.Decimal
}

// CascadePlan splits a deduction across the casual and earned balances.
type CascadePlan struct {
	Casual    decimal.Decimal
	Earned    decimal.Decimal
	Shortfall decimal.Decimal
}

type DeductionCalculator struct {
}

func NewDeductionCalculator() *DeductionCalculator {
	return &DeductionCalculator{}
}

// Deduction converts late/early occurrences and absent days into days to
// deduct. The first three occurrences are free; the fourth costs half a
// day and each one after it another half.
func (c *DeductionCalculator) Deduction(occurrences, absentDays int) Deduction {
	lateEarly := decimal.Zero
	if occurrences >= occurrenceAllowance {
		extra := decimal.NewFromInt(int64(occurrences - occurrenceAllowance))
		lateEarly = half.Add(half.Mul(extra))
	}
	absent := decimal.NewFromInt(int64(absentDays))

	return Deduction{
		LateEarly: lateEarly,
		Absent:    absent,
		Total:     lateEarly.Add(absent),
	}
}

// Plan takes from the casual balance first, only while it is positive. The
// rest goes to the earned balance, which may go negative. When the earned
// type is unavailable the rest is reported as shortfall instead.
func (c *DeductionCalculator) Plan(total, casualBalance decimal.Decimal, earnedAvailable bool) CascadePlan {
	plan := CascadePlan{
		Casual:    decimal.Zero,
		Earned:    decimal.Zero,
		Shortfall: decimal.Zero,
	}
	if !total.IsPositive() {
		return plan
	}

	remaining := total
	if casualBalance.IsPositive() {
		plan.Casual = decimal.Min(casualBalance, remaining)
		remaining = remaining.Sub(plan.Casual)
	}

	if remaining.IsPositive() {
		if earnedAvailable {
			plan.Earned = remaining
		} else {
			plan.Shortfall = remaining
		}
	}
	return plan
}
