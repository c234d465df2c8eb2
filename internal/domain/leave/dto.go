package leave

import (
	"github.com/cmlabs-hris/hris-leave-engine/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

const (
	SkippedAlreadyProcessed = "already_processed"
	SkippedNoDeduction      = "no_deduction"
)

type EarnedLeaveRunRequest struct {
	Year        int      `json:"year"`
	PostingYear int      `json:"posting_year,omitempty"`
	UserIDs     []string `json:"user_ids,omitempty"`
	DryRun      bool     `json:"dry_run"`
}

func (r *EarnedLeaveRunRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidYear(r.Year) {
		errs = append(errs, validator.ValidationError{
			Field:   "year",
			Message: "year must be a four-digit year",
		})
	}
	if r.PostingYear != 0 && !validator.IsValidYear(r.PostingYear) {
		errs = append(errs, validator.ValidationError{
			Field:   "posting_year",
			Message: "posting_year must be a four-digit year",
		})
	}
	errs = append(errs, validateUserIDs(r.UserIDs)...)

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type DeductionRunRequest struct {
	Month   int      `json:"month"`
	Year    int      `json:"year"`
	UserIDs []string `json:"user_ids,omitempty"`
	DryRun  bool     `json:"dry_run"`
}

func (r *DeductionRunRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidMonth(r.Month) {
		errs = append(errs, validator.ValidationError{
			Field:   "month",
			Message: "month must be between 1 and 12",
		})
	}
	if !validator.IsValidYear(r.Year) {
		errs = append(errs, validator.ValidationError{
			Field:   "year",
			Message: "year must be a four-digit year",
		})
	}
	errs = append(errs, validateUserIDs(r.UserIDs)...)

	if len(errs) > 0 {
		return errs
	}

	return nil
}

func validateUserIDs(ids []string) validator.ValidationErrors {
	var errs validator.ValidationErrors
	for _, id := range ids {
		if validator.IsEmpty(id) {
			errs = append(errs, validator.ValidationError{
				Field:   "user_ids",
				Message: "user_ids must not contain empty values",
			})
			break
		}
	}
	return errs
}

// UserError is the serialisable form of a per-user failure.
type UserError struct {
	UserID string `json:"user_id"`
	Error  string `json:"error"`
}

// BatchSummary counts outcomes of a batch run. Processed counts users that
// finished without error, whether or not anything was written. DryRun is the
// one field expected to differ between a dry run and the real run it previews.
type BatchSummary struct {
	Processed int         `json:"processed"`
	Updated   int         `json:"updated"`
	Skipped   int         `json:"skipped"`
	Failed    int         `json:"failed"`
	DryRun    bool        `json:"dry_run"`
	Errors    []UserError `json:"errors,omitempty"`
}

type EarnedLeaveResult struct {
	UserID          string          `json:"user_id"`
	DaysWorked      int             `json:"days_worked"`
	PreviousBalance decimal.Decimal `json:"previous_balance"`
	CarryForward    decimal.Decimal `json:"carry_forward"`
	NewEarned       int             `json:"new_earned"`
	TotalBalance    decimal.Decimal `json:"total_balance"`
	Updated         bool            `json:"updated"`
}

type EarnedLeaveRunResponse struct {
	Year        int                 `json:"year"`
	PostingYear int                 `json:"posting_year"`
	Results     []EarnedLeaveResult `json:"results"`
	Summary     BatchSummary        `json:"summary"`
}

type DeductionResult struct {
	UserID             string                     `json:"user_id"`
	Occurrences        int                        `json:"occurrences"`
	AbsentDays         int                        `json:"absent_days"`
	LateEarlyDeduction decimal.Decimal            `json:"late_early_deduction"`
	AbsentDeduction    decimal.Decimal            `json:"absent_deduction"`
	TotalDeduction     decimal.Decimal            `json:"total_deduction"`
	AppliedPerType     map[string]decimal.Decimal `json:"applied_per_type"`
	Shortfall          decimal.Decimal            `json:"shortfall"`
	SkippedReason      string                     `json:"skipped_reason,omitempty"`
}

type DeductionRunResponse struct {
	Month   int               `json:"month"`
	Year    int               `json:"year"`
	Results []DeductionResult `json:"results"`
	Summary BatchSummary      `json:"summary"`
}

type BalanceResponse struct {
	LeaveTypeID   string          `json:"leave_type_id"`
	LeaveTypeCode string          `json:"leave_type_code,omitempty"`
	Year          int             `json:"year"`
	Balance       decimal.Decimal `json:"balance"`
	Consumed      decimal.Decimal `json:"consumed"`
	Accrued       decimal.Decimal `json:"accrued"`
	CarryForward  decimal.Decimal `json:"carry_forward"`
}
