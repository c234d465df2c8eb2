package leave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/user"
	"github.com/cmlabs-hris/hris-leave-engine/internal/pkg/database"
	"github.com/cmlabs-hris/hris-leave-engine/internal/pkg/metrics"
	"github.com/shopspring/decimal"
)

const batchDeduction = "monthly_deduction"

type DeductionServiceImpl struct {
	transactor    database.Transactor
	ledger        leave.Ledger
	types         leave.TypeMapping
	calculator    *DeductionCalculator
	leaveTypes    leave.LeaveTypeRepository
	applications  leave.ApplicationRepository
	runs          leave.DeductionRunRepository
	users         user.UserRepository
	entries       attendance.EntryRepository
	dailies       attendance.DailyAttendanceRepository
	systemActorID string
	now           func() time.Time
}

func NewDeductionService(
	transactor database.Transactor,
	ledger leave.Ledger,
	types leave.TypeMapping,
	leaveTypes leave.LeaveTypeRepository,
	applications leave.ApplicationRepository,
	runs leave.DeductionRunRepository,
	users user.UserRepository,
	entries attendance.EntryRepository,
	dailies attendance.DailyAttendanceRepository,
	systemActorID string,
) *DeductionServiceImpl {
	return &DeductionServiceImpl{
		transactor:    transactor,
		ledger:        ledger,
		types:         types,
		calculator:    NewDeductionCalculator(),
		leaveTypes:    leaveTypes,
		applications:  applications,
		runs:          runs,
		users:         users,
		entries:       entries,
		dailies:       dailies,
		systemActorID: systemActorID,
		now:           time.Now,
	}
}

type deductionTypes struct {
	casual          leave.LeaveType
	earned          leave.LeaveType
	earnedAvailable bool
}

// RunMonthlyDeductions implements leave.DeductionService. Each user's
// deduction is applied in its own transaction together with the run
// record, so a rerun for the same month skips users already charged.
func (s *DeductionServiceImpl) RunMonthlyDeductions(ctx context.Context, req leave.DeductionRunRequest) (leave.DeductionRunResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.DeductionRunResponse{}, err
	}
	start := time.Now()
	defer metrics.ObserveBatch(batchDeduction, req.DryRun, start)

	types, err := s.resolveTypes(ctx)
	if err != nil {
		return leave.DeductionRunResponse{}, err
	}

	users, err := targetUsers(ctx, s.users, req.UserIDs)
	if err != nil {
		return leave.DeductionRunResponse{}, err
	}

	slog.Info("Starting monthly deductions",
		"year", req.Year,
		"month", req.Month,
		"users", len(users),
		"dry_run", req.DryRun,
		"earned_available", types.earnedAvailable,
	)

	response := leave.DeductionRunResponse{
		Month:   req.Month,
		Year:    req.Year,
		Results: make([]leave.DeductionResult, 0, len(users)),
		Summary: leave.BatchSummary{DryRun: req.DryRun},
	}

	for _, u := range users {
		if err := ctx.Err(); err != nil {
			slog.Warn("Monthly deductions cancelled", "processed", response.Summary.Processed, "error", err)
			return response, err
		}

		result, err := s.processUser(ctx, u.ID, req.Year, req.Month, types, req.DryRun)
		if err != nil {
			perr := &leave.UserProcessingError{UserID: u.ID, Err: err}
			slog.Error("Monthly deduction failed for user", "user_id", u.ID, "error", err)
			response.Summary.Failed++
			response.Summary.Errors = append(response.Summary.Errors, leave.UserError{UserID: u.ID, Error: perr.Error()})
			metrics.BatchUsers.WithLabelValues(batchDeduction, metrics.OutcomeFailed).Inc()
			continue
		}

		response.Results = append(response.Results, result)
		response.Summary.Processed++
		outcome := metrics.OutcomeUpdated
		if result.SkippedReason != "" {
			response.Summary.Skipped++
			outcome = metrics.OutcomeSkipped
		} else {
			response.Summary.Updated++
		}
		metrics.BatchUsers.WithLabelValues(batchDeduction, outcome).Inc()
	}

	slog.Info("Monthly deductions finished",
		"year", req.Year,
		"month", req.Month,
		"processed", response.Summary.Processed,
		"updated", response.Summary.Updated,
		"skipped", response.Summary.Skipped,
		"failed", response.Summary.Failed,
		"dry_run", req.DryRun,
	)

	return response, nil
}

func (s *DeductionServiceImpl) processUser(ctx context.Context, userID string, year, month int, types deductionTypes, dryRun bool) (leave.DeductionResult, error) {
	result := leave.DeductionResult{
		UserID:             userID,
		LateEarlyDeduction: decimal.Zero,
		AbsentDeduction:    decimal.Zero,
		TotalDeduction:     decimal.Zero,
		AppliedPerType:     map[string]decimal.Decimal{},
		Shortfall:          decimal.Zero,
	}

	done, err := s.runs.Exists(ctx, userID, year, month)
	if err != nil {
		return leave.DeductionResult{}, fmt.Errorf("failed to check deduction run: %w", err)
	}
	if done {
		result.SkippedReason = leave.SkippedAlreadyProcessed
		return result, nil
	}

	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, -1)

	entries, err := s.entries.ListByUserAndDateRange(ctx, userID, from, to)
	if err != nil {
		return leave.DeductionResult{}, fmt.Errorf("failed to list attendance entries: %w", err)
	}
	for _, e := range entries {
		if e.LateMinutes > 0 || e.EarlyMinutes > 0 {
			result.Occurrences++
		}
	}

	dailies, err := s.dailies.ListByUserAndDateRange(ctx, userID, from, to)
	if err != nil {
		return leave.DeductionResult{}, fmt.Errorf("failed to list daily attendance: %w", err)
	}
	for _, d := range dailies {
		if d.Status == attendance.StatusAbsent {
			result.AbsentDays++
		}
	}

	deduction := s.calculator.Deduction(result.Occurrences, result.AbsentDays)
	result.LateEarlyDeduction = deduction.LateEarly
	result.AbsentDeduction = deduction.Absent
	result.TotalDeduction = deduction.Total

	if !deduction.Total.IsPositive() {
		result.SkippedReason = leave.SkippedNoDeduction
		return result, nil
	}

	err = s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		casualBalance := decimal.Zero
		if b, err := s.ledger.Get(ctx, userID, types.casual.ID, year); err == nil {
			casualBalance = b.Balance
		} else if !errors.Is(err, leave.ErrBalanceNotFound) {
			return fmt.Errorf("failed to get casual balance: %w", err)
		}

		plan := s.calculator.Plan(deduction.Total, casualBalance, types.earnedAvailable)
		if plan.Casual.IsPositive() {
			result.AppliedPerType[types.casual.Code] = plan.Casual
		}
		if plan.Earned.IsPositive() {
			result.AppliedPerType[types.earned.Code] = plan.Earned
		}
		result.Shortfall = plan.Shortfall

		if dryRun {
			return nil
		}

		if plan.Casual.IsPositive() {
			if err := s.debit(ctx, userID, types.casual, year, month, plan.Casual); err != nil {
				return err
			}
		}

		if plan.Earned.IsPositive() {
			if _, err := s.ledger.Upsert(ctx, userID, types.earned.ID, year, leave.BalanceFields{}); err != nil {
				return fmt.Errorf("failed to ensure earned balance: %w", err)
			}
			if err := s.debit(ctx, userID, types.earned, year, month, plan.Earned); err != nil {
				return err
			}
		}

		if plan.Shortfall.IsPositive() {
			slog.Warn("Deduction exceeds available leave",
				"user_id", userID,
				"year", year,
				"month", month,
				"shortfall", plan.Shortfall.String(),
			)
		}

		if _, err := s.runs.Create(ctx, leave.DeductionRun{
			UserID:         userID,
			Year:           year,
			Month:          month,
			TotalDeduction: deduction.Total,
		}); err != nil {
			return fmt.Errorf("failed to record deduction run: %w", err)
		}
		return nil
	})
	if err != nil {
		return leave.DeductionResult{}, err
	}

	return result, nil
}

// debit moves days from balance to consumed and writes the auto-approved
// application that documents it.
func (s *DeductionServiceImpl) debit(ctx context.Context, userID string, lt leave.LeaveType, year, month int, days decimal.Decimal) error {
	if _, err := s.ledger.Adjust(ctx, userID, lt.ID, year, days.Neg(), days); err != nil {
		return fmt.Errorf("failed to debit %s balance: %w", lt.Code, err)
	}

	startDate := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	now := s.now()
	actor := s.systemActorID
	if _, err := s.applications.Create(ctx, leave.Application{
		UserID:         userID,
		LeaveTypeID:    lt.ID,
		StartDate:      startDate,
		EndDate:        AuditEndDate(startDate, days),
		DaysCount:      days,
		Status:         leave.ApplicationStatusApproved,
		Reason:         fmt.Sprintf("Automatic attendance deduction for %04d-%02d", year, month),
		IsAutoApproved: true,
		ApprovedBy:     &actor,
		ApprovedAt:     &now,
	}); err != nil {
		return fmt.Errorf("failed to create deduction audit record: %w", err)
	}
	return nil
}

// resolveTypes re-reads the mapped leave types so the earned type's active
// flag is current for this run.
func (s *DeductionServiceImpl) resolveTypes(ctx context.Context) (deductionTypes, error) {
	casual, err := s.leaveTypes.GetByID(ctx, s.types.Casual.ID)
	if err != nil {
		return deductionTypes{}, fmt.Errorf("%w: casual leave type: %v", leave.ErrLeaveTypeNotMapped, err)
	}
	earned, err := s.leaveTypes.GetByID(ctx, s.types.Earned.ID)
	if err != nil {
		return deductionTypes{}, fmt.Errorf("%w: earned leave type: %v", leave.ErrLeaveTypeNotMapped, err)
	}
	return deductionTypes{
		casual:          casual,
		earned:          earned,
		earnedAvailable: earned.IsActive,
	}, nil
}

// AuditEndDate spans ceil(days) calendar days starting at start.
func AuditEndDate(start time.Time, days decimal.Decimal) time.Time {
	span := days.Ceil().IntPart() - 1
	if span < 0 {
		span = 0
	}
	return start.AddDate(0, 0, int(span))
}
