package leave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/holiday"
	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/user"
	"github.com/cmlabs-hris/hris-leave-engine/internal/pkg/database"
	"github.com/cmlabs-hris/hris-leave-engine/internal/pkg/metrics"
	"github.com/shopspring/decimal"
)

const batchEarnedLeave = "earned_leave"

type EarnedLeaveServiceImpl struct {
	transactor database.Transactor
	ledger     leave.Ledger
	types      leave.TypeMapping
	calculator *AccrualCalculator
	configs    leave.EarnedLeaveConfigRepository
	leaveTypes leave.LeaveTypeRepository
	holidays   holiday.HolidayRepository
	users      user.UserRepository
	dailies    attendance.DailyAttendanceRepository
	now        func() time.Time
}

func NewEarnedLeaveService(
	transactor database.Transactor,
	ledger leave.Ledger,
	types leave.TypeMapping,
	configs leave.EarnedLeaveConfigRepository,
	leaveTypes leave.LeaveTypeRepository,
	holidays holiday.HolidayRepository,
	users user.UserRepository,
	dailies attendance.DailyAttendanceRepository,
) *EarnedLeaveServiceImpl {
	return &EarnedLeaveServiceImpl{
		transactor: transactor,
		ledger:     ledger,
		types:      types,
		calculator: NewAccrualCalculator(),
		configs:    configs,
		leaveTypes: leaveTypes,
		holidays:   holidays,
		users:      users,
		dailies:    dailies,
		now:        time.Now,
	}
}

// RunEarnedLeaveCalculation implements leave.EarnedLeaveService. Failures
// for one user are logged and collected; the rest of the batch continues.
func (s *EarnedLeaveServiceImpl) RunEarnedLeaveCalculation(ctx context.Context, req leave.EarnedLeaveRunRequest) (leave.EarnedLeaveRunResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.EarnedLeaveRunResponse{}, err
	}
	start := time.Now()
	defer metrics.ObserveBatch(batchEarnedLeave, req.DryRun, start)

	postingYear := req.PostingYear
	if postingYear == 0 {
		postingYear = s.now().Year()
	}

	cfg, err := s.resolveConfig(ctx, req.Year)
	if err != nil {
		return leave.EarnedLeaveRunResponse{}, err
	}

	earnedType, err := s.leaveTypes.GetByID(ctx, s.types.Earned.ID)
	if err != nil {
		return leave.EarnedLeaveRunResponse{}, fmt.Errorf("%w: earned leave type: %v", leave.ErrLeaveTypeNotMapped, err)
	}

	holidays, err := s.holidaySet(ctx, req.Year)
	if err != nil {
		return leave.EarnedLeaveRunResponse{}, err
	}

	users, err := targetUsers(ctx, s.users, req.UserIDs)
	if err != nil {
		return leave.EarnedLeaveRunResponse{}, err
	}

	slog.Info("Starting earned leave calculation",
		"year", req.Year,
		"posting_year", postingYear,
		"users", len(users),
		"dry_run", req.DryRun,
		"config_id", cfg.ID,
	)

	response := leave.EarnedLeaveRunResponse{
		Year:        req.Year,
		PostingYear: postingYear,
		Results:     make([]leave.EarnedLeaveResult, 0, len(users)),
		Summary:     leave.BatchSummary{DryRun: req.DryRun},
	}

	for _, u := range users {
		if err := ctx.Err(); err != nil {
			slog.Warn("Earned leave calculation cancelled", "processed", response.Summary.Processed, "error", err)
			return response, err
		}

		result, err := s.processUser(ctx, u, req.Year, postingYear, cfg, earnedType, holidays, req.DryRun)
		if err != nil {
			perr := &leave.UserProcessingError{UserID: u.ID, Err: err}
			slog.Error("Earned leave calculation failed for user", "user_id", u.ID, "error", err)
			response.Summary.Failed++
			response.Summary.Errors = append(response.Summary.Errors, leave.UserError{UserID: u.ID, Error: perr.Error()})
			metrics.BatchUsers.WithLabelValues(batchEarnedLeave, metrics.OutcomeFailed).Inc()
			continue
		}

		response.Results = append(response.Results, result)
		response.Summary.Processed++
		outcome := metrics.OutcomeSuccess
		if result.Updated {
			response.Summary.Updated++
			outcome = metrics.OutcomeUpdated
		}
		metrics.BatchUsers.WithLabelValues(batchEarnedLeave, outcome).Inc()
	}

	slog.Info("Earned leave calculation finished",
		"year", req.Year,
		"posting_year", postingYear,
		"processed", response.Summary.Processed,
		"updated", response.Summary.Updated,
		"failed", response.Summary.Failed,
		"dry_run", req.DryRun,
	)

	return response, nil
}

func (s *EarnedLeaveServiceImpl) processUser(
	ctx context.Context,
	u user.User,
	year, postingYear int,
	cfg leave.EarnedLeaveConfig,
	earnedType leave.LeaveType,
	holidays map[string]bool,
	dryRun bool,
) (leave.EarnedLeaveResult, error) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)

	dailies, err := s.dailies.ListByUserAndDateRange(ctx, u.ID, from, to)
	if err != nil {
		return leave.EarnedLeaveResult{}, fmt.Errorf("failed to list daily attendance: %w", err)
	}
	records := make(map[string]attendance.Status, len(dailies))
	for _, d := range dailies {
		records[d.Date.Format("2006-01-02")] = d.Status
	}

	previous, err := s.balanceOrZero(ctx, u.ID, earnedType.ID, year-1)
	if err != nil {
		return leave.EarnedLeaveResult{}, err
	}

	accrual := s.calculator.Calculate(AccrualInput{
		Year:            year,
		Config:          cfg,
		Attendance:      records,
		Holidays:        holidays,
		PreviousBalance: previous.Balance,
	})

	result := leave.EarnedLeaveResult{
		UserID:          u.ID,
		DaysWorked:      accrual.DaysWorked,
		PreviousBalance: accrual.PreviousBalance,
		CarryForward:    accrual.CarryForward,
		NewEarned:       accrual.NewEarned,
		TotalBalance:    accrual.TotalBalance,
	}

	accrued := decimal.NewFromInt(int64(accrual.NewEarned))
	err = s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		current, err := s.ledger.Get(ctx, u.ID, earnedType.ID, postingYear)
		exists := err == nil
		if err != nil && !errors.Is(err, leave.ErrBalanceNotFound) {
			return fmt.Errorf("failed to get posting year balance: %w", err)
		}

		want := current
		want.Balance = accrual.TotalBalance
		want.Accrued = accrued
		want.CarryForward = accrual.CarryForward

		var fields leave.BalanceFields
		if exists {
			fields = current.Diff(want)
		} else {
			fields = leave.BalanceFields{
				Balance:      &want.Balance,
				Accrued:      &want.Accrued,
				CarryForward: &want.CarryForward,
			}
		}

		result.Updated = !exists || !fields.IsEmpty()
		if dryRun || !result.Updated {
			return nil
		}

		_, err = s.ledger.Upsert(ctx, u.ID, earnedType.ID, postingYear, fields)
		return err
	})
	if err != nil {
		return leave.EarnedLeaveResult{}, err
	}

	return result, nil
}

// resolveConfig prefers the active config for year, then the active default.
func (s *EarnedLeaveServiceImpl) resolveConfig(ctx context.Context, year int) (leave.EarnedLeaveConfig, error) {
	cfg, err := s.configs.GetActiveForYear(ctx, year)
	if errors.Is(err, leave.ErrEarnedLeaveConfigNotFound) {
		cfg, err = s.configs.GetActiveDefault(ctx)
	}
	if err != nil {
		return leave.EarnedLeaveConfig{}, err
	}

	if cfg.WorkingDaysPerEarnedLeave <= 0 || cfg.MaxEarnedLeaveDays < 0 {
		return leave.EarnedLeaveConfig{}, fmt.Errorf("%w: working_days_per_earned_leave=%d max_earned_leave_days=%d",
			leave.ErrInvalidEarnedLeaveConfig, cfg.WorkingDaysPerEarnedLeave, cfg.MaxEarnedLeaveDays)
	}
	return cfg, nil
}

func (s *EarnedLeaveServiceImpl) holidaySet(ctx context.Context, year int) (map[string]bool, error) {
	holidays, err := s.holidays.ListByYear(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("failed to list holidays: %w", err)
	}
	set := make(map[string]bool, len(holidays))
	for _, h := range holidays {
		set[h.Date.Format("2006-01-02")] = true
	}
	return set, nil
}

func (s *EarnedLeaveServiceImpl) balanceOrZero(ctx context.Context, userID, leaveTypeID string, year int) (leave.Balance, error) {
	b, err := s.ledger.Get(ctx, userID, leaveTypeID, year)
	if errors.Is(err, leave.ErrBalanceNotFound) {
		return leave.Balance{Balance: decimal.Zero}, nil
	}
	if err != nil {
		return leave.Balance{}, fmt.Errorf("failed to get leave balance: %w", err)
	}
	return b, nil
}

// targetUsers returns the active users, narrowed to ids when given. Unknown
// or inactive ids are logged and ignored.
func targetUsers(ctx context.Context, users user.UserRepository, ids []string) ([]user.User, error) {
	active, err := users.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active users: %w", err)
	}
	if len(ids) == 0 {
		return active, nil
	}

	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}

	filtered := make([]user.User, 0, len(ids))
	for _, u := range active {
		if wanted[u.ID] {
			filtered = append(filtered, u)
			delete(wanted, u.ID)
		}
	}
	for id := range wanted {
		slog.Warn("Skipping unknown or inactive user", "user_id", id)
	}
	return filtered, nil
}
