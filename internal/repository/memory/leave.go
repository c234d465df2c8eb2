package memory

import (
	"context"
	"sort"

	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/leave"
	"github.com/shopspring/decimal"
)

type leaveTypeRepository struct {
	store *Store
}

func NewLeaveTypeRepository(store *Store) leave.LeaveTypeRepository {
	return &leaveTypeRepository{store: store}
}

// GetByID implements leave.LeaveTypeRepository.
func (r *leaveTypeRepository) GetByID(ctx context.Context, id string) (leave.LeaveType, error) {
	var (
		lt leave.LeaveType
		ok bool
	)
	r.store.read(func(t *tables) {
		lt, ok = t.leaveTypes[id]
	})
	if !ok {
		return leave.LeaveType{}, leave.ErrLeaveTypeNotFound
	}
	return lt, nil
}

// GetByCode implements leave.LeaveTypeRepository.
func (r *leaveTypeRepository) GetByCode(ctx context.Context, code string) (leave.LeaveType, error) {
	var (
		lt    leave.LeaveType
		found bool
	)
	r.store.read(func(t *tables) {
		for _, candidate := range t.leaveTypes {
			if candidate.Code == code {
				lt, found = candidate, true
				return
			}
		}
	})
	if !found {
		return leave.LeaveType{}, leave.ErrLeaveTypeNotFound
	}
	return lt, nil
}

type balanceRepository struct {
	store *Store
}

func NewBalanceRepository(store *Store) leave.BalanceRepository {
	return &balanceRepository{store: store}
}

// Get implements leave.BalanceRepository.
func (r *balanceRepository) Get(ctx context.Context, userID, leaveTypeID string, year int) (leave.Balance, error) {
	var (
		b     leave.Balance
		found bool
	)
	r.store.read(func(t *tables) {
		for _, candidate := range t.balances {
			if candidate.UserID == userID && candidate.LeaveTypeID == leaveTypeID && candidate.Year == year {
				b, found = candidate, true
				return
			}
		}
	})
	if !found {
		return leave.Balance{}, leave.ErrBalanceNotFound
	}
	return b, nil
}

// ListByUserAndYear implements leave.BalanceRepository.
func (r *balanceRepository) ListByUserAndYear(ctx context.Context, userID string, year int) ([]leave.Balance, error) {
	var balances []leave.Balance
	r.store.read(func(t *tables) {
		for _, b := range t.balances {
			if b.UserID == userID && b.Year == year {
				balances = append(balances, b)
			}
		}
	})
	sort.Slice(balances, func(i, j int) bool { return balances[i].LeaveTypeID < balances[j].LeaveTypeID })
	return balances, nil
}

// Create implements leave.BalanceRepository.
func (r *balanceRepository) Create(ctx context.Context, balance leave.Balance) (leave.Balance, error) {
	err := r.store.write(ctx, func(t *tables) error {
		for _, b := range t.balances {
			if b.UserID == balance.UserID && b.LeaveTypeID == balance.LeaveTypeID && b.Year == balance.Year {
				return errDuplicateBalance
			}
		}
		now := r.store.now()
		balance.ID = newID()
		balance.CreatedAt = now
		balance.UpdatedAt = now
		t.balances[balance.ID] = balance
		return nil
	})
	if err != nil {
		return leave.Balance{}, err
	}
	return balance, nil
}

// Update implements leave.BalanceRepository.
func (r *balanceRepository) Update(ctx context.Context, id string, fields leave.BalanceFields) error {
	return r.store.write(ctx, func(t *tables) error {
		b, ok := t.balances[id]
		if !ok {
			return leave.ErrBalanceNotFound
		}
		b = fields.ApplyTo(b)
		b.UpdatedAt = r.store.now()
		t.balances[id] = b
		return nil
	})
}

// Adjust implements leave.BalanceRepository.
func (r *balanceRepository) Adjust(ctx context.Context, id string, deltaBalance, deltaConsumed decimal.Decimal) (leave.Balance, error) {
	var b leave.Balance
	err := r.store.write(ctx, func(t *tables) error {
		var ok bool
		b, ok = t.balances[id]
		if !ok {
			return leave.ErrBalanceNotFound
		}
		b.Balance = b.Balance.Add(deltaBalance)
		b.Consumed = b.Consumed.Add(deltaConsumed)
		b.UpdatedAt = r.store.now()
		t.balances[id] = b
		return nil
	})
	if err != nil {
		return leave.Balance{}, err
	}
	return b, nil
}

type applicationRepository struct {
	store *Store
}

func NewApplicationRepository(store *Store) leave.ApplicationRepository {
	return &applicationRepository{store: store}
}

// Create implements leave.ApplicationRepository.
func (r *applicationRepository) Create(ctx context.Context, application leave.Application) (leave.Application, error) {
	_ = r.store.write(ctx, func(t *tables) error {
		now := r.store.now()
		application.ID = newID()
		application.CreatedAt = now
		application.UpdatedAt = now
		t.applications[application.ID] = application
		return nil
	})
	return application, nil
}

// ListByUser implements leave.ApplicationRepository.
func (r *applicationRepository) ListByUser(ctx context.Context, userID string) ([]leave.Application, error) {
	var applications []leave.Application
	r.store.read(func(t *tables) {
		for _, a := range t.applications {
			if a.UserID == userID {
				applications = append(applications, a)
			}
		}
	})
	sort.Slice(applications, func(i, j int) bool { return applications[i].ID < applications[j].ID })
	return applications, nil
}

type earnedLeaveConfigRepository struct {
	store *Store
}

func NewEarnedLeaveConfigRepository(store *Store) leave.EarnedLeaveConfigRepository {
	return &earnedLeaveConfigRepository{store: store}
}

// GetActiveForYear implements leave.EarnedLeaveConfigRepository.
func (r *earnedLeaveConfigRepository) GetActiveForYear(ctx context.Context, year int) (leave.EarnedLeaveConfig, error) {
	return r.find(func(c leave.EarnedLeaveConfig) bool {
		return c.Year != nil && *c.Year == year
	})
}

// GetActiveDefault implements leave.EarnedLeaveConfigRepository.
func (r *earnedLeaveConfigRepository) GetActiveDefault(ctx context.Context) (leave.EarnedLeaveConfig, error) {
	return r.find(func(c leave.EarnedLeaveConfig) bool {
		return c.Year == nil
	})
}

// find returns the most recently created active config that matches.
func (r *earnedLeaveConfigRepository) find(match func(c leave.EarnedLeaveConfig) bool) (leave.EarnedLeaveConfig, error) {
	var (
		cfg   leave.EarnedLeaveConfig
		found bool
	)
	r.store.read(func(t *tables) {
		for _, c := range t.configs {
			if !c.IsActive || !match(c) {
				continue
			}
			if !found || c.CreatedAt.After(cfg.CreatedAt) {
				cfg, found = c, true
			}
		}
	})
	if !found {
		return leave.EarnedLeaveConfig{}, leave.ErrEarnedLeaveConfigNotFound
	}
	return cfg, nil
}

type deductionRunRepository struct {
	store *Store
}

func NewDeductionRunRepository(store *Store) leave.DeductionRunRepository {
	return &deductionRunRepository{store: store}
}

// Exists implements leave.DeductionRunRepository.
func (r *deductionRunRepository) Exists(ctx context.Context, userID string, year, month int) (bool, error) {
	found := false
	r.store.read(func(t *tables) {
		for _, run := range t.runs {
			if run.UserID == userID && run.Year == year && run.Month == month {
				found = true
				return
			}
		}
	})
	return found, nil
}

// Create implements leave.DeductionRunRepository.
func (r *deductionRunRepository) Create(ctx context.Context, run leave.DeductionRun) (leave.DeductionRun, error) {
	err := r.store.write(ctx, func(t *tables) error {
		for _, existing := range t.runs {
			if existing.UserID == run.UserID && existing.Year == run.Year && existing.Month == run.Month {
				return leave.ErrDeductionAlreadyRecorded
			}
		}
		run.ID = newID()
		run.CreatedAt = r.store.now()
		t.runs[run.ID] = run
		return nil
	})
	if err != nil {
		return leave.DeductionRun{}, err
	}
	return run, nil
}
