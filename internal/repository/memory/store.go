// Package memory holds map-backed repositories. They share one Store so a
// transaction can snapshot and restore every table at once.
package memory

import (
	"context"
	"errors"
	"maps"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/holiday"
	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/schedule"
	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/user"
	"github.com/google/uuid"
)

type tables struct {
	users        map[string]user.User
	officeTimes  map[string]schedule.OfficeTime
	holidays     map[string]holiday.Holiday
	entries      map[string]attendance.Entry
	dailies      map[string]attendance.DailyAttendance
	leaveTypes   map[string]leave.LeaveType
	balances     map[string]leave.Balance
	applications map[string]leave.Application
	configs      map[string]leave.EarnedLeaveConfig
	runs         map[string]leave.DeductionRun
}

func newTables() *tables {
	return &tables{
		users:        make(map[string]user.User),
		officeTimes:  make(map[string]schedule.OfficeTime),
		holidays:     make(map[string]holiday.Holiday),
		entries:      make(map[string]attendance.Entry),
		dailies:      make(map[string]attendance.DailyAttendance),
		leaveTypes:   make(map[string]leave.LeaveType),
		balances:     make(map[string]leave.Balance),
		applications: make(map[string]leave.Application),
		configs:      make(map[string]leave.EarnedLeaveConfig),
		runs:         make(map[string]leave.DeductionRun),
	}
}

func (t *tables) clone() *tables {
	return &tables{
		users:        maps.Clone(t.users),
		officeTimes:  maps.Clone(t.officeTimes),
		holidays:     maps.Clone(t.holidays),
		entries:      maps.Clone(t.entries),
		dailies:      maps.Clone(t.dailies),
		leaveTypes:   maps.Clone(t.leaveTypes),
		balances:     maps.Clone(t.balances),
		applications: maps.Clone(t.applications),
		configs:      maps.Clone(t.configs),
		runs:         maps.Clone(t.runs),
	}
}

// Store is an in-process database. Stored values are copied on the way in
// and out; pointer fields inside them are treated as immutable.
//
// Writes made outside a transaction wait for any open transaction to finish,
// so a rollback never discards them. Reads are not blocked and may observe
// uncommitted transaction state.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex
	data *tables
	now  func() time.Time
}

func NewStore() *Store {
	return &Store{
		data: newTables(),
		now:  time.Now,
	}
}

type txKey struct{}

// WithinTransaction implements database.Transactor. Transactions are
// serialised; on error or panic every table is restored to its state
// before fn ran.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if _, ok := ctx.Value(txKey{}).(bool); ok {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snapshot := s.data.clone()
	s.mu.RUnlock()

	defer func() {
		if p := recover(); p != nil {
			s.restore(snapshot)
			panic(p)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.restore(snapshot)
		return err
	}

	return nil
}

func (s *Store) restore(snapshot *tables) {
	s.mu.Lock()
	s.data = snapshot
	s.mu.Unlock()
}

func (s *Store) read(fn func(t *tables)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.data)
}

func (s *Store) write(ctx context.Context, fn func(t *tables) error) error {
	if _, ok := ctx.Value(txKey{}).(bool); !ok {
		s.txMu.Lock()
		defer s.txMu.Unlock()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.data)
}

func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

func dateKey(d time.Time) string {
	return d.Format("2006-01-02")
}

func inRange(d, from, to time.Time) bool {
	return !d.Before(from) && !d.After(to)
}

var errDuplicateBalance = errors.New("leave balance already exists for user, leave type and year")
