package leave

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/user"
	"github.com/cmlabs-hris/hris-leave-engine/internal/repository/memory"
	"github.com/shopspring/decimal"
)

const testSystemActor = "00000000-0000-7000-8000-000000000001"

type engineFixture struct {
	store        *memory.Store
	types        leave.TypeMapping
	ledger       *LedgerImpl
	applications leave.ApplicationRepository
	runs         leave.DeductionRunRepository
	user         user.User
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()
	store := memory.NewStore()
	casual := store.PutLeaveType(leave.LeaveType{Code: "casual", Name: "Casual Leave", IsActive: true})
	earned := store.PutLeaveType(leave.LeaveType{Code: "earned", Name: "Earned Leave", IsActive: true})
	u := store.PutUser(user.User{FullName: "Dewi Lestari", IsActive: true})

	return &engineFixture{
		store:        store,
		types:        leave.TypeMapping{Casual: casual, Earned: earned},
		ledger:       NewLedger(store, memory.NewBalanceRepository(store), memory.NewLeaveTypeRepository(store)),
		applications: memory.NewApplicationRepository(store),
		runs:         memory.NewDeductionRunRepository(store),
		user:         u,
	}
}

func (f *engineFixture) deductionService(applications leave.ApplicationRepository) *DeductionServiceImpl {
	if applications == nil {
		applications = f.applications
	}
	return NewDeductionService(
		f.store,
		f.ledger,
		f.types,
		memory.NewLeaveTypeRepository(f.store),
		applications,
		f.runs,
		memory.NewUserRepository(f.store),
		memory.NewEntryRepository(f.store),
		memory.NewDailyAttendanceRepository(f.store),
		testSystemActor,
	)
}

func (f *engineFixture) earnedService() *EarnedLeaveServiceImpl {
	svc := NewEarnedLeaveService(
		f.store,
		f.ledger,
		f.types,
		memory.NewEarnedLeaveConfigRepository(f.store),
		memory.NewLeaveTypeRepository(f.store),
		memory.NewHolidayRepository(f.store),
		memory.NewUserRepository(f.store),
		memory.NewDailyAttendanceRepository(f.store),
	)
	svc.now = func() time.Time { return time.Date(2025, 1, 1, 0, 30, 0, 0, time.UTC) }
	return svc
}

func (f *engineFixture) balance(userID string, lt leave.LeaveType, year int, amount string) {
	f.store.PutBalance(leave.Balance{
		UserID:      userID,
		LeaveTypeID: lt.ID,
		Year:        year,
		Balance:     decimal.RequireFromString(amount),
	})
}

// lateEntries stores n late entries on consecutive days from the 1st of the month.
func (f *engineFixture) lateEntries(userID string, year int, month time.Month, n int) {
	for i := 0; i < n; i++ {
		day := time.Date(year, month, 1+i, 0, 0, 0, 0, time.UTC)
		in := day.Add(9*time.Hour + 30*time.Minute)
		out := day.Add(17 * time.Hour)
		f.store.PutEntry(attendance.Entry{
			UserID:       userID,
			Date:         day,
			ClockIn:      &in,
			ClockOut:     &out,
			LateMinutes:  20,
			WorkingHours: attendance.WorkingHours(in, out),
		})
	}
}

// absentDays stores n absent rollups starting on the 20th of the month.
func (f *engineFixture) absentDays(userID string, year int, month time.Month, n int) {
	for i := 0; i < n; i++ {
		f.store.PutDailyAttendance(attendance.DailyAttendance{
			UserID: userID,
			Date:   time.Date(year, month, 20+i, 0, 0, 0, 0, time.UTC),
			Status: attendance.StatusAbsent,
		})
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
