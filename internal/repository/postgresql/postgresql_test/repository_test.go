package postgresql_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/schedule"
	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/user"
	"github.com/cmlabs-hris/hris-leave-engine/internal/repository/postgresql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_GetByID(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := postgresql.NewUserRepository(db)
	id := insertUser(t, db, "dewi@example.com")

	u, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "dewi@example.com", u.Email)
	assert.True(t, u.IsActive)
	assert.Nil(t, u.OfficeTimeID)

	_, err = repo.GetByID(ctx, "0190a000-0000-7000-8000-000000000000")
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestDailyAttendance_GetOrCreateKeepsSnapshot(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := postgresql.NewDailyAttendanceRepository(db)
	userID := insertUser(t, db, "rizky@example.com")
	date := time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)

	snapshot := &schedule.OfficeTime{
		Name:             "Regular",
		StartTime:        time.Date(0, 1, 1, 9, 0, 0, 0, time.UTC),
		EndTime:          time.Date(0, 1, 1, 17, 0, 0, 0, time.UTC),
		LateGraceMinutes: 10,
		WorkingDays:      []string{"Monday"},
	}
	first, err := repo.GetOrCreate(ctx, userID, date, snapshot)
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusAbsent, first.Status)
	require.NotNil(t, first.ScheduleSnapshot)
	assert.Equal(t, 10, first.ScheduleSnapshot.LateGraceMinutes)

	second, err := repo.GetOrCreate(ctx, userID, date, nil)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	require.NotNil(t, second.ScheduleSnapshot)
	assert.Equal(t, "Regular", second.ScheduleSnapshot.Name)
}

func TestEntryRepository_SingleOpenEntry(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	dailies := postgresql.NewDailyAttendanceRepository(db)
	entries := postgresql.NewEntryRepository(db)
	userID := insertUser(t, db, "sari@example.com")
	date := time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)

	daily, err := dailies.GetOrCreate(ctx, userID, date, nil)
	require.NoError(t, err)

	in := date.Add(9 * time.Hour)
	entry := attendance.Entry{
		DailyAttendanceID: daily.ID,
		UserID:            userID,
		Date:              date,
		ClockIn:           &in,
		ClockInLocation:   &attendance.Location{Latitude: -6.2, Longitude: 106.8},
		WorkingHours:      decimal.Zero,
	}
	created, err := entries.Create(ctx, entry)
	require.NoError(t, err)

	_, err = entries.Create(ctx, entry)
	assert.ErrorIs(t, err, attendance.ErrAlreadyClockedIn)

	open, err := entries.GetOpenEntry(ctx, userID, date)
	require.NoError(t, err)
	assert.Equal(t, created.ID, open.ID)
	require.NotNil(t, open.ClockInLocation)
	assert.InDelta(t, -6.2, open.ClockInLocation.Latitude, 1e-9)
}

func TestTransactor_RollsBackOnError(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	tx := postgresql.NewTransactor(db)
	balances := postgresql.NewBalanceRepository(db)
	userID := insertUser(t, db, "budi@example.com")
	typeID := insertLeaveType(t, db, "casual")

	boom := errors.New("boom")
	err := tx.WithinTransaction(ctx, func(ctx context.Context) error {
		_, err := balances.Create(ctx, leave.Balance{UserID: userID, LeaveTypeID: typeID, Year: 2024, Balance: decimal.NewFromInt(5)})
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = balances.Get(ctx, userID, typeID, 2024)
	assert.ErrorIs(t, err, leave.ErrBalanceNotFound)
}

func TestBalanceRepository_AdjustAndPartialUpdate(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	balances := postgresql.NewBalanceRepository(db)
	userID := insertUser(t, db, "tono@example.com")
	typeID := insertLeaveType(t, db, "earned")

	b, err := balances.Create(ctx, leave.Balance{UserID: userID, LeaveTypeID: typeID, Year: 2024, Balance: decimal.RequireFromString("0.5")})
	require.NoError(t, err)

	adjusted, err := balances.Adjust(ctx, b.ID, decimal.RequireFromString("-1.5"), decimal.RequireFromString("1.5"))
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("-1").Equal(adjusted.Balance))
	assert.True(t, decimal.RequireFromString("1.5").Equal(adjusted.Consumed))

	accrued := decimal.NewFromInt(3)
	require.NoError(t, balances.Update(ctx, b.ID, leave.BalanceFields{Accrued: &accrued}))

	got, err := balances.Get(ctx, userID, typeID, 2024)
	require.NoError(t, err)
	assert.True(t, accrued.Equal(got.Accrued))
	assert.True(t, decimal.RequireFromString("-1").Equal(got.Balance))
}

func TestDeductionRunRepository_RejectsDuplicate(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	runs := postgresql.NewDeductionRunRepository(db)
	userID := insertUser(t, db, "ani@example.com")

	run := leave.DeductionRun{UserID: userID, Year: 2024, Month: 3, TotalDeduction: decimal.NewFromInt(1)}
	_, err := runs.Create(ctx, run)
	require.NoError(t, err)

	_, err = runs.Create(ctx, run)
	assert.ErrorIs(t, err, leave.ErrDeductionAlreadyRecorded)

	done, err := runs.Exists(ctx, userID, 2024, 3)
	require.NoError(t, err)
	assert.True(t, done)
}
