package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/leave"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_WithinTransaction_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	balances := NewBalanceRepository(store)
	seeded := store.PutBalance(leave.Balance{UserID: "u1", LeaveTypeID: "casual", Year: 2024, Balance: decimal.NewFromInt(3)})

	boom := errors.New("boom")
	err := store.WithinTransaction(ctx, func(ctx context.Context) error {
		_, err := balances.Adjust(ctx, seeded.ID, decimal.NewFromInt(-2), decimal.NewFromInt(2))
		require.NoError(t, err)
		_, err = balances.Create(ctx, leave.Balance{UserID: "u1", LeaveTypeID: "earned", Year: 2024})
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := balances.Get(ctx, "u1", "casual", 2024)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(3).Equal(got.Balance))
	_, err = balances.Get(ctx, "u1", "earned", 2024)
	assert.ErrorIs(t, err, leave.ErrBalanceNotFound)
}

func TestStore_WithinTransaction_NestedJoinsOuter(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	runs := NewDeductionRunRepository(store)

	boom := errors.New("outer failed")
	err := store.WithinTransaction(ctx, func(ctx context.Context) error {
		err := store.WithinTransaction(ctx, func(ctx context.Context) error {
			_, err := runs.Create(ctx, leave.DeductionRun{UserID: "u1", Year: 2024, Month: 1})
			return err
		})
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)

	exists, err := runs.Exists(ctx, "u1", 2024, 1)
	require.NoError(t, err)
	assert.False(t, exists, "inner work must roll back with the outer transaction")
}

func TestStore_WithinTransaction_RestoresOnPanic(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	runs := NewDeductionRunRepository(store)

	assert.Panics(t, func() {
		_ = store.WithinTransaction(ctx, func(ctx context.Context) error {
			_, _ = runs.Create(ctx, leave.DeductionRun{UserID: "u1", Year: 2024, Month: 2})
			panic("kaboom")
		})
	})

	exists, err := runs.Exists(ctx, "u1", 2024, 2)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestStore_WriteOutsideTransactionSurvivesRollback(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	runs := NewDeductionRunRepository(store)

	inTx := make(chan struct{})
	outsideDone := make(chan error, 1)
	boom := errors.New("rolled back")

	err := store.WithinTransaction(ctx, func(txCtx context.Context) error {
		_, err := runs.Create(txCtx, leave.DeductionRun{UserID: "u1", Year: 2024, Month: 3})
		require.NoError(t, err)

		go func() {
			close(inTx)
			_, err := runs.Create(ctx, leave.DeductionRun{UserID: "u2", Year: 2024, Month: 3})
			outsideDone <- err
		}()
		<-inTx

		select {
		case <-outsideDone:
			t.Error("write outside the transaction did not wait for it to finish")
		case <-time.After(50 * time.Millisecond):
		}
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.NoError(t, <-outsideDone)

	exists, err := runs.Exists(ctx, "u1", 2024, 3)
	require.NoError(t, err)
	assert.False(t, exists, "transaction work must roll back")

	exists, err = runs.Exists(ctx, "u2", 2024, 3)
	require.NoError(t, err)
	assert.True(t, exists, "outside write must survive the rollback")
}

func TestEntryRepository_SingleOpenEntryPerDay(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	entries := NewEntryRepository(store)
	day := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	clockIn := day.Add(9 * time.Hour)

	_, err := entries.Create(ctx, attendance.Entry{UserID: "u1", Date: day, ClockIn: &clockIn})
	require.NoError(t, err)

	_, err = entries.Create(ctx, attendance.Entry{UserID: "u1", Date: day, ClockIn: &clockIn})
	assert.ErrorIs(t, err, attendance.ErrAlreadyClockedIn)

	_, err = entries.Create(ctx, attendance.Entry{UserID: "u2", Date: day, ClockIn: &clockIn})
	assert.NoError(t, err)
}

func TestDeductionRunRepository_RejectsDuplicatePeriod(t *testing.T) {
	ctx := context.Background()
	runs := NewDeductionRunRepository(NewStore())

	_, err := runs.Create(ctx, leave.DeductionRun{UserID: "u1", Year: 2024, Month: 5})
	require.NoError(t, err)

	_, err = runs.Create(ctx, leave.DeductionRun{UserID: "u1", Year: 2024, Month: 5})
	assert.ErrorIs(t, err, leave.ErrDeductionAlreadyRecorded)
}

func TestEarnedLeaveConfigRepository_PrefersActive(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	configs := NewEarnedLeaveConfigRepository(store)
	year := 2024
	store.PutEarnedLeaveConfig(leave.EarnedLeaveConfig{Year: &year, WorkingDaysPerEarnedLeave: 10, IsActive: false})
	store.PutEarnedLeaveConfig(leave.EarnedLeaveConfig{WorkingDaysPerEarnedLeave: 20, IsActive: true})

	_, err := configs.GetActiveForYear(ctx, year)
	assert.ErrorIs(t, err, leave.ErrEarnedLeaveConfigNotFound)

	cfg, err := configs.GetActiveDefault(ctx)
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.WorkingDaysPerEarnedLeave)
}
