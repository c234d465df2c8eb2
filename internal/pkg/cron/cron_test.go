package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/user"
	"github.com/cmlabs-hris/hris-leave-engine/internal/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var wib = time.FixedZone("WIB", 7*60*60)

type fakeEarned struct {
	requests []leave.EarnedLeaveRunRequest
}

func (f *fakeEarned) RunEarnedLeaveCalculation(ctx context.Context, req leave.EarnedLeaveRunRequest) (leave.EarnedLeaveRunResponse, error) {
	f.requests = append(f.requests, req)
	return leave.EarnedLeaveRunResponse{Year: req.Year, PostingYear: req.PostingYear}, nil
}

type fakeDeductions struct {
	requests []leave.DeductionRunRequest
	err      error
}

func (f *fakeDeductions) RunMonthlyDeductions(ctx context.Context, req leave.DeductionRunRequest) (leave.DeductionRunResponse, error) {
	f.requests = append(f.requests, req)
	return leave.DeductionRunResponse{Month: req.Month, Year: req.Year}, f.err
}

type fakeAttendance struct {
	attendance.AttendanceService
	marked []string
	fail   map[string]bool
}

func (f *fakeAttendance) MarkAbsent(ctx context.Context, userID string, date time.Time) (bool, error) {
	if f.fail[userID] {
		return false, errors.New("boom")
	}
	f.marked = append(f.marked, userID+"@"+date.Format("2006-01-02"))
	return true, nil
}

type fakeUsers struct {
	user.UserRepository
	users []user.User
}

func (f fakeUsers) ListActive(ctx context.Context) ([]user.User, error) {
	return f.users, nil
}

func leaveJobsAt(now time.Time) (*LeaveJobs, *fakeEarned, *fakeDeductions) {
	earned, deductions := &fakeEarned{}, &fakeDeductions{}
	jobs := NewLeaveJobs(earned, deductions, wib)
	jobs.now = func() time.Time { return now }
	return jobs, earned, deductions
}

func TestMonthlyDeductions_RunsForPreviousMonthOnFirstDay(t *testing.T) {
	jobs, _, deductions := leaveJobsAt(time.Date(2024, time.January, 1, 0, 15, 0, 0, wib))

	require.NoError(t, jobs.MonthlyDeductions(context.Background()))
	require.Len(t, deductions.requests, 1)
	assert.Equal(t, leave.DeductionRunRequest{Month: 12, Year: 2023}, deductions.requests[0])
}

func TestMonthlyDeductions_IdleOutsideWindow(t *testing.T) {
	for _, now := range []time.Time{
		time.Date(2024, time.March, 2, 0, 15, 0, 0, wib),
		time.Date(2024, time.March, 1, 1, 0, 0, 0, wib),
	} {
		jobs, _, deductions := leaveJobsAt(now)
		require.NoError(t, jobs.MonthlyDeductions(context.Background()))
		assert.Empty(t, deductions.requests, now.String())
	}
}

func TestMonthlyDeductions_UsesLocalCalendar(t *testing.T) {
	// 17:30 UTC on Feb 29 is already 00:30 on Mar 1 in WIB.
	jobs, _, deductions := leaveJobsAt(time.Date(2024, time.February, 29, 17, 30, 0, 0, time.UTC))

	require.NoError(t, jobs.MonthlyDeductions(context.Background()))
	require.Len(t, deductions.requests, 1)
	assert.Equal(t, 2, deductions.requests[0].Month)
}

func TestMonthlyDeductions_WrapsError(t *testing.T) {
	jobs, _, deductions := leaveJobsAt(time.Date(2024, time.April, 1, 0, 0, 0, 0, wib))
	deductions.err = leave.ErrLeaveTypeNotMapped

	err := jobs.MonthlyDeductions(context.Background())
	assert.ErrorIs(t, err, leave.ErrLeaveTypeNotMapped)
}

func TestYearlyEarnedLeave(t *testing.T) {
	jobs, earned, _ := leaveJobsAt(time.Date(2025, time.January, 1, 0, 5, 0, 0, wib))
	require.NoError(t, jobs.YearlyEarnedLeave(context.Background()))
	require.Len(t, earned.requests, 1)
	assert.Equal(t, leave.EarnedLeaveRunRequest{Year: 2024, PostingYear: 2025}, earned.requests[0])

	jobs, earned, _ = leaveJobsAt(time.Date(2025, time.January, 2, 0, 5, 0, 0, wib))
	require.NoError(t, jobs.YearlyEarnedLeave(context.Background()))
	assert.Empty(t, earned.requests)
}

func TestMarkAbsentUsers(t *testing.T) {
	svc := &fakeAttendance{fail: map[string]bool{"u2": true}}
	users := fakeUsers{users: []user.User{{ID: "u1"}, {ID: "u2"}, {ID: "u3"}}}
	jobs := NewAttendanceJobs(svc, users, wib)
	jobs.now = func() time.Time { return time.Date(2024, time.March, 5, 0, 10, 0, 0, wib) }

	require.NoError(t, jobs.MarkAbsentUsers(context.Background()))
	assert.Equal(t, []string{"u1@2024-03-04", "u3@2024-03-04"}, svc.marked)

	svc.marked = nil
	jobs.now = func() time.Time { return time.Date(2024, time.March, 5, 9, 0, 0, 0, wib) }
	require.NoError(t, jobs.MarkAbsentUsers(context.Background()))
	assert.Empty(t, svc.marked)
}

func TestScheduler_Run(t *testing.T) {
	s := NewScheduler()
	calls := 0
	s.AddJob("count", time.Hour, func(ctx context.Context) error {
		calls++
		return nil
	})
	s.AddJob("fail", time.Hour, func(ctx context.Context) error {
		return errors.New("failed")
	})

	failedBefore := testutil.ToFloat64(metrics.CronRuns.WithLabelValues("fail", metrics.OutcomeFailed))

	assert.Equal(t, []string{"count", "fail"}, s.Jobs())
	require.NoError(t, s.Run(context.Background(), "count"))
	assert.EqualError(t, s.Run(context.Background(), "fail"), "failed")
	assert.Equal(t, failedBefore+1, testutil.ToFloat64(metrics.CronRuns.WithLabelValues("fail", metrics.OutcomeFailed)))
	assert.Error(t, s.Run(context.Background(), "missing"))

	s.RunOnce(context.Background())
	assert.Equal(t, 2, calls)
}

func TestScheduler_StartRunsImmediatelyAndStops(t *testing.T) {
	s := NewScheduler()
	ran := make(chan struct{}, 1)
	s.AddJob("tick", time.Hour, func(ctx context.Context) error {
		select {
		case ran <- struct{}{}:
		default:
		}
		return nil
	})

	s.Start()
	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not run on start")
	}
	s.Stop()
}
