package attendance

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ts(hour, min int) *time.Time {
	t := time.Date(2024, 3, 4, hour, min, 0, 0, time.UTC)
	return &t
}

func closedEntry(in, out *time.Time, late, early int) Entry {
	return Entry{
		ClockIn:      in,
		ClockOut:     out,
		LateMinutes:  late,
		EarlyMinutes: early,
		WorkingHours: WorkingHours(*in, *out),
	}
}

func TestDeriveStatus(t *testing.T) {
	cases := []struct {
		name    string
		entries []Entry
		want    Status
	}{
		{"no entries", nil, StatusAbsent},
		{"open entry", []Entry{{ClockIn: ts(9, 0)}}, StatusPresent},
		{"closed and open", []Entry{closedEntry(ts(9, 0), ts(12, 0), 0, 0), {ClockIn: ts(13, 0)}}, StatusFullPresent},
		{"open late entry", []Entry{{ClockIn: ts(9, 20), LateMinutes: 10}}, StatusLateIn},
		{"closed late then open", []Entry{closedEntry(ts(9, 20), ts(12, 0), 10, 0), {ClockIn: ts(13, 0)}}, StatusLateIn},
		{"closed early then open", []Entry{closedEntry(ts(9, 0), ts(11, 0), 0, 30), {ClockIn: ts(13, 0)}}, StatusEarlyOut},
		{"closed early then open late", []Entry{closedEntry(ts(9, 0), ts(11, 0), 0, 30), {ClockIn: ts(13, 30), LateMinutes: 5}}, StatusLateInEarlyOut},
		{"on time", []Entry{closedEntry(ts(9, 0), ts(17, 0), 0, 0)}, StatusFullPresent},
		{"late", []Entry{closedEntry(ts(9, 30), ts(17, 0), 20, 0)}, StatusLateIn},
		{"early", []Entry{closedEntry(ts(9, 0), ts(16, 0), 0, 50)}, StatusEarlyOut},
		{"late and early across entries", []Entry{
			closedEntry(ts(9, 30), ts(12, 0), 20, 0),
			closedEntry(ts(13, 0), ts(16, 0), 0, 50),
		}, StatusLateInEarlyOut},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, DeriveStatus(c.entries))
		})
	}
}

func TestAggregate(t *testing.T) {
	entries := []Entry{
		closedEntry(ts(13, 0), ts(16, 30), 0, 20),
		closedEntry(ts(9, 15), ts(12, 0), 5, 0),
	}

	s := Aggregate(entries)

	require.NotNil(t, s.FirstClockIn)
	require.NotNil(t, s.LastClockOut)
	assert.True(t, s.FirstClockIn.Equal(*ts(9, 15)))
	assert.True(t, s.LastClockOut.Equal(*ts(16, 30)))
	assert.Equal(t, 2, s.TotalEntries)
	assert.Equal(t, 5, s.TotalLateMinutes)
	assert.Equal(t, 20, s.TotalEarlyMinutes)
	assert.True(t, decimal.RequireFromString("6.25").Equal(s.TotalWorkingHours), "got %s", s.TotalWorkingHours)
	assert.Equal(t, StatusLateInEarlyOut, s.Status)
}

func TestAggregate_OpenEntryExcludedFromHours(t *testing.T) {
	entries := []Entry{
		closedEntry(ts(9, 0), ts(10, 0), 0, 0),
		{ClockIn: ts(11, 0), LateMinutes: 0},
	}

	s := Aggregate(entries)

	assert.True(t, decimal.NewFromInt(1).Equal(s.TotalWorkingHours))
	assert.True(t, s.LastClockOut.Equal(*ts(10, 0)))
	assert.Equal(t, StatusFullPresent, s.Status)
}

func TestAggregate_Empty(t *testing.T) {
	s := Aggregate(nil)

	assert.Nil(t, s.FirstClockIn)
	assert.Nil(t, s.LastClockOut)
	assert.Equal(t, 0, s.TotalEntries)
	assert.True(t, s.TotalWorkingHours.IsZero())
	assert.Equal(t, StatusAbsent, s.Status)
}

func TestWorkingHours_RoundsToTwoDecimals(t *testing.T) {
	in := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	out := in.Add(7*time.Hour + 50*time.Minute)

	assert.Equal(t, "7.83", WorkingHours(in, out).StringFixed(2))
}

func TestDateOf_UsesLocalCalendarDate(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*3600)
	late := time.Date(2024, 3, 4, 23, 30, 0, 0, time.UTC).In(jakarta)

	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), DateOf(late))
}
