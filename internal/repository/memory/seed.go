package memory

import (
	"context"

	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/holiday"
	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/schedule"
	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/user"
)

// The Put helpers load reference data that the engine only reads. They
// assign an ID when the value has none and return the stored value.

func (s *Store) PutUser(u user.User) user.User {
	if u.ID == "" {
		u.ID = newID()
	}
	_ = s.write(context.Background(), func(t *tables) error {
		t.users[u.ID] = u
		return nil
	})
	return u
}

func (s *Store) PutOfficeTime(o schedule.OfficeTime) schedule.OfficeTime {
	if o.ID == "" {
		o.ID = newID()
	}
	_ = s.write(context.Background(), func(t *tables) error {
		t.officeTimes[o.ID] = o
		return nil
	})
	return o
}

func (s *Store) PutHoliday(h holiday.Holiday) holiday.Holiday {
	if h.ID == "" {
		h.ID = newID()
	}
	_ = s.write(context.Background(), func(t *tables) error {
		t.holidays[h.ID] = h
		return nil
	})
	return h
}

func (s *Store) PutLeaveType(lt leave.LeaveType) leave.LeaveType {
	if lt.ID == "" {
		lt.ID = newID()
	}
	_ = s.write(context.Background(), func(t *tables) error {
		t.leaveTypes[lt.ID] = lt
		return nil
	})
	return lt
}

func (s *Store) PutEarnedLeaveConfig(c leave.EarnedLeaveConfig) leave.EarnedLeaveConfig {
	if c.ID == "" {
		c.ID = newID()
	}
	_ = s.write(context.Background(), func(t *tables) error {
		t.configs[c.ID] = c
		return nil
	})
	return c
}

func (s *Store) PutBalance(b leave.Balance) leave.Balance {
	if b.ID == "" {
		b.ID = newID()
	}
	_ = s.write(context.Background(), func(t *tables) error {
		t.balances[b.ID] = b
		return nil
	})
	return b
}

// PutDailyAttendance stores a rollup directly, for back-filled history.
func (s *Store) PutDailyAttendance(d attendance.DailyAttendance) attendance.DailyAttendance {
	if d.ID == "" {
		d.ID = newID()
	}
	d.Date = attendance.DateOf(d.Date)
	_ = s.write(context.Background(), func(t *tables) error {
		t.dailies[d.ID] = d
		return nil
	})
	return d
}

// PutEntry stores an entry directly, for back-filled history.
func (s *Store) PutEntry(e attendance.Entry) attendance.Entry {
	if e.ID == "" {
		e.ID = newID()
	}
	e.Date = attendance.DateOf(e.Date)
	_ = s.write(context.Background(), func(t *tables) error {
		t.entries[e.ID] = e
		return nil
	})
	return e
}
