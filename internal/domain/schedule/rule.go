package schedule

import "time"

// IsWeekend reports whether the date falls on Saturday or Sunday.
func IsWeekend(date time.Time) bool {
	wd := date.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// IsWorkingDate decides whether attendance is expected on date.
// A holiday is never a working date. Without a schedule the default
// Monday to Friday week applies.
func IsWorkingDate(date time.Time, sched *OfficeTime, isHoliday bool) bool {
	if isHoliday {
		return false
	}
	if sched == nil {
		return !IsWeekend(date)
	}
	return sched.WorksOn(date.Weekday())
}

// LateMinutes returns the whole minutes clockIn falls after the start time
// plus the late grace period. Only the time of day is compared.
func LateMinutes(clockIn time.Time, sched OfficeTime) int {
	limit := secondsOfDay(sched.StartTime) + sched.LateGraceMinutes*60
	actual := secondsOfDay(clockIn)
	if actual <= limit {
		return 0
	}
	return (actual - limit) / 60
}

// EarlyMinutes returns the whole minutes clockOut falls before the end time
// minus the early grace period. Only the time of day is compared.
func EarlyMinutes(clockOut time.Time, sched OfficeTime) int {
	limit := secondsOfDay(sched.EndTime) - sched.EarlyGraceMinutes*60
	actual := secondsOfDay(clockOut)
	if actual >= limit {
		return 0
	}
	return (limit - actual) / 60
}

func secondsOfDay(t time.Time) int {
	h, m, s := t.Clock()
	return h*3600 + m*60 + s
}
