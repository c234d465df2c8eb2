package attendance

import "errors"

// Attendance domain errors
var (
	ErrAlreadyClockedIn = errors.New("you have already clocked in")
	ErrNotClockedIn     = errors.New("you have not clocked in yet")
	ErrNotWorkingDay    = errors.New("today is not a working day")

	ErrEntryNotFound           = errors.New("attendance entry not found")
	ErrDailyAttendanceNotFound = errors.New("daily attendance not found")
)
