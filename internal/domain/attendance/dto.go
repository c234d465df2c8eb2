package attendance

import (
	"time"

	"github.com/cmlabs-hris/hris-leave-engine/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type ClockInRequest struct {
	UserID    string    `json:"-"`
	Timestamp time.Time `json:"timestamp,omitempty"`
	Latitude  *float64  `json:"latitude,omitempty"`
	Longitude *float64  `json:"longitude,omitempty"`
}

func (r *ClockInRequest) Validate() error {
	errs := validateUser(r.UserID)
	errs = append(errs, validateCoordinates(r.Latitude, r.Longitude)...)

	if len(errs) > 0 {
		return errs
	}

	return nil
}

func (r ClockInRequest) Location() *Location {
	return toLocation(r.Latitude, r.Longitude)
}

type ClockOutRequest struct {
	UserID    string    `json:"-"`
	Timestamp time.Time `json:"timestamp,omitempty"`
	Latitude  *float64  `json:"latitude,omitempty"`
	Longitude *float64  `json:"longitude,omitempty"`
}

func (r *ClockOutRequest) Validate() error {
	errs := validateUser(r.UserID)
	errs = append(errs, validateCoordinates(r.Latitude, r.Longitude)...)

	if len(errs) > 0 {
		return errs
	}

	return nil
}

func (r ClockOutRequest) Location() *Location {
	return toLocation(r.Latitude, r.Longitude)
}

// HistoryFilter selects a user's daily records between two dates, inclusive.
type HistoryFilter struct {
	UserID   string `json:"-"`
	DateFrom string `json:"date_from"`
	DateTo   string `json:"date_to"`
}

func (f *HistoryFilter) Validate() error {
	errs := validateUser(f.UserID)

	from, okFrom := validator.IsValidDate(f.DateFrom)
	if !okFrom {
		errs = append(errs, validator.ValidationError{
			Field:   "date_from",
			Message: "date_from must be in YYYY-MM-DD format",
		})
	}
	to, okTo := validator.IsValidDate(f.DateTo)
	if !okTo {
		errs = append(errs, validator.ValidationError{
			Field:   "date_to",
			Message: "date_to must be in YYYY-MM-DD format",
		})
	}
	if okFrom && okTo && to.Before(from) {
		errs = append(errs, validator.ValidationError{
			Field:   "date_to",
			Message: "date_to must not be before date_from",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type EntryResponse struct {
	ID                string           `json:"id"`
	Date              string           `json:"date"`
	ClockIn           *time.Time       `json:"clock_in,omitempty"`
	ClockOut          *time.Time       `json:"clock_out,omitempty"`
	ClockInLatitude   *float64         `json:"clock_in_latitude,omitempty"`
	ClockInLongitude  *float64         `json:"clock_in_longitude,omitempty"`
	ClockOutLatitude  *float64         `json:"clock_out_latitude,omitempty"`
	ClockOutLongitude *float64         `json:"clock_out_longitude,omitempty"`
	LateMinutes       int              `json:"late_minutes"`
	EarlyMinutes      int              `json:"early_minutes"`
	WorkingHours      *decimal.Decimal `json:"working_hours,omitempty"`
}

type DailyAttendanceResponse struct {
	ID                string          `json:"id"`
	UserID            string          `json:"user_id"`
	Date              string          `json:"date"`
	FirstClockIn      *time.Time      `json:"first_clock_in,omitempty"`
	LastClockOut      *time.Time      `json:"last_clock_out,omitempty"`
	TotalEntries      int             `json:"total_entries"`
	TotalWorkingHours decimal.Decimal `json:"total_working_hours"`
	TotalLateMinutes  int             `json:"total_late_minutes"`
	TotalEarlyMinutes int             `json:"total_early_minutes"`
	Status            Status          `json:"status"`
	ScheduleName      *string         `json:"schedule_name,omitempty"`
}

type ClockInResponse struct {
	Entry       EntryResponse           `json:"entry"`
	LateMinutes int                     `json:"late_minutes"`
	Daily       DailyAttendanceResponse `json:"daily"`
}

type ClockOutResponse struct {
	Entry        EntryResponse           `json:"entry"`
	EarlyMinutes int                     `json:"early_minutes"`
	WorkingHours decimal.Decimal         `json:"working_hours"`
	Daily        DailyAttendanceResponse `json:"daily"`
}

func NewEntryResponse(e Entry) EntryResponse {
	resp := EntryResponse{
		ID:           e.ID,
		Date:         e.Date.Format("2006-01-02"),
		ClockIn:      e.ClockIn,
		ClockOut:     e.ClockOut,
		LateMinutes:  e.LateMinutes,
		EarlyMinutes: e.EarlyMinutes,
	}
	if e.ClockInLocation != nil {
		resp.ClockInLatitude = &e.ClockInLocation.Latitude
		resp.ClockInLongitude = &e.ClockInLocation.Longitude
	}
	if e.ClockOutLocation != nil {
		resp.ClockOutLatitude = &e.ClockOutLocation.Latitude
		resp.ClockOutLongitude = &e.ClockOutLocation.Longitude
	}
	if e.IsClosed() {
		hours := e.WorkingHours
		resp.WorkingHours = &hours
	}
	return resp
}

func NewDailyAttendanceResponse(d DailyAttendance) DailyAttendanceResponse {
	resp := DailyAttendanceResponse{
		ID:                d.ID,
		UserID:            d.UserID,
		Date:              d.Date.Format("2006-01-02"),
		FirstClockIn:      d.FirstClockIn,
		LastClockOut:      d.LastClockOut,
		TotalEntries:      d.TotalEntries,
		TotalWorkingHours: d.TotalWorkingHours,
		TotalLateMinutes:  d.TotalLateMinutes,
		TotalEarlyMinutes: d.TotalEarlyMinutes,
		Status:            d.Status,
	}
	if d.ScheduleSnapshot != nil {
		name := d.ScheduleSnapshot.Name
		resp.ScheduleName = &name
	}
	return resp
}

func validateUser(userID string) validator.ValidationErrors {
	var errs validator.ValidationErrors
	if validator.IsEmpty(userID) {
		errs = append(errs, validator.ValidationError{
			Field:   "user_id",
			Message: "user_id is required",
		})
	}
	return errs
}

func validateCoordinates(lat, long *float64) validator.ValidationErrors {
	var errs validator.ValidationErrors

	if (lat == nil) != (long == nil) {
		errs = append(errs, validator.ValidationError{
			Field:   "location",
			Message: "latitude and longitude must be provided together",
		})
		return errs
	}
	if lat == nil {
		return errs
	}

	if !validator.IsValidLatitude(*lat) {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude must be between -90 and 90",
		})
	}

	if !validator.IsValidLongitude(*long) {
		errs = append(errs, validator.ValidationError{
			Field:   "longitude",
			Message: "longitude must be between -180 and 180",
		})
	}

	return errs
}

func toLocation(lat, long *float64) *Location {
	if lat == nil || long == nil {
		return nil
	}
	return &Location{Latitude: *lat, Longitude: *long}
}
