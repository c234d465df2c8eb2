package schedule

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// OfficeTime is a working schedule. StartTime and EndTime only carry a
// time of day; their date part is ignored.
type OfficeTime struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	StartTime         time.Time `json:"start_time"`
	EndTime           time.Time `json:"end_time"`
	LateGraceMinutes  int       `json:"late_grace_minutes"`
	EarlyGraceMinutes int       `json:"early_grace_minutes"`
	WorkingDays       []string  `json:"working_days"`
	BreakMinutes      int       `json:"break_minutes"`
	CreatedAt         time.Time `json:"-"`
	UpdatedAt         time.Time `json:"-"`
}

// WorksOn reports whether the weekday is listed in WorkingDays. Day names
// are compared case-insensitively ("Monday", "monday").
func (o OfficeTime) WorksOn(day time.Weekday) bool {
	for _, d := range o.WorkingDays {
		if strings.EqualFold(strings.TrimSpace(d), day.String()) {
			return true
		}
	}
	return false
}

// Value implements driver.Valuer so a schedule can be frozen into a JSONB column.
func (o OfficeTime) Value() (driver.Value, error) {
	return json.Marshal(o)
}

// Scan implements sql.Scanner for database retrieval
func (o *OfficeTime) Scan(value interface{}) error {
	if value == nil {
		*o = OfficeTime{}
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("failed to scan office time snapshot: unsupported type")
	}

	return json.Unmarshal(data, o)
}
