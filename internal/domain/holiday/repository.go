package holiday

import (
	"context"
	"time"
)

// HolidayRepository - interface for holidays table. Inactive holidays are
// invisible to both queries.
type HolidayRepository interface {
	IsHoliday(ctx context.Context, date time.Time) (bool, error)
	ListByYear(ctx context.Context, year int) ([]Holiday, error)
}
