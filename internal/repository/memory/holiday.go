package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/holiday"
)

type holidayRepository struct {
	store *Store
}

func NewHolidayRepository(store *Store) holiday.HolidayRepository {
	return &holidayRepository{store: store}
}

// IsHoliday implements holiday.HolidayRepository.
func (r *holidayRepository) IsHoliday(ctx context.Context, date time.Time) (bool, error) {
	key := dateKey(date)
	found := false
	r.store.read(func(t *tables) {
		for _, h := range t.holidays {
			if h.IsActive && dateKey(h.Date) == key {
				found = true
				return
			}
		}
	})
	return found, nil
}

// ListByYear implements holiday.HolidayRepository.
func (r *holidayRepository) ListByYear(ctx context.Context, year int) ([]holiday.Holiday, error) {
	var holidays []holiday.Holiday
	r.store.read(func(t *tables) {
		for _, h := range t.holidays {
			if h.IsActive && h.Date.Year() == year {
				holidays = append(holidays, h)
			}
		}
	})
	sort.Slice(holidays, func(i, j int) bool { return holidays[i].Date.Before(holidays[j].Date) })
	return holidays, nil
}
