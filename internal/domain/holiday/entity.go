package holiday

import "time"

type Holiday struct {
	ID        string
	Date      time.Time
	Name      string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
