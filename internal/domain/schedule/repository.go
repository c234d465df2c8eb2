package schedule

import "context"

// OfficeTimeRepository - interface for office_times table
type OfficeTimeRepository interface {
	GetByID(ctx context.Context, id string) (OfficeTime, error)
}
