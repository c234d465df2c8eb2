package user

import "time"

type User struct {
	ID           string
	FullName     string
	Email        string
	IsActive     bool
	IsAdmin      bool
	OfficeTimeID *string
	ManagerID    *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
