package schedule

import "errors"

var (
	ErrOfficeTimeNotFound = errors.New("office time not found")
)
