package leave

import (
	"errors"
	"fmt"
)

var (
	ErrLeaveTypeNotFound         = errors.New("leave type not found")
	ErrLeaveTypeNotMapped        = errors.New("leave type code is not mapped to an existing leave type")
	ErrBalanceNotFound           = errors.New("leave balance not found")
	ErrEarnedLeaveConfigNotFound = errors.New("no active earned leave config")
	ErrInvalidEarnedLeaveConfig  = errors.New("earned leave config is invalid")
	ErrDeductionAlreadyRecorded  = errors.New("deduction already recorded for this period")
)

// UserProcessingError wraps a failure for one user inside a batch run.
type UserProcessingError struct {
	UserID string
	Err    error
}

func (e *UserProcessingError) Error() string {
	return fmt.Sprintf("user %s: %v", e.UserID, e.Err)
}

func (e *UserProcessingError) Unwrap() error {
	return e.Err
}
