package schedule

import "errors"

// Schedule domain errors
var (
	ErrNoDays            = errors.New("schedule block has no days")
	ErrInvalidTimeWindow = errors.New("schedule block start time must be before end time")
	ErrNegativeAllowance = errors.New("late allowance must not be negative")
	ErrUnknownDay        = errors.New("unknown weekday name")
)
