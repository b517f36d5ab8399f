package features

import "fmt"

// InvalidPatientError is returned when a patient is not on the roster.
type InvalidPatientError struct {
	Patient string
}

func (e *InvalidPatientError) Error() string {
	return fmt.Sprintf("unknown patient %q", e.Patient)
}

// InvalidDateError is returned for malformed or non-existent dates.
type InvalidDateError struct {
	Input string
	Err   error
}

func (e *InvalidDateError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("invalid date %q", e.Input)
	}
	return fmt.Sprintf("invalid date %q: %v", e.Input, e.Err)
}

func (e *InvalidDateError) Unwrap() error {
	return e.Err
}
