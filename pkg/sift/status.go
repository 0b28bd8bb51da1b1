package sift

import (
	"github.com/pkg/errors"
)

// Status is the integer result code of a detector run: zero on success,
// negative for each failure class.
type Status int

const (
	StatusOK             Status = 0
	StatusError          Status = -1
	StatusErrorIO        Status = -2
	StatusErrorParameter Status = -3
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusError:
		return "ERROR"
	case StatusErrorIO:
		return "ERROR_IO"
	case StatusErrorParameter:
		return "ERROR_PARAMETER"
	}
	return "UNKNOWN"
}

// StatusOf maps an error returned by this package (or by packages wrapping
// its sentinels) to a Status.
func StatusOf(err error) Status {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, ErrParameter):
		return StatusErrorParameter
	case errors.Is(err, ErrIO):
		return StatusErrorIO
	default:
		return StatusError
	}
}
