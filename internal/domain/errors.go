package domain

import (
	"errors"
	"fmt"
)

// Per-record failure sentinels. All are recoverable: the pipeline counts the
// rejection and moves on, it never aborts a run for a single bad record.
var (
	ErrNotNumeric   = errors.New("no numeric token")
	ErrUnclassified = errors.New("connector not classified")
	ErrMissingField = errors.New("field not found")
	ErrOutOfRange   = errors.New("coordinate out of range")
)

// Rejection names the counter a dropped record is attributed to.
type Rejection string

const (
	RejectedUnclassifiedConnector Rejection = "rejected_unclassified_connector"
	RejectedNoPower               Rejection = "rejected_no_power"
	RejectedLowPower              Rejection = "rejected_low_power"
	RejectedBadCoords             Rejection = "rejected_bad_coords"
)

// RejectError carries the rejection reason for a record that could not be
// normalized, wrapping the underlying sentinel for errors.Is checks.
type RejectError struct {
	Reason Rejection
	Err    error
}

func (e *RejectError) Error() string {
	if e.Err == nil {
		return string(e.Reason)
	}
	return fmt.Sprintf("%s: %v", e.Reason, e.Err)
}

func (e *RejectError) Unwrap() error {
	return e.Err
}

func reject(reason Rejection, err error) *RejectError {
	return &RejectError{Reason: reason, Err: err}
}

// RejectionOf extracts the rejection reason from an error chain.
func RejectionOf(err error) (Rejection, bool) {
	var re *RejectError
	if errors.As(err, &re) {
		return re.Reason, true
	}
	return "", false
}
