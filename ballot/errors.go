// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ballot

import (
	"errors"
	"fmt"
)

// ErrBusy is returned when a reconciliation is already in flight.
var ErrBusy = errors.New("ballot: reconciliation already in progress")

// RemoteRejection reports that the first operation of a plan failed, so the
// remote side is unchanged.
type RemoteRejection struct {
	Op  Operation
	Err error
}

func (e *RemoteRejection) Error() string {
	return fmt.Sprintf("ballot: %s rejected: %v", e.Op, e.Err)
}

func (e *RemoteRejection) Unwrap() error {
	return e.Err
}

// PartialProgressError reports a failure after some operations were already
// accepted remotely. Local state has been rolled back; Accepted has not.
type PartialProgressError struct {
	Accepted []Operation
	Failed   Operation
	Err      error
}

func (e *PartialProgressError) Error() string {
	return fmt.Sprintf("ballot: %s rejected after %d accepted operation(s): %v", e.Failed, len(e.Accepted), e.Err)
}

func (e *PartialProgressError) Unwrap() error {
	return e.Err
}
