package workflow

import (
	"errors"
	"fmt"
)

var (
	ErrRequestNotFound    = errors.New("workflow request not found")
	ErrOutOfSequence      = errors.New("decision out of sequence")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrConflict           = errors.New("workflow request was modified concurrently")
	ErrInconsistentState  = errors.New("workflow request violates approval invariants")
	ErrInvalidDecision    = errors.New("decision must be Approved or Rejected")
	ErrEmptyComment       = errors.New("comment must not be empty")
	ErrInvalidType        = errors.New("invalid workflow type")
	ErrNotDeletable       = errors.New("only draft requests can be deleted")
	ErrStepNotAllowed     = errors.New("caller may not decide this step")
	ErrRequesterNotFound  = errors.New("requester not found")
	ErrNotRequestOwner    = errors.New("request belongs to another employee")
	ErrAttachmentRequired = errors.New("attachment file is required")
)

// OutOfSequenceError is returned when a decision targets a step other than
// the one NextStep reports.
type OutOfSequenceError struct {
	Expected string
	Got      Step
}

func (e *OutOfSequenceError) Error() string {
	return fmt.Sprintf("cannot decide step %s: next step is %s", e.Got, e.Expected)
}

func (e *OutOfSequenceError) Unwrap() error { return ErrOutOfSequence }

type InvalidTransitionError struct {
	From   Status
	Action string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s a request in status %s", e.Action, e.From)
}

func (e *InvalidTransitionError) Unwrap() error { return ErrInvalidTransition }

// ConflictError reports that the stored version moved since the caller read it.
type ConflictError struct {
	ID              string
	ExpectedVersion int
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("workflow request %s: version %d is stale", e.ID, e.ExpectedVersion)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// InvariantError names the invariant a stored request breaks.
type InvariantError struct {
	Reason string
}

func (e *InvariantError) Error() string {
	return "inconsistent workflow request: " + e.Reason
}

func (e *InvariantError) Unwrap() error { return ErrInconsistentState }
