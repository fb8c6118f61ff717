package document

import (
	"errors"
	"fmt"
)

var (
	ErrDocumentNotFound  = errors.New("document not found")
	ErrInvalidDate       = errors.New("invalid date")
	ErrInvalidWarnDays   = errors.New("warn days must not be negative")
	ErrInvalidStatus     = errors.New("invalid document status")
	ErrInvalidCategory   = errors.New("invalid document category")
	ErrExpiryBeforeIssue = errors.New("expiry date must be after issue date")
	ErrEmployeeNotFound  = errors.New("document owner not found")
)

// InvalidDateError reports a missing or unparseable date input.
type InvalidDateError struct {
	Field string
	Value string
}

func (e *InvalidDateError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: missing date", e.Field)
	}
	return fmt.Sprintf("%s: cannot parse date %q", e.Field, e.Value)
}

func (e *InvalidDateError) Unwrap() error {
	return ErrInvalidDate
}
