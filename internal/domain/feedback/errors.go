package feedback

import "errors"

var (
	ErrFeedbackNotFound = errors.New("feedback not found")
	ErrInvalidLabel     = errors.New("label must be Positive, Neutral or Negative")
	ErrScoreOutOfRange  = errors.New("sentiment score must be between -1 and 1")
)
