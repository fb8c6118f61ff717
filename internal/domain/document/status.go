package document

import (
	"math"
	"strings"
	"time"
)

const day = 24 * time.Hour

// DaysRemaining returns ceil((expiry - now) / 1 day).
func DaysRemaining(expiry, now time.Time) int {
	return int(math.Ceil(float64(expiry.Sub(now)) / float64(day)))
}

// ComputeStatus maps an expiry date and warning threshold onto a status.
// A document expiring today (0 days remaining) is a Warning, not Expired.
func ComputeStatus(expiry time.Time, warnDays int, now time.Time) (Status, error) {
	if expiry.IsZero() {
		return "", &InvalidDateError{Field: "expiry_date"}
	}
	if warnDays < 0 {
		return "", ErrInvalidWarnDays
	}

	remaining := DaysRemaining(expiry, now)
	switch {
	case remaining < 0:
		return StatusExpired, nil
	case remaining <= warnDays:
		return StatusWarning, nil
	default:
		return StatusOK, nil
	}
}

// ExpiryWindow returns the expiry range that yields status at now:
// documents with after < expiry <= until. A nil bound is open.
func ExpiryWindow(status Status, warnDays int, now time.Time) (after, until *time.Time, err error) {
	if warnDays < 0 {
		return nil, nil, ErrInvalidWarnDays
	}
	// ceil(x) < 0  <=>  x <= -1 day
	expiredEdge := now.Add(-day)
	warnEdge := now.Add(time.Duration(warnDays) * day)

	switch status {
	case StatusExpired:
		return nil, &expiredEdge, nil
	case StatusWarning:
		return &expiredEdge, &warnEdge, nil
	case StatusOK:
		return &warnEdge, nil, nil
	}
	return nil, nil, ErrInvalidStatus
}

var dateLayouts = []string{"2006-01-02", time.RFC3339, time.RFC3339Nano}

// ParseDate accepts a calendar date ("2006-01-02") or an RFC3339 timestamp.
func ParseDate(field, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, &InvalidDateError{Field: field, Value: value}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, &InvalidDateError{Field: field, Value: value}
}
