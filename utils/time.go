// Package utils
package utils

import (
	"errors"
	"math"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

var errEmptyDate = errors.New("empty date")

// ParseDeadline accepts a date input value (YYYY-MM-DD, read as UTC midnight)
// or an RFC3339 timestamp.
func ParseDeadline(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errEmptyDate
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// DaysLeft returns the number of started days until deadline, never negative.
func DaysLeft(deadline int64, now time.Time) int64 {
	diff := time.Unix(deadline, 0).Sub(now)
	if diff <= 0 {
		return 0
	}
	return int64(math.Ceil(diff.Hours() / 24))
}
