package domain

import (
	"errors"
	"strings"
	"time"
)

// DateLayout is the canonical date format used in forms and fixtures.
const DateLayout = "2006-01-02"

var dateInputLayouts = []string{DateLayout, "01/02/2006", "01/02/06"}

// ErrInvalidDate is returned when no accepted layout matches.
var ErrInvalidDate = errors.New("invalid date")

// ParseDate accepts 2006-01-02, 01/02/2006 and 01/02/06 and returns the
// calendar day at midnight UTC.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateInputLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return DateOf(t), nil
		}
	}
	return time.Time{}, ErrInvalidDate
}

// FormatDate renders an optional day as 2006-01-02, or "" when nil.
func FormatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(DateLayout)
}
