package service

import (
	"strings"
	"time"

	"github.com/ticketron/ticketron/internal/domain"
)

// Renewal field messages shown next to the date input.
const (
	MsgRenewalRequired = "This field is required."
	MsgRenewalInvalid  = "Enter a valid date."
	MsgRenewalInPast   = "Invalid date - renewal in past"
	MsgRenewalTooFar   = "Invalid date - renewal more than 4 weeks ahead"
)

// RenewalField is the form field name carrying the proposed day.
const RenewalField = "renewal_date"

// RenewalWindowDays is how far ahead a renewal may be scheduled.
const RenewalWindowDays = 28

// DefaultRenewalDays is the offset of the date prefilled on the form.
const DefaultRenewalDays = 21

// DefaultRenewalDate is today plus three weeks.
func DefaultRenewalDate(today time.Time) time.Time {
	return domain.DateOf(today).AddDate(0, 0, DefaultRenewalDays)
}

// ValidateRenewalDate parses raw and checks it lies within
// [today, today+4 weeks]. On failure the field message is returned.
func ValidateRenewalDate(raw string, today time.Time) (time.Time, string) {
	if strings.TrimSpace(raw) == "" {
		return time.Time{}, MsgRenewalRequired
	}
	day, err := domain.ParseDate(raw)
	if err != nil {
		return time.Time{}, MsgRenewalInvalid
	}
	today = domain.DateOf(today)
	if day.Before(today) {
		return time.Time{}, MsgRenewalInPast
	}
	if day.After(today.AddDate(0, 0, RenewalWindowDays)) {
		return time.Time{}, MsgRenewalTooFar
	}
	return day, ""
}
