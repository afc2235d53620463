package domain

import "time"

// Severity classifies ticket urgency with a single-letter code.
type Severity string

const (
	SeverityHigh   Severity = "h"
	SeverityMedium Severity = "m"
	SeverityLow    Severity = "l"
)

// Severities lists the allowed codes in display order.
var Severities = []Severity{SeverityHigh, SeverityMedium, SeverityLow}

// Valid reports whether s is one of the three known codes.
func (s Severity) Valid() bool {
	switch s {
	case SeverityHigh, SeverityMedium, SeverityLow:
		return true
	}
	return false
}

// Label returns the human readable name.
func (s Severity) Label() string {
	switch s {
	case SeverityHigh:
		return "High"
	case SeverityMedium:
		return "Medium"
	case SeverityLow:
		return "Low"
	}
	return string(s)
}

// Ticket is a unit of work tracked for a client.
type Ticket struct {
	ID        string
	Title     string
	Summary   string
	Severity  Severity
	StatusID  *int64
	ClientID  *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// URL returns the detail page path.
func (t *Ticket) URL() string {
	return "/ticket/" + t.ID
}

func (t *Ticket) String() string {
	return t.Title
}
