package domain

import (
	"fmt"
	"time"
)

// Task is a schedulable unit of work under a ticket.
type Task struct {
	ID              int64
	TicketID        *string
	WorkSummary     string
	CompletionNotes string
	ScheduledDay    *time.Time
	EmployeeID      *string
	Done            bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsOverdue reports whether the scheduled day is before today's date.
func (t *Task) IsOverdue(today time.Time) bool {
	if t.ScheduledDay == nil {
		return false
	}
	return DateOf(*t.ScheduledDay).Before(DateOf(today))
}

// Label renders "<id> (<ticket title>)".
func (t *Task) Label(ticketTitle string) string {
	return fmt.Sprintf("%d (%s)", t.ID, ticketTitle)
}

// DateOf truncates a timestamp to midnight UTC of its calendar day.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
