package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated EventType = "ticket_created"
	EventTicketUpdated EventType = "ticket_updated"
	EventTicketDeleted EventType = "ticket_deleted"
	EventClientCreated EventType = "client_created"
	EventClientDeleted EventType = "client_deleted"
	EventTaskRenewed   EventType = "task_renewed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	SubjectID string      `json:"subject_id"`
	ActorID   *string     `json:"actor_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// NewEvent stamps an event with a fresh id and the current time.
func NewEvent(eventType EventType, subjectID string, actorID *string, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		SubjectID: subjectID,
		ActorID:   actorID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// TicketPayload describes a created, updated or deleted ticket.
type TicketPayload struct {
	Title    string  `json:"title"`
	Severity string  `json:"severity"`
	ClientID *string `json:"client_id,omitempty"`
}

// ClientPayload describes a created or deleted client.
type ClientPayload struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// TaskRenewedPayload carries the old and new scheduled day of a renewed task.
type TaskRenewedPayload struct {
	TaskID     int64      `json:"task_id"`
	TicketID   *string    `json:"ticket_id,omitempty"`
	EmployeeID *string    `json:"employee_id,omitempty"`
	OldDay     *time.Time `json:"old_day,omitempty"`
	NewDay     time.Time  `json:"new_day"`
}
