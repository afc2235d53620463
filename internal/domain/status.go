package domain

// DefaultStatusName is looked up when a ticket is created without a status.
const DefaultStatusName = "new"

// Status is a named state label attachable to a ticket.
type Status struct {
	ID   int64
	Name string
}

func (s *Status) String() string {
	return s.Name
}
