package repository

import "github.com/jackc/pgx/v5/pgxpool"

// Store bundles every repository the application needs.
type Store struct {
	Statuses StatusRepository
	Clients  ClientRepository
	Tickets  TicketRepository
	Tasks    TaskRepository
	Users    UserRepository
	Grants   GrantRepository
}

// NewPostgresStore wires every repository to the same pool.
func NewPostgresStore(pool *pgxpool.Pool) *Store {
	return &Store{
		Statuses: NewStatusRepository(pool),
		Clients:  NewClientRepository(pool),
		Tickets:  NewTicketRepository(pool),
		Tasks:    NewTaskRepository(pool),
		Users:    NewUserRepository(pool),
		Grants:   NewGrantRepository(pool),
	}
}
