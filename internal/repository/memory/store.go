// Package memory provides map-backed repositories used for local runs without a
// database and by handler tests. Foreign keys behave like ON DELETE SET NULL.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ticketron/ticketron/internal/domain"
	"github.com/ticketron/ticketron/internal/repository"
)

type data struct {
	mu          sync.RWMutex
	statuses    map[int64]domain.Status
	clients     map[string]domain.Client
	tickets     map[string]domain.Ticket
	tasks       map[int64]domain.Task
	users       map[string]domain.User
	grants      []domain.Grant
	memberships []domain.Membership
	nextStatus  int64
	nextTask    int64
	now         func() time.Time
}

// NewStore returns a repository.Store whose repositories share one in-memory dataset.
func NewStore() *repository.Store {
	d := &data{
		statuses: make(map[int64]domain.Status),
		clients:  make(map[string]domain.Client),
		tickets:  make(map[string]domain.Ticket),
		tasks:    make(map[int64]domain.Task),
		users:    make(map[string]domain.User),
		now:      time.Now,
	}
	return &repository.Store{
		Statuses: &statusRepo{d},
		Clients:  &clientRepo{d},
		Tickets:  &ticketRepo{d},
		Tasks:    &taskRepo{d},
		Users:    &userRepo{d},
		Grants:   &grantRepo{d},
	}
}

func page[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = 20
	}
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

type statusRepo struct{ d *data }

func (r *statusRepo) Create(_ context.Context, status *domain.Status) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	r.d.nextStatus++
	status.ID = r.d.nextStatus
	r.d.statuses[status.ID] = *status
	return nil
}

func (r *statusRepo) Update(_ context.Context, status *domain.Status) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if _, ok := r.d.statuses[status.ID]; !ok {
		return repository.ErrNotFound
	}
	r.d.statuses[status.ID] = *status
	return nil
}

func (r *statusRepo) Delete(_ context.Context, id int64) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if _, ok := r.d.statuses[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.d.statuses, id)
	for key, ticket := range r.d.tickets {
		if ticket.StatusID != nil && *ticket.StatusID == id {
			ticket.StatusID = nil
			r.d.tickets[key] = ticket
		}
	}
	return nil
}

func (r *statusRepo) GetByID(_ context.Context, id int64) (*domain.Status, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	status, ok := r.d.statuses[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &status, nil
}

func (r *statusRepo) GetByName(_ context.Context, name string) (*domain.Status, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	var found *domain.Status
	for _, status := range r.d.statuses {
		if strings.EqualFold(status.Name, name) && (found == nil || status.ID < found.ID) {
			s := status
			found = &s
		}
	}
	if found == nil {
		return nil, repository.ErrNotFound
	}
	return found, nil
}

func (r *statusRepo) List(_ context.Context) ([]domain.Status, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	out := make([]domain.Status, 0, len(r.d.statuses))
	for _, status := range r.d.statuses {
		out = append(out, status)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *statusRepo) Count(_ context.Context) (int, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	return len(r.d.statuses), nil
}

type clientRepo struct{ d *data }

func (r *clientRepo) Create(_ context.Context, client *domain.Client) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if _, exists := r.d.clients[client.ID]; exists {
		return repository.ErrDuplicate
	}
	now := r.d.now()
	client.CreatedAt, client.UpdatedAt = now, now
	r.d.clients[client.ID] = *client
	return nil
}

func (r *clientRepo) Update(_ context.Context, client *domain.Client) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	existing, ok := r.d.clients[client.ID]
	if !ok {
		return repository.ErrNotFound
	}
	client.CreatedAt = existing.CreatedAt
	client.UpdatedAt = r.d.now()
	r.d.clients[client.ID] = *client
	return nil
}

func (r *clientRepo) Delete(_ context.Context, id string) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if _, ok := r.d.clients[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.d.clients, id)
	for key, ticket := range r.d.tickets {
		if ticket.ClientID != nil && *ticket.ClientID == id {
			ticket.ClientID = nil
			r.d.tickets[key] = ticket
		}
	}
	return nil
}

func (r *clientRepo) GetByID(_ context.Context, id string) (*domain.Client, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	client, ok := r.d.clients[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &client, nil
}

func (r *clientRepo) List(_ context.Context, limit, offset int) ([]domain.Client, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	out := make([]domain.Client, 0, len(r.d.clients))
	for _, client := range r.d.clients {
		out = append(out, client)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.LastName != b.LastName {
			return a.LastName < b.LastName
		}
		if a.FirstName != b.FirstName {
			return a.FirstName < b.FirstName
		}
		return a.ID < b.ID
	})
	return page(out, limit, offset), nil
}

func (r *clientRepo) Count(_ context.Context) (int, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	return len(r.d.clients), nil
}

type ticketRepo struct{ d *data }

func (r *ticketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if _, exists := r.d.tickets[ticket.ID]; exists {
		return repository.ErrDuplicate
	}
	now := r.d.now()
	ticket.CreatedAt, ticket.UpdatedAt = now, now
	r.d.tickets[ticket.ID] = *ticket
	return nil
}

func (r *ticketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	existing, ok := r.d.tickets[ticket.ID]
	if !ok {
		return repository.ErrNotFound
	}
	ticket.CreatedAt = existing.CreatedAt
	ticket.UpdatedAt = r.d.now()
	r.d.tickets[ticket.ID] = *ticket
	return nil
}

func (r *ticketRepo) Delete(_ context.Context, id string) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if _, ok := r.d.tickets[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.d.tickets, id)
	for key, task := range r.d.tasks {
		if task.TicketID != nil && *task.TicketID == id {
			task.TicketID = nil
			r.d.tasks[key] = task
		}
	}
	return nil
}

func (r *ticketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	ticket, ok := r.d.tickets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &ticket, nil
}

func (r *ticketRepo) List(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	out := r.filtered(filter)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Title != out[j].Title {
			return out[i].Title < out[j].Title
		}
		return out[i].ID < out[j].ID
	})
	return page(out, filter.Limit, filter.Offset), nil
}

func (r *ticketRepo) Count(_ context.Context, filter repository.TicketFilter) (int, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	return len(r.filtered(filter)), nil
}

func (r *ticketRepo) filtered(filter repository.TicketFilter) []domain.Ticket {
	out := []domain.Ticket{}
	for _, ticket := range r.d.tickets {
		if filter.ClientID != nil && (ticket.ClientID == nil || *ticket.ClientID != *filter.ClientID) {
			continue
		}
		if filter.StatusID != nil && (ticket.StatusID == nil || *ticket.StatusID != *filter.StatusID) {
			continue
		}
		if filter.Severity != nil && ticket.Severity != *filter.Severity {
			continue
		}
		out = append(out, ticket)
	}
	return out
}

type taskRepo struct{ d *data }

func (r *taskRepo) Create(_ context.Context, task *domain.Task) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	r.d.nextTask++
	task.ID = r.d.nextTask
	now := r.d.now()
	task.CreatedAt, task.UpdatedAt = now, now
	r.d.tasks[task.ID] = *task
	return nil
}

func (r *taskRepo) Update(_ context.Context, task *domain.Task) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	existing, ok := r.d.tasks[task.ID]
	if !ok {
		return repository.ErrNotFound
	}
	task.CreatedAt = existing.CreatedAt
	task.UpdatedAt = r.d.now()
	r.d.tasks[task.ID] = *task
	return nil
}

func (r *taskRepo) UpdateScheduledDay(_ context.Context, id int64, day time.Time) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	task, ok := r.d.tasks[id]
	if !ok {
		return repository.ErrNotFound
	}
	task.ScheduledDay = &day
	task.UpdatedAt = r.d.now()
	r.d.tasks[id] = task
	return nil
}

func (r *taskRepo) Delete(_ context.Context, id int64) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if _, ok := r.d.tasks[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.d.tasks, id)
	return nil
}

func (r *taskRepo) GetByID(_ context.Context, id int64) (*domain.Task, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	task, ok := r.d.tasks[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &task, nil
}

func (r *taskRepo) List(_ context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	out := r.filtered(filter)
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].ScheduledDay, out[j].ScheduledDay
		switch {
		case a == nil && b == nil:
		case a == nil:
			return false
		case b == nil:
			return true
		case !a.Equal(*b):
			return a.Before(*b)
		}
		return out[i].ID < out[j].ID
	})
	return page(out, filter.Limit, filter.Offset), nil
}

func (r *taskRepo) Count(_ context.Context, filter repository.TaskFilter) (int, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	return len(r.filtered(filter)), nil
}

func (r *taskRepo) filtered(filter repository.TaskFilter) []domain.Task {
	out := []domain.Task{}
	for _, task := range r.d.tasks {
		if filter.TicketID != nil && (task.TicketID == nil || *task.TicketID != *filter.TicketID) {
			continue
		}
		if filter.EmployeeID != nil && (task.EmployeeID == nil || *task.EmployeeID != *filter.EmployeeID) {
			continue
		}
		if filter.Done != nil && task.Done != *filter.Done {
			continue
		}
		if filter.ScheduledFrom != nil && (task.ScheduledDay == nil || task.ScheduledDay.Before(*filter.ScheduledFrom)) {
			continue
		}
		if filter.ScheduledTo != nil && (task.ScheduledDay == nil || task.ScheduledDay.After(*filter.ScheduledTo)) {
			continue
		}
		out = append(out, task)
	}
	return out
}

type userRepo struct{ d *data }

func (r *userRepo) Create(_ context.Context, user *domain.User) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	for _, existing := range r.d.users {
		if existing.Username == user.Username {
			return repository.ErrDuplicate
		}
	}
	user.DateJoined = r.d.now()
	r.d.users[user.ID] = *user
	return nil
}

func (r *userRepo) Update(_ context.Context, user *domain.User) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if _, ok := r.d.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	r.d.users[user.ID] = *user
	return nil
}

func (r *userRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	user, ok := r.d.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &user, nil
}

func (r *userRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	for _, user := range r.d.users {
		if user.Username == username {
			u := user
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *userRepo) List(_ context.Context) ([]domain.User, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	out := make([]domain.User, 0, len(r.d.users))
	for _, user := range r.d.users {
		out = append(out, user)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

type grantRepo struct{ d *data }

func (r *grantRepo) AddGrant(_ context.Context, grant domain.Grant) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	for _, existing := range r.d.grants {
		if existing == grant {
			return nil
		}
	}
	r.d.grants = append(r.d.grants, grant)
	return nil
}

func (r *grantRepo) RemoveGrant(_ context.Context, grant domain.Grant) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	for i, existing := range r.d.grants {
		if existing == grant {
			r.d.grants = append(r.d.grants[:i], r.d.grants[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *grantRepo) ListGrants(_ context.Context) ([]domain.Grant, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	return append([]domain.Grant(nil), r.d.grants...), nil
}

func (r *grantRepo) AddMembership(_ context.Context, membership domain.Membership) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	for _, existing := range r.d.memberships {
		if existing == membership {
			return nil
		}
	}
	r.d.memberships = append(r.d.memberships, membership)
	return nil
}

func (r *grantRepo) ListMemberships(_ context.Context) ([]domain.Membership, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	return append([]domain.Membership(nil), r.d.memberships...), nil
}
