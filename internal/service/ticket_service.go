package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ticketron/ticketron/internal/domain"
	"github.com/ticketron/ticketron/internal/events"
	"github.com/ticketron/ticketron/internal/repository"
	"github.com/ticketron/ticketron/pkg/util/errorutil"
)

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets    repository.TicketRepository
	tasks      repository.TaskRepository
	statuses   repository.StatusRepository
	clients    repository.ClientRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
	clock      Clock
}

// TicketDependencies bundles repositories for ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	TaskRepo   repository.TaskRepository
	StatusRepo repository.StatusRepository
	ClientRepo repository.ClientRepository
	UserRepo   repository.UserRepository
	Dispatcher events.Dispatcher
	Clock      Clock
}

// TicketInput describes the editable ticket fields.
type TicketInput struct {
	Title    string
	Summary  string
	Severity domain.Severity
	StatusID *int64
	ClientID *string
}

// TicketItem is a ticket with its resolved client and status.
type TicketItem struct {
	Ticket domain.Ticket
	Client *domain.Client
	Status *domain.Status
}

// TicketDetail is a ticket with its client, status and tasks.
type TicketDetail struct {
	TicketItem
	Tasks []TaskItem
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		tasks:      deps.TaskRepo,
		statuses:   deps.StatusRepo,
		clients:    deps.ClientRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
		clock:      deps.Clock,
	}
}

// List returns one page of tickets ordered by title.
func (s *TicketService) List(ctx context.Context, rawPage string) (Page[TicketItem], error) {
	ctx, span := tracer.Start(ctx, "TicketService.List")
	defer span.End()

	total, err := s.tickets.Count(ctx, repository.TicketFilter{})
	if err != nil {
		return Page[TicketItem]{}, mapRepoErr(err, "ticket")
	}
	number, err := ResolvePage(rawPage, total)
	if err != nil {
		return Page[TicketItem]{}, err
	}
	tickets, err := s.tickets.List(ctx, repository.TicketFilter{Limit: PageSize, Offset: (number - 1) * PageSize})
	if err != nil {
		return Page[TicketItem]{}, mapRepoErr(err, "ticket")
	}
	items, err := s.resolve(ctx, tickets)
	if err != nil {
		return Page[TicketItem]{}, err
	}
	return newPage(items, number, total), nil
}

// ListAll returns every ticket with its client and status resolved.
func (s *TicketService) ListAll(ctx context.Context) ([]TicketItem, error) {
	tickets, err := s.tickets.List(ctx, repository.TicketFilter{Limit: listAllLimit})
	if err != nil {
		return nil, mapRepoErr(err, "ticket")
	}
	return s.resolve(ctx, tickets)
}

// Get loads a ticket. Malformed ids are reported as not found.
func (s *TicketService) Get(ctx context.Context, id string) (*domain.Ticket, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, mapRepoErr(repository.ErrNotFound, "ticket")
	}
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err, "ticket")
	}
	return ticket, nil
}

// Detail loads a ticket with its tasks.
func (s *TicketService) Detail(ctx context.Context, id string) (*TicketDetail, error) {
	ctx, span := tracer.Start(ctx, "TicketService.Detail")
	defer span.End()
	span.SetAttributes(attribute.String("ticket.id", id))

	ticket, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	items, err := s.resolve(ctx, []domain.Ticket{*ticket})
	if err != nil {
		return nil, err
	}
	tasks, err := s.tasks.List(ctx, repository.TaskFilter{TicketID: &ticket.ID, Limit: listAllLimit})
	if err != nil {
		return nil, mapRepoErr(err, "task")
	}
	resolver := newTaskResolver(s.tickets, s.users)
	taskItems, err := resolver.resolve(ctx, tasks, s.clock.Today())
	if err != nil {
		return nil, err
	}
	return &TicketDetail{TicketItem: items[0], Tasks: taskItems}, nil
}

// Create stores a new ticket. Without a status the one named "new" is used
// when present.
func (s *TicketService) Create(ctx context.Context, actorID *string, input TicketInput) (*domain.Ticket, error) {
	ctx, span := tracer.Start(ctx, "TicketService.Create")
	defer span.End()

	if input.StatusID == nil {
		status, err := s.statuses.GetByName(ctx, domain.DefaultStatusName)
		switch {
		case err == nil:
			input.StatusID = &status.ID
		case !errors.Is(err, repository.ErrNotFound):
			return nil, mapRepoErr(err, "status")
		}
	}

	ticket := &domain.Ticket{ID: uuid.NewString()}
	if err := s.apply(ctx, ticket, input); err != nil {
		return nil, err
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, mapRepoErr(err, "ticket")
	}
	s.publish(ctx, events.NewEvent(events.EventTicketCreated, ticket.ID, actorID, ticketPayload(ticket)))
	return ticket, nil
}

// Update replaces the editable fields of a ticket.
func (s *TicketService) Update(ctx context.Context, actorID *string, id string, input TicketInput) (*domain.Ticket, error) {
	ctx, span := tracer.Start(ctx, "TicketService.Update")
	defer span.End()

	ticket, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, ticket, input); err != nil {
		return nil, err
	}
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, mapRepoErr(err, "ticket")
	}
	s.publish(ctx, events.NewEvent(events.EventTicketUpdated, ticket.ID, actorID, ticketPayload(ticket)))
	return ticket, nil
}

// Delete removes a ticket; its tasks keep existing without a ticket.
func (s *TicketService) Delete(ctx context.Context, actorID *string, id string) error {
	ctx, span := tracer.Start(ctx, "TicketService.Delete")
	defer span.End()

	ticket, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.tickets.Delete(ctx, id); err != nil {
		return mapRepoErr(err, "ticket")
	}
	s.publish(ctx, events.NewEvent(events.EventTicketDeleted, id, actorID, ticketPayload(ticket)))
	return nil
}

// Count returns the number of tickets.
func (s *TicketService) Count(ctx context.Context) (int, error) {
	n, err := s.tickets.Count(ctx, repository.TicketFilter{})
	return n, mapRepoErr(err, "ticket")
}

func (s *TicketService) apply(ctx context.Context, ticket *domain.Ticket, input TicketInput) error {
	fieldErrs := map[string]any{}

	severity := input.Severity
	if severity == "" {
		severity = domain.SeverityMedium
	}
	if !severity.Valid() {
		fieldErrs["severity"] = "Select a valid choice."
	}
	if input.StatusID != nil {
		if _, err := s.statuses.GetByID(ctx, *input.StatusID); err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				return mapRepoErr(err, "status")
			}
			fieldErrs["status"] = "Select a valid choice."
		}
	}
	if input.ClientID != nil {
		if _, err := s.clients.GetByID(ctx, *input.ClientID); err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				return mapRepoErr(err, "client")
			}
			fieldErrs["client"] = "Select a valid choice."
		}
	}
	if len(fieldErrs) > 0 {
		return errorutil.NewValidationError("invalid ticket", fieldErrs)
	}

	ticket.Title = strings.TrimSpace(input.Title)
	ticket.Summary = strings.TrimSpace(input.Summary)
	ticket.Severity = severity
	ticket.StatusID = input.StatusID
	ticket.ClientID = input.ClientID
	return nil
}

func (s *TicketService) resolve(ctx context.Context, tickets []domain.Ticket) ([]TicketItem, error) {
	clients := map[string]*domain.Client{}
	statuses := map[int64]*domain.Status{}
	items := make([]TicketItem, 0, len(tickets))

	for _, ticket := range tickets {
		item := TicketItem{Ticket: ticket}
		if ticket.ClientID != nil {
			client, ok := clients[*ticket.ClientID]
			if !ok {
				c, err := s.clients.GetByID(ctx, *ticket.ClientID)
				if err != nil && !errors.Is(err, repository.ErrNotFound) {
					return nil, mapRepoErr(err, "client")
				}
				client = c
				clients[*ticket.ClientID] = c
			}
			item.Client = client
		}
		if ticket.StatusID != nil {
			status, ok := statuses[*ticket.StatusID]
			if !ok {
				st, err := s.statuses.GetByID(ctx, *ticket.StatusID)
				if err != nil && !errors.Is(err, repository.ErrNotFound) {
					return nil, mapRepoErr(err, "status")
				}
				status = st
				statuses[*ticket.StatusID] = st
			}
			item.Status = status
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *TicketService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func ticketPayload(ticket *domain.Ticket) events.TicketPayload {
	return events.TicketPayload{
		Title:    ticket.Title,
		Severity: string(ticket.Severity),
		ClientID: ticket.ClientID,
	}
}
