package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ticketron/ticketron/internal/domain"
	"github.com/ticketron/ticketron/internal/events"
	"github.com/ticketron/ticketron/internal/repository"
)

// ClientService coordinates client workflows.
type ClientService struct {
	clients    repository.ClientRepository
	tickets    repository.TicketRepository
	dispatcher events.Dispatcher
}

// ClientInput carries every editable client field.
type ClientInput struct {
	CompanyName string
	FirstName   string
	LastName    string
	Email       string
	Phone       string
	Address     string
	City        string
	State       string
	ClientSince *time.Time
}

// ClientNameInput is the reduced field set editable from the public update page.
type ClientNameInput struct {
	FirstName   string
	LastName    string
	ClientSince *time.Time
}

// ClientDetail is a client with the tickets opened on their behalf.
type ClientDetail struct {
	Client  *domain.Client
	Tickets []domain.Ticket
}

// NewClientService constructs the service.
func NewClientService(clients repository.ClientRepository, tickets repository.TicketRepository, dispatcher events.Dispatcher) *ClientService {
	return &ClientService{clients: clients, tickets: tickets, dispatcher: dispatcher}
}

// InitialClientSince is the date prefilled on the create form.
func InitialClientSince() time.Time {
	return time.Date(2019, time.January, 1, 0, 0, 0, 0, time.UTC)
}

// List returns one page of clients ordered by last then first name.
func (s *ClientService) List(ctx context.Context, rawPage string) (Page[domain.Client], error) {
	ctx, span := tracer.Start(ctx, "ClientService.List")
	defer span.End()

	total, err := s.clients.Count(ctx)
	if err != nil {
		return Page[domain.Client]{}, mapRepoErr(err, "client")
	}
	number, err := ResolvePage(rawPage, total)
	if err != nil {
		return Page[domain.Client]{}, err
	}
	items, err := s.clients.List(ctx, PageSize, (number-1)*PageSize)
	if err != nil {
		return Page[domain.Client]{}, mapRepoErr(err, "client")
	}
	return newPage(items, number, total), nil
}

// ListAll returns every client, for admin pages and select inputs.
func (s *ClientService) ListAll(ctx context.Context) ([]domain.Client, error) {
	total, err := s.clients.Count(ctx)
	if err != nil {
		return nil, mapRepoErr(err, "client")
	}
	if total == 0 {
		return []domain.Client{}, nil
	}
	items, err := s.clients.List(ctx, total, 0)
	return items, mapRepoErr(err, "client")
}

// Get loads a client. Malformed ids are reported as not found.
func (s *ClientService) Get(ctx context.Context, id string) (*domain.Client, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, mapRepoErr(repository.ErrNotFound, "client")
	}
	client, err := s.clients.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err, "client")
	}
	return client, nil
}

// Detail loads a client with their tickets.
func (s *ClientService) Detail(ctx context.Context, id string) (*ClientDetail, error) {
	ctx, span := tracer.Start(ctx, "ClientService.Detail")
	defer span.End()
	span.SetAttributes(attribute.String("client.id", id))

	client, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	tickets, err := s.tickets.List(ctx, repository.TicketFilter{ClientID: &client.ID, Limit: listAllLimit})
	if err != nil {
		return nil, mapRepoErr(err, "ticket")
	}
	return &ClientDetail{Client: client, Tickets: tickets}, nil
}

// Create stores a new client, filling omitted fields with placeholders.
func (s *ClientService) Create(ctx context.Context, actorID *string, input ClientInput) (*domain.Client, error) {
	ctx, span := tracer.Start(ctx, "ClientService.Create")
	defer span.End()

	client := &domain.Client{ID: uuid.NewString()}
	applyClientInput(client, input)
	client.ApplyDefaults()

	if err := s.clients.Create(ctx, client); err != nil {
		return nil, mapRepoErr(err, "client")
	}
	s.publish(ctx, events.NewEvent(events.EventClientCreated, client.ID, actorID, events.ClientPayload{
		Name:  client.String(),
		Email: client.Email,
	}))
	return client, nil
}

// Update replaces every editable field.
func (s *ClientService) Update(ctx context.Context, id string, input ClientInput) (*domain.Client, error) {
	client, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	applyClientInput(client, input)
	client.ApplyDefaults()
	if err := s.clients.Update(ctx, client); err != nil {
		return nil, mapRepoErr(err, "client")
	}
	return client, nil
}

// UpdateNames changes first name, last name and client-since only.
func (s *ClientService) UpdateNames(ctx context.Context, id string, input ClientNameInput) (*domain.Client, error) {
	ctx, span := tracer.Start(ctx, "ClientService.UpdateNames")
	defer span.End()

	client, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	client.FirstName = strings.TrimSpace(input.FirstName)
	client.LastName = strings.TrimSpace(input.LastName)
	client.ClientSince = input.ClientSince
	client.ApplyDefaults()
	if err := s.clients.Update(ctx, client); err != nil {
		return nil, mapRepoErr(err, "client")
	}
	return client, nil
}

// Delete removes a client; their tickets keep existing without a client.
func (s *ClientService) Delete(ctx context.Context, actorID *string, id string) error {
	ctx, span := tracer.Start(ctx, "ClientService.Delete")
	defer span.End()

	client, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.clients.Delete(ctx, id); err != nil {
		return mapRepoErr(err, "client")
	}
	s.publish(ctx, events.NewEvent(events.EventClientDeleted, id, actorID, events.ClientPayload{
		Name:  client.String(),
		Email: client.Email,
	}))
	return nil
}

// Count returns the number of clients.
func (s *ClientService) Count(ctx context.Context) (int, error) {
	n, err := s.clients.Count(ctx)
	return n, mapRepoErr(err, "client")
}

func (s *ClientService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func applyClientInput(client *domain.Client, input ClientInput) {
	client.CompanyName = strings.TrimSpace(input.CompanyName)
	client.FirstName = strings.TrimSpace(input.FirstName)
	client.LastName = strings.TrimSpace(input.LastName)
	client.Email = strings.TrimSpace(input.Email)
	client.Phone = strings.TrimSpace(input.Phone)
	client.Address = strings.TrimSpace(input.Address)
	client.City = strings.TrimSpace(input.City)
	client.State = strings.TrimSpace(input.State)
	client.ClientSince = input.ClientSince
}
