// Package fixtures loads seed data from YAML documents.
package fixtures

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ticketron/ticketron/internal/domain"
	"github.com/ticketron/ticketron/internal/service"
)

// Document is the YAML layout accepted by Load. Clients and tickets may carry
// a key that later entries refer to.
type Document struct {
	Statuses []StatusFixture `yaml:"statuses"`
	Clients  []ClientFixture `yaml:"clients"`
	Tickets  []TicketFixture `yaml:"tickets"`
	Tasks    []TaskFixture   `yaml:"tasks"`
}

type StatusFixture struct {
	Name string `yaml:"name"`
}

type ClientFixture struct {
	Key         string `yaml:"key"`
	CompanyName string `yaml:"company_name"`
	FirstName   string `yaml:"first_name"`
	LastName    string `yaml:"last_name"`
	Email       string `yaml:"email"`
	Phone       string `yaml:"phone"`
	Address     string `yaml:"address"`
	City        string `yaml:"city"`
	State       string `yaml:"state"`
	ClientSince string `yaml:"client_since"`
}

type TicketFixture struct {
	Key      string `yaml:"key"`
	Title    string `yaml:"title"`
	Summary  string `yaml:"summary"`
	Severity string `yaml:"severity"`
	Status   string `yaml:"status"`
	Client   string `yaml:"client"`
}

type TaskFixture struct {
	Ticket          string `yaml:"ticket"`
	WorkSummary     string `yaml:"work_summary"`
	CompletionNotes string `yaml:"completion_notes"`
	ScheduledDay    string `yaml:"scheduled_day"`
	Employee        string `yaml:"employee"`
	Done            bool   `yaml:"done"`
}

// Summary counts the records created by Load.
type Summary struct {
	Statuses int
	Clients  int
	Tickets  int
	Tasks    int
}

func (s Summary) String() string {
	return fmt.Sprintf("%d statuses, %d clients, %d tickets, %d tasks", s.Statuses, s.Clients, s.Tickets, s.Tasks)
}

// Decode parses a fixture document, rejecting unknown fields.
func Decode(r io.Reader) (*Document, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var doc Document
	if err := dec.Decode(&doc); err != nil {
		if err == io.EOF {
			return &doc, nil
		}
		return nil, fmt.Errorf("decode fixtures: %w", err)
	}
	return &doc, nil
}

// Load creates every record in doc through the services so that defaults and
// validation apply exactly as they do for the web forms.
func Load(ctx context.Context, doc *Document, svc *service.Services) (Summary, error) {
	var summary Summary

	statusIDs, err := existingStatuses(ctx, svc.Statuses)
	if err != nil {
		return summary, err
	}
	for _, fixture := range doc.Statuses {
		key := strings.ToLower(strings.TrimSpace(fixture.Name))
		if _, ok := statusIDs[key]; ok {
			continue
		}
		status, err := svc.Statuses.Create(ctx, fixture.Name)
		if err != nil {
			return summary, fmt.Errorf("status %q: %w", fixture.Name, err)
		}
		statusIDs[key] = status.ID
		summary.Statuses++
	}

	clientIDs := map[string]string{}
	for i, fixture := range doc.Clients {
		since, err := optionalDate(fixture.ClientSince)
		if err != nil {
			return summary, fmt.Errorf("client %d: %w", i, err)
		}
		client, err := svc.Clients.Create(ctx, nil, service.ClientInput{
			CompanyName: fixture.CompanyName,
			FirstName:   fixture.FirstName,
			LastName:    fixture.LastName,
			Email:       fixture.Email,
			Phone:       fixture.Phone,
			Address:     fixture.Address,
			City:        fixture.City,
			State:       fixture.State,
			ClientSince: since,
		})
		if err != nil {
			return summary, fmt.Errorf("client %d: %w", i, err)
		}
		if fixture.Key != "" {
			clientIDs[fixture.Key] = client.ID
		}
		summary.Clients++
	}

	ticketIDs := map[string]string{}
	for _, fixture := range doc.Tickets {
		input := service.TicketInput{
			Title:    fixture.Title,
			Summary:  fixture.Summary,
			Severity: domain.Severity(fixture.Severity),
		}
		if fixture.Status != "" {
			id, ok := statusIDs[strings.ToLower(fixture.Status)]
			if !ok {
				return summary, fmt.Errorf("ticket %q: unknown status %q", fixture.Title, fixture.Status)
			}
			input.StatusID = &id
		}
		if fixture.Client != "" {
			id, ok := clientIDs[fixture.Client]
			if !ok {
				return summary, fmt.Errorf("ticket %q: unknown client key %q", fixture.Title, fixture.Client)
			}
			input.ClientID = &id
		}
		ticket, err := svc.Tickets.Create(ctx, nil, input)
		if err != nil {
			return summary, fmt.Errorf("ticket %q: %w", fixture.Title, err)
		}
		if fixture.Key != "" {
			ticketIDs[fixture.Key] = ticket.ID
		}
		summary.Tickets++
	}

	for _, fixture := range doc.Tasks {
		day, err := optionalDate(fixture.ScheduledDay)
		if err != nil {
			return summary, fmt.Errorf("task %q: %w", fixture.WorkSummary, err)
		}
		input := service.TaskInput{
			WorkSummary:     fixture.WorkSummary,
			CompletionNotes: fixture.CompletionNotes,
			ScheduledDay:    day,
			Done:            fixture.Done,
		}
		if fixture.Ticket != "" {
			id, ok := ticketIDs[fixture.Ticket]
			if !ok {
				return summary, fmt.Errorf("task %q: unknown ticket key %q", fixture.WorkSummary, fixture.Ticket)
			}
			input.TicketID = &id
		}
		if fixture.Employee != "" {
			user, err := svc.Users.GetByUsername(ctx, fixture.Employee)
			if err != nil {
				return summary, fmt.Errorf("task %q: employee %q: %w", fixture.WorkSummary, fixture.Employee, err)
			}
			input.EmployeeID = &user.ID
		}
		if _, err := svc.Tasks.Create(ctx, input); err != nil {
			return summary, fmt.Errorf("task %q: %w", fixture.WorkSummary, err)
		}
		summary.Tasks++
	}

	return summary, nil
}

func existingStatuses(ctx context.Context, statuses *service.StatusService) (map[string]int64, error) {
	items, err := statuses.List(ctx)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]int64, len(items))
	for _, status := range items {
		ids[strings.ToLower(status.Name)] = status.ID
	}
	return ids, nil
}

func optionalDate(raw string) (*time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	day, err := domain.ParseDate(raw)
	if err != nil {
		return nil, err
	}
	return &day, nil
}
