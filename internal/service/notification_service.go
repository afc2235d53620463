package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ticketron/ticketron/internal/config"
	"github.com/ticketron/ticketron/internal/domain"
	"github.com/ticketron/ticketron/internal/events"
	"github.com/ticketron/ticketron/internal/mail"
	"github.com/ticketron/ticketron/internal/repository"
)

// NotificationService handles emitting notifications for domain events.
type NotificationService struct {
	dispatcher events.Dispatcher
	sender     mail.Sender
	users      repository.UserRepository
	clients    repository.ClientRepository
	tickets    repository.TicketRepository
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NotificationDependencies bundles collaborators for the notification service.
type NotificationDependencies struct {
	Dispatcher events.Dispatcher
	Sender     mail.Sender
	UserRepo   repository.UserRepository
	ClientRepo repository.ClientRepository
	TicketRepo repository.TicketRepository
}

// NewNotificationService creates the service. A nil sender disables mail.
func NewNotificationService(deps NotificationDependencies, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: deps.Dispatcher,
		sender:     deps.Sender,
		users:      deps.UserRepo,
		clients:    deps.ClientRepo,
		tickets:    deps.TicketRepo,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	n.dispatcher.Subscribe(events.EventTicketUpdated, n.logEvent)
	n.dispatcher.Subscribe(events.EventTicketDeleted, n.logEvent)
	n.dispatcher.Subscribe(events.EventClientCreated, n.logEvent)
	n.dispatcher.Subscribe(events.EventClientDeleted, n.logEvent)
	n.dispatcher.Subscribe(events.EventTaskRenewed, n.handleTaskRenewed)
}

func (n *NotificationService) logEvent(_ context.Context, event events.Event) error {
	n.logger.Info(string(event.Type),
		zap.String("event_id", event.ID),
		zap.String("subject_id", event.SubjectID),
		zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	_ = n.logEvent(ctx, event)

	payload, ok := event.Payload.(events.TicketPayload)
	if !ok || payload.ClientID == nil {
		return nil
	}
	client, err := n.clients.GetByID(ctx, *payload.ClientID)
	if err != nil {
		return fmt.Errorf("load client for notification: %w", err)
	}

	link := n.link("/ticket/" + event.SubjectID)
	return n.send(mail.Message{
		To:        client.Email,
		Subject:   fmt.Sprintf("Ticket opened: %s", payload.Title),
		PlainBody: fmt.Sprintf("Hello %s,\n\nA ticket was opened on your behalf: %s\n\n%s\n", client.FirstName, payload.Title, link),
		HTMLBody:  fmt.Sprintf(`<p>Hello %s,</p><p>A ticket was opened on your behalf: <a href="%s">%s</a></p>`, client.FirstName, link, payload.Title),
	})
}

func (n *NotificationService) handleTaskRenewed(ctx context.Context, event events.Event) error {
	_ = n.logEvent(ctx, event)

	payload, ok := event.Payload.(events.TaskRenewedPayload)
	if !ok || payload.EmployeeID == nil {
		return nil
	}
	employee, err := n.users.GetByID(ctx, *payload.EmployeeID)
	if err != nil {
		return fmt.Errorf("load employee for notification: %w", err)
	}
	if strings.TrimSpace(employee.Email) == "" {
		return nil
	}

	task := domain.Task{ID: payload.TaskID}
	title := ""
	if payload.TicketID != nil {
		if ticket, err := n.tickets.GetByID(ctx, *payload.TicketID); err == nil {
			title = ticket.Title
		}
	}
	newDay := payload.NewDay.Format(domain.DateLayout)
	return n.send(mail.Message{
		To:        employee.Email,
		Subject:   fmt.Sprintf("Task %s rescheduled to %s", task.Label(title), newDay),
		PlainBody: fmt.Sprintf("Hello %s,\n\nTask %s is now scheduled for %s.\n\n%s\n", employee.DisplayName(), task.Label(title), newDay, n.link("/mytickets/")),
	})
}

func (n *NotificationService) send(msg mail.Message) error {
	if n.sender == nil || !n.cfg.Enabled() {
		n.logger.Debug("smtp not configured; skipping mail", zap.String("to", msg.To), zap.String("subject", msg.Subject))
		return nil
	}
	return n.sender.Send(msg)
}

func (n *NotificationService) link(path string) string {
	return strings.TrimRight(n.cfg.BaseURL, "/") + path
}
