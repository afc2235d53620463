package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ticketron/ticketron/internal/api/forms"
	"github.com/ticketron/ticketron/internal/domain"
	"github.com/ticketron/ticketron/internal/service"
	"github.com/ticketron/ticketron/pkg/util/errorutil"
)

// TicketsHandler serves the public ticket pages.
type TicketsHandler struct {
	tickets  *service.TicketService
	clients  *service.ClientService
	statuses *service.StatusService
}

// NewTicketsHandler constructs a handler.
func NewTicketsHandler(tickets *service.TicketService, clients *service.ClientService, statuses *service.StatusService) *TicketsHandler {
	return &TicketsHandler{tickets: tickets, clients: clients, statuses: statuses}
}

// List GET /tickets/.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	page, err := h.tickets.List(c.UserContext(), c.Query("page"))
	if err != nil {
		return err
	}
	return render(c, "catalog/ticket_list", fiber.Map{"Title": "Tickets", "Page": page})
}

// Detail GET /ticket/:id.
func (h *TicketsHandler) Detail(c *fiber.Ctx) error {
	detail, err := h.tickets.Detail(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return render(c, "catalog/ticket_detail", fiber.Map{"Title": detail.Ticket.Title, "Detail": detail})
}

// CreateForm GET /ticket/create/.
func (h *TicketsHandler) CreateForm(c *fiber.Ctx) error {
	return h.renderForm(c, nil, forms.NewTicketForm(), nil)
}

// Create POST /ticket/create/.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	var form forms.TicketForm
	if err := c.BodyParser(&form); err != nil {
		return errorutil.NewValidationError("invalid form body", nil)
	}
	input, errs := form.Input()
	if len(errs) > 0 {
		return h.renderForm(c, nil, form, errs)
	}
	ticket, err := h.tickets.Create(c.UserContext(), actorID(c), input)
	if fieldErrs := errorutil.FieldErrors(err); fieldErrs != nil {
		return h.renderForm(c, nil, form, fieldErrs)
	}
	if err != nil {
		return err
	}
	return c.Redirect(ticket.URL(), fiber.StatusFound)
}

// UpdateForm GET /ticket/:id/update/.
func (h *TicketsHandler) UpdateForm(c *fiber.Ctx) error {
	ticket, err := h.tickets.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return h.renderForm(c, ticket, forms.TicketFormFrom(ticket), nil)
}

// Update POST /ticket/:id/update/.
func (h *TicketsHandler) Update(c *fiber.Ctx) error {
	ticket, err := h.tickets.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	var form forms.TicketForm
	if err := c.BodyParser(&form); err != nil {
		return errorutil.NewValidationError("invalid form body", nil)
	}
	input, errs := form.Input()
	if len(errs) > 0 {
		return h.renderForm(c, ticket, form, errs)
	}
	updated, err := h.tickets.Update(c.UserContext(), actorID(c), ticket.ID, input)
	if fieldErrs := errorutil.FieldErrors(err); fieldErrs != nil {
		return h.renderForm(c, ticket, form, fieldErrs)
	}
	if err != nil {
		return err
	}
	return c.Redirect(updated.URL(), fiber.StatusFound)
}

// DeleteConfirm GET /ticket/:id/delete/.
func (h *TicketsHandler) DeleteConfirm(c *fiber.Ctx) error {
	ticket, err := h.tickets.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return render(c, "catalog/confirm_delete", fiber.Map{"Title": "Delete ticket", "Kind": "ticket", "Name": ticket.Title})
}

// Delete POST /ticket/:id/delete/. Tasks of the ticket survive unlinked.
func (h *TicketsHandler) Delete(c *fiber.Ctx) error {
	if err := h.tickets.Delete(c.UserContext(), actorID(c), c.Params("id")); err != nil {
		return err
	}
	return c.Redirect("/tickets/", fiber.StatusFound)
}

func (h *TicketsHandler) renderForm(c *fiber.Ctx, ticket *domain.Ticket, form forms.TicketForm, errs forms.Errors) error {
	ctx := c.UserContext()
	statuses, err := h.statuses.List(ctx)
	if err != nil {
		return err
	}
	clients, err := h.clients.ListAll(ctx)
	if err != nil {
		return err
	}
	title := "Create ticket"
	if ticket != nil {
		title = "Update ticket"
	}
	if errs == nil {
		errs = forms.Errors{}
	}
	return render(c, "catalog/ticket_form", fiber.Map{
		"Title":    title,
		"Ticket":   ticket,
		"Form":     form,
		"Errors":   errs,
		"Statuses": statuses,
		"Clients":  clients,
	})
}
