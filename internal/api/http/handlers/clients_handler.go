package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ticketron/ticketron/internal/api/forms"
	"github.com/ticketron/ticketron/internal/domain"
	"github.com/ticketron/ticketron/internal/service"
	"github.com/ticketron/ticketron/pkg/util/errorutil"
)

// ClientsHandler serves the public client pages.
type ClientsHandler struct {
	clients *service.ClientService
}

// NewClientsHandler constructs a handler.
func NewClientsHandler(clients *service.ClientService) *ClientsHandler {
	return &ClientsHandler{clients: clients}
}

// List GET /authors/.
func (h *ClientsHandler) List(c *fiber.Ctx) error {
	page, err := h.clients.List(c.UserContext(), c.Query("page"))
	if err != nil {
		return err
	}
	return render(c, "catalog/client_list", fiber.Map{"Title": "Clients", "Page": page})
}

// Detail GET /client/:id.
func (h *ClientsHandler) Detail(c *fiber.Ctx) error {
	detail, err := h.clients.Detail(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return render(c, "catalog/client_detail", fiber.Map{"Title": detail.Client.String(), "Detail": detail})
}

// CreateForm GET /client/create/.
func (h *ClientsHandler) CreateForm(c *fiber.Ctx) error {
	return renderClientForm(c, nil, forms.NewClientForm(), nil, false)
}

// Create POST /client/create/. Omitted fields receive placeholders.
func (h *ClientsHandler) Create(c *fiber.Ctx) error {
	var form forms.ClientForm
	if err := c.BodyParser(&form); err != nil {
		return errorutil.NewValidationError("invalid form body", nil)
	}
	input, errs := form.Input()
	if len(errs) > 0 {
		return renderClientForm(c, nil, form, errs, false)
	}
	client, err := h.clients.Create(c.UserContext(), actorID(c), input)
	if err != nil {
		return err
	}
	return c.Redirect(client.URL(), fiber.StatusFound)
}

// UpdateForm GET /client/:id/update/. Only names and client-since are editable here.
func (h *ClientsHandler) UpdateForm(c *fiber.Ctx) error {
	client, err := h.clients.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return renderClientForm(c, client, forms.ClientNameFormFrom(client), nil, true)
}

// Update POST /client/:id/update/.
func (h *ClientsHandler) Update(c *fiber.Ctx) error {
	client, err := h.clients.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	var form forms.ClientNameForm
	if err := c.BodyParser(&form); err != nil {
		return errorutil.NewValidationError("invalid form body", nil)
	}
	input, errs := form.Input()
	if len(errs) > 0 {
		return renderClientForm(c, client, form, errs, true)
	}
	updated, err := h.clients.UpdateNames(c.UserContext(), client.ID, input)
	if err != nil {
		return err
	}
	return c.Redirect(updated.URL(), fiber.StatusFound)
}

// DeleteConfirm GET /client/:id/delete/.
func (h *ClientsHandler) DeleteConfirm(c *fiber.Ctx) error {
	client, err := h.clients.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return render(c, "catalog/confirm_delete", fiber.Map{"Title": "Delete client", "Kind": "client", "Name": client.String()})
}

// Delete POST /client/:id/delete/. Tickets of the client survive unlinked.
func (h *ClientsHandler) Delete(c *fiber.Ctx) error {
	if err := h.clients.Delete(c.UserContext(), actorID(c), c.Params("id")); err != nil {
		return err
	}
	return c.Redirect("/authors/", fiber.StatusFound)
}

func renderClientForm(c *fiber.Ctx, client *domain.Client, form interface{}, errs forms.Errors, namesOnly bool) error {
	title := "Create client"
	if client != nil {
		title = "Update client"
	}
	if errs == nil {
		errs = forms.Errors{}
	}
	return render(c, "catalog/client_form", fiber.Map{
		"Title":     title,
		"Client":    client,
		"Form":      form,
		"Errors":    errs,
		"NamesOnly": namesOnly,
	})
}
