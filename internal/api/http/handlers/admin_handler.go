package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ticketron/ticketron/internal/api/forms"
	"github.com/ticketron/ticketron/internal/domain"
	"github.com/ticketron/ticketron/internal/service"
	"github.com/ticketron/ticketron/pkg/util/errorutil"
)

// AdminHandler serves the staff back office for every catalog record.
type AdminHandler struct {
	catalog  *service.CatalogService
	statuses *service.StatusService
	clients  *service.ClientService
	tickets  *service.TicketService
	tasks    *service.TaskService
	users    *service.UserService
}

// AdminDependencies bundles the services the back office needs.
type AdminDependencies struct {
	Catalog  *service.CatalogService
	Statuses *service.StatusService
	Clients  *service.ClientService
	Tickets  *service.TicketService
	Tasks    *service.TaskService
	Users    *service.UserService
}

// NewAdminHandler constructs a handler.
func NewAdminHandler(deps AdminDependencies) *AdminHandler {
	return &AdminHandler{
		catalog:  deps.Catalog,
		statuses: deps.Statuses,
		clients:  deps.Clients,
		tickets:  deps.Tickets,
		tasks:    deps.Tasks,
		users:    deps.Users,
	}
}

// Index GET /admin/.
func (h *AdminHandler) Index(c *fiber.Ctx) error {
	stats, err := h.catalog.Stats(c.UserContext())
	if err != nil {
		return err
	}
	return render(c, "admin/index", fiber.Map{"Title": "Site administration", "Stats": stats})
}

// ListStatuses GET /admin/statuses/.
func (h *AdminHandler) ListStatuses(c *fiber.Ctx) error {
	statuses, err := h.statuses.List(c.UserContext())
	if err != nil {
		return err
	}
	return render(c, "admin/status_list", fiber.Map{"Title": "Statuses", "Statuses": statuses})
}

// AddStatusForm GET /admin/statuses/add/.
func (h *AdminHandler) AddStatusForm(c *fiber.Ctx) error {
	return renderStatusForm(c, nil, forms.StatusForm{}, nil)
}

// AddStatus POST /admin/statuses/add/.
func (h *AdminHandler) AddStatus(c *fiber.Ctx) error {
	var form forms.StatusForm
	if err := c.BodyParser(&form); err != nil {
		return errorutil.NewValidationError("invalid form body", nil)
	}
	if errs := forms.Validate(form); len(errs) > 0 {
		return renderStatusForm(c, nil, form, errs)
	}
	_, err := h.statuses.Create(c.UserContext(), form.Name)
	if fieldErrs := errorutil.FieldErrors(err); fieldErrs != nil {
		return renderStatusForm(c, nil, form, fieldErrs)
	}
	if err != nil {
		return err
	}
	return c.Redirect("/admin/statuses/", fiber.StatusFound)
}

// ChangeStatusForm GET /admin/statuses/:id/.
func (h *AdminHandler) ChangeStatusForm(c *fiber.Ctx) error {
	status, err := h.statuses.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return renderStatusForm(c, status, forms.StatusForm{Name: status.Name}, nil)
}

// ChangeStatus POST /admin/statuses/:id/.
func (h *AdminHandler) ChangeStatus(c *fiber.Ctx) error {
	status, err := h.statuses.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	var form forms.StatusForm
	if err := c.BodyParser(&form); err != nil {
		return errorutil.NewValidationError("invalid form body", nil)
	}
	if errs := forms.Validate(form); len(errs) > 0 {
		return renderStatusForm(c, status, form, errs)
	}
	_, err = h.statuses.Update(c.UserContext(), c.Params("id"), form.Name)
	if fieldErrs := errorutil.FieldErrors(err); fieldErrs != nil {
		return renderStatusForm(c, status, form, fieldErrs)
	}
	if err != nil {
		return err
	}
	return c.Redirect("/admin/statuses/", fiber.StatusFound)
}

// DeleteStatusConfirm GET /admin/statuses/:id/delete/.
func (h *AdminHandler) DeleteStatusConfirm(c *fiber.Ctx) error {
	status, err := h.statuses.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return renderAdminDelete(c, "status", status.Name, "/admin/statuses/")
}

// DeleteStatus POST /admin/statuses/:id/delete/.
func (h *AdminHandler) DeleteStatus(c *fiber.Ctx) error {
	if err := h.statuses.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.Redirect("/admin/statuses/", fiber.StatusFound)
}

// ListClients GET /admin/clients/.
func (h *AdminHandler) ListClients(c *fiber.Ctx) error {
	clients, err := h.clients.ListAll(c.UserContext())
	if err != nil {
		return err
	}
	return render(c, "admin/client_list", fiber.Map{"Title": "Clients", "Clients": clients})
}

// AddClientForm GET /admin/clients/add/.
func (h *AdminHandler) AddClientForm(c *fiber.Ctx) error {
	return renderAdminClientForm(c, nil, forms.NewClientForm(), nil)
}

// AddClient POST /admin/clients/add/.
func (h *AdminHandler) AddClient(c *fiber.Ctx) error {
	var form forms.ClientForm
	if err := c.BodyParser(&form); err != nil {
		return errorutil.NewValidationError("invalid form body", nil)
	}
	input, errs := form.Input()
	if len(errs) > 0 {
		return renderAdminClientForm(c, nil, form, errs)
	}
	if _, err := h.clients.Create(c.UserContext(), actorID(c), input); err != nil {
		return err
	}
	return c.Redirect("/admin/clients/", fiber.StatusFound)
}

// ChangeClientForm GET /admin/clients/:id/.
func (h *AdminHandler) ChangeClientForm(c *fiber.Ctx) error {
	client, err := h.clients.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return renderAdminClientForm(c, client, forms.ClientFormFrom(client), nil)
}

// ChangeClient POST /admin/clients/:id/.
func (h *AdminHandler) ChangeClient(c *fiber.Ctx) error {
	client, err := h.clients.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	var form forms.ClientForm
	if err := c.BodyParser(&form); err != nil {
		return errorutil.NewValidationError("invalid form body", nil)
	}
	input, errs := form.Input()
	if len(errs) > 0 {
		return renderAdminClientForm(c, client, form, errs)
	}
	if _, err := h.clients.Update(c.UserContext(), client.ID, input); err != nil {
		return err
	}
	return c.Redirect("/admin/clients/", fiber.StatusFound)
}

// DeleteClientConfirm GET /admin/clients/:id/delete/.
func (h *AdminHandler) DeleteClientConfirm(c *fiber.Ctx) error {
	client, err := h.clients.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return renderAdminDelete(c, "client", client.String(), "/admin/clients/")
}

// DeleteClient POST /admin/clients/:id/delete/.
func (h *AdminHandler) DeleteClient(c *fiber.Ctx) error {
	if err := h.clients.Delete(c.UserContext(), actorID(c), c.Params("id")); err != nil {
		return err
	}
	return c.Redirect("/admin/clients/", fiber.StatusFound)
}

func renderStatusForm(c *fiber.Ctx, status *domain.Status, form forms.StatusForm, errs forms.Errors) error {
	if errs == nil {
		errs = forms.Errors{}
	}
	return render(c, "admin/status_form", fiber.Map{"Title": "Status", "Status": status, "Form": form, "Errors": errs})
}

func renderAdminClientForm(c *fiber.Ctx, client *domain.Client, form forms.ClientForm, errs forms.Errors) error {
	if errs == nil {
		errs = forms.Errors{}
	}
	return render(c, "admin/client_form", fiber.Map{"Title": "Client", "Client": client, "Form": form, "Errors": errs})
}

func renderAdminDelete(c *fiber.Ctx, kind, name, back string) error {
	return render(c, "admin/confirm_delete", fiber.Map{"Title": "Are you sure?", "Kind": kind, "Name": name, "Back": back})
}
