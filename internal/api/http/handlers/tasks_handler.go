package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ticketron/ticketron/internal/api/forms"
	"github.com/ticketron/ticketron/internal/auth"
	"github.com/ticketron/ticketron/internal/domain"
	"github.com/ticketron/ticketron/internal/service"
	"github.com/ticketron/ticketron/pkg/util/errorutil"
)

// TasksHandler serves open-task listings and the renewal form.
type TasksHandler struct {
	tasks *service.TaskService
}

// NewTasksHandler constructs a handler.
func NewTasksHandler(tasks *service.TaskService) *TasksHandler {
	return &TasksHandler{tasks: tasks}
}

// Mine GET /mytickets/. Open tasks assigned to the caller.
func (h *TasksHandler) Mine(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return errorutil.NewUnauthorized("login required")
	}
	page, err := h.tasks.Mine(c.UserContext(), principal.User.ID, c.Query("page"))
	if err != nil {
		return err
	}
	return render(c, "catalog/my_tasks", fiber.Map{"Title": "My tasks", "Page": page})
}

// Borrowed GET /borrowed/. Every open task.
func (h *TasksHandler) Borrowed(c *fiber.Ctx) error {
	page, err := h.tasks.Borrowed(c.UserContext(), c.Query("page"))
	if err != nil {
		return err
	}
	return render(c, "catalog/open_tasks", fiber.Map{"Title": "All open tasks", "Page": page})
}

// RenewForm GET /ticket/:taskid/renew/. Proposes today plus three weeks.
func (h *TasksHandler) RenewForm(c *fiber.Ctx) error {
	item, err := h.lookup(c)
	if err != nil {
		return err
	}
	form := forms.RenewForm{RenewalDate: service.DefaultRenewalDate(h.tasks.Today()).Format(domain.DateLayout)}
	return renderRenew(c, item, form, nil)
}

// Renew POST /ticket/:taskid/renew/.
func (h *TasksHandler) Renew(c *fiber.Ctx) error {
	item, err := h.lookup(c)
	if err != nil {
		return err
	}
	var form forms.RenewForm
	if err := c.BodyParser(&form); err != nil {
		return errorutil.NewValidationError("invalid form body", nil)
	}
	_, err = h.tasks.Renew(c.UserContext(), actorID(c), item.Task.ID, form.RenewalDate)
	if fieldErrs := errorutil.FieldErrors(err); fieldErrs != nil {
		return renderRenew(c, item, form, fieldErrs)
	}
	if err != nil {
		return err
	}
	return c.Redirect("/borrowed/", fiber.StatusFound)
}

func (h *TasksHandler) lookup(c *fiber.Ctx) (*service.TaskItem, error) {
	id, err := service.ParseTaskID(c.Params("taskid"))
	if err != nil {
		return nil, err
	}
	return h.tasks.Get(c.UserContext(), id)
}

func renderRenew(c *fiber.Ctx, item *service.TaskItem, form forms.RenewForm, errs forms.Errors) error {
	if errs == nil {
		errs = forms.Errors{}
	}
	return render(c, "catalog/task_renew", fiber.Map{
		"Title":  "Renew: " + item.Label(),
		"Task":   item,
		"Form":   form,
		"Errors": errs,
	})
}
