package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ticketron/ticketron/internal/api/forms"
	"github.com/ticketron/ticketron/internal/domain"
	"github.com/ticketron/ticketron/internal/service"
	"github.com/ticketron/ticketron/pkg/util/errorutil"
)

// ListTickets GET /admin/tickets/.
func (h *AdminHandler) ListTickets(c *fiber.Ctx) error {
	tickets, err := h.tickets.ListAll(c.UserContext())
	if err != nil {
		return err
	}
	return render(c, "admin/ticket_list", fiber.Map{"Title": "Tickets", "Tickets": tickets})
}

// AddTicketForm GET /admin/tickets/add/.
func (h *AdminHandler) AddTicketForm(c *fiber.Ctx) error {
	return h.renderTicketForm(c, nil, forms.NewTicketForm(), nil, nil)
}

// AddTicket POST /admin/tickets/add/. Continues to the change page so tasks can be added.
func (h *AdminHandler) AddTicket(c *fiber.Ctx) error {
	var form forms.TicketForm
	if err := c.BodyParser(&form); err != nil {
		return errorutil.NewValidationError("invalid form body", nil)
	}
	input, errs := form.Input()
	if len(errs) > 0 {
		return h.renderTicketForm(c, nil, form, errs, nil)
	}
	ticket, err := h.tickets.Create(c.UserContext(), actorID(c), input)
	if fieldErrs := errorutil.FieldErrors(err); fieldErrs != nil {
		return h.renderTicketForm(c, nil, form, fieldErrs, nil)
	}
	if err != nil {
		return err
	}
	return c.Redirect("/admin/tickets/"+ticket.ID+"/", fiber.StatusFound)
}

// ChangeTicketForm GET /admin/tickets/:id/. Lists the ticket's tasks inline.
func (h *AdminHandler) ChangeTicketForm(c *fiber.Ctx) error {
	ticket, err := h.tickets.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return h.renderTicketForm(c, ticket, forms.TicketFormFrom(ticket), nil, nil)
}

// ChangeTicket POST /admin/tickets/:id/.
func (h *AdminHandler) ChangeTicket(c *fiber.Ctx) error {
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
		return h.renderTicketForm(c, ticket, form, errs, nil)
	}
	_, err = h.tickets.Update(c.UserContext(), actorID(c), ticket.ID, input)
	if fieldErrs := errorutil.FieldErrors(err); fieldErrs != nil {
		return h.renderTicketForm(c, ticket, form, fieldErrs, nil)
	}
	if err != nil {
		return err
	}
	return c.Redirect("/admin/tickets/", fiber.StatusFound)
}

// AddTicketTask POST /admin/tickets/:id/tasks/. Inline task creation.
func (h *AdminHandler) AddTicketTask(c *fiber.Ctx) error {
	ticket, err := h.tickets.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	var form forms.TaskForm
	if err := c.BodyParser(&form); err != nil {
		return errorutil.NewValidationError("invalid form body", nil)
	}
	form.Ticket = ticket.ID
	input, errs := form.Input()
	if len(errs) == 0 {
		_, err = h.tasks.Create(c.UserContext(), input)
		errs = errorutil.FieldErrors(err)
		if errs == nil && err != nil {
			return err
		}
	}
	if len(errs) > 0 {
		return h.renderTicketForm(c, ticket, forms.TicketFormFrom(ticket), nil, errs)
	}
	return c.Redirect("/admin/tickets/"+ticket.ID+"/", fiber.StatusFound)
}

// DeleteTicketConfirm GET /admin/tickets/:id/delete/.
func (h *AdminHandler) DeleteTicketConfirm(c *fiber.Ctx) error {
	ticket, err := h.tickets.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return renderAdminDelete(c, "ticket", ticket.Title, "/admin/tickets/")
}

// DeleteTicket POST /admin/tickets/:id/delete/.
func (h *AdminHandler) DeleteTicket(c *fiber.Ctx) error {
	if err := h.tickets.Delete(c.UserContext(), actorID(c), c.Params("id")); err != nil {
		return err
	}
	return c.Redirect("/admin/tickets/", fiber.StatusFound)
}

// ListTasks GET /admin/tasks/. Filters: done=yes|no, scheduled=today|past7|month|year.
func (h *AdminHandler) ListTasks(c *fiber.Ctx) error {
	filter := service.TaskFilter{Scheduled: c.Query("scheduled")}
	switch c.Query("done") {
	case "yes":
		done := true
		filter.Done = &done
	case "no":
		done := false
		filter.Done = &done
	}
	tasks, err := h.tasks.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return render(c, "admin/task_list", fiber.Map{
		"Title":     "Tasks",
		"Tasks":     tasks,
		"Done":      c.Query("done"),
		"Scheduled": c.Query("scheduled"),
	})
}

// AddTaskForm GET /admin/tasks/add/.
func (h *AdminHandler) AddTaskForm(c *fiber.Ctx) error {
	return h.renderTaskForm(c, nil, forms.TaskForm{Ticket: c.Query("ticket")}, nil)
}

// AddTask POST /admin/tasks/add/.
func (h *AdminHandler) AddTask(c *fiber.Ctx) error {
	var form forms.TaskForm
	if err := c.BodyParser(&form); err != nil {
		return errorutil.NewValidationError("invalid form body", nil)
	}
	input, errs := form.Input()
	if len(errs) > 0 {
		return h.renderTaskForm(c, nil, form, errs)
	}
	_, err := h.tasks.Create(c.UserContext(), input)
	if fieldErrs := errorutil.FieldErrors(err); fieldErrs != nil {
		return h.renderTaskForm(c, nil, form, fieldErrs)
	}
	if err != nil {
		return err
	}
	return c.Redirect("/admin/tasks/", fiber.StatusFound)
}

// ChangeTaskForm GET /admin/tasks/:id/.
func (h *AdminHandler) ChangeTaskForm(c *fiber.Ctx) error {
	item, err := h.lookupTask(c)
	if err != nil {
		return err
	}
	return h.renderTaskForm(c, &item.Task, forms.TaskFormFrom(&item.Task), nil)
}

// ChangeTask POST /admin/tasks/:id/.
func (h *AdminHandler) ChangeTask(c *fiber.Ctx) error {
	item, err := h.lookupTask(c)
	if err != nil {
		return err
	}
	var form forms.TaskForm
	if err := c.BodyParser(&form); err != nil {
		return errorutil.NewValidationError("invalid form body", nil)
	}
	input, errs := form.Input()
	if len(errs) > 0 {
		return h.renderTaskForm(c, &item.Task, form, errs)
	}
	_, err = h.tasks.Update(c.UserContext(), item.Task.ID, input)
	if fieldErrs := errorutil.FieldErrors(err); fieldErrs != nil {
		return h.renderTaskForm(c, &item.Task, form, fieldErrs)
	}
	if err != nil {
		return err
	}
	return c.Redirect("/admin/tasks/", fiber.StatusFound)
}

// DeleteTaskConfirm GET /admin/tasks/:id/delete/.
func (h *AdminHandler) DeleteTaskConfirm(c *fiber.Ctx) error {
	item, err := h.lookupTask(c)
	if err != nil {
		return err
	}
	return renderAdminDelete(c, "task", item.Label(), "/admin/tasks/")
}

// DeleteTask POST /admin/tasks/:id/delete/.
func (h *AdminHandler) DeleteTask(c *fiber.Ctx) error {
	item, err := h.lookupTask(c)
	if err != nil {
		return err
	}
	if err := h.tasks.Delete(c.UserContext(), item.Task.ID); err != nil {
		return err
	}
	return c.Redirect("/admin/tasks/", fiber.StatusFound)
}

func (h *AdminHandler) lookupTask(c *fiber.Ctx) (*service.TaskItem, error) {
	id, err := service.ParseTaskID(c.Params("id"))
	if err != nil {
		return nil, err
	}
	return h.tasks.Get(c.UserContext(), id)
}

func (h *AdminHandler) renderTicketForm(c *fiber.Ctx, ticket *domain.Ticket, form forms.TicketForm, errs, taskErrs forms.Errors) error {
	ctx := c.UserContext()
	statuses, err := h.statuses.List(ctx)
	if err != nil {
		return err
	}
	clients, err := h.clients.ListAll(ctx)
	if err != nil {
		return err
	}
	users, err := h.users.List(ctx)
	if err != nil {
		return err
	}
	var tasks []service.TaskItem
	if ticket != nil {
		detail, err := h.tickets.Detail(ctx, ticket.ID)
		if err != nil {
			return err
		}
		tasks = detail.Tasks
	}
	if errs == nil {
		errs = forms.Errors{}
	}
	return render(c, "admin/ticket_form", fiber.Map{
		"Title":      "Ticket",
		"Ticket":     ticket,
		"Form":       form,
		"Errors":     errs,
		"TaskErrors": taskErrs,
		"Tasks":      tasks,
		"Statuses":   statuses,
		"Clients":    clients,
		"Users":      users,
	})
}

func (h *AdminHandler) renderTaskForm(c *fiber.Ctx, task *domain.Task, form forms.TaskForm, errs forms.Errors) error {
	ctx := c.UserContext()
	tickets, err := h.tickets.ListAll(ctx)
	if err != nil {
		return err
	}
	users, err := h.users.List(ctx)
	if err != nil {
		return err
	}
	if errs == nil {
		errs = forms.Errors{}
	}
	return render(c, "admin/task_form", fiber.Map{
		"Title":   "Task",
		"Task":    task,
		"Form":    form,
		"Errors":  errs,
		"Tickets": tickets,
		"Users":   users,
	})
}
