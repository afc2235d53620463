package forms

import (
	"github.com/ticketron/ticketron/internal/domain"
	"github.com/ticketron/ticketron/internal/service"
)

// ClientForm carries every client field.
type ClientForm struct {
	CompanyName string `form:"company_name" validate:"max=100"`
	FirstName   string `form:"first_name" validate:"max=100"`
	LastName    string `form:"last_name" validate:"max=100"`
	Email       string `form:"email" validate:"omitempty,email,max=100"`
	Phone       string `form:"phone" validate:"max=100"`
	Address     string `form:"address" validate:"max=100"`
	City        string `form:"city" validate:"max=100"`
	State       string `form:"state" validate:"max=100"`
	ClientSince string `form:"client_since"`
}

// NewClientForm prefills client-since with the default start date.
func NewClientForm() ClientForm {
	return ClientForm{ClientSince: service.InitialClientSince().Format(domain.DateLayout)}
}

// ClientFormFrom fills a form from an existing client.
func ClientFormFrom(c *domain.Client) ClientForm {
	return ClientForm{
		CompanyName: c.CompanyName,
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		Email:       c.Email,
		Phone:       c.Phone,
		Address:     c.Address,
		City:        c.City,
		State:       c.State,
		ClientSince: domain.FormatDate(c.ClientSince),
	}
}

// Input validates the form and converts it.
func (f ClientForm) Input() (service.ClientInput, Errors) {
	errs := Validate(f)
	since, errs := parseOptionalDate("client_since", f.ClientSince, errs)
	return service.ClientInput{
		CompanyName: f.CompanyName,
		FirstName:   f.FirstName,
		LastName:    f.LastName,
		Email:       f.Email,
		Phone:       f.Phone,
		Address:     f.Address,
		City:        f.City,
		State:       f.State,
		ClientSince: since,
	}, errs
}

// ClientNameForm is the public update form.
type ClientNameForm struct {
	FirstName   string `form:"first_name" validate:"max=100"`
	LastName    string `form:"last_name" validate:"max=100"`
	ClientSince string `form:"client_since"`
}

// ClientNameFormFrom fills the update form from an existing client.
func ClientNameFormFrom(c *domain.Client) ClientNameForm {
	return ClientNameForm{FirstName: c.FirstName, LastName: c.LastName, ClientSince: domain.FormatDate(c.ClientSince)}
}

// Input validates the form and converts it.
func (f ClientNameForm) Input() (service.ClientNameInput, Errors) {
	errs := Validate(f)
	since, errs := parseOptionalDate("client_since", f.ClientSince, errs)
	return service.ClientNameInput{FirstName: f.FirstName, LastName: f.LastName, ClientSince: since}, errs
}

// TicketForm carries the editable ticket fields. Status and client are ids.
type TicketForm struct {
	Title    string `form:"title" validate:"required,max=200"`
	Summary  string `form:"summary" validate:"max=1000"`
	Severity string `form:"severity" validate:"omitempty,oneof=h m l"`
	Status   string `form:"status"`
	Client   string `form:"client" validate:"omitempty,uuid"`
}

// NewTicketForm defaults severity to medium.
func NewTicketForm() TicketForm {
	return TicketForm{Severity: string(domain.SeverityMedium)}
}

// TicketFormFrom fills a form from an existing ticket.
func TicketFormFrom(t *domain.Ticket) TicketForm {
	form := TicketForm{Title: t.Title, Summary: t.Summary, Severity: string(t.Severity)}
	if t.StatusID != nil {
		form.Status = formatID(*t.StatusID)
	}
	if t.ClientID != nil {
		form.Client = *t.ClientID
	}
	return form
}

// Input validates the form and converts it.
func (f TicketForm) Input() (service.TicketInput, Errors) {
	errs := Validate(f)
	statusID, errs := parseOptionalID("status", f.Status, errs)
	return service.TicketInput{
		Title:    f.Title,
		Summary:  f.Summary,
		Severity: domain.Severity(f.Severity),
		StatusID: statusID,
		ClientID: optionalString(f.Client),
	}, errs
}

// TaskForm is the admin task form.
type TaskForm struct {
	Ticket          string `form:"ticket" validate:"omitempty,uuid"`
	WorkSummary     string `form:"work_summary" validate:"required,max=500"`
	CompletionNotes string `form:"completion_notes" validate:"max=500"`
	ScheduledDay    string `form:"scheduled_day"`
	Employee        string `form:"employee" validate:"omitempty,uuid"`
	Done            string `form:"done"`
}

// TaskFormFrom fills a form from an existing task.
func TaskFormFrom(t *domain.Task) TaskForm {
	form := TaskForm{
		WorkSummary:     t.WorkSummary,
		CompletionNotes: t.CompletionNotes,
		ScheduledDay:    domain.FormatDate(t.ScheduledDay),
	}
	if t.TicketID != nil {
		form.Ticket = *t.TicketID
	}
	if t.EmployeeID != nil {
		form.Employee = *t.EmployeeID
	}
	if t.Done {
		form.Done = "on"
	}
	return form
}

// Checked reports whether the done box is ticked.
func (f TaskForm) Checked() bool {
	return checkbox(f.Done)
}

// Input validates the form and converts it.
func (f TaskForm) Input() (service.TaskInput, Errors) {
	errs := Validate(f)
	day, errs := parseOptionalDate("scheduled_day", f.ScheduledDay, errs)
	return service.TaskInput{
		TicketID:        optionalString(f.Ticket),
		WorkSummary:     f.WorkSummary,
		CompletionNotes: f.CompletionNotes,
		ScheduledDay:    day,
		EmployeeID:      optionalString(f.Employee),
		Done:            checkbox(f.Done),
	}, errs
}

// StatusForm is the admin status form.
type StatusForm struct {
	Name string `form:"name" validate:"required,max=200"`
}

// RenewForm carries the proposed scheduled day.
type RenewForm struct {
	RenewalDate string `form:"renewal_date"`
}

// LoginForm is the sign-in form.
type LoginForm struct {
	Username string `form:"username" validate:"required,max=150"`
	Password string `form:"password" validate:"required"`
	Next     string `form:"next"`
}
