package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ticketron/ticketron/internal/domain"
	"github.com/ticketron/ticketron/internal/events"
	"github.com/ticketron/ticketron/internal/repository"
	"github.com/ticketron/ticketron/pkg/util/errorutil"
)

// RenewalObserver records renewal outcomes, typically as metrics.
type RenewalObserver interface {
	ObserveRenewal(outcome string)
}

// Renewal outcomes reported to the observer.
const (
	RenewalSucceeded = "success"
	RenewalRejected  = "rejected"
)

// Scheduled-day ranges accepted by the admin task filter.
const (
	ScheduledToday = "today"
	ScheduledPast7 = "past7"
	ScheduledMonth = "month"
	ScheduledYear  = "year"
)

// TaskService coordinates task listings, renewal and admin edits.
type TaskService struct {
	tasks      repository.TaskRepository
	tickets    repository.TicketRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
	observer   RenewalObserver
	clock      Clock
}

// TaskDependencies bundles collaborators for the task service.
type TaskDependencies struct {
	TaskRepo   repository.TaskRepository
	TicketRepo repository.TicketRepository
	UserRepo   repository.UserRepository
	Dispatcher events.Dispatcher
	Observer   RenewalObserver
	Clock      Clock
}

// TaskInput describes the editable task fields.
type TaskInput struct {
	TicketID        *string
	WorkSummary     string
	CompletionNotes string
	ScheduledDay    *time.Time
	EmployeeID      *string
	Done            bool
}

// TaskFilter narrows the admin task list.
type TaskFilter struct {
	Done      *bool
	Scheduled string
}

// TaskItem is a task with its ticket and employee resolved.
type TaskItem struct {
	Task     domain.Task
	Ticket   *domain.Ticket
	Employee *domain.User
	Overdue  bool
}

// Label renders the task as "<id> (<ticket title>)".
func (t TaskItem) Label() string {
	title := ""
	if t.Ticket != nil {
		title = t.Ticket.Title
	}
	return t.Task.Label(title)
}

// NewTaskService constructs the service.
func NewTaskService(deps TaskDependencies) *TaskService {
	return &TaskService{
		tasks:      deps.TaskRepo,
		tickets:    deps.TicketRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
		observer:   deps.Observer,
		clock:      deps.Clock,
	}
}

// Today is the calendar day used for overdue and renewal checks.
func (s *TaskService) Today() time.Time {
	return s.clock.Today()
}

// Mine lists the caller's open tasks ordered by scheduled day.
func (s *TaskService) Mine(ctx context.Context, userID, rawPage string) (Page[TaskItem], error) {
	ctx, span := tracer.Start(ctx, "TaskService.Mine")
	defer span.End()

	open := false
	return s.page(ctx, repository.TaskFilter{EmployeeID: &userID, Done: &open}, rawPage)
}

// Borrowed lists every open task ordered by scheduled day.
func (s *TaskService) Borrowed(ctx context.Context, rawPage string) (Page[TaskItem], error) {
	ctx, span := tracer.Start(ctx, "TaskService.Borrowed")
	defer span.End()

	open := false
	return s.page(ctx, repository.TaskFilter{Done: &open}, rawPage)
}

func (s *TaskService) page(ctx context.Context, filter repository.TaskFilter, rawPage string) (Page[TaskItem], error) {
	total, err := s.tasks.Count(ctx, filter)
	if err != nil {
		return Page[TaskItem]{}, mapRepoErr(err, "task")
	}
	number, err := ResolvePage(rawPage, total)
	if err != nil {
		return Page[TaskItem]{}, err
	}
	filter.Limit = PageSize
	filter.Offset = (number - 1) * PageSize
	tasks, err := s.tasks.List(ctx, filter)
	if err != nil {
		return Page[TaskItem]{}, mapRepoErr(err, "task")
	}
	items, err := newTaskResolver(s.tickets, s.users).resolve(ctx, tasks, s.clock.Today())
	if err != nil {
		return Page[TaskItem]{}, err
	}
	return newPage(items, number, total), nil
}

// List returns every task matching the admin filter.
func (s *TaskService) List(ctx context.Context, filter TaskFilter) ([]TaskItem, error) {
	repoFilter := repository.TaskFilter{Done: filter.Done, Limit: listAllLimit}
	from, to, ok := scheduledRange(filter.Scheduled, s.clock.Today())
	if ok {
		repoFilter.ScheduledFrom = &from
		repoFilter.ScheduledTo = &to
	}
	tasks, err := s.tasks.List(ctx, repoFilter)
	if err != nil {
		return nil, mapRepoErr(err, "task")
	}
	return newTaskResolver(s.tickets, s.users).resolve(ctx, tasks, s.clock.Today())
}

// scheduledRange maps a filter keyword to an inclusive day range.
func scheduledRange(keyword string, today time.Time) (time.Time, time.Time, bool) {
	switch keyword {
	case ScheduledToday:
		return today, today, true
	case ScheduledPast7:
		return today.AddDate(0, 0, -7), today, true
	case ScheduledMonth:
		first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
		return first, first.AddDate(0, 1, -1), true
	case ScheduledYear:
		first := time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		return first, first.AddDate(1, 0, -1), true
	}
	return time.Time{}, time.Time{}, false
}

// ParseTaskID converts a path segment into a task id. Anything other than a
// positive integer is reported as not found.
func ParseTaskID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, errorutil.NewNotFound("task", map[string]any{"id": raw})
	}
	return id, nil
}

// Get loads a task with its ticket and employee.
func (s *TaskService) Get(ctx context.Context, id int64) (*TaskItem, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err, "task")
	}
	items, err := newTaskResolver(s.tickets, s.users).resolve(ctx, []domain.Task{*task}, s.clock.Today())
	if err != nil {
		return nil, err
	}
	return &items[0], nil
}

// Renew moves a task's scheduled day to the proposed date after checking it
// lies within the renewal window.
func (s *TaskService) Renew(ctx context.Context, actorID *string, id int64, rawDate string) (*domain.Task, error) {
	ctx, span := tracer.Start(ctx, "TaskService.Renew")
	defer span.End()
	span.SetAttributes(attribute.Int64("task.id", id))

	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err, "task")
	}

	day, msg := ValidateRenewalDate(rawDate, s.clock.Today())
	if msg != "" {
		s.observe(RenewalRejected)
		span.AddEvent("renewal rejected", trace.WithAttributes(attribute.String("renewal.reason", msg)))
		return nil, errorutil.NewValidationError("invalid renewal date", map[string]any{RenewalField: msg})
	}

	oldDay := task.ScheduledDay
	if err := s.tasks.UpdateScheduledDay(ctx, id, day); err != nil {
		return nil, mapRepoErr(err, "task")
	}
	task.ScheduledDay = &day
	s.observe(RenewalSucceeded)

	s.publish(ctx, events.NewEvent(events.EventTaskRenewed, strconv.FormatInt(id, 10), actorID, events.TaskRenewedPayload{
		TaskID:     id,
		TicketID:   task.TicketID,
		EmployeeID: task.EmployeeID,
		OldDay:     oldDay,
		NewDay:     day,
	}))
	return task, nil
}

// Create stores a new task.
func (s *TaskService) Create(ctx context.Context, input TaskInput) (*domain.Task, error) {
	task := &domain.Task{}
	if err := s.apply(ctx, task, input); err != nil {
		return nil, err
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, mapRepoErr(err, "task")
	}
	return task, nil
}

// Update replaces every editable task field.
func (s *TaskService) Update(ctx context.Context, id int64, input TaskInput) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err, "task")
	}
	if err := s.apply(ctx, task, input); err != nil {
		return nil, err
	}
	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, mapRepoErr(err, "task")
	}
	return task, nil
}

// Delete removes a task.
func (s *TaskService) Delete(ctx context.Context, id int64) error {
	return mapRepoErr(s.tasks.Delete(ctx, id), "task")
}

// Count returns the number of tasks.
func (s *TaskService) Count(ctx context.Context) (int, error) {
	n, err := s.tasks.Count(ctx, repository.TaskFilter{})
	return n, mapRepoErr(err, "task")
}

// CountOpen returns the number of tasks not yet done.
func (s *TaskService) CountOpen(ctx context.Context) (int, error) {
	open := false
	n, err := s.tasks.Count(ctx, repository.TaskFilter{Done: &open})
	return n, mapRepoErr(err, "task")
}

func (s *TaskService) apply(ctx context.Context, task *domain.Task, input TaskInput) error {
	fieldErrs := map[string]any{}
	if strings.TrimSpace(input.WorkSummary) == "" {
		fieldErrs["work_summary"] = "This field is required."
	}
	if input.TicketID != nil {
		if _, err := s.tickets.GetByID(ctx, *input.TicketID); err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				return mapRepoErr(err, "ticket")
			}
			fieldErrs["ticket"] = "Select a valid choice."
		}
	}
	if input.EmployeeID != nil {
		if _, err := s.users.GetByID(ctx, *input.EmployeeID); err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				return mapRepoErr(err, "user")
			}
			fieldErrs["employee"] = "Select a valid choice."
		}
	}
	if len(fieldErrs) > 0 {
		return errorutil.NewValidationError("invalid task", fieldErrs)
	}

	task.TicketID = input.TicketID
	task.WorkSummary = strings.TrimSpace(input.WorkSummary)
	task.CompletionNotes = strings.TrimSpace(input.CompletionNotes)
	task.ScheduledDay = input.ScheduledDay
	task.EmployeeID = input.EmployeeID
	task.Done = input.Done
	return nil
}

func (s *TaskService) observe(outcome string) {
	if s.observer != nil {
		s.observer.ObserveRenewal(outcome)
	}
}

func (s *TaskService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, event)
}

// taskResolver looks up tickets and employees once per listing.
type taskResolver struct {
	tickets      repository.TicketRepository
	users        repository.UserRepository
	ticketByID   map[string]*domain.Ticket
	employeeByID map[string]*domain.User
}

func newTaskResolver(tickets repository.TicketRepository, users repository.UserRepository) *taskResolver {
	return &taskResolver{
		tickets:      tickets,
		users:        users,
		ticketByID:   map[string]*domain.Ticket{},
		employeeByID: map[string]*domain.User{},
	}
}

func (r *taskResolver) resolve(ctx context.Context, tasks []domain.Task, today time.Time) ([]TaskItem, error) {
	items := make([]TaskItem, 0, len(tasks))
	for _, task := range tasks {
		item := TaskItem{Task: task, Overdue: task.IsOverdue(today)}
		if task.TicketID != nil {
			ticket, ok := r.ticketByID[*task.TicketID]
			if !ok {
				t, err := r.tickets.GetByID(ctx, *task.TicketID)
				if err != nil && !errors.Is(err, repository.ErrNotFound) {
					return nil, mapRepoErr(err, "ticket")
				}
				ticket = t
				r.ticketByID[*task.TicketID] = t
			}
			item.Ticket = ticket
		}
		if task.EmployeeID != nil {
			employee, ok := r.employeeByID[*task.EmployeeID]
			if !ok {
				u, err := r.users.GetByID(ctx, *task.EmployeeID)
				if err != nil && !errors.Is(err, repository.ErrNotFound) {
					return nil, mapRepoErr(err, "user")
				}
				employee = u
				r.employeeByID[*task.EmployeeID] = u
			}
			item.Employee = employee
		}
		items = append(items, item)
	}
	return items, nil
}
