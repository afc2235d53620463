package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ticketron/ticketron/internal/domain"
)

// TaskFilter narrows task listings. Date bounds are inclusive.
type TaskFilter struct {
	TicketID      *string
	EmployeeID    *string
	Done          *bool
	ScheduledFrom *time.Time
	ScheduledTo   *time.Time
	Limit         int
	Offset        int
}

// TaskRepository encapsulates task persistence.
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) error
	Update(ctx context.Context, task *domain.Task) error
	UpdateScheduledDay(ctx context.Context, id int64, day time.Time) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]domain.Task, error)
	Count(ctx context.Context, filter TaskFilter) (int, error)
}

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository instantiates repository.
func NewTaskRepository(pool *pgxpool.Pool) TaskRepository {
	return &taskRepository{pool: pool}
}

const taskColumns = `id, ticket_id, work_summary, completion_notes, scheduled_day, employee_id, done,
               created_at, updated_at`

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) error {
	const query = `
        INSERT INTO tasks (ticket_id, work_summary, completion_notes, scheduled_day, employee_id, done)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return translateErr(r.pool.QueryRow(ctx, query,
		task.TicketID,
		task.WorkSummary,
		task.CompletionNotes,
		task.ScheduledDay,
		task.EmployeeID,
		task.Done,
	).Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt))
}

func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	const query = `
        UPDATE tasks SET ticket_id=$1, work_summary=$2, completion_notes=$3, scheduled_day=$4,
            employee_id=$5, done=$6, updated_at=NOW()
        WHERE id=$7
        RETURNING updated_at`
	return translateErr(r.pool.QueryRow(ctx, query,
		task.TicketID,
		task.WorkSummary,
		task.CompletionNotes,
		task.ScheduledDay,
		task.EmployeeID,
		task.Done,
		task.ID,
	).Scan(&task.UpdatedAt))
}

func (r *taskRepository) UpdateScheduledDay(ctx context.Context, id int64, day time.Time) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE tasks SET scheduled_day=$1, updated_at=NOW() WHERE id=$2`, day, id)
	if err != nil {
		return translateErr(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *taskRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id=$1`, id)
	if err != nil {
		return translateErr(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *taskRepository) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id=$1`, id)
	if err != nil {
		return nil, err
	}
	task, err := pgx.CollectExactlyOneRow(rows, scanTask)
	if err != nil {
		return nil, translateErr(err)
	}
	return &task, nil
}

func (r *taskRepository) List(ctx context.Context, filter TaskFilter) ([]domain.Task, error) {
	where, args := taskWhere(filter)
	args = append(args, normalizeLimit(filter.Limit), normalizeOffset(filter.Offset))
	query := fmt.Sprintf(`SELECT %s FROM tasks WHERE %s ORDER BY scheduled_day ASC NULLS LAST, id LIMIT $%d OFFSET $%d`,
		taskColumns, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanTask)
}

func (r *taskRepository) Count(ctx context.Context, filter TaskFilter) (int, error) {
	where, args := taskWhere(filter)
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tasks WHERE `+where, args...).Scan(&n)
	return n, err
}

func taskWhere(filter TaskFilter) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.TicketID != nil {
		args = append(args, *filter.TicketID)
		clauses = append(clauses, fmt.Sprintf("ticket_id=$%d", len(args)))
	}
	if filter.EmployeeID != nil {
		args = append(args, *filter.EmployeeID)
		clauses = append(clauses, fmt.Sprintf("employee_id=$%d", len(args)))
	}
	if filter.Done != nil {
		args = append(args, *filter.Done)
		clauses = append(clauses, fmt.Sprintf("done=$%d", len(args)))
	}
	if filter.ScheduledFrom != nil {
		args = append(args, *filter.ScheduledFrom)
		clauses = append(clauses, fmt.Sprintf("scheduled_day >= $%d", len(args)))
	}
	if filter.ScheduledTo != nil {
		args = append(args, *filter.ScheduledTo)
		clauses = append(clauses, fmt.Sprintf("scheduled_day <= $%d", len(args)))
	}
	return strings.Join(clauses, " AND "), args
}

func scanTask(row pgx.CollectableRow) (domain.Task, error) {
	var task domain.Task
	err := row.Scan(
		&task.ID,
		&task.TicketID,
		&task.WorkSummary,
		&task.CompletionNotes,
		&task.ScheduledDay,
		&task.EmployeeID,
		&task.Done,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	return task, err
}
