package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ticketron/ticketron/internal/domain"
)

// StatusRepository encapsulates status persistence.
type StatusRepository interface {
	Create(ctx context.Context, status *domain.Status) error
	Update(ctx context.Context, status *domain.Status) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Status, error)
	GetByName(ctx context.Context, name string) (*domain.Status, error)
	List(ctx context.Context) ([]domain.Status, error)
	Count(ctx context.Context) (int, error)
}

type statusRepository struct {
	pool *pgxpool.Pool
}

// NewStatusRepository instantiates repository.
func NewStatusRepository(pool *pgxpool.Pool) StatusRepository {
	return &statusRepository{pool: pool}
}

func (r *statusRepository) Create(ctx context.Context, status *domain.Status) error {
	const query = `INSERT INTO statuses (name) VALUES ($1) RETURNING id`
	return translateErr(r.pool.QueryRow(ctx, query, status.Name).Scan(&status.ID))
}

func (r *statusRepository) Update(ctx context.Context, status *domain.Status) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE statuses SET name=$1 WHERE id=$2`, status.Name, status.ID)
	if err != nil {
		return translateErr(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *statusRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM statuses WHERE id=$1`, id)
	if err != nil {
		return translateErr(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *statusRepository) GetByID(ctx context.Context, id int64) (*domain.Status, error) {
	var status domain.Status
	if err := r.pool.QueryRow(ctx, `SELECT id, name FROM statuses WHERE id=$1`, id).Scan(&status.ID, &status.Name); err != nil {
		return nil, translateErr(err)
	}
	return &status, nil
}

func (r *statusRepository) GetByName(ctx context.Context, name string) (*domain.Status, error) {
	const query = `SELECT id, name FROM statuses WHERE LOWER(name)=LOWER($1) ORDER BY id LIMIT 1`
	var status domain.Status
	if err := r.pool.QueryRow(ctx, query, name).Scan(&status.ID, &status.Name); err != nil {
		return nil, translateErr(err)
	}
	return &status, nil
}

func (r *statusRepository) List(ctx context.Context) ([]domain.Status, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM statuses ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Status, error) {
		var status domain.Status
		err := row.Scan(&status.ID, &status.Name)
		return status, err
	})
}

func (r *statusRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM statuses`).Scan(&n)
	return n, err
}
