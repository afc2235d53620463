package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ticketron/ticketron/internal/domain"
)

// ClientRepository encapsulates client persistence.
type ClientRepository interface {
	Create(ctx context.Context, client *domain.Client) error
	Update(ctx context.Context, client *domain.Client) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Client, error)
	List(ctx context.Context, limit, offset int) ([]domain.Client, error)
	Count(ctx context.Context) (int, error)
}

type clientRepository struct {
	pool *pgxpool.Pool
}

// NewClientRepository instantiates repository.
func NewClientRepository(pool *pgxpool.Pool) ClientRepository {
	return &clientRepository{pool: pool}
}

const clientColumns = `id, company_name, first_name, last_name, email, phone, address, city, state,
               client_since, created_at, updated_at`

func (r *clientRepository) Create(ctx context.Context, client *domain.Client) error {
	const query = `
        INSERT INTO clients (id, company_name, first_name, last_name, email, phone, address, city, state, client_since)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING created_at, updated_at`
	return translateErr(r.pool.QueryRow(ctx, query,
		client.ID,
		client.CompanyName,
		client.FirstName,
		client.LastName,
		client.Email,
		client.Phone,
		client.Address,
		client.City,
		client.State,
		client.ClientSince,
	).Scan(&client.CreatedAt, &client.UpdatedAt))
}

func (r *clientRepository) Update(ctx context.Context, client *domain.Client) error {
	const query = `
        UPDATE clients SET company_name=$1, first_name=$2, last_name=$3, email=$4, phone=$5,
            address=$6, city=$7, state=$8, client_since=$9, updated_at=NOW()
        WHERE id=$10
        RETURNING updated_at`
	return translateErr(r.pool.QueryRow(ctx, query,
		client.CompanyName,
		client.FirstName,
		client.LastName,
		client.Email,
		client.Phone,
		client.Address,
		client.City,
		client.State,
		client.ClientSince,
		client.ID,
	).Scan(&client.UpdatedAt))
}

func (r *clientRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM clients WHERE id=$1`, id)
	if err != nil {
		return translateErr(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *clientRepository) GetByID(ctx context.Context, id string) (*domain.Client, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+clientColumns+` FROM clients WHERE id=$1`, id)
	if err != nil {
		return nil, err
	}
	client, err := pgx.CollectExactlyOneRow(rows, scanClient)
	if err != nil {
		return nil, translateErr(err)
	}
	return &client, nil
}

func (r *clientRepository) List(ctx context.Context, limit, offset int) ([]domain.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients ORDER BY last_name, first_name, id LIMIT $1 OFFSET $2`
	rows, err := r.pool.Query(ctx, query, normalizeLimit(limit), normalizeOffset(offset))
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanClient)
}

func (r *clientRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM clients`).Scan(&n)
	return n, err
}

func scanClient(row pgx.CollectableRow) (domain.Client, error) {
	var client domain.Client
	err := row.Scan(
		&client.ID,
		&client.CompanyName,
		&client.FirstName,
		&client.LastName,
		&client.Email,
		&client.Phone,
		&client.Address,
		&client.City,
		&client.State,
		&client.ClientSince,
		&client.CreatedAt,
		&client.UpdatedAt,
	)
	return client, err
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return 20
	}
	return limit
}

func normalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
