package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ticketron/ticketron/internal/domain"
)

// GrantRepository stores permission grants and group memberships.
type GrantRepository interface {
	AddGrant(ctx context.Context, grant domain.Grant) error
	RemoveGrant(ctx context.Context, grant domain.Grant) error
	ListGrants(ctx context.Context) ([]domain.Grant, error)
	AddMembership(ctx context.Context, membership domain.Membership) error
	ListMemberships(ctx context.Context) ([]domain.Membership, error)
}

type grantRepository struct {
	pool *pgxpool.Pool
}

// NewGrantRepository returns a Postgres-backed implementation.
func NewGrantRepository(pool *pgxpool.Pool) GrantRepository {
	return &grantRepository{pool: pool}
}

func (r *grantRepository) AddGrant(ctx context.Context, grant domain.Grant) error {
	const query = `
        INSERT INTO permission_grants (subject_type, subject, permission)
        VALUES ($1, $2, $3)
        ON CONFLICT DO NOTHING`
	_, err := r.pool.Exec(ctx, query, grant.SubjectType, grant.Subject, grant.Permission)
	return translateErr(err)
}

func (r *grantRepository) RemoveGrant(ctx context.Context, grant domain.Grant) error {
	const query = `DELETE FROM permission_grants WHERE subject_type=$1 AND subject=$2 AND permission=$3`
	cmd, err := r.pool.Exec(ctx, query, grant.SubjectType, grant.Subject, grant.Permission)
	if err != nil {
		return translateErr(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *grantRepository) ListGrants(ctx context.Context) ([]domain.Grant, error) {
	rows, err := r.pool.Query(ctx, `SELECT subject_type, subject, permission FROM permission_grants`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Grant, error) {
		var grant domain.Grant
		err := row.Scan(&grant.SubjectType, &grant.Subject, &grant.Permission)
		return grant, err
	})
}

func (r *grantRepository) AddMembership(ctx context.Context, membership domain.Membership) error {
	const query = `
        INSERT INTO group_memberships (user_id, group_name)
        VALUES ($1, $2)
        ON CONFLICT DO NOTHING`
	_, err := r.pool.Exec(ctx, query, membership.UserID, membership.Group)
	return translateErr(err)
}

func (r *grantRepository) ListMemberships(ctx context.Context) ([]domain.Membership, error) {
	rows, err := r.pool.Query(ctx, `SELECT user_id, group_name FROM group_memberships`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Membership, error) {
		var m domain.Membership
		err := row.Scan(&m.UserID, &m.Group)
		return m, err
	})
}
