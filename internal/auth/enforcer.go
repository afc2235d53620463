package auth

import (
	"context"
	"fmt"
	"sync"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"go.uber.org/zap"

	"github.com/ticketron/ticketron/internal/domain"
	"github.com/ticketron/ticketron/internal/repository"
)

const rbacModel = `
[request_definition]
r = sub, perm

[policy_definition]
p = sub, perm

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.perm == p.perm
`

// Enforcer evaluates permission grants with casbin. Policies are rebuilt from
// the grant repository on Reload and swapped in under a lock.
type Enforcer struct {
	mu       sync.RWMutex
	enforcer *casbin.Enforcer
	grants   repository.GrantRepository
	logger   *zap.Logger
}

// NewEnforcer builds an enforcer with no policies loaded.
func NewEnforcer(grants repository.GrantRepository, logger *zap.Logger) (*Enforcer, error) {
	e, err := newCasbin()
	if err != nil {
		return nil, err
	}
	return &Enforcer{enforcer: e, grants: grants, logger: logger}, nil
}

func newCasbin() (*casbin.Enforcer, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("parse casbin model: %w", err)
	}
	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("create casbin enforcer: %w", err)
	}
	return e, nil
}

// UserSubject is the casbin subject for a user.
func UserSubject(userID string) string {
	return "user:" + userID
}

// GroupSubject is the casbin subject for a group.
func GroupSubject(group string) string {
	return "group:" + group
}

func grantSubject(grant domain.Grant) string {
	if grant.SubjectType == domain.GrantSubjectGroup {
		return GroupSubject(grant.Subject)
	}
	return UserSubject(grant.Subject)
}

// Reload replaces the loaded policies with the current grants and memberships.
func (p *Enforcer) Reload(ctx context.Context) error {
	grants, err := p.grants.ListGrants(ctx)
	if err != nil {
		return fmt.Errorf("list grants: %w", err)
	}
	memberships, err := p.grants.ListMemberships(ctx)
	if err != nil {
		return fmt.Errorf("list memberships: %w", err)
	}

	next, err := newCasbin()
	if err != nil {
		return err
	}
	for _, grant := range grants {
		if _, err := next.AddPolicy(grantSubject(grant), string(grant.Permission)); err != nil {
			return fmt.Errorf("add policy: %w", err)
		}
	}
	for _, m := range memberships {
		if _, err := next.AddGroupingPolicy(UserSubject(m.UserID), GroupSubject(m.Group)); err != nil {
			return fmt.Errorf("add grouping policy: %w", err)
		}
	}

	p.mu.Lock()
	p.enforcer = next
	p.mu.Unlock()

	p.logger.Debug("permissions reloaded", zap.Int("grants", len(grants)), zap.Int("memberships", len(memberships)))
	return nil
}

// HasPermission reports whether user holds perm directly, through a group,
// or as an active superuser.
func (p *Enforcer) HasPermission(user *domain.User, perm domain.Permission) bool {
	if user == nil || !user.IsActive {
		return false
	}
	if user.IsSuperuser {
		return true
	}

	p.mu.RLock()
	e := p.enforcer
	p.mu.RUnlock()

	ok, err := e.Enforce(UserSubject(user.ID), string(perm))
	if err != nil {
		p.logger.Warn("permission check failed", zap.String("user_id", user.ID), zap.Error(err))
		return false
	}
	return ok
}
