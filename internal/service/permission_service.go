package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/ticketron/ticketron/internal/domain"
	"github.com/ticketron/ticketron/internal/repository"
	"github.com/ticketron/ticketron/pkg/util/errorutil"
)

// PolicyReloader rebuilds in-process permission state.
type PolicyReloader interface {
	Reload(ctx context.Context) error
}

// ChangeNotifier tells other instances that grants changed.
type ChangeNotifier interface {
	NotifyPermissionsChanged(ctx context.Context) error
}

// PermissionService edits grants and group memberships.
type PermissionService struct {
	grants   repository.GrantRepository
	users    repository.UserRepository
	reloader PolicyReloader
	notifier ChangeNotifier
	logger   *zap.Logger
}

func NewPermissionService(grants repository.GrantRepository, users repository.UserRepository, reloader PolicyReloader, notifier ChangeNotifier, logger *zap.Logger) *PermissionService {
	return &PermissionService{grants: grants, users: users, reloader: reloader, notifier: notifier, logger: logger}
}

// GrantUser gives username the permission directly.
func (s *PermissionService) GrantUser(ctx context.Context, username string, perm domain.Permission) error {
	user, err := s.lookup(ctx, username)
	if err != nil {
		return err
	}
	grant := domain.Grant{SubjectType: domain.GrantSubjectUser, Subject: user.ID, Permission: perm}
	if err := s.grants.AddGrant(ctx, grant); err != nil {
		return mapRepoErr(err, "grant")
	}
	return s.changed(ctx)
}

// RevokeUser removes a direct grant.
func (s *PermissionService) RevokeUser(ctx context.Context, username string, perm domain.Permission) error {
	user, err := s.lookup(ctx, username)
	if err != nil {
		return err
	}
	grant := domain.Grant{SubjectType: domain.GrantSubjectUser, Subject: user.ID, Permission: perm}
	if err := s.grants.RemoveGrant(ctx, grant); err != nil {
		return mapRepoErr(err, "grant")
	}
	return s.changed(ctx)
}

// GrantGroup gives every member of group the permission.
func (s *PermissionService) GrantGroup(ctx context.Context, group string, perm domain.Permission) error {
	group = strings.TrimSpace(group)
	if group == "" {
		return errorutil.NewValidationError("invalid group", map[string]any{"group": "This field is required."})
	}
	grant := domain.Grant{SubjectType: domain.GrantSubjectGroup, Subject: group, Permission: perm}
	if err := s.grants.AddGrant(ctx, grant); err != nil {
		return mapRepoErr(err, "grant")
	}
	return s.changed(ctx)
}

// AddToGroup places username in group.
func (s *PermissionService) AddToGroup(ctx context.Context, username, group string) error {
	user, err := s.lookup(ctx, username)
	if err != nil {
		return err
	}
	group = strings.TrimSpace(group)
	if group == "" {
		return errorutil.NewValidationError("invalid group", map[string]any{"group": "This field is required."})
	}
	if err := s.grants.AddMembership(ctx, domain.Membership{UserID: user.ID, Group: group}); err != nil {
		return mapRepoErr(err, "membership")
	}
	return s.changed(ctx)
}

func (s *PermissionService) lookup(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, mapRepoErr(err, "user")
	}
	return user, nil
}

func (s *PermissionService) changed(ctx context.Context) error {
	if s.reloader != nil {
		if err := s.reloader.Reload(ctx); err != nil {
			return errorutil.NewInternalError(err)
		}
	}
	if s.notifier != nil {
		if err := s.notifier.NotifyPermissionsChanged(ctx); err != nil {
			s.logger.Warn("failed to broadcast permission change", zap.Error(err))
		}
	}
	return nil
}
