package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ticketron/ticketron/internal/domain"
	"github.com/ticketron/ticketron/internal/repository/memory"
	"github.com/ticketron/ticketron/pkg/util/errorutil"
)

type recordingSync struct {
	reloads  int
	notifies int
	fail     error
}

func (r *recordingSync) Reload(context.Context) error {
	r.reloads++
	return nil
}

func (r *recordingSync) NotifyPermissionsChanged(context.Context) error {
	r.notifies++
	return r.fail
}

func TestPermissionService(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	users := NewUserService(store.Users, bcrypt.MinCost)
	user, err := users.Create(ctx, CreateUserInput{Username: "alice", Password: "long-enough"})
	require.NoError(t, err)

	sync := &recordingSync{fail: errors.New("redis down")}
	svc := NewPermissionService(store.Grants, store.Users, sync, sync, zap.NewNop())

	require.NoError(t, svc.GrantUser(ctx, "alice", domain.PermCanMarkReturned))
	require.NoError(t, svc.AddToGroup(ctx, "alice", "librarians"))
	require.NoError(t, svc.GrantGroup(ctx, "librarians", domain.PermCanMarkReturned))

	grants, err := store.Grants.ListGrants(ctx)
	require.NoError(t, err)
	assert.Contains(t, grants, domain.Grant{SubjectType: domain.GrantSubjectUser, Subject: user.ID, Permission: domain.PermCanMarkReturned})
	assert.Contains(t, grants, domain.Grant{SubjectType: domain.GrantSubjectGroup, Subject: "librarians", Permission: domain.PermCanMarkReturned})

	require.NoError(t, svc.RevokeUser(ctx, "alice", domain.PermCanMarkReturned))
	grants, err = store.Grants.ListGrants(ctx)
	require.NoError(t, err)
	assert.Len(t, grants, 1)

	assert.Equal(t, 4, sync.reloads)
	assert.Equal(t, 4, sync.notifies, "broadcast failures are logged, not returned")

	err = svc.GrantUser(ctx, "nobody", domain.PermCanMarkReturned)
	assert.True(t, errorutil.IsNotFound(err))
}

func TestUserServiceAuthenticate(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	users := NewUserService(store.Users, bcrypt.MinCost)
	_, err := users.Create(ctx, CreateUserInput{Username: "alice", Password: "long-enough"})
	require.NoError(t, err)

	user, err := users.Authenticate(ctx, "alice", "long-enough")
	require.NoError(t, err)
	assert.True(t, user.IsActive)

	_, err = users.Authenticate(ctx, "alice", "wrong-guess")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = users.Authenticate(ctx, "ghost", "long-enough")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = users.Create(ctx, CreateUserInput{Username: "bob", Password: "short"})
	assert.NotNil(t, errorutil.FieldErrors(err))
	_, err = users.Create(ctx, CreateUserInput{Username: "alice", Password: "long-enough"})
	assert.Error(t, err)
}
