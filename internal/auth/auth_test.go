package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ticketron/ticketron/internal/domain"
	"github.com/ticketron/ticketron/internal/repository/memory"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	user := &domain.User{ID: "a3c1f0de-1111-4c4c-9a9a-000000000001", Username: "alice"}

	token, expiresAt, err := tm.GenerateToken(user)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "alice", claims.Username)

	_, err = NewTokenManager("other", time.Hour).ParseToken(token)
	assert.Error(t, err)
}

func TestTokenExpired(t *testing.T) {
	tm := NewTokenManager("secret", time.Minute)
	tm.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _, err := tm.GenerateToken(&domain.User{ID: "u1", Username: "bob"})
	require.NoError(t, err)

	_, err = NewTokenManager("secret", time.Minute).ParseToken(token)
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	_, err := HashPassword("short", 4)
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	hash, err := HashPassword("long-enough", 4)
	require.NoError(t, err)
	assert.NoError(t, ComparePassword(hash, "long-enough"))
	assert.Error(t, ComparePassword(hash, "wrong-guess"))
}

func TestLoginRedirectURL(t *testing.T) {
	tests := []struct {
		original string
		want     string
	}{
		{"/borrowed/", "/accounts/login/?next=/borrowed/"},
		{"/authors/?page=2", "/accounts/login/?next=/authors/%3Fpage%3D2"},
		{"/ticket/5/renew/", "/accounts/login/?next=/ticket/5/renew/"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LoginRedirectURL("/accounts/login/", tt.original))
	}
}

func TestSafeNext(t *testing.T) {
	tests := map[string]string{
		"":                     "/",
		"/mytickets/":          "/mytickets/",
		"//evil.example":       "/",
		"https://evil.example": "/",
		"/\\evil":              "/",
	}
	for in, want := range tests {
		assert.Equal(t, want, SafeNext(in), in)
	}
}

func TestEnforcer(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	enforcer, err := NewEnforcer(store.Grants, zap.NewNop())
	require.NoError(t, err)

	direct := &domain.User{ID: "direct", IsActive: true}
	member := &domain.User{ID: "member", IsActive: true}
	nobody := &domain.User{ID: "nobody", IsActive: true}
	root := &domain.User{ID: "root", IsActive: true, IsSuperuser: true}
	inactive := &domain.User{ID: "inactive", IsActive: false, IsSuperuser: true}

	require.NoError(t, store.Grants.AddGrant(ctx, domain.Grant{SubjectType: domain.GrantSubjectUser, Subject: direct.ID, Permission: domain.PermCanMarkReturned}))
	require.NoError(t, store.Grants.AddGrant(ctx, domain.Grant{SubjectType: domain.GrantSubjectGroup, Subject: "librarians", Permission: domain.PermCanMarkReturned}))
	require.NoError(t, store.Grants.AddMembership(ctx, domain.Membership{UserID: member.ID, Group: "librarians"}))

	assert.False(t, enforcer.HasPermission(direct, domain.PermCanMarkReturned), "policies load on Reload")
	require.NoError(t, enforcer.Reload(ctx))

	assert.True(t, enforcer.HasPermission(direct, domain.PermCanMarkReturned))
	assert.True(t, enforcer.HasPermission(member, domain.PermCanMarkReturned))
	assert.False(t, enforcer.HasPermission(nobody, domain.PermCanMarkReturned))
	assert.True(t, enforcer.HasPermission(root, domain.PermCanMarkReturned))
	assert.False(t, enforcer.HasPermission(inactive, domain.PermCanMarkReturned))
	assert.False(t, enforcer.HasPermission(nil, domain.PermCanMarkReturned))
	assert.False(t, enforcer.HasPermission(direct, domain.Permission("can_delete_everything")))
}

func TestPrincipal(t *testing.T) {
	var nilPrincipal *Principal
	assert.False(t, nilPrincipal.CanMarkReturned())
	assert.False(t, nilPrincipal.IsStaff())

	staff := &Principal{User: &domain.User{IsStaff: true}}
	assert.True(t, staff.IsStaff())
	assert.False(t, staff.CanMarkReturned())
}
