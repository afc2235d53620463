package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/ticketron/ticketron/internal/domain"
	"github.com/ticketron/ticketron/internal/repository"
	"github.com/ticketron/ticketron/pkg/util/errorutil"
)

const principalKey = "auth_principal"

// PermissionChecker answers permission questions for a user.
type PermissionChecker interface {
	HasPermission(user *domain.User, perm domain.Permission) bool
}

// Principal represents the authenticated caller.
type Principal struct {
	User    *domain.User
	checker PermissionChecker
}

// Can reports whether the principal holds perm.
func (p *Principal) Can(perm domain.Permission) bool {
	if p == nil || p.checker == nil {
		return false
	}
	return p.checker.HasPermission(p.User, perm)
}

// CanMarkReturned is a template-friendly shortcut for the renewal permission.
func (p *Principal) CanMarkReturned() bool {
	return p.Can(domain.PermCanMarkReturned)
}

// IsStaff reports whether the principal may open the admin console.
func (p *Principal) IsStaff() bool {
	return p != nil && p.User != nil && (p.User.IsStaff || p.User.IsSuperuser)
}

// AuthMiddleware resolves the caller from a bearer token or the auth cookie.
type AuthMiddleware struct {
	tokens       *TokenManager
	users        repository.UserRepository
	checker      PermissionChecker
	cookieName   string
	cookieSecure bool
	loginPath    string
	logger       *zap.Logger
}

// AuthOptions carries cookie and redirect settings for the middleware.
type AuthOptions struct {
	CookieName   string
	CookieSecure bool
	LoginPath    string
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, users repository.UserRepository, checker PermissionChecker, opts AuthOptions, logger *zap.Logger) *AuthMiddleware {
	if opts.LoginPath == "" {
		opts.LoginPath = "/accounts/login/"
	}
	return &AuthMiddleware{
		tokens:       tokens,
		users:        users,
		checker:      checker,
		cookieName:   opts.CookieName,
		cookieSecure: opts.CookieSecure,
		loginPath:    opts.LoginPath,
		logger:       logger,
	}
}

// Handle attaches a principal when a valid token is presented. Anonymous
// requests pass through; gating happens in the Require* handlers.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	tokenStr := m.extractToken(c)
	if tokenStr == "" {
		return c.Next()
	}

	claims, err := m.tokens.ParseToken(tokenStr)
	if err != nil {
		m.logger.Debug("discarding invalid token", zap.Error(err))
		return c.Next()
	}

	user, err := m.users.GetByID(c.UserContext(), claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.Next()
		}
		return errorutil.NewInternalError(err)
	}
	if !user.IsActive {
		return c.Next()
	}

	c.Locals(principalKey, &Principal{User: user, checker: m.checker})
	return c.Next()
}

func (m *AuthMiddleware) extractToken(c *fiber.Ctx) string {
	if header := c.Get(fiber.HeaderAuthorization); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	return c.Cookies(m.cookieName)
}

// SetSession writes the auth cookie for user.
func (m *AuthMiddleware) SetSession(c *fiber.Ctx, user *domain.User) error {
	token, expiresAt, err := m.tokens.GenerateToken(user)
	if err != nil {
		return errorutil.NewInternalError(err)
	}
	c.Cookie(&fiber.Cookie{
		Name:     m.cookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HTTPOnly: true,
		Secure:   m.cookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return nil
}

// ClearSession expires the auth cookie.
func (m *AuthMiddleware) ClearSession(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   m.cookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// LoginPath is the path anonymous callers are redirected to.
func (m *AuthMiddleware) LoginPath() string {
	return m.loginPath
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}

// SafeNext returns next when it is a local absolute path, otherwise "/".
func SafeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, "\\") {
		return "/"
	}
	return next
}
