package auth

import (
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/ticketron/ticketron/internal/domain"
	"github.com/ticketron/ticketron/pkg/util/errorutil"
)

// LoginRedirectURL builds the login URL carrying the original path and query
// in next. Slashes are left unescaped.
func LoginRedirectURL(loginPath, original string) string {
	return loginPath + "?next=" + strings.ReplaceAll(url.QueryEscape(original), "%2F", "/")
}

func (m *AuthMiddleware) redirectToLogin(c *fiber.Ctx) error {
	return c.Redirect(LoginRedirectURL(m.loginPath, c.OriginalURL()), fiber.StatusFound)
}

// RequireLogin redirects anonymous callers to the login page.
func (m *AuthMiddleware) RequireLogin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return m.redirectToLogin(c)
		}
		return c.Next()
	}
}

// RequirePermission redirects anonymous callers and rejects callers lacking perm.
func (m *AuthMiddleware) RequirePermission(perm domain.Permission) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return m.redirectToLogin(c)
		}
		if !principal.Can(perm) {
			return errorutil.NewForbidden("permission denied")
		}
		return c.Next()
	}
}

// RequireStaff admits staff members and superusers.
func (m *AuthMiddleware) RequireStaff() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return m.redirectToLogin(c)
		}
		if !principal.IsStaff() {
			return errorutil.NewForbidden("staff access required")
		}
		return c.Next()
	}
}
