package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/ticketron/ticketron/internal/api/forms"
	"github.com/ticketron/ticketron/internal/auth"
	"github.com/ticketron/ticketron/internal/service"
)

const msgBadCredentials = "Please enter a correct username and password. Note that both fields may be case-sensitive."

// AccountsHandler serves login and logout.
type AccountsHandler struct {
	users  *service.UserService
	auth   *auth.AuthMiddleware
	logger *zap.Logger
}

// NewAccountsHandler constructs a handler.
func NewAccountsHandler(users *service.UserService, authMW *auth.AuthMiddleware, logger *zap.Logger) *AccountsHandler {
	return &AccountsHandler{users: users, auth: authMW, logger: logger}
}

// LoginForm GET /accounts/login/.
func (h *AccountsHandler) LoginForm(c *fiber.Ctx) error {
	return renderLogin(c, forms.LoginForm{Next: c.Query("next")}, nil)
}

// Login POST /accounts/login/. Redirects to next on success.
func (h *AccountsHandler) Login(c *fiber.Ctx) error {
	var form forms.LoginForm
	if err := c.BodyParser(&form); err != nil {
		return renderLogin(c, form, forms.Errors{"__all__": msgBadCredentials})
	}
	if errs := forms.Validate(form); len(errs) > 0 {
		return renderLogin(c, form, errs)
	}

	user, err := h.users.Authenticate(c.UserContext(), form.Username, form.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		h.logger.Info("login rejected", zap.String("username", form.Username))
		return renderLogin(c, form, forms.Errors{"__all__": msgBadCredentials})
	}
	if err != nil {
		return err
	}

	if err := h.auth.SetSession(c, user); err != nil {
		return err
	}
	h.logger.Info("user logged in", zap.String("user_id", user.ID))
	return c.Redirect(auth.SafeNext(form.Next), fiber.StatusFound)
}

// Logout GET|POST /accounts/logout/.
func (h *AccountsHandler) Logout(c *fiber.Ctx) error {
	h.auth.ClearSession(c)
	return c.Redirect("/", fiber.StatusFound)
}

func renderLogin(c *fiber.Ctx, form forms.LoginForm, errs forms.Errors) error {
	if errs == nil {
		errs = forms.Errors{}
	}
	form.Password = ""
	return render(c, "accounts/login", fiber.Map{
		"Title":  "Login",
		"Form":   form,
		"Next":   form.Next,
		"Errors": errs,
	})
}
