package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ticketron/ticketron/internal/api/forms"
	"github.com/ticketron/ticketron/internal/auth"
	"github.com/ticketron/ticketron/internal/web"
)

// render executes a page inside the base layout, adding the values every
// page needs.
func render(c *fiber.Ctx, name string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	if principal, ok := auth.PrincipalFromContext(c); ok {
		data["Principal"] = principal
	}
	if _, ok := data["Errors"]; !ok {
		data["Errors"] = forms.Errors{}
	}
	data["RequestPath"] = c.OriginalURL()
	return c.Render(name, data, web.Layout)
}

// actorID returns the caller's user id for event attribution.
func actorID(c *fiber.Ctx) *string {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return nil
	}
	id := principal.User.ID
	return &id
}
