package http

import (
	"context"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/ticketron/ticketron/internal/auth"
	"github.com/ticketron/ticketron/internal/observability"
	"github.com/ticketron/ticketron/internal/web"
	apperrors "github.com/ticketron/ticketron/pkg/util/errorutil"
)

// RegisterMiddlewares attaches global middlewares such as error handling and logging.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration) {
	app.Use(observability.RequestLogger(logger))
	if timeout > 0 {
		app.Use(requestTimeoutMiddleware(timeout))
	}
	app.Use(errorHandlingMiddleware(logger, metrics))
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(nil)
			}
			if err != nil {
				domainErr := toDomainError(err)
				metrics.RecordError(c.Path(), c.Method(), domainErr.Code)
				if domainErr.HTTPStatus >= 500 {
					logger.Error("request failed", zap.Error(domainErr))
				}
				err = renderError(c, logger, domainErr)
			}
		}()
		return c.Next()
	}
}

// toDomainError also understands errors raised by fiber itself, such as
// unmatched routes and wrong methods.
func toDomainError(err error) *apperrors.DomainError {
	if fiberErr, ok := err.(*fiber.Error); ok {
		return apperrors.NewDomainError("HTTP_"+http.StatusText(fiberErr.Code), fiberErr.Message, fiberErr.Code, nil)
	}
	return apperrors.ToDomainError(err)
}

func renderError(c *fiber.Ctx, logger *zap.Logger, domainErr *apperrors.DomainError) error {
	data := fiber.Map{
		"Title":       http.StatusText(domainErr.HTTPStatus),
		"Status":      domainErr.HTTPStatus,
		"StatusText":  http.StatusText(domainErr.HTTPStatus),
		"Message":     domainErr.Message,
		"RequestPath": c.OriginalURL(),
	}
	if principal, ok := auth.PrincipalFromContext(c); ok {
		data["Principal"] = principal
	}
	c.Status(domainErr.HTTPStatus)
	if err := c.Render("errors/error", data, web.Layout); err != nil {
		logger.Error("failed to render error page", zap.Error(err))
		return c.SendString(domainErr.Message)
	}
	return nil
}
