package service

import (
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/ticketron/ticketron/internal/domain"
	"github.com/ticketron/ticketron/internal/repository"
	"github.com/ticketron/ticketron/pkg/util/errorutil"
)

var tracer trace.Tracer = otel.Tracer("github.com/ticketron/ticketron/internal/service")

// Clock supplies "now" and the zone that decides which calendar day it is.
// The zero value uses time.Now in UTC.
type Clock struct {
	Now      func() time.Time
	Location *time.Location
}

// Today returns the current calendar day.
func (c Clock) Today() time.Time {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	loc := c.Location
	if loc == nil {
		loc = time.UTC
	}
	return domain.DateOf(now().In(loc))
}

func mapRepoErr(err error, resource string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return errorutil.NewNotFound(resource, nil)
	case errors.Is(err, repository.ErrDuplicate):
		return errorutil.NewConflict(resource+" already exists", nil)
	default:
		return errorutil.NewInternalError(err)
	}
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// listAllLimit bounds "every row" listings used by detail and admin pages.
const listAllLimit = 10000
