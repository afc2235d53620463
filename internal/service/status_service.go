package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/ticketron/ticketron/internal/domain"
	"github.com/ticketron/ticketron/internal/repository"
	"github.com/ticketron/ticketron/pkg/util/errorutil"
)

// StatusService manages the free-text status labels.
type StatusService struct {
	statuses repository.StatusRepository
}

func NewStatusService(statuses repository.StatusRepository) *StatusService {
	return &StatusService{statuses: statuses}
}

func (s *StatusService) List(ctx context.Context) ([]domain.Status, error) {
	items, err := s.statuses.List(ctx)
	return items, mapRepoErr(err, "status")
}

// Get parses raw as a status id and loads it.
func (s *StatusService) Get(ctx context.Context, raw string) (*domain.Status, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, errorutil.NewNotFound("status", nil)
	}
	status, err := s.statuses.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err, "status")
	}
	return status, nil
}

func (s *StatusService) Create(ctx context.Context, name string) (*domain.Status, error) {
	status := &domain.Status{Name: strings.TrimSpace(name)}
	if err := validateStatus(status); err != nil {
		return nil, err
	}
	if err := s.statuses.Create(ctx, status); err != nil {
		return nil, mapRepoErr(err, "status")
	}
	return status, nil
}

func (s *StatusService) Update(ctx context.Context, raw, name string) (*domain.Status, error) {
	status, err := s.Get(ctx, raw)
	if err != nil {
		return nil, err
	}
	status.Name = strings.TrimSpace(name)
	if err := validateStatus(status); err != nil {
		return nil, err
	}
	if err := s.statuses.Update(ctx, status); err != nil {
		return nil, mapRepoErr(err, "status")
	}
	return status, nil
}

// Delete removes a status; tickets using it lose their status.
func (s *StatusService) Delete(ctx context.Context, raw string) error {
	status, err := s.Get(ctx, raw)
	if err != nil {
		return err
	}
	return mapRepoErr(s.statuses.Delete(ctx, status.ID), "status")
}

func (s *StatusService) Count(ctx context.Context) (int, error) {
	n, err := s.statuses.Count(ctx)
	return n, mapRepoErr(err, "status")
}

func validateStatus(status *domain.Status) error {
	switch {
	case status.Name == "":
		return errorutil.NewValidationError("invalid status", map[string]any{"name": "This field is required."})
	case len([]rune(status.Name)) > 200:
		return errorutil.NewValidationError("invalid status", map[string]any{"name": "Ensure this value has at most 200 characters."})
	}
	return nil
}
