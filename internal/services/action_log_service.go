package services

import (
	"context"
	"errors"
	"log"
	"time"

	"adminportal/internal/models"
	"adminportal/internal/repositories"

	"github.com/google/uuid"
)

// ActionLogService appends and queries the audit trail.
type ActionLogService interface {
	// Record appends an entry best-effort: a store failure is logged locally
	// and never propagated, so audit writes can never fail a request.
	Record(ctx context.Context, userID *uuid.UUID, action string, metadata models.JSONB)
	List(ctx context.Context, filters *models.ActionLogFilters) ([]*models.ActionLog, error)
	ValidateFilters(filters *models.ActionLogFilters) error
}

type actionLogService struct {
	repo repositories.ActionLogRepository
}

func NewActionLogService(repo repositories.ActionLogRepository) ActionLogService {
	return &actionLogService{repo: repo}
}

func (s *actionLogService) Record(ctx context.Context, userID *uuid.UUID, action string, metadata models.JSONB) {
	if action == "" {
		return
	}
	entry := &models.ActionLog{
		ID:        uuid.New(),
		UserID:    userID,
		Action:    action,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		log.Printf("WARN: failed to write action log %q: %v", action, err)
	}
}

func (s *actionLogService) List(ctx context.Context, filters *models.ActionLogFilters) ([]*models.ActionLog, error) {
	if filters == nil {
		filters = &models.ActionLogFilters{Limit: 50}
	}
	if err := s.ValidateFilters(filters); err != nil {
		return nil, err
	}
	if filters.Limit <= 0 || filters.Limit > 1000 {
		filters.Limit = 50
	}
	return s.repo.List(ctx, filters)
}

func (s *actionLogService) ValidateFilters(filters *models.ActionLogFilters) error {
	if filters == nil {
		return nil
	}
	if filters.Limit > 1000 {
		return errors.New("maximum limit is 1000 records")
	}
	if filters.StartDate != nil && filters.EndDate != nil {
		if filters.EndDate.Before(*filters.StartDate) {
			return errors.New("start_date cannot be after end_date")
		}
		if filters.EndDate.Sub(*filters.StartDate) > 366*24*time.Hour {
			return errors.New("date range cannot exceed 1 year")
		}
	}
	return nil
}
