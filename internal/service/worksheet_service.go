package service

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/yourorg/staffdesk/internal/domain"
	"github.com/yourorg/staffdesk/internal/security"
)

// WorksheetService handles the work entry ledger
type WorksheetService struct {
	entryRepo domain.WorkEntryRepository
	authz     *security.AuthorizationService
	logger    *slog.Logger
}

// NewWorksheetService creates a new worksheet service
func NewWorksheetService(
	entryRepo domain.WorkEntryRepository,
	authz *security.AuthorizationService,
	logger *slog.Logger,
) *WorksheetService {
	if logger == nil {
		logger = slog.Default()
	}

	return &WorksheetService{
		entryRepo: entryRepo,
		authz:     authz,
		logger:    logger,
	}
}

// Add stores a new entry owned by the actor.
func (s *WorksheetService) Add(actorID, actorEmail, task string, hoursWorked float64, date time.Time) (*domain.WorkEntry, error) {
	if task == "" || date.IsZero() {
		return nil, fmt.Errorf("%w: missing required fields", domain.ErrValidation)
	}
	if hoursWorked <= 0 {
		return nil, fmt.Errorf("%w: hoursWorked must be positive", domain.ErrValidation)
	}

	entry := &domain.WorkEntry{
		UserID:      actorID,
		Email:       actorEmail,
		Task:        task,
		HoursWorked: hoursWorked,
		Date:        date,
	}
	if err := s.entryRepo.Create(entry); err != nil {
		s.logger.Error("failed to add work entry", slog.String("error", err.Error()))
		return nil, errors.New("failed to add work")
	}

	return entry, nil
}

// List returns entries visible to the actor. Employees see only their own;
// HR may target another user or see all.
func (s *WorksheetService) List(actorID string, actorRole security.Role, filter domain.WorkEntryFilter) ([]*domain.WorkEntry, error) {
	if actorRole == security.RoleEmployee {
		filter.UserID = actorID
	}
	entries, err := s.entryRepo.List(filter)
	if err != nil {
		s.logger.Error("failed to list work entries", slog.String("error", err.Error()))
		return nil, errors.New("failed to fetch work sheets")
	}
	return entries, nil
}

// Update applies the supplied subset of fields to an entry the actor owns.
func (s *WorksheetService) Update(actorID, entryID string, upd domain.WorkEntryUpdate) error {
	if upd.HoursWorked != nil && *upd.HoursWorked <= 0 {
		return fmt.Errorf("%w: hoursWorked must be positive", domain.ErrValidation)
	}

	entry, err := s.entryRepo.GetByID(entryID)
	if err != nil {
		return err
	}
	if err := s.authz.ValidateOwnership(actorID, entry.UserID, "worksheet"); err != nil {
		return fmt.Errorf("%w: not your worksheet", domain.ErrForbidden)
	}

	return s.entryRepo.Update(entryID, upd)
}

// Delete removes an entry the actor owns.
func (s *WorksheetService) Delete(actorID, entryID string) error {
	entry, err := s.entryRepo.GetByID(entryID)
	if err != nil {
		return err
	}
	if err := s.authz.ValidateOwnership(actorID, entry.UserID, "worksheet"); err != nil {
		return fmt.Errorf("%w: not your worksheet", domain.ErrForbidden)
	}

	return s.entryRepo.Delete(entryID)
}
