package service

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/yourorg/staffdesk/internal/domain"
)

// ContactService handles unauthenticated contact intake and admin listing
type ContactService struct {
	contactRepo domain.ContactRepository
	logger      *slog.Logger
}

// NewContactService creates a new contact service
func NewContactService(contactRepo domain.ContactRepository, logger *slog.Logger) *ContactService {
	if logger == nil {
		logger = slog.Default()
	}

	return &ContactService{
		contactRepo: contactRepo,
		logger:      logger,
	}
}

// Submit appends a contact message
func (s *ContactService) Submit(email, message string) (*domain.ContactMessage, error) {
	if email == "" || message == "" {
		return nil, fmt.Errorf("%w: email and message required", domain.ErrValidation)
	}

	msg := &domain.ContactMessage{Email: email, Message: message}
	if err := s.contactRepo.Create(msg); err != nil {
		s.logger.Error("failed to store contact message", slog.String("error", err.Error()))
		return nil, errors.New("failed to send message")
	}
	return msg, nil
}

// List returns all contact messages, newest first
func (s *ContactService) List() ([]*domain.ContactMessage, error) {
	msgs, err := s.contactRepo.List()
	if err != nil {
		s.logger.Error("failed to list contact messages", slog.String("error", err.Error()))
		return nil, errors.New("failed to fetch messages")
	}
	return msgs, nil
}
