package services

import (
	"errors"
	"net/http"
	"strings"

	"brainbin/internal/email"
	"brainbin/internal/logger"
	"brainbin/internal/models"
	"brainbin/internal/repositories"
	"brainbin/internal/services/dto"
	"brainbin/pkg/apperrors"
)

type WaitlistService struct {
	waitlist repositories.WaitlistRepository
	email    email.Provider
}

func NewWaitlistService(waitlist repositories.WaitlistRepository, mailer email.Provider) *WaitlistService {
	return &WaitlistService{waitlist: waitlist, email: mailer}
}

// Join adds an email to the waitlist and reports its position. Joining
// twice returns a conflict.
func (s *WaitlistService) Join(req dto.WaitlistRequest) (*dto.WaitlistResponse, error) {
	entry := &models.WaitlistEntry{
		Email:  strings.ToLower(strings.TrimSpace(req.Email)),
		Source: req.Source,
	}

	if err := s.waitlist.Create(entry); err != nil {
		if errors.Is(err, repositories.ErrWaitlistEntryExists) {
			return nil, apperrors.ErrConflict(err, "waitlist", "This email is already on the waitlist")
		}
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "waitlist", "Failed to join waitlist", http.StatusInternalServerError)
	}

	position, err := s.waitlist.Count()
	if err != nil {
		position = 0
	}

	if err := s.email.Send(email.WaitlistEmail(entry.Email)); err != nil {
		logger.GetLogger().Warn("Failed to send waitlist confirmation", "email", entry.Email, "error", err)
	}

	return &dto.WaitlistResponse{
		Message:  "You're on the list! We'll be in touch.",
		Position: position,
	}, nil
}
