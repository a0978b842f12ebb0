package service

import (
	"context"
	"errors"

	"app/internal/repository"

	"github.com/rs/zerolog"
)

// LeadService captures emails from the unlock-advice prompt.
type LeadService interface {
	Capture(ctx context.Context, email string) error
}

type leadService struct {
	repo   repository.LeadRepository
	logger zerolog.Logger
}

// NewLeadService creates a new LeadService with a scoped logger.
func NewLeadService(repo repository.LeadRepository, logger zerolog.Logger) LeadService {
	return &leadService{
		repo:   repo,
		logger: logger.With().Str("service", "LeadService").Logger(),
	}
}

func (s *leadService) Capture(ctx context.Context, email string) error {
	err := s.repo.Insert(ctx, email)
	if errors.Is(err, repository.ErrDuplicateLead) {
		// Reported as success so the API does not reveal which emails exist.
		s.logger.Debug().Msg("Duplicate lead email ignored")
		return nil
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to capture lead")
		return err
	}
	return nil
}
