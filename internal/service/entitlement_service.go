package service

import (
	"context"

	"app/internal/model"
	"app/internal/repository"

	"github.com/rs/zerolog"
)

// EntitlementService exposes the roast allowance to handlers.
type EntitlementService interface {
	Get(ctx context.Context, userID, email string) (*model.Entitlement, error)
	// Consume spends one roast ahead of the roast pipeline. Returns
	// repository.ErrInsufficientRoasts when the user is out of credit.
	Consume(ctx context.Context, userID, email string) (*model.Entitlement, error)
}

type entitlementService struct {
	repo   repository.EntitlementRepository
	logger zerolog.Logger
}

// NewEntitlementService creates a new EntitlementService with a scoped logger.
func NewEntitlementService(repo repository.EntitlementRepository, logger zerolog.Logger) EntitlementService {
	return &entitlementService{
		repo:   repo,
		logger: logger.With().Str("service", "EntitlementService").Logger(),
	}
}

func (s *entitlementService) Get(ctx context.Context, userID, email string) (*model.Entitlement, error) {
	ent, err := s.repo.Get(ctx, userID, email)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to fetch entitlement")
		return nil, err
	}
	return ent, nil
}

func (s *entitlementService) Consume(ctx context.Context, userID, email string) (*model.Entitlement, error) {
	ent, err := s.repo.Decrement(ctx, userID, email)
	if err != nil {
		return nil, err
	}
	return ent, nil
}
