package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"app/internal/model"
	"app/internal/repository"

	"github.com/rs/zerolog"
)

// ErrInvalidURL is returned when the submitted URL cannot be parsed.
var ErrInvalidURL = errors.New("invalid_url")

// RoastResult is what a completed roast returns to the client.
type RoastResult struct {
	ScreenshotURL string
	Critique      model.Critique
}

// RoastService runs the roast pipeline: consume a credit, capture the page,
// store the screenshot, get the critique, record the audit row.
type RoastService interface {
	Roast(ctx context.Context, userID, email, rawURL string) (*RoastResult, error)
}

type roastService struct {
	entitlements EntitlementService
	capture      CaptureService
	critique     CritiqueService
	screenshots  ScreenshotStore
	roasts       repository.RoastRepository
	logger       zerolog.Logger
}

// NewRoastService creates a RoastService with a scoped logger.
func NewRoastService(
	entitlements EntitlementService,
	capture CaptureService,
	critique CritiqueService,
	screenshots ScreenshotStore,
	roasts repository.RoastRepository,
	logger zerolog.Logger,
) RoastService {
	return &roastService{
		entitlements: entitlements,
		capture:      capture,
		critique:     critique,
		screenshots:  screenshots,
		roasts:       roasts,
		logger:       logger.With().Str("service", "RoastService").Logger(),
	}
}

// normalizeURL accepts schemeless input and returns a canonical absolute URL.
func normalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrInvalidURL
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", ErrInvalidURL
	}
	return u.String(), nil
}

func (s *roastService) Roast(ctx context.Context, userID, email, rawURL string) (*RoastResult, error) {
	target, err := normalizeURL(rawURL)
	if err != nil {
		return nil, err
	}

	// The credit is consumed before any expensive work starts and is not
	// refunded if the capture or the critique fails afterwards.
	if _, err := s.entitlements.Consume(ctx, userID, email); err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", userID).Str("url", target).Msg("Capturing screenshot")
	png, err := s.capture.Capture(ctx, target)
	if err != nil {
		return nil, err
	}

	screenshotURL, err := s.screenshots.Save(ctx, userID, png)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to store screenshot")
		return nil, err
	}

	critique, err := s.critique.Critique(ctx, png)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Str("url", target).Msg("Critique failed")
		return nil, fmt.Errorf("critique %s: %w", target, err)
	}

	roast := &model.Roast{
		UserID:        userID,
		URL:           target,
		ScreenshotURL: screenshotURL,
		Critique:      critique,
	}
	if err := s.roasts.Insert(ctx, roast); err != nil {
		// Audit trail only; the roast already succeeded from the user's side.
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to record roast")
	}

	return &RoastResult{ScreenshotURL: screenshotURL, Critique: critique}, nil
}
