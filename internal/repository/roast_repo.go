package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"app/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// RoastRepository persists the audit trail of completed roasts. Write-only.
type RoastRepository interface {
	Insert(ctx context.Context, roast *model.Roast) error
}

type roastRepo struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewRoastRepo creates a new RoastRepository.
func NewRoastRepo(pool *pgxpool.Pool, logger zerolog.Logger) RoastRepository {
	return &roastRepo{pool: pool, logger: logger}
}

func (r *roastRepo) Insert(ctx context.Context, roast *model.Roast) error {
	points, err := json.Marshal(roast.Critique.RoastPoints)
	if err != nil {
		return fmt.Errorf("marshal roast points: %w", err)
	}
	fixes, err := json.Marshal(roast.Critique.FixSuggestions)
	if err != nil {
		return fmt.Errorf("marshal fix suggestions: %w", err)
	}
	const q = `
        INSERT INTO roasts (user_id, url, screenshot_url, roast_points, fix_suggestions, overall_score, verdict)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `
	_, err = r.pool.Exec(ctx, q,
		roast.UserID,
		roast.URL,
		roast.ScreenshotURL,
		points,
		fixes,
		roast.Critique.OverallScore,
		roast.Critique.Verdict,
	)
	if err != nil {
		return fmt.Errorf("record roast for user %s: %w", roast.UserID, err)
	}
	return nil
}
