package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrDuplicateLead is returned when the email was already captured.
var ErrDuplicateLead = errors.New("duplicate_lead")

// LeadRepository captures emails from the unlock-advice prompt.
type LeadRepository interface {
	Insert(ctx context.Context, email string) error
}

type leadRepo struct {
	pool *pgxpool.Pool
}

// NewLeadRepo creates a new LeadRepository.
func NewLeadRepo(pool *pgxpool.Pool) LeadRepository {
	return &leadRepo{pool: pool}
}

func (r *leadRepo) Insert(ctx context.Context, email string) error {
	const q = `INSERT INTO leads (email) VALUES ($1)`
	if _, err := r.pool.Exec(ctx, q, email); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateLead
		}
		return fmt.Errorf("record lead: %w", err)
	}
	return nil
}
