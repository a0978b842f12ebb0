package repository

import (
	"context"
	"fmt"

	"app/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PurchaseRepository owns the purchases ledger. One row per applied checkout
// session; the unique index on stripe_session_id is the deduplication point for
// the verify and webhook confirmation paths.
type PurchaseRepository interface {
	// InsertIfAbsent records the purchase unless a row for the session already
	// exists. Returns true when this call created the row, false when another
	// confirmation got there first. Rows are never updated or deleted.
	InsertIfAbsent(ctx context.Context, p *model.Purchase) (bool, error)
}

type purchaseRepo struct {
	pool *pgxpool.Pool
}

// NewPurchaseRepo creates a new PurchaseRepository.
func NewPurchaseRepo(pool *pgxpool.Pool) PurchaseRepository {
	return &purchaseRepo{pool: pool}
}

func (r *purchaseRepo) InsertIfAbsent(ctx context.Context, p *model.Purchase) (bool, error) {
	const q = `
        INSERT INTO purchases (user_id, stripe_session_id, package_id, amount, roasts_added)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (stripe_session_id) DO NOTHING
    `
	tag, err := r.pool.Exec(ctx, q, p.UserID, p.StripeSessionID, p.PackageID, p.AmountTotal, p.RoastsAdded)
	if err != nil {
		return false, fmt.Errorf("record purchase %s: %w", p.StripeSessionID, err)
	}
	return tag.RowsAffected() == 1, nil
}
