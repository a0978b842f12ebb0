package repository

import (
	"context"
	"errors"
	"fmt"

	"app/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrInsufficientRoasts is returned when a decrement would take the balance below zero.
var ErrInsufficientRoasts = errors.New("insufficient_roasts")

// EntitlementRepository owns the profiles table. Every mutation is a single
// conditional statement keyed by user_id so concurrent grants and decrements
// cannot lose updates; callers never read-then-write.
type EntitlementRepository interface {
	// Get returns the user's entitlement, provisioning the row with the one
	// free roast on first touch.
	Get(ctx context.Context, userID, email string) (*model.Entitlement, error)
	// Grant adds roasts atomically. A first-touch grant provisions the row and
	// includes the free roast.
	Grant(ctx context.Context, userID, email string, roasts int) (*model.Entitlement, error)
	// SetUnlimited flips is_premium and pins the display balance. Monotonic:
	// nothing in this repository clears it.
	SetUnlimited(ctx context.Context, userID, email string) (*model.Entitlement, error)
	// Decrement consumes one roast. Premium users pass through unmutated.
	// Returns ErrInsufficientRoasts, without mutating, when the balance is zero.
	Decrement(ctx context.Context, userID, email string) (*model.Entitlement, error)
	// SetStripeCustomerID records the processor linkage the first time a user
	// transacts. A concurrent writer that got there first wins; the call is
	// still reported as success.
	SetStripeCustomerID(ctx context.Context, userID, customerID string) error
}

type entitlementRepo struct {
	pool *pgxpool.Pool
}

// NewEntitlementRepo creates a new EntitlementRepository.
func NewEntitlementRepo(pool *pgxpool.Pool) EntitlementRepository {
	return &entitlementRepo{pool: pool}
}

const entitlementColumns = `user_id, email, stripe_customer_id, roasts_remaining, is_premium, created_at, updated_at`

func scanEntitlement(row pgx.Row) (*model.Entitlement, error) {
	var e model.Entitlement
	err := row.Scan(
		&e.UserID,
		&e.Email,
		&e.StripeCustomerID,
		&e.RoastsRemaining,
		&e.IsPremium,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// ensure provisions the profile row with exactly one free roast if it does not
// exist yet. The insert is atomic, so concurrent first touches create one row.
func (r *entitlementRepo) ensure(ctx context.Context, userID, email string) error {
	const q = `
        INSERT INTO profiles (user_id, email, roasts_remaining, is_premium)
        VALUES ($1, $2, 1, FALSE)
        ON CONFLICT (user_id) DO NOTHING
    `
	if _, err := r.pool.Exec(ctx, q, userID, email); err != nil {
		return fmt.Errorf("provision profile for user %s: %w", userID, err)
	}
	return nil
}

func (r *entitlementRepo) Get(ctx context.Context, userID, email string) (*model.Entitlement, error) {
	if err := r.ensure(ctx, userID, email); err != nil {
		return nil, err
	}
	q := `SELECT ` + entitlementColumns + ` FROM profiles WHERE user_id = $1`
	e, err := scanEntitlement(r.pool.QueryRow(ctx, q, userID))
	if err != nil {
		return nil, fmt.Errorf("fetch profile for user %s: %w", userID, err)
	}
	return e, nil
}

func (r *entitlementRepo) Grant(ctx context.Context, userID, email string, roasts int) (*model.Entitlement, error) {
	q := `
        INSERT INTO profiles (user_id, email, roasts_remaining, is_premium)
        VALUES ($1, $2, 1 + $3, FALSE)
        ON CONFLICT (user_id) DO UPDATE
        SET roasts_remaining = profiles.roasts_remaining + $3,
            updated_at = NOW()
        RETURNING ` + entitlementColumns
	e, err := scanEntitlement(r.pool.QueryRow(ctx, q, userID, email, roasts))
	if err != nil {
		return nil, fmt.Errorf("grant %d roasts to user %s: %w", roasts, userID, err)
	}
	return e, nil
}

func (r *entitlementRepo) SetUnlimited(ctx context.Context, userID, email string) (*model.Entitlement, error) {
	q := `
        INSERT INTO profiles (user_id, email, roasts_remaining, is_premium)
        VALUES ($1, $2, $3, TRUE)
        ON CONFLICT (user_id) DO UPDATE
        SET is_premium = TRUE,
            roasts_remaining = $3,
            updated_at = NOW()
        RETURNING ` + entitlementColumns
	e, err := scanEntitlement(r.pool.QueryRow(ctx, q, userID, email, model.UnlimitedDisplayBalance))
	if err != nil {
		return nil, fmt.Errorf("set unlimited for user %s: %w", userID, err)
	}
	return e, nil
}

func (r *entitlementRepo) Decrement(ctx context.Context, userID, email string) (*model.Entitlement, error) {
	if err := r.ensure(ctx, userID, email); err != nil {
		return nil, err
	}
	// The WHERE clause is the gate: the statement matches nothing when a
	// non-premium balance is already zero, so the balance can never go negative.
	q := `
        UPDATE profiles
        SET roasts_remaining = CASE WHEN is_premium THEN roasts_remaining ELSE roasts_remaining - 1 END,
            updated_at = NOW()
        WHERE user_id = $1
          AND (is_premium OR roasts_remaining > 0)
        RETURNING ` + entitlementColumns
	e, err := scanEntitlement(r.pool.QueryRow(ctx, q, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInsufficientRoasts
		}
		return nil, fmt.Errorf("decrement roasts for user %s: %w", userID, err)
	}
	return e, nil
}

func (r *entitlementRepo) SetStripeCustomerID(ctx context.Context, userID, customerID string) error {
	const q = `
        UPDATE profiles
        SET stripe_customer_id = $2,
            updated_at = NOW()
        WHERE user_id = $1
          AND stripe_customer_id IS NULL
    `
	if _, err := r.pool.Exec(ctx, q, userID, customerID); err != nil {
		return fmt.Errorf("store stripe customer id for user %s: %w", userID, err)
	}
	return nil
}
