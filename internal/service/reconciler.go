package service

import (
	"context"

	"app/internal/catalog"
	"app/internal/model"
	"app/internal/repository"

	"github.com/rs/zerolog"
)

// ConfirmedPurchase is a checkout confirmation that passed its trust check
// (session ownership on the verify path, webhook signature on the push path).
// All fields come from the session metadata written at checkout time, so
// applying it needs no further lookups.
type ConfirmedPurchase struct {
	SessionID   string
	UserID      string
	Email       string
	PackageID   string
	Roasts      int // catalog.UnlimitedRoasts grants unlimited use
	AmountTotal int64
}

// Reconciler applies purchase confirmations exactly once. Both confirmation
// paths converge here; the purchases ledger keyed by session id decides which
// delivery wins a race, and every later delivery is reported as already
// processed with the entitlement untouched.
type Reconciler interface {
	// Apply grants the purchase's roasts unless the session was already
	// applied. The returned bool is true when the grant had already happened.
	Apply(ctx context.Context, p ConfirmedPurchase) (*model.Entitlement, bool, error)
}

type reconciler struct {
	entitlements repository.EntitlementRepository
	purchases    repository.PurchaseRepository
	logger       zerolog.Logger
}

// NewReconciler creates a Reconciler with a scoped logger.
func NewReconciler(entitlements repository.EntitlementRepository, purchases repository.PurchaseRepository, logger zerolog.Logger) Reconciler {
	return &reconciler{
		entitlements: entitlements,
		purchases:    purchases,
		logger:       logger.With().Str("service", "Reconciler").Logger(),
	}
}

func (s *reconciler) Apply(ctx context.Context, p ConfirmedPurchase) (*model.Entitlement, bool, error) {
	// Ledger first, grant second. If the process dies between the two steps the
	// session reads as processed with the grant missing, which is recoverable by
	// hand; the reverse order could double-grant on redelivery.
	inserted, err := s.purchases.InsertIfAbsent(ctx, &model.Purchase{
		UserID:          p.UserID,
		StripeSessionID: p.SessionID,
		PackageID:       p.PackageID,
		AmountTotal:     p.AmountTotal,
		RoastsAdded:     p.Roasts,
	})
	if err != nil {
		return nil, false, err
	}
	if !inserted {
		s.logger.Info().Str("session_id", p.SessionID).Str("user_id", p.UserID).Msg("Session already processed, skipping grant")
		ent, err := s.entitlements.Get(ctx, p.UserID, p.Email)
		if err != nil {
			return nil, true, err
		}
		return ent, true, nil
	}

	var ent *model.Entitlement
	if p.Roasts == catalog.UnlimitedRoasts {
		ent, err = s.entitlements.SetUnlimited(ctx, p.UserID, p.Email)
	} else {
		ent, err = s.entitlements.Grant(ctx, p.UserID, p.Email, p.Roasts)
	}
	if err != nil {
		// The ledger row exists but the grant did not land. Surface the error
		// untouched; retrying here would mask a lost update.
		s.logger.Error().Err(err).
			Str("session_id", p.SessionID).
			Str("user_id", p.UserID).
			Msg("Ledger entry recorded but grant failed; needs manual reconciliation")
		return nil, false, err
	}

	s.logger.Info().
		Str("session_id", p.SessionID).
		Str("user_id", p.UserID).
		Str("package_id", p.PackageID).
		Int("roasts", p.Roasts).
		Msg("Purchase applied")
	return ent, false, nil
}
