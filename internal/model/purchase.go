package model

import "time"

// Purchase is one applied checkout session. The unique stripe_session_id makes
// this table the idempotency ledger: a row exists iff the grant was applied.
type Purchase struct {
	UserID          string    `db:"user_id" json:"user_id"`
	StripeSessionID string    `db:"stripe_session_id" json:"stripe_session_id"`
	PackageID       string    `db:"package_id" json:"package_id"`
	AmountTotal     int64     `db:"amount" json:"amount"`
	RoastsAdded     int       `db:"roasts_added" json:"roasts_added"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}
