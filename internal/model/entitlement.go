package model

import "time"

// UnlimitedDisplayBalance is what roasts_remaining is pinned to when a user goes
// premium. It is display data only; gating reads IsPremium.
const UnlimitedDisplayBalance = 999999

// Entitlement is a user's current roast allowance.
type Entitlement struct {
	UserID           string    `db:"user_id" json:"user_id"`
	Email            string    `db:"email" json:"email"`
	StripeCustomerID *string   `db:"stripe_customer_id" json:"stripe_customer_id,omitempty"`
	RoastsRemaining  int       `db:"roasts_remaining" json:"roasts_remaining"`
	IsPremium        bool      `db:"is_premium" json:"is_premium"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}
