package dto

// CheckoutRequestDTO is the body of POST /billing/checkout.
type CheckoutRequestDTO struct {
	PackageID string `json:"packageId" validate:"required"`
}

// CheckoutResponseDTO carries the hosted checkout URL.
type CheckoutResponseDTO struct {
	URL string `json:"url"`
}

// VerifyRequestDTO is the body of POST /billing/verify.
type VerifyRequestDTO struct {
	SessionID string `json:"sessionId" validate:"required"`
}

// VerifyResponseDTO reports the entitlement after a verified purchase.
// AlreadyProcessed is a normal outcome, not an error: it means the other
// confirmation path applied the grant first.
type VerifyResponseDTO struct {
	Success          bool `json:"success"`
	AlreadyProcessed bool `json:"alreadyProcessed,omitempty"`
	RoastsRemaining  int  `json:"roastsRemaining"`
	IsPremium        bool `json:"isPremium"`
}
