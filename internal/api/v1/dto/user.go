package dto

// MeResponseDTO is returned by GET /users/me.
type MeResponseDTO struct {
	UserID          string `json:"user_id"`
	Email           string `json:"email"`
	RoastsRemaining int    `json:"roasts_remaining"`
	IsPremium       bool   `json:"is_premium"`
}
