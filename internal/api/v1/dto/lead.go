package dto

// LeadRequestDTO is the body of POST /leads.
type LeadRequestDTO struct {
	Email string `json:"email" validate:"required,email"`
}
