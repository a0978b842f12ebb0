package handler

import (
	"encoding/json"
	"net/http"

	"app/internal/api/v1/dto"
	"app/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// LeadHandler captures emails from the unlock-advice prompt. Public route.
type LeadHandler struct {
	leadSvc  service.LeadService
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewLeadHandler creates a new LeadHandler.
func NewLeadHandler(leadSvc service.LeadService, v *validator.Validate, logger zerolog.Logger) *LeadHandler {
	return &LeadHandler{leadSvc: leadSvc, validate: v, logger: logger}
}

// RegisterRoutes mounts v1 lead routes.
func (h *LeadHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle("/leads", http.HandlerFunc(h.capture))
}

// capture godoc
// @Summary Capture an email for the advice unlock
// @Tags leads
// @Accept json
// @Produce json
// @Param lead body dto.LeadRequestDTO true "Lead request"
// @Success 200 {object} map[string]bool
// @Failure 400 {object} map[string]string "invalid email"
// @Router /leads [post]
func (h *LeadHandler) capture(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req dto.LeadRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Email is required"})
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid email format"})
		return
	}

	if err := h.leadSvc.Capture(r.Context(), req.Email); err != nil {
		h.logger.Error().Err(err).Msg("Failed to save lead")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to save email"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
