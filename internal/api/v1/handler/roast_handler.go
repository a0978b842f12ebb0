package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"app/internal/api/v1/dto"
	"app/internal/middleware"
	"app/internal/repository"
	"app/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// RoastHandler handles roast requests.
type RoastHandler struct {
	roastSvc service.RoastService
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewRoastHandler creates a new RoastHandler.
func NewRoastHandler(roastSvc service.RoastService, v *validator.Validate, logger zerolog.Logger) *RoastHandler {
	return &RoastHandler{roastSvc: roastSvc, validate: v, logger: logger}
}

// RegisterRoutes mounts v1 roast routes.
func (h *RoastHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("/roasts", authMw(http.HandlerFunc(h.roast)))
}

// roast godoc
// @Summary Roast a landing page
// @Description Consumes one roast credit, captures the page, and returns the critique.
// @Tags roasts
// @Accept json
// @Produce json
// @Param roast body dto.RoastRequestDTO true "Roast request"
// @Success 200 {object} dto.RoastResponseDTO
// @Failure 400 {object} map[string]string "invalid or unreachable URL"
// @Failure 402 {object} map[string]interface{} "no roasts remaining"
// @Router /roasts [post]
func (h *RoastHandler) roast(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req dto.RoastRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request payload", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		http.Error(w, "URL is required", http.StatusBadRequest)
		return
	}

	result, err := h.roastSvc.Roast(r.Context(), userID, middleware.Email(r.Context()), req.URL)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrInsufficientRoasts):
			writeJSON(w, http.StatusPaymentRequired, map[string]interface{}{
				"error":           "No roasts remaining. Please upgrade!",
				"requiresPayment": true,
			})
		case errors.Is(err, service.ErrInvalidURL):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid URL format"})
		case errors.Is(err, service.ErrTargetUnreachable):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Failed to load website. Check if the URL is accessible."})
		default:
			h.logger.Error().Err(err).Str("user_id", userID).Msg("Roast failed")
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to roast the website. Please try again."})
		}
		return
	}

	writeJSON(w, http.StatusOK, dto.RoastResponseDTO{
		ScreenshotURL:  result.ScreenshotURL,
		RoastPoints:    result.Critique.RoastPoints,
		FixSuggestions: result.Critique.FixSuggestions,
		OverallScore:   result.Critique.OverallScore,
		Verdict:        result.Critique.Verdict,
	})
}
