package handler

import (
	"net/http"

	"app/internal/api/v1/dto"
	"app/internal/middleware"
	"app/internal/service"

	"github.com/rs/zerolog"
)

// UserHandler exposes the authenticated user's entitlement.
type UserHandler struct {
	entitlementSvc service.EntitlementService
	logger         zerolog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(entitlementSvc service.EntitlementService, logger zerolog.Logger) *UserHandler {
	return &UserHandler{entitlementSvc: entitlementSvc, logger: logger}
}

// RegisterRoutes mounts v1 user routes.
func (h *UserHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("/users/me", authMw(http.HandlerFunc(h.me)))
}

// me godoc
// @Summary Current user's roast entitlement
// @Tags users
// @Produce json
// @Success 200 {object} dto.MeResponseDTO
// @Router /users/me [get]
func (h *UserHandler) me(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	ent, err := h.entitlementSvc.Get(r.Context(), userID, middleware.Email(r.Context()))
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to fetch entitlement")
		http.Error(w, "failed to fetch profile", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, dto.MeResponseDTO{
		UserID:          ent.UserID,
		Email:           ent.Email,
		RoastsRemaining: ent.RoastsRemaining,
		IsPremium:       ent.IsPremium,
	})
}
