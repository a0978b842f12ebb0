package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"app/internal/api/v1/dto"
	"app/internal/catalog"
	"app/internal/middleware"
	"app/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// BillingHandler handles checkout, purchase verification, and the payment webhook.
type BillingHandler struct {
	stripeSvc *service.StripeService
	validate  *validator.Validate
	logger    zerolog.Logger
}

// NewBillingHandler creates a new BillingHandler.
func NewBillingHandler(stripeSvc *service.StripeService, v *validator.Validate, logger zerolog.Logger) *BillingHandler {
	return &BillingHandler{stripeSvc: stripeSvc, validate: v, logger: logger}
}

// RegisterRoutes mounts v1 billing routes. The webhook route carries no auth
// middleware; its trust mechanism is the Stripe signature.
func (h *BillingHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("/billing/checkout", authMw(http.HandlerFunc(h.checkout)))
	mux.Handle("/billing/verify", authMw(http.HandlerFunc(h.verify)))
	mux.Handle("/billing/webhook", http.HandlerFunc(h.stripeSvc.HandleWebhook))
}

// checkout godoc
// @Summary Start a checkout for a roast package
// @Description Creates a Stripe Checkout session and returns its URL.
// @Tags billing
// @Accept json
// @Produce json
// @Param checkout body dto.CheckoutRequestDTO true "Checkout request"
// @Success 200 {object} dto.CheckoutResponseDTO
// @Failure 400 {string} string "invalid package selected"
// @Router /billing/checkout [post]
func (h *BillingHandler) checkout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req dto.CheckoutRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request payload", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		http.Error(w, "packageId is required", http.StatusBadRequest)
		return
	}

	url, err := h.stripeSvc.CreateCheckoutSession(r.Context(), userID, middleware.Email(r.Context()), req.PackageID)
	if err != nil {
		if errors.Is(err, catalog.ErrUnknownPackage) {
			http.Error(w, "invalid package selected", http.StatusBadRequest)
			return
		}
		h.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to create checkout session")
		http.Error(w, "failed to create checkout session", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, dto.CheckoutResponseDTO{URL: url})
}

// verify godoc
// @Summary Verify a completed checkout session
// @Description Confirms payment with Stripe and applies the purchased roasts exactly once.
// @Tags billing
// @Accept json
// @Produce json
// @Param verify body dto.VerifyRequestDTO true "Verify request"
// @Success 200 {object} dto.VerifyResponseDTO
// @Failure 400 {string} string "payment not completed"
// @Failure 403 {string} string "session does not belong to this user"
// @Router /billing/verify [post]
func (h *BillingHandler) verify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req dto.VerifyRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request payload", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		http.Error(w, "sessionId is required", http.StatusBadRequest)
		return
	}

	ent, alreadyProcessed, err := h.stripeSvc.VerifySession(r.Context(), userID, req.SessionID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPaymentIncomplete):
			http.Error(w, "payment not completed", http.StatusBadRequest)
		case errors.Is(err, service.ErrOwnershipMismatch):
			http.Error(w, "session does not belong to this user", http.StatusForbidden)
		default:
			h.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to verify session")
			http.Error(w, "failed to verify session", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, dto.VerifyResponseDTO{
		Success:          true,
		AlreadyProcessed: alreadyProcessed,
		RoastsRemaining:  ent.RoastsRemaining,
		IsPremium:        ent.IsPremium,
	})
}
