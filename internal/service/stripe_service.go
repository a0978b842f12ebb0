package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"app/internal/catalog"
	"app/internal/config"
	"app/internal/model"
	"app/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v82"
	checkoutsession "github.com/stripe/stripe-go/v82/checkout/session"
	customerpkg "github.com/stripe/stripe-go/v82/customer"
	"github.com/stripe/stripe-go/v82/webhook"
)

const webhookBodyLimit = 1024 * 1024 // 1 MiB

var (
	// ErrPaymentIncomplete is returned when a verified session has not been paid.
	ErrPaymentIncomplete = errors.New("payment_incomplete")
	// ErrOwnershipMismatch is returned when a session's metadata names a
	// different user than the caller.
	ErrOwnershipMismatch = errors.New("ownership_mismatch")
)

// StripeService manages Stripe integration: checkout sessions, customer
// linkage, and both purchase confirmation paths.
type StripeService struct {
	cfg          *config.Config
	entitlements repository.EntitlementRepository
	reconciler   Reconciler
	logger       zerolog.Logger
}

// NewStripeService initializes the Stripe key and returns the service with a scoped logger.
func NewStripeService(cfg *config.Config, entitlements repository.EntitlementRepository, reconciler Reconciler, logger zerolog.Logger) *StripeService {
	stripe.Key = cfg.StripeSecretKey
	lg := logger.With().Str("service", "StripeService").Logger()
	return &StripeService{cfg: cfg, entitlements: entitlements, reconciler: reconciler, logger: lg}
}

func (s *StripeService) priceIDFor(packageID string) (string, error) {
	if _, err := catalog.ByID(packageID); err != nil {
		return "", err
	}
	switch packageID {
	case "starter":
		return s.cfg.StripePriceStarter, nil
	case "pro":
		return s.cfg.StripePricePro, nil
	case "unlimited":
		return s.cfg.StripePriceUnlimited, nil
	default:
		return "", catalog.ErrUnknownPackage
	}
}

// getOrCreateCustomer ensures a Stripe customer exists for the user and that
// the linkage is persisted. Creation happens at most once per user; later
// checkouts reuse the stored id.
func (s *StripeService) getOrCreateCustomer(ctx context.Context, ent *model.Entitlement) (string, error) {
	if ent.StripeCustomerID != nil && *ent.StripeCustomerID != "" {
		return *ent.StripeCustomerID, nil
	}
	params := &stripe.CustomerParams{
		Email:    stripe.String(ent.Email),
		Metadata: map[string]string{"user_id": ent.UserID},
	}
	params.Context = ctx
	cust, err := customerpkg.New(params)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", ent.UserID).Msg("Failed to create Stripe customer")
		return "", fmt.Errorf("create stripe customer: %w", err)
	}
	if err := s.entitlements.SetStripeCustomerID(ctx, ent.UserID, cust.ID); err != nil {
		s.logger.Error().Err(err).Str("user_id", ent.UserID).Msg("Failed to store stripe customer id")
		return "", err
	}
	return cust.ID, nil
}

// CreateCheckoutSession builds a payment-mode Checkout session for a catalog
// package. The session metadata carries user_id, package_id, and roasts so the
// confirmation paths are self-describing.
func (s *StripeService) CreateCheckoutSession(ctx context.Context, userID, email, packageID string) (string, error) {
	pkg, err := catalog.ByID(packageID)
	if err != nil {
		return "", err
	}
	priceID, err := s.priceIDFor(packageID)
	if err != nil {
		return "", err
	}

	ent, err := s.entitlements.Get(ctx, userID, email)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to fetch profile for checkout session")
		return "", err
	}
	customerID, err := s.getOrCreateCustomer(ctx, ent)
	if err != nil {
		return "", err
	}

	sessParams := &stripe.CheckoutSessionParams{
		Customer:           stripe.String(customerID),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems:          []*stripe.CheckoutSessionLineItemParams{{Price: stripe.String(priceID), Quantity: stripe.Int64(1)}},
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:         stripe.String(s.cfg.SiteURL + "?success=true&session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:          stripe.String(s.cfg.SiteURL + "?canceled=true"),
		Metadata: map[string]string{
			"user_id":    userID,
			"package_id": pkg.ID,
			"roasts":     strconv.Itoa(pkg.Roasts),
		},
	}
	sessParams.Context = ctx
	sess, err := checkoutsession.New(sessParams)
	if err != nil {
		s.logger.Error().Err(err).Str("package_id", packageID).Msg("Failed to create Stripe checkout session")
		return "", fmt.Errorf("create checkout session: %w", err)
	}
	return sess.URL, nil
}

// VerifySession is the synchronous confirmation path: the client supplies a
// session id after returning from checkout. The authoritative status comes from
// Stripe, the ownership check ties the session to the caller, and the grant
// itself goes through the reconciler so a racing webhook cannot double-apply.
func (s *StripeService) VerifySession(ctx context.Context, userID, sessionID string) (*model.Entitlement, bool, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	sess, err := checkoutsession.Get(sessionID, params)
	if err != nil {
		s.logger.Error().Err(err).Str("session_id", sessionID).Msg("Failed to retrieve checkout session")
		return nil, false, fmt.Errorf("retrieve checkout session: %w", err)
	}
	if sess.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		return nil, false, ErrPaymentIncomplete
	}
	if sess.Metadata["user_id"] != userID {
		s.logger.Warn().Str("session_id", sessionID).Str("caller", userID).Msg("Session ownership mismatch")
		return nil, false, ErrOwnershipMismatch
	}

	confirmed := confirmedFromMetadata(sess.ID, sess.Metadata, sess.AmountTotal)
	confirmed.Email = sess.CustomerEmail
	return s.reconciler.Apply(ctx, confirmed)
}

// HandleWebhook is the asynchronous confirmation path. The signature check is
// the trust boundary: no payload field is read before it passes.
func (s *StripeService) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, webhookBodyLimit)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to read Stripe webhook payload")
		http.Error(w, "failed to read payload", http.StatusBadRequest)
		return
	}
	sig := r.Header.Get("Stripe-Signature")
	if strings.TrimSpace(sig) == "" {
		http.Error(w, "missing Stripe signature", http.StatusBadRequest)
		return
	}
	// Stripe pins the event's api_version to the account's dashboard setting,
	// which drifts from the SDK's pinned version. Signature validity is what
	// matters here.
	event, err := webhook.ConstructEventWithOptions(payload, sig, s.cfg.StripeWebhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("Signature verification failed for Stripe webhook")
		http.Error(w, "signature verification failed", http.StatusBadRequest)
		return
	}
	s.logger.Info().Str("event_type", string(event.Type)).Msg("Stripe webhook received")

	ctx := r.Context()
	switch event.Type {
	case "checkout.session.completed":
		var cs stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
			s.logger.Error().Err(err).Msg("Invalid checkout.session data")
			http.Error(w, "invalid checkout.session data", http.StatusBadRequest)
			return
		}
		userID := cs.Metadata["user_id"]
		if userID == "" {
			s.logger.Error().Str("session_id", cs.ID).Msg("Missing user_id in checkout session metadata")
			http.Error(w, "missing user_id in metadata", http.StatusBadRequest)
			return
		}

		confirmed := confirmedFromMetadata(cs.ID, cs.Metadata, cs.AmountTotal)
		confirmed.Email = cs.CustomerEmail
		if _, _, err := s.reconciler.Apply(ctx, confirmed); err != nil {
			// 500 makes Stripe redeliver; the ledger makes redelivery safe.
			s.logger.Error().Err(err).Str("session_id", cs.ID).Msg("Failed to apply purchase from webhook")
			http.Error(w, "failed to apply purchase", http.StatusInternalServerError)
			return
		}
	default:
		s.logger.Warn().Str("event_type", string(event.Type)).Msg("Unhandled Stripe webhook event")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]bool{"received": true})
}

func confirmedFromMetadata(sessionID string, metadata map[string]string, amountTotal int64) ConfirmedPurchase {
	roasts, err := strconv.Atoi(metadata["roasts"])
	if err != nil {
		roasts = 0
	}
	return ConfirmedPurchase{
		SessionID:   sessionID,
		UserID:      metadata["user_id"],
		PackageID:   metadata["package_id"],
		Roasts:      roasts,
		AmountTotal: amountTotal,
	}
}
