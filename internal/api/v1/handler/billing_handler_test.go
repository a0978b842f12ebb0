package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"app/internal/config"
	"app/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

func newBillingHandler() *BillingHandler {
	cfg := &config.Config{
		StripeSecretKey:     "sk_test_123",
		StripeWebhookSecret: "whsec_test_123",
		SiteURL:             "https://roast.example.test",
	}
	// Billing tests stop at validation and catalog lookups, before any
	// Stripe API call.
	svc := service.NewStripeService(cfg, nil, nil, zerolog.Nop())
	return NewBillingHandler(svc, validator.New(validator.WithRequiredStructEnabled()), zerolog.Nop())
}

func TestCheckoutUnknownPackage(t *testing.T) {
	h := newBillingHandler()

	rr := httptest.NewRecorder()
	h.checkout(rr, authedRequest(http.MethodPost, "/billing/checkout", `{"packageId":"mega"}`))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestCheckoutValidation(t *testing.T) {
	h := newBillingHandler()

	rr := httptest.NewRecorder()
	h.checkout(rr, authedRequest(http.MethodPost, "/billing/checkout", `{}`))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("missing packageId: status = %d, want 400", rr.Code)
	}

	rr = httptest.NewRecorder()
	h.checkout(rr, authedRequest(http.MethodPost, "/billing/checkout", `not json`))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("bad json: status = %d, want 400", rr.Code)
	}
}

func TestCheckoutUnauthenticated(t *testing.T) {
	h := newBillingHandler()

	rr := httptest.NewRecorder()
	h.checkout(rr, httptest.NewRequest(http.MethodPost, "/billing/checkout", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rr.Code)
	}
}

func TestVerifyValidation(t *testing.T) {
	h := newBillingHandler()

	rr := httptest.NewRecorder()
	h.verify(rr, authedRequest(http.MethodPost, "/billing/verify", `{}`))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("missing sessionId: status = %d, want 400", rr.Code)
	}
}

func TestVerifyUnauthenticated(t *testing.T) {
	h := newBillingHandler()

	rr := httptest.NewRecorder()
	h.verify(rr, httptest.NewRequest(http.MethodPost, "/billing/verify", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rr.Code)
	}
}
