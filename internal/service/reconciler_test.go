package service

import (
	"context"
	"sync"
	"testing"

	"app/internal/catalog"
	"app/internal/model"

	"github.com/rs/zerolog"
)

func newTestReconciler(ents *fakeEntitlementRepo, purchases *fakePurchaseRepo) Reconciler {
	return NewReconciler(ents, purchases, zerolog.Nop())
}

func starterPurchase(sessionID string) ConfirmedPurchase {
	return ConfirmedPurchase{
		SessionID:   sessionID,
		UserID:      "user-1",
		Email:       "user@example.com",
		PackageID:   "starter",
		Roasts:      5,
		AmountTotal: 500,
	}
}

func TestApplyGrantsOnce(t *testing.T) {
	ents := newFakeEntitlementRepo()
	purchases := newFakePurchaseRepo()
	rec := newTestReconciler(ents, purchases)
	ctx := context.Background()

	ent, already, err := rec.Apply(ctx, starterPurchase("sess_1"))
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if already {
		t.Fatal("first delivery reported alreadyProcessed")
	}
	if got, want := ent.RoastsRemaining, 6; got != want {
		t.Fatalf("roasts after first grant = %d, want %d (1 free + 5 purchased)", got, want)
	}

	// Same session again, sequentially: the balance must not move.
	ent, already, err = rec.Apply(ctx, starterPurchase("sess_1"))
	if err != nil {
		t.Fatalf("Apply (duplicate): %v", err)
	}
	if !already {
		t.Fatal("duplicate delivery not reported as alreadyProcessed")
	}
	if got, want := ent.RoastsRemaining, 6; got != want {
		t.Fatalf("roasts after duplicate = %d, want %d", got, want)
	}
	if purchases.count() != 1 {
		t.Fatalf("ledger entries = %d, want 1", purchases.count())
	}
}

func TestApplyConcurrentDeliveries(t *testing.T) {
	// The verify path and the webhook path race for the same session. However
	// the interleaving lands, exactly one delivery may win.
	ents := newFakeEntitlementRepo()
	purchases := newFakePurchaseRepo()
	rec := newTestReconciler(ents, purchases)

	const deliveries = 32
	var wg sync.WaitGroup
	applied := make(chan bool, deliveries)
	for i := 0; i < deliveries; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, already, err := rec.Apply(context.Background(), starterPurchase("sess_race"))
			if err != nil {
				t.Errorf("Apply: %v", err)
				return
			}
			applied <- !already
		}()
	}
	wg.Wait()
	close(applied)

	wins := 0
	for won := range applied {
		if won {
			wins++
		}
	}
	if wins != 1 {
		t.Fatalf("grant applied %d times, want exactly 1", wins)
	}
	if purchases.count() != 1 {
		t.Fatalf("ledger entries = %d, want 1", purchases.count())
	}
	ent, _ := ents.Get(context.Background(), "user-1", "")
	if got, want := ent.RoastsRemaining, 6; got != want {
		t.Fatalf("final roasts = %d, want %d", got, want)
	}
}

func TestApplyDistinctSessionsAccumulate(t *testing.T) {
	ents := newFakeEntitlementRepo()
	rec := newTestReconciler(ents, newFakePurchaseRepo())
	ctx := context.Background()

	if _, _, err := rec.Apply(ctx, starterPurchase("sess_a")); err != nil {
		t.Fatalf("Apply sess_a: %v", err)
	}
	ent, already, err := rec.Apply(ctx, starterPurchase("sess_b"))
	if err != nil {
		t.Fatalf("Apply sess_b: %v", err)
	}
	if already {
		t.Fatal("distinct session reported as alreadyProcessed")
	}
	if got, want := ent.RoastsRemaining, 11; got != want {
		t.Fatalf("roasts after two packs = %d, want %d", got, want)
	}
}

func TestApplyUnlimitedPackage(t *testing.T) {
	ents := newFakeEntitlementRepo()
	rec := newTestReconciler(ents, newFakePurchaseRepo())
	ctx := context.Background()

	ent, _, err := rec.Apply(ctx, ConfirmedPurchase{
		SessionID: "sess_unl",
		UserID:    "user-1",
		PackageID: "unlimited",
		Roasts:    catalog.UnlimitedRoasts,
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !ent.IsPremium {
		t.Fatal("unlimited purchase did not set premium")
	}
	if ent.RoastsRemaining != model.UnlimitedDisplayBalance {
		t.Fatalf("display balance = %d, want %d", ent.RoastsRemaining, model.UnlimitedDisplayBalance)
	}

	// Premium never runs out and is never revoked by grants or decrements.
	for i := 0; i < 1000; i++ {
		if _, err := ents.Decrement(ctx, "user-1", ""); err != nil {
			t.Fatalf("decrement %d failed for premium user: %v", i, err)
		}
	}
	ent, _ = ents.Get(ctx, "user-1", "")
	if !ent.IsPremium || ent.RoastsRemaining != model.UnlimitedDisplayBalance {
		t.Fatalf("premium state drifted: premium=%v balance=%d", ent.IsPremium, ent.RoastsRemaining)
	}
}

func TestApplyWebhookThenVerifyScenario(t *testing.T) {
	// Webhook lands first with 5 roasts for a user at zero; the client's verify
	// call for the same session must see the same balance and alreadyProcessed.
	ents := newFakeEntitlementRepo()
	ents.profiles["user-1"] = &model.Entitlement{UserID: "user-1", RoastsRemaining: 0}
	rec := newTestReconciler(ents, newFakePurchaseRepo())
	ctx := context.Background()

	ent, already, err := rec.Apply(ctx, starterPurchase("sess_1"))
	if err != nil {
		t.Fatalf("webhook Apply: %v", err)
	}
	if already || ent.RoastsRemaining != 5 {
		t.Fatalf("after webhook: already=%v roasts=%d, want false/5", already, ent.RoastsRemaining)
	}

	ent, already, err = rec.Apply(ctx, starterPurchase("sess_1"))
	if err != nil {
		t.Fatalf("verify Apply: %v", err)
	}
	if !already || ent.RoastsRemaining != 5 {
		t.Fatalf("after verify: already=%v roasts=%d, want true/5", already, ent.RoastsRemaining)
	}
}

func TestApplySurfacesGrantFailure(t *testing.T) {
	// A grant failure after the ledger insert must bubble up, not be retried
	// with a fresh read: the ledger row marks the session for manual review.
	ents := newFakeEntitlementRepo()
	ents.grantErr = errFakeBackend
	purchases := newFakePurchaseRepo()
	rec := newTestReconciler(ents, purchases)

	_, _, err := rec.Apply(context.Background(), starterPurchase("sess_1"))
	if err == nil {
		t.Fatal("expected grant failure to surface")
	}
	if purchases.count() != 1 {
		t.Fatalf("ledger entries = %d, want 1 (ledger precedes grant)", purchases.count())
	}
}
