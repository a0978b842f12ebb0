package service

import (
	"context"
	"errors"
	"sync"

	"app/internal/model"
	"app/internal/repository"
)

// fakeEntitlementRepo mirrors the repository's atomic semantics in memory so
// service tests can interleave operations from many goroutines.
type fakeEntitlementRepo struct {
	mu       sync.Mutex
	profiles map[string]*model.Entitlement
	grantErr error
}

func newFakeEntitlementRepo() *fakeEntitlementRepo {
	return &fakeEntitlementRepo{profiles: make(map[string]*model.Entitlement)}
}

func (f *fakeEntitlementRepo) ensureLocked(userID, email string) *model.Entitlement {
	if e, ok := f.profiles[userID]; ok {
		return e
	}
	e := &model.Entitlement{UserID: userID, Email: email, RoastsRemaining: 1}
	f.profiles[userID] = e
	return e
}

func (f *fakeEntitlementRepo) snapshot(e *model.Entitlement) *model.Entitlement {
	cp := *e
	return &cp
}

func (f *fakeEntitlementRepo) Get(_ context.Context, userID, email string) (*model.Entitlement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshot(f.ensureLocked(userID, email)), nil
}

func (f *fakeEntitlementRepo) Grant(_ context.Context, userID, email string, roasts int) (*model.Entitlement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.grantErr != nil {
		return nil, f.grantErr
	}
	e := f.ensureLocked(userID, email)
	e.RoastsRemaining += roasts
	return f.snapshot(e), nil
}

func (f *fakeEntitlementRepo) SetUnlimited(_ context.Context, userID, email string) (*model.Entitlement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.grantErr != nil {
		return nil, f.grantErr
	}
	e := f.ensureLocked(userID, email)
	e.IsPremium = true
	e.RoastsRemaining = model.UnlimitedDisplayBalance
	return f.snapshot(e), nil
}

func (f *fakeEntitlementRepo) Decrement(_ context.Context, userID, email string) (*model.Entitlement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e := f.ensureLocked(userID, email)
	if e.IsPremium {
		return f.snapshot(e), nil
	}
	if e.RoastsRemaining <= 0 {
		return nil, repository.ErrInsufficientRoasts
	}
	e.RoastsRemaining--
	return f.snapshot(e), nil
}

func (f *fakeEntitlementRepo) SetStripeCustomerID(_ context.Context, userID, customerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e, ok := f.profiles[userID]; ok && e.StripeCustomerID == nil {
		e.StripeCustomerID = &customerID
	}
	return nil
}

// fakePurchaseRepo is an in-memory ledger with the same insert-if-absent
// atomicity as the unique index it stands in for.
type fakePurchaseRepo struct {
	mu      sync.Mutex
	entries map[string]*model.Purchase
}

func newFakePurchaseRepo() *fakePurchaseRepo {
	return &fakePurchaseRepo{entries: make(map[string]*model.Purchase)}
}

func (f *fakePurchaseRepo) InsertIfAbsent(_ context.Context, p *model.Purchase) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.entries[p.StripeSessionID]; ok {
		return false, nil
	}
	cp := *p
	f.entries[p.StripeSessionID] = &cp
	return true, nil
}

func (f *fakePurchaseRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}

// Roast pipeline fakes.

type fakeCapture struct {
	png   []byte
	err   error
	calls int
}

func (f *fakeCapture) Capture(context.Context, string) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.png, nil
}

type fakeCritique struct {
	critique model.Critique
	err      error
	calls    int
}

func (f *fakeCritique) Critique(context.Context, []byte) (model.Critique, error) {
	f.calls++
	if f.err != nil {
		return model.Critique{}, f.err
	}
	return f.critique, nil
}

type fakeScreenshotStore struct {
	url string
	err error
}

func (f *fakeScreenshotStore) Save(context.Context, string, []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}

type fakeRoastRepo struct {
	mu     sync.Mutex
	roasts []*model.Roast
}

func (f *fakeRoastRepo) Insert(_ context.Context, roast *model.Roast) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.roasts = append(f.roasts, roast)
	return nil
}

var errFakeBackend = errors.New("backend unavailable")
