// Copyright (c) 2026 GalleManga. All rights reserved.

package wallet_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gallemanga/gallemanga/internal/core/chapter"
	"github.com/gallemanga/gallemanga/internal/platform/apperr"
	"github.com/gallemanga/gallemanga/internal/platform/payment"
	"github.com/gallemanga/gallemanga/internal/wallet"
	"github.com/gallemanga/gallemanga/pkg/uuid"
)

// memoryRepository mirrors the transactional guarantees of the Postgres store
// by holding one lock per balance-changing call.
type memoryRepository struct {
	mu        sync.Mutex
	packages  map[string]*wallet.CoinPackage
	checkouts map[string]*wallet.Checkout
	balances  map[string]int64
	topUps    map[string]*wallet.CoinPurchase
	entries   map[string]bool
	purchases []*wallet.ChapterPurchase
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{
		packages:  map[string]*wallet.CoinPackage{},
		checkouts: map[string]*wallet.Checkout{},
		balances:  map[string]int64{},
		topUps:    map[string]*wallet.CoinPurchase{},
		entries:   map[string]bool{},
	}
}

func (repo *memoryRepository) ListPackages(_ context.Context, includeInactive bool) ([]*wallet.CoinPackage, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	out := []*wallet.CoinPackage{}
	for _, pkg := range repo.packages {
		if pkg.Active || includeInactive {
			out = append(out, pkg)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Amount < out[j].Amount })
	return out, nil
}

func (repo *memoryRepository) FindPackage(_ context.Context, id string) (*wallet.CoinPackage, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if pkg, ok := repo.packages[id]; ok {
		return pkg, nil
	}
	return nil, apperr.NotFound("Coin package")
}

func (repo *memoryRepository) CreatePackage(_ context.Context, pkg *wallet.CoinPackage) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	repo.packages[pkg.ID] = pkg
	return nil
}

func (repo *memoryRepository) DeactivatePackage(_ context.Context, id string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	pkg, ok := repo.packages[id]
	if !ok {
		return apperr.NotFound("Coin package")
	}
	pkg.Active = false
	return nil
}

func (repo *memoryRepository) CreateCheckout(_ context.Context, checkout *wallet.Checkout) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if checkout.CreatedAt.IsZero() {
		checkout.CreatedAt = time.Now()
	}
	repo.checkouts[checkout.ProviderSessionID] = checkout
	return nil
}

func (repo *memoryRepository) ExpireCheckout(_ context.Context, id string) (bool, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	checkout, ok := repo.checkouts[id]
	if !ok || checkout.Status != wallet.CheckoutPending {
		return false, nil
	}
	checkout.Status = wallet.CheckoutExpired
	return true, nil
}

func (repo *memoryRepository) PendingCheckouts(_ context.Context, createdBefore time.Time, limit int) ([]*wallet.Checkout, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	out := []*wallet.Checkout{}
	for _, checkout := range repo.checkouts {
		if checkout.Status == wallet.CheckoutPending && checkout.CreatedAt.Before(createdBefore) && len(out) < limit {
			out = append(out, checkout)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProviderSessionID < out[j].ProviderSessionID })
	return out, nil
}

func (repo *memoryRepository) Credit(_ context.Context, purchase *wallet.CoinPurchase) (int64, bool, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if _, ok := repo.topUps[purchase.ProviderSessionID]; ok {
		return repo.balances[purchase.UserID], false, nil
	}
	repo.topUps[purchase.ProviderSessionID] = purchase
	repo.balances[purchase.UserID] += purchase.Amount
	if checkout, ok := repo.checkouts[purchase.ProviderSessionID]; ok {
		checkout.Status = wallet.CheckoutCompleted
	}
	return repo.balances[purchase.UserID], true, nil
}

func (repo *memoryRepository) PurchaseChapter(_ context.Context, purchase *wallet.ChapterPurchase) (int64, bool, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	key := purchase.UserID + "/" + purchase.ChapterID
	if repo.entries[key] {
		return repo.balances[purchase.UserID], true, nil
	}
	if repo.balances[purchase.UserID] < purchase.CoinsSpent {
		return 0, false, apperr.InsufficientFunds()
	}
	repo.entries[key] = true
	repo.balances[purchase.UserID] -= purchase.CoinsSpent
	repo.purchases = append(repo.purchases, purchase)
	return repo.balances[purchase.UserID], false, nil
}

func (repo *memoryRepository) Balance(_ context.Context, userID string) (int64, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	return repo.balances[userID], nil
}

func (repo *memoryRepository) History(_ context.Context, userID string) (*wallet.History, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	history := &wallet.History{TopUps: []*wallet.CoinPurchase{}, Chapters: []*wallet.ChapterPurchase{}}
	for _, topUp := range repo.topUps {
		if topUp.UserID == userID {
			history.TopUps = append(history.TopUps, topUp)
		}
	}
	for _, purchase := range repo.purchases {
		if purchase.UserID == userID {
			history.Chapters = append(history.Chapters, purchase)
		}
	}
	return history, nil
}

// fakeProvider stands in for the hosted checkout.
type fakeProvider struct {
	mu       sync.Mutex
	sessions map[string]*payment.CheckoutSession
	requests []payment.CheckoutRequest
	failGet  error
	counter  int
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{sessions: map[string]*payment.CheckoutSession{}}
}

func (provider *fakeProvider) CreateCheckout(_ context.Context, request payment.CheckoutRequest) (*payment.CheckoutSession, error) {
	provider.mu.Lock()
	defer provider.mu.Unlock()
	provider.counter++
	id := fmt.Sprintf("cs_test_%d", provider.counter)
	session := &payment.CheckoutSession{
		ID:     id,
		URL:    "https://checkout.example/" + id,
		Status: payment.StatusOpen,
		Metadata: map[string]string{
			payment.MetaUserID:    request.UserID,
			payment.MetaPackageID: request.PackageID,
			payment.MetaAmount:    fmt.Sprint(request.Coins),
		},
	}
	provider.sessions[id] = session
	provider.requests = append(provider.requests, request)
	return session, nil
}

func (provider *fakeProvider) GetCheckout(_ context.Context, id string) (*payment.CheckoutSession, error) {
	provider.mu.Lock()
	defer provider.mu.Unlock()
	if provider.failGet != nil {
		return nil, provider.failGet
	}
	session, ok := provider.sessions[id]
	if !ok {
		return nil, payment.ErrSessionNotFound
	}
	clone := *session
	return &clone, nil
}

func (provider *fakeProvider) pay(id string) {
	provider.mu.Lock()
	defer provider.mu.Unlock()
	provider.sessions[id].Status = payment.StatusComplete
	provider.sessions[id].Paid = true
}

func (provider *fakeProvider) expire(id string) {
	provider.mu.Lock()
	defer provider.mu.Unlock()
	provider.sessions[id].Status = payment.StatusExpired
}

type chapterMap map[string]*chapter.Chapter

func (chapters chapterMap) FindByID(_ context.Context, id string) (*chapter.Chapter, error) {
	if c, ok := chapters[id]; ok {
		return c, nil
	}
	return nil, apperr.NotFound("Chapter")
}

type fixture struct {
	repo     *memoryRepository
	provider *fakeProvider
	chapters chapterMap
	service  *wallet.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := newMemoryRepository()
	provider := newFakeProvider()
	chapters := chapterMap{}
	logger := discardLogger()

	return &fixture{
		repo:     repo,
		provider: provider,
		chapters: chapters,
		service: wallet.NewService(repo, chapters, provider, wallet.Options{
			PublicBaseURL:   "https://galle.example/",
			Currency:        "usd",
			ReconcileMinAge: 10 * time.Minute,
		}, logger),
	}
}

func (f *fixture) addChapter(price int64, published bool) *chapter.Chapter {
	c := &chapter.Chapter{
		ID: uuid.New(), MangaID: uuid.New(), ChapterNumber: len(f.chapters) + 1,
		Price: price, Published: published, FileURL: "/uploads/chapter/" + uuid.New() + ".pdf", PageCount: 12,
	}
	f.chapters[c.ID] = c
	return c
}

func (f *fixture) addPackage(amount int64, price string) *wallet.CoinPackage {
	pkg := &wallet.CoinPackage{
		ID: uuid.New(), Amount: amount, Price: decimal.RequireFromString(price), Currency: "usd", Active: true,
	}
	f.repo.packages[pkg.ID] = pkg
	return pkg
}

var errProviderDown = errors.New("provider down")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
