// Copyright (c) 2026 GalleManga. All rights reserved.

/*
Package wallet owns the GalleCoin balance and every path that changes it.

Balance changes happen only inside single database transactions:

  - A top-up inserts a coin purchase keyed by the provider's checkout session
    ID and increments the balance in the same transaction, so a replayed
    confirmation credits nothing.
  - A chapter purchase inserts the library entry first, debits with a
    conditional UPDATE that never lets the balance go negative, and records
    the purchase. Any failure rolls all three back.
*/
package wallet

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gallemanga/gallemanga/internal/core/chapter"
)

// # Coin Packages

// CoinPackage is a purchasable bundle of GalleCoins priced in fiat.
type CoinPackage struct {
	ID          string          `json:"id"`
	Amount      int64           `json:"amount"`
	Price       decimal.Decimal `json:"price"`
	Currency    string          `json:"currency"`
	Description string          `json:"description"`
	Active      bool            `json:"active"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// MinorUnits converts the fiat price to the provider's smallest currency unit.
func (pkg *CoinPackage) MinorUnits() int64 {
	return pkg.Price.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// # Checkouts

// CheckoutStatus is the local state of a hosted checkout.
type CheckoutStatus string

const (
	CheckoutPending   CheckoutStatus = "pending"
	CheckoutCompleted CheckoutStatus = "completed"
	CheckoutExpired   CheckoutStatus = "expired"
)

// Checkout tracks a provider session between creation and confirmation.
type Checkout struct {
	ProviderSessionID string         `json:"sessionId"`
	UserID            string         `json:"userId"`
	PackageID         string         `json:"packageId"`
	Amount            int64          `json:"amount"`
	Status            CheckoutStatus `json:"status"`
	CreatedAt         time.Time      `json:"createdAt"`
	UpdatedAt         time.Time      `json:"updatedAt"`
}

// CheckoutLink is returned to the browser to start the hosted payment page.
type CheckoutLink struct {
	URL       string `json:"url"`
	SessionID string `json:"sessionId"`
}

// # Purchase Records

// CoinPurchase records one credited top-up.
type CoinPurchase struct {
	ID                string    `json:"id"`
	UserID            string    `json:"userId"`
	PackageID         string    `json:"packageId,omitempty"`
	Amount            int64     `json:"amount"`
	ProviderSessionID string    `json:"providerSessionId"`
	CreatedAt         time.Time `json:"createdAt"`
}

// ChapterPurchase records one chapter bought with GalleCoins.
type ChapterPurchase struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	MangaID    string    `json:"mangaId,omitempty"`
	ChapterID  string    `json:"chapterId,omitempty"`
	CoinsSpent int64     `json:"coinsSpent"`
	CreatedAt  time.Time `json:"createdAt"`
}

// History lists a user's top-ups and chapter purchases, newest first.
type History struct {
	TopUps   []*CoinPurchase    `json:"topUps"`
	Chapters []*ChapterPurchase `json:"chapters"`
}

// # Results

// CreditResult is the outcome of confirming a top-up.
type CreditResult struct {
	NewBalance      int64 `json:"newBalance"`
	Credited        int64 `json:"credited"`
	AlreadyCredited bool  `json:"alreadyCredited"`
}

// PurchaseResult is the outcome of a chapter checkout.
type PurchaseResult struct {
	Success      bool   `json:"success"`
	NewBalance   int64  `json:"newBalance"`
	FileURL      string `json:"fileUrl"`
	AlreadyOwned bool   `json:"alreadyOwned"`
}

// ReconcileReport summarizes one pass over pending checkouts.
type ReconcileReport struct {
	Scanned  int
	Credited int
	Expired  int
	Failed   int
}

// # Collaborators

// ChapterFinder loads the chapter being bought.
type ChapterFinder interface {
	FindByID(context context.Context, id string) (*chapter.Chapter, error)
}

// # Constants

const (
	FieldPackageID   = "packageId"
	FieldChapterID   = "chapterId"
	FieldAmount      = "amount"
	FieldPrice       = "price"
	FieldCurrency    = "currency"
	FieldDescription = "description"
	FieldSessionID   = "session_id"
)

const (
	MsgChapterFree       = "Chapter is free"
	MsgPaymentIncomplete = "Payment has not been completed"
	MsgCheckoutCancelled = "Checkout cancelled, no GalleCoins were charged"
	MsgInvalidMetadata   = "Checkout session is missing purchase details"

	// MaxReconcileBatch bounds the provider calls of one reconcile pass.
	MaxReconcileBatch = 100
	MaxDescription    = 255
)
