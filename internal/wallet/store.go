// Copyright (c) 2026 GalleManga. All rights reserved.

package wallet

import (
	"context"
	"time"
)

// Repository persists packages, checkouts and the balance-changing transactions.
type Repository interface {
	ListPackages(context context.Context, includeInactive bool) ([]*CoinPackage, error)
	FindPackage(context context.Context, id string) (*CoinPackage, error)
	CreatePackage(context context.Context, pkg *CoinPackage) error
	DeactivatePackage(context context.Context, id string) error

	CreateCheckout(context context.Context, checkout *Checkout) error
	// ExpireCheckout moves a pending checkout to expired and reports whether it did.
	ExpireCheckout(context context.Context, providerSessionID string) (bool, error)
	PendingCheckouts(context context.Context, createdBefore time.Time, limit int) ([]*Checkout, error)

	// Credit records the top-up and increments the balance once per provider
	// session. credited is false when the session was already recorded.
	Credit(context context.Context, purchase *CoinPurchase) (balance int64, credited bool, err error)

	// PurchaseChapter grants the chapter and debits its price atomically.
	// alreadyOwned is true when the user held the chapter and nothing changed.
	PurchaseChapter(context context.Context, purchase *ChapterPurchase) (balance int64, alreadyOwned bool, err error)

	Balance(context context.Context, userID string) (int64, error)
	History(context context.Context, userID string) (*History, error)
}
