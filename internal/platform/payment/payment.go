// Copyright (c) 2026 GalleManga. All rights reserved.

/*
Package payment wraps the hosted-checkout provider used for GalleCoin top-ups.

The wallet only sees the [Provider] interface: it creates a checkout for a coin
package and later re-fetches it by its opaque ID to learn whether it was paid.
Confirmation is always pulled from the provider, never trusted from the browser.
*/
package payment

import (
	"context"
	"errors"
)

// Metadata keys attached to every checkout and read back on confirmation.
const (
	MetaUserID    = "userId"
	MetaPackageID = "packageId"
	MetaAmount    = "amount"
)

// ErrSessionNotFound is returned when the provider does not know a session ID.
var ErrSessionNotFound = errors.New("payment: checkout session not found")

// CheckoutRequest describes a one-off purchase of a coin package.
type CheckoutRequest struct {
	UserID      string
	PackageID   string
	Coins       int64
	UnitAmount  int64 // minor currency units (cents)
	Currency    string
	ProductName string
	SuccessURL  string
	CancelURL   string
}

// Status is the provider-side state of a checkout.
type Status string

const (
	StatusOpen     Status = "open"
	StatusComplete Status = "complete"
	StatusExpired  Status = "expired"
)

// CheckoutSession is the provider's view of a checkout.
type CheckoutSession struct {
	ID       string
	URL      string
	Status   Status
	Paid     bool
	Metadata map[string]string
}

// Settled reports whether the buyer completed payment.
func (session *CheckoutSession) Settled() bool {
	return session.Paid && session.Status == StatusComplete
}

// Provider creates and inspects hosted checkouts.
type Provider interface {
	CreateCheckout(ctx context.Context, request CheckoutRequest) (*CheckoutSession, error)
	GetCheckout(ctx context.Context, sessionID string) (*CheckoutSession, error)
}
