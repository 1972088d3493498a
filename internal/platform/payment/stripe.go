// Copyright (c) 2026 GalleManga. All rights reserved.

package payment

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
)

// StripeProvider implements [Provider] with Stripe Checkout.
type StripeProvider struct {
	client *session.Client
}

// NewStripeProvider creates a provider bound to a secret key.
func NewStripeProvider(secretKey string) *StripeProvider {
	return NewStripeProviderWithBackend(secretKey, stripe.GetBackend(stripe.APIBackend))
}

// NewStripeProviderWithBackend creates a provider that talks to a specific backend.
func NewStripeProviderWithBackend(secretKey string, backend stripe.Backend) *StripeProvider {
	return &StripeProvider{client: &session.Client{B: backend, Key: secretKey}}
}

/*
CreateCheckout opens a hosted payment-mode checkout for one coin package.

The user, package and coin amount travel as metadata so the confirmation step
can credit the wallet from the provider's own record.
*/
func (provider *StripeProvider) CreateCheckout(ctx context.Context, request CheckoutRequest) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(request.SuccessURL),
		CancelURL:         stripe.String(request.CancelURL),
		ClientReferenceID: stripe.String(request.UserID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(request.Currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(request.ProductName),
					},
					UnitAmount: stripe.Int64(request.UnitAmount),
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.Context = ctx
	params.AddMetadata(MetaUserID, request.UserID)
	params.AddMetadata(MetaPackageID, request.PackageID)
	params.AddMetadata(MetaAmount, strconv.FormatInt(request.Coins, 10))

	created, err := provider.client.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe_checkout_create_failed: %w", err)
	}

	return fromStripe(created), nil
}

// GetCheckout re-fetches a checkout by its opaque ID.
func (provider *StripeProvider) GetCheckout(ctx context.Context, sessionID string) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	fetched, err := provider.client.Get(sessionID, params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.HTTPStatusCode == http.StatusNotFound {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("stripe_checkout_get_failed: %w", err)
	}

	return fromStripe(fetched), nil
}

func fromStripe(checkout *stripe.CheckoutSession) *CheckoutSession {
	status := StatusOpen
	switch checkout.Status {
	case stripe.CheckoutSessionStatusComplete:
		status = StatusComplete
	case stripe.CheckoutSessionStatusExpired:
		status = StatusExpired
	}

	return &CheckoutSession{
		ID:       checkout.ID,
		URL:      checkout.URL,
		Status:   status,
		Paid:     checkout.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
		Metadata: checkout.Metadata,
	}
}
