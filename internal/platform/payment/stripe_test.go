// Copyright (c) 2026 GalleManga. All rights reserved.

package payment_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"

	"github.com/gallemanga/gallemanga/internal/platform/payment"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *payment.StripeProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(server.URL),
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelNull},
	})
	return payment.NewStripeProviderWithBackend("sk_test_123", backend)
}

/*
TestStripeProvider_CreateCheckout verifies the form posted to the provider.
*/
func TestStripeProvider_CreateCheckout(t *testing.T) {
	provider := newTestProvider(t, func(writer http.ResponseWriter, request *http.Request) {
		require.Equal(t, http.MethodPost, request.Method)
		require.Equal(t, "/v1/checkout/sessions", request.URL.Path)
		require.NoError(t, request.ParseForm())

		assert.Equal(t, "payment", request.PostForm.Get("mode"))
		assert.Equal(t, "user-1", request.PostForm.Get("metadata[userId]"))
		assert.Equal(t, "pkg-1", request.PostForm.Get("metadata[packageId]"))
		assert.Equal(t, "500", request.PostForm.Get("metadata[amount]"))
		assert.Equal(t, "499", request.PostForm.Get("line_items[0][price_data][unit_amount]"))
		assert.True(t, strings.Contains(request.PostForm.Get("success_url"), "{CHECKOUT_SESSION_ID}"))

		writer.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(writer).Encode(map[string]any{
			"id":             "cs_test_1",
			"object":         "checkout.session",
			"url":            "https://checkout.example/cs_test_1",
			"status":         "open",
			"payment_status": "unpaid",
		})
	})

	session, err := provider.CreateCheckout(context.Background(), payment.CheckoutRequest{
		UserID:      "user-1",
		PackageID:   "pkg-1",
		Coins:       500,
		UnitAmount:  499,
		Currency:    "usd",
		ProductName: "500 GalleCoins",
		SuccessURL:  "http://localhost/api/gallecoins/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:   "http://localhost/api/gallecoins/cancel",
	})
	require.NoError(t, err)

	assert.Equal(t, "cs_test_1", session.ID)
	assert.Equal(t, "https://checkout.example/cs_test_1", session.URL)
	assert.False(t, session.Settled())
}

/*
TestStripeProvider_GetCheckout verifies paid sessions map to Settled with metadata.
*/
func TestStripeProvider_GetCheckout(t *testing.T) {
	provider := newTestProvider(t, func(writer http.ResponseWriter, request *http.Request) {
		if request.URL.Path == "/v1/checkout/sessions/cs_missing" {
			writer.Header().Set("Content-Type", "application/json")
			writer.WriteHeader(http.StatusNotFound)
			_, _ = writer.Write([]byte(`{"error":{"type":"invalid_request_error","message":"No such checkout.session"}}`))
			return
		}

		writer.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(writer).Encode(map[string]any{
			"id":             "cs_test_2",
			"object":         "checkout.session",
			"status":         "complete",
			"payment_status": "paid",
			"metadata":       map[string]string{"userId": "user-1", "packageId": "pkg-1", "amount": "500"},
		})
	})

	session, err := provider.GetCheckout(context.Background(), "cs_test_2")
	require.NoError(t, err)
	assert.True(t, session.Settled())
	assert.Equal(t, "500", session.Metadata[payment.MetaAmount])

	_, err = provider.GetCheckout(context.Background(), "cs_missing")
	assert.ErrorIs(t, err, payment.ErrSessionNotFound)
}
