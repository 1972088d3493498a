// Copyright (c) 2026 GalleManga. All rights reserved.

package wallet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gallemanga/gallemanga/internal/platform/apperr"
	"github.com/gallemanga/gallemanga/internal/platform/metrics"
	"github.com/gallemanga/gallemanga/internal/platform/payment"
	"github.com/gallemanga/gallemanga/internal/platform/validate"
	"github.com/gallemanga/gallemanga/pkg/convert"
	"github.com/gallemanga/gallemanga/pkg/uuid"
)

// # Service Layer

// Options carries the deployment settings the wallet needs.
type Options struct {
	// PublicBaseURL is the origin the provider redirects back to.
	PublicBaseURL string
	// Currency is used for packages created without one.
	Currency string
	// ReconcileMinAge is how long a checkout stays pending before it is polled.
	ReconcileMinAge time.Duration
}

// Service implements top-ups, chapter purchases and package administration.
type Service struct {
	repo     Repository
	chapters ChapterFinder
	provider payment.Provider
	options  Options
	logger   *slog.Logger
	now      func() time.Time
}

// NewService constructs a new [Service].
func NewService(repo Repository, chapters ChapterFinder, provider payment.Provider, options Options, logger *slog.Logger) *Service {
	if options.Currency == "" {
		options.Currency = "usd"
	}
	options.PublicBaseURL = strings.TrimRight(options.PublicBaseURL, "/")

	return &Service{
		repo:     repo,
		chapters: chapters,
		provider: provider,
		options:  options,
		logger:   logger,
		now:      time.Now,
	}
}

// # Coin Packages

// Packages lists the packages on sale.
func (service *Service) Packages(context context.Context) ([]*CoinPackage, error) {
	return service.repo.ListPackages(context, false)
}

// PackageInput is the admin form for a new package.
type PackageInput struct {
	Amount      int64  `json:"amount"`
	Price       string `json:"price"`
	Currency    string `json:"currency"`
	Description string `json:"description"`
}

/*
CreatePackage validates and stores a new coin package.

Returns:
  - error: apperr.ValidationError when the amount or price is not positive
*/
func (service *Service) CreatePackage(context context.Context, input PackageInput) (*CoinPackage, error) {
	validator := &validate.Validator{}
	validator.Min(FieldAmount, input.Amount, 1)

	price, err := decimal.NewFromString(strings.TrimSpace(input.Price))
	validator.Custom(FieldPrice, err != nil || !price.IsPositive(), "Must be a positive amount")
	validator.Custom(FieldPrice, err == nil && price.Exponent() < -2, "At most two decimal places")
	validator.MaxLen(FieldDescription, input.Description, MaxDescription)

	currency := strings.ToLower(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = service.options.Currency
	}
	validator.Custom(FieldCurrency, len(currency) != 3, "Must be a three letter ISO code")

	if err := validator.Err(); err != nil {
		return nil, err
	}

	pkg := &CoinPackage{
		ID:          uuid.New(),
		Amount:      input.Amount,
		Price:       price,
		Currency:    currency,
		Description: strings.TrimSpace(input.Description),
		Active:      true,
	}
	if err := service.repo.CreatePackage(context, pkg); err != nil {
		return nil, err
	}

	service.logger.InfoContext(context, "coin_package_created",
		slog.String("package_id", pkg.ID),
		slog.Int64("amount", pkg.Amount),
		slog.String("price", pkg.Price.StringFixed(2)),
	)
	return pkg, nil
}

// DeactivatePackage takes a package off sale. Past purchases keep referencing it.
func (service *Service) DeactivatePackage(context context.Context, id string) error {
	if err := service.repo.DeactivatePackage(context, id); err != nil {
		return err
	}
	service.logger.InfoContext(context, "coin_package_deactivated", slog.String("package_id", id))
	return nil
}

// # Top-up

/*
StartCheckout opens a hosted checkout for an active package.

Description: The provider session carries userId, packageId and amount as
metadata. A pending checkout row is recorded so the reconcile job can settle
sessions whose success redirect never arrives.

Returns:
  - *CheckoutLink: Provider URL and session ID
  - error: 404 when the package is unknown or inactive
*/
func (service *Service) StartCheckout(context context.Context, userID, packageID string) (*CheckoutLink, error) {
	pkg, err := service.repo.FindPackage(context, packageID)
	if err != nil {
		return nil, err
	}
	if !pkg.Active {
		return nil, apperr.NotFound(resourcePackage)
	}

	session, err := service.provider.CreateCheckout(context, payment.CheckoutRequest{
		UserID:      userID,
		PackageID:   pkg.ID,
		Coins:       pkg.Amount,
		UnitAmount:  pkg.MinorUnits(),
		Currency:    pkg.Currency,
		ProductName: fmt.Sprintf("%d GalleCoins", pkg.Amount),
		SuccessURL:  service.options.PublicBaseURL + "/api/gallecoins/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:   service.options.PublicBaseURL + "/api/gallecoins/cancel",
	})
	if err != nil {
		return nil, apperr.ServiceUnavailable("Payment provider unavailable").WithCause(err)
	}

	checkout := &Checkout{
		ProviderSessionID: session.ID,
		UserID:            userID,
		PackageID:         pkg.ID,
		Amount:            pkg.Amount,
		Status:            CheckoutPending,
	}
	if err := service.repo.CreateCheckout(context, checkout); err != nil {
		return nil, err
	}

	service.logger.InfoContext(context, "checkout_started",
		slog.String("user_id", userID),
		slog.String("package_id", pkg.ID),
		slog.String("session_id", session.ID),
	)
	return &CheckoutLink{URL: session.URL, SessionID: session.ID}, nil
}

/*
ConfirmCheckout credits a top-up the provider reports as paid.

Description: The session is re-fetched from the provider by its opaque ID and
the user and amount are read from the provider's metadata, never from the
request. Replays return the current balance with AlreadyCredited set.

Returns:
  - *CreditResult: New balance and credited amount
  - error: 402 when unpaid, 404 for unknown sessions, 422 for missing metadata
*/
func (service *Service) ConfirmCheckout(context context.Context, sessionID string) (*CreditResult, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, validate.RequiredError(FieldSessionID, "Checkout session id is required")
	}

	session, err := service.provider.GetCheckout(context, sessionID)
	if errors.Is(err, payment.ErrSessionNotFound) {
		return nil, apperr.NotFound(resourceCheckout)
	}
	if err != nil {
		return nil, apperr.ServiceUnavailable("Payment provider unavailable").WithCause(err)
	}

	if !session.Settled() {
		metrics.RecordTopUp(metrics.ResultUnpaid, 0)
		return nil, apperr.PaymentRequired(MsgPaymentIncomplete)
	}

	return service.credit(context, session)
}

func (service *Service) credit(context context.Context, session *payment.CheckoutSession) (*CreditResult, error) {
	userID := session.Metadata[payment.MetaUserID]
	amount, ok := convert.ToInt64(session.Metadata[payment.MetaAmount])
	if userID == "" || !ok || amount <= 0 {
		service.logger.ErrorContext(context, "checkout_metadata_invalid", slog.String("session_id", session.ID))
		return nil, apperr.Unprocessable(MsgInvalidMetadata)
	}

	balance, credited, err := service.repo.Credit(context, &CoinPurchase{
		UserID:            userID,
		PackageID:         session.Metadata[payment.MetaPackageID],
		Amount:            amount,
		ProviderSessionID: session.ID,
	})
	if err != nil {
		return nil, err
	}

	if !credited {
		metrics.RecordTopUp(metrics.ResultReplayed, 0)
		service.logger.InfoContext(context, "coins_already_credited",
			slog.String("user_id", userID),
			slog.String("session_id", session.ID),
		)
		return &CreditResult{NewBalance: balance, AlreadyCredited: true}, nil
	}

	metrics.RecordTopUp(metrics.ResultCredited, amount)
	service.logger.InfoContext(context, "coins_credited",
		slog.String("user_id", userID),
		slog.String("session_id", session.ID),
		slog.Int64("amount", amount),
		slog.Int64("balance", balance),
	)
	return &CreditResult{NewBalance: balance, Credited: amount}, nil
}

// CancelCheckout expires a pending checkout. The balance never changes.
func (service *Service) CancelCheckout(context context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}

	expired, err := service.repo.ExpireCheckout(context, sessionID)
	if err != nil {
		return err
	}
	if expired {
		metrics.RecordTopUp(metrics.ResultCancelled, 0)
		service.logger.InfoContext(context, "checkout_cancelled", slog.String("session_id", sessionID))
	}
	return nil
}

/*
Reconcile settles pending checkouts whose browser never came back.

Description: Each pending checkout older than ReconcileMinAge is looked up at
the provider. Paid ones go through the same idempotent credit path as the
success redirect; expired or unknown ones are marked expired. Open sessions
are left for the next pass. A failing session does not stop the pass.
*/
func (service *Service) Reconcile(context context.Context) (ReconcileReport, error) {
	var report ReconcileReport

	pending, err := service.repo.PendingCheckouts(context, service.now().Add(-service.options.ReconcileMinAge), MaxReconcileBatch)
	if err != nil {
		return report, err
	}

	for _, checkout := range pending {
		if err := context.Err(); err != nil {
			return report, err
		}
		report.Scanned++

		session, err := service.provider.GetCheckout(context, checkout.ProviderSessionID)
		switch {
		case errors.Is(err, payment.ErrSessionNotFound):
			session = &payment.CheckoutSession{ID: checkout.ProviderSessionID, Status: payment.StatusExpired}
		case err != nil:
			report.Failed++
			service.logger.WarnContext(context, "reconcile_lookup_failed",
				slog.String("session_id", checkout.ProviderSessionID),
				slog.String("error", err.Error()),
			)
			continue
		}

		switch {
		case session.Settled():
			if _, err := service.credit(context, session); err != nil {
				report.Failed++
				service.logger.ErrorContext(context, "reconcile_credit_failed",
					slog.String("session_id", session.ID),
					slog.String("error", err.Error()),
				)
				continue
			}
			report.Credited++

		case session.Status == payment.StatusExpired:
			expired, err := service.repo.ExpireCheckout(context, checkout.ProviderSessionID)
			if err != nil {
				report.Failed++
				continue
			}
			if expired {
				metrics.RecordTopUp(metrics.ResultExpired, 0)
				report.Expired++
			}
		}
	}

	if report.Scanned > 0 {
		service.logger.InfoContext(context, "checkouts_reconciled",
			slog.Int("scanned", report.Scanned),
			slog.Int("credited", report.Credited),
			slog.Int("expired", report.Expired),
			slog.Int("failed", report.Failed),
		)
	}
	return report, nil
}

// # Chapter Purchase

/*
PurchaseChapter buys a paid, published chapter with GalleCoins.

Description: Buying a chapter the user already owns debits nothing and
returns AlreadyOwned with the unchanged balance.

Returns:
  - *PurchaseResult: Success flag, new balance and the file URL
  - error: 400 for free chapters, 404 for unknown or draft chapters, 402 when
    the balance is too low
*/
func (service *Service) PurchaseChapter(context context.Context, userID, chapterID string) (*PurchaseResult, error) {
	if strings.TrimSpace(chapterID) == "" {
		return nil, validate.RequiredError(FieldChapterID, "This field is required")
	}

	target, err := service.chapters.FindByID(context, chapterID)
	if err != nil {
		return nil, err
	}
	if !target.Published {
		return nil, apperr.NotFound("Chapter")
	}
	if target.IsFree() {
		return nil, apperr.ValidationError(MsgChapterFree)
	}

	balance, alreadyOwned, err := service.repo.PurchaseChapter(context, &ChapterPurchase{
		UserID:     userID,
		MangaID:    target.MangaID,
		ChapterID:  target.ID,
		CoinsSpent: target.Price,
	})
	if err != nil {
		if apperr.HasCode(err, apperr.CodeInsufficientFunds) {
			metrics.RecordChapterPurchase(metrics.ResultInsufficient)
		}
		return nil, err
	}

	if alreadyOwned {
		metrics.RecordChapterPurchase(metrics.ResultAlreadyOwned)
		return &PurchaseResult{Success: true, NewBalance: balance, FileURL: target.FileURL, AlreadyOwned: true}, nil
	}

	metrics.RecordChapterPurchase(metrics.ResultPurchased)
	service.logger.InfoContext(context, "chapter_purchased",
		slog.String("user_id", userID),
		slog.String("chapter_id", target.ID),
		slog.Int64("price", target.Price),
		slog.Int64("balance", balance),
	)
	return &PurchaseResult{Success: true, NewBalance: balance, FileURL: target.FileURL}, nil
}

// # Queries

// Balance returns the caller's current GalleCoins.
func (service *Service) Balance(context context.Context, userID string) (int64, error) {
	return service.repo.Balance(context, userID)
}

// History returns the caller's top-ups and chapter purchases.
func (service *Service) History(context context.Context, userID string) (*History, error) {
	return service.repo.History(context, userID)
}
