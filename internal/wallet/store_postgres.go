// Copyright (c) 2026 GalleManga. All rights reserved.

package wallet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/gallemanga/gallemanga/internal/platform/apperr"
	"github.com/gallemanga/gallemanga/internal/platform/database/schema"
	"github.com/gallemanga/gallemanga/internal/platform/dberr"
	"github.com/gallemanga/gallemanga/internal/platform/postgres"
	"github.com/gallemanga/gallemanga/pkg/pointer"
	"github.com/gallemanga/gallemanga/pkg/uuid"
)

const (
	resourcePackage  = "Coin package"
	resourceCheckout = "Checkout session"
	resourceUser     = "User"
)

var (
	packages  = schema.WalletCoinPackage
	checkouts = schema.WalletCheckoutSession
	topUps    = schema.WalletCoinPurchase
	purchases = schema.WalletChapterPurchase
	accounts  = schema.UsersAccount
	entries   = schema.LibraryEntry
)

// # PostgreSQL Repository

// PostgresRepository implements [Repository] with pgx.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository constructs the wallet store.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// NUMERIC travels as text so the decimal never passes through a float.
var packageColumns = fmt.Sprintf(`%s, %s, %s::text, %s, %s, %s, %s`,
	packages.ID, packages.Amount, packages.Price, packages.Currency,
	packages.Description, packages.Active, packages.CreatedAt)

func scanPackage(row pgx.Row) (*CoinPackage, error) {
	var (
		pkg   CoinPackage
		price string
	)
	if err := row.Scan(&pkg.ID, &pkg.Amount, &price, &pkg.Currency, &pkg.Description, &pkg.Active, &pkg.CreatedAt); err != nil {
		return nil, err
	}
	parsed, err := decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("postgres_wallet_repo_price_invalid: %w", err)
	}
	pkg.Price = parsed
	return &pkg, nil
}

// # Coin Packages

func (repository *PostgresRepository) ListPackages(context context.Context, includeInactive bool) ([]*CoinPackage, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s OR $1 ORDER BY %s ASC, %s ASC`,
		packageColumns, packages.Table, packages.Active, packages.Amount, packages.CreatedAt)

	rows, err := repository.db.Query(context, query, includeInactive)
	if err != nil {
		return nil, dberr.Wrap(err, resourcePackage)
	}
	defer rows.Close()

	list := make([]*CoinPackage, 0)
	for rows.Next() {
		pkg, err := scanPackage(rows)
		if err != nil {
			return nil, dberr.Wrap(err, resourcePackage)
		}
		list = append(list, pkg)
	}
	return list, dberr.Wrap(rows.Err(), resourcePackage)
}

func (repository *PostgresRepository) FindPackage(context context.Context, id string) (*CoinPackage, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, packageColumns, packages.Table, packages.ID)

	pkg, err := scanPackage(repository.db.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, resourcePackage)
	}
	return pkg, nil
}

func (repository *PostgresRepository) CreatePackage(context context.Context, pkg *CoinPackage) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3::numeric, $4, $5, $6, $7)`,
		packages.Table, packages.ID, packages.Amount, packages.Price, packages.Currency,
		packages.Description, packages.Active, packages.CreatedAt)

	if pkg.CreatedAt.IsZero() {
		pkg.CreatedAt = time.Now()
	}

	_, err := repository.db.Exec(context, query,
		pkg.ID, pkg.Amount, pkg.Price.String(), pkg.Currency, pkg.Description, pkg.Active, pkg.CreatedAt)
	return dberr.Wrap(err, resourcePackage)
}

func (repository *PostgresRepository) DeactivatePackage(context context.Context, id string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = FALSE WHERE %s = $1`, packages.Table, packages.Active, packages.ID)

	tag, err := repository.db.Exec(context, query, id)
	if err != nil {
		return dberr.Wrap(err, resourcePackage)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(resourcePackage)
	}
	return nil
}

// # Checkouts

func (repository *PostgresRepository) CreateCheckout(context context.Context, checkout *Checkout) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $6)`,
		checkouts.Table, checkouts.ProviderSessionID, checkouts.UserID, checkouts.PackageID,
		checkouts.Amount, checkouts.Status, checkouts.CreatedAt, checkouts.UpdatedAt)

	now := time.Now()
	checkout.CreatedAt, checkout.UpdatedAt = now, now
	if checkout.Status == "" {
		checkout.Status = CheckoutPending
	}

	_, err := repository.db.Exec(context, query,
		checkout.ProviderSessionID, checkout.UserID, checkout.PackageID, checkout.Amount, checkout.Status, now)
	return dberr.Wrap(err, resourceCheckout)
}

func (repository *PostgresRepository) ExpireCheckout(context context.Context, providerSessionID string) (bool, error) {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = NOW() WHERE %s = $1 AND %s = $3`,
		checkouts.Table, checkouts.Status, checkouts.UpdatedAt, checkouts.ProviderSessionID, checkouts.Status)

	tag, err := repository.db.Exec(context, query, providerSessionID, CheckoutExpired, CheckoutPending)
	if err != nil {
		return false, dberr.Wrap(err, resourceCheckout)
	}
	return tag.RowsAffected() > 0, nil
}

func (repository *PostgresRepository) PendingCheckouts(context context.Context, createdBefore time.Time, limit int) ([]*Checkout, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s FROM %s
		WHERE %s = $1 AND %s < $2
		ORDER BY %s ASC LIMIT $3`,
		checkouts.ProviderSessionID, checkouts.UserID, checkouts.PackageID, checkouts.Amount,
		checkouts.Status, checkouts.CreatedAt, checkouts.UpdatedAt, checkouts.Table,
		checkouts.Status, checkouts.CreatedAt, checkouts.CreatedAt)

	rows, err := repository.db.Query(context, query, CheckoutPending, createdBefore, limit)
	if err != nil {
		return nil, dberr.Wrap(err, resourceCheckout)
	}
	defer rows.Close()

	pending := make([]*Checkout, 0)
	for rows.Next() {
		c := &Checkout{}
		if err := rows.Scan(&c.ProviderSessionID, &c.UserID, &c.PackageID, &c.Amount, &c.Status, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, dberr.Wrap(err, resourceCheckout)
		}
		pending = append(pending, c)
	}
	return pending, dberr.Wrap(rows.Err(), resourceCheckout)
}

// # Balance Transactions

/*
Credit applies a settled top-up exactly once.

Description: The purchase row is inserted with ON CONFLICT DO NOTHING on the
provider session ID. Only the transaction that inserted it increments the
balance and completes the checkout row.

Returns:
  - int64: Balance after the call
  - bool: true when this call credited the coins
  - error: Wrapped database errors
*/
func (repository *PostgresRepository) Credit(context context.Context, purchase *CoinPurchase) (int64, bool, error) {
	insertQuery := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (%s) DO NOTHING`,
		topUps.Table, topUps.ID, topUps.UserID, topUps.PackageID, topUps.Amount,
		topUps.ProviderSessionID, topUps.CreatedAt, topUps.ProviderSessionID)
	creditQuery := fmt.Sprintf(`UPDATE %s SET %s = %s + $2, %s = NOW() WHERE %s = $1 RETURNING %s`,
		accounts.Table, accounts.GalleCoins, accounts.GalleCoins, accounts.UpdatedAt, accounts.ID, accounts.GalleCoins)
	completeQuery := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = NOW() WHERE %s = $1`,
		checkouts.Table, checkouts.Status, checkouts.UpdatedAt, checkouts.ProviderSessionID)

	if purchase.ID == "" {
		purchase.ID = uuid.New()
	}
	if purchase.CreatedAt.IsZero() {
		purchase.CreatedAt = time.Now()
	}

	var (
		balance  int64
		credited bool
	)
	err := postgres.WithTx(context, repository.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(context, insertQuery,
			purchase.ID, purchase.UserID, nullable(purchase.PackageID), purchase.Amount,
			purchase.ProviderSessionID, purchase.CreatedAt)
		if err != nil {
			return dberr.Wrap(err, "Coin purchase")
		}

		if tag.RowsAffected() == 0 {
			balance, err = balanceOf(context, tx, purchase.UserID)
			return err
		}

		if err := tx.QueryRow(context, creditQuery, purchase.UserID, purchase.Amount).Scan(&balance); err != nil {
			return dberr.Wrap(err, resourceUser)
		}
		if _, err := tx.Exec(context, completeQuery, purchase.ProviderSessionID, CheckoutCompleted); err != nil {
			return dberr.Wrap(err, resourceCheckout)
		}
		credited = true
		return nil
	})
	if err != nil {
		return 0, false, err
	}
	return balance, credited, nil
}

/*
PurchaseChapter grants a chapter and debits its price in one transaction.

Description:
 1. Insert the library entry, ignoring a duplicate. A duplicate means the
    chapter is already owned and nothing else happens.
 2. Debit with a conditional UPDATE; zero rows means insufficient funds and
    the entry insert is rolled back.
 3. Record the purchase.

Returns:
  - int64: Balance after the call
  - bool: true when the chapter was already owned
  - error: apperr.InsufficientFunds, or wrapped database errors
*/
func (repository *PostgresRepository) PurchaseChapter(context context.Context, purchase *ChapterPurchase) (int64, bool, error) {
	entryQuery := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s) VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (%s, %s) DO NOTHING`,
		entries.Table, entries.ID, entries.UserID, entries.MangaID, entries.ChapterID, entries.CreatedAt,
		entries.UserID, entries.ChapterID)
	debitQuery := fmt.Sprintf(`
		UPDATE %s SET %s = %s - $2, %s = NOW()
		WHERE %s = $1 AND %s >= $2
		RETURNING %s`,
		accounts.Table, accounts.GalleCoins, accounts.GalleCoins, accounts.UpdatedAt,
		accounts.ID, accounts.GalleCoins, accounts.GalleCoins)
	recordQuery := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s) VALUES ($1, $2, $3, $4, $5, $6)`,
		purchases.Table, purchases.ID, purchases.UserID, purchases.MangaID, purchases.ChapterID,
		purchases.CoinsSpent, purchases.CreatedAt)

	if purchase.ID == "" {
		purchase.ID = uuid.New()
	}
	if purchase.CreatedAt.IsZero() {
		purchase.CreatedAt = time.Now()
	}

	var (
		balance      int64
		alreadyOwned bool
	)
	err := postgres.WithTx(context, repository.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(context, entryQuery,
			uuid.New(), purchase.UserID, purchase.MangaID, purchase.ChapterID, purchase.CreatedAt)
		if err != nil {
			return dberr.Wrap(err, "Library entry")
		}

		if tag.RowsAffected() == 0 {
			alreadyOwned = true
			balance, err = balanceOf(context, tx, purchase.UserID)
			return err
		}

		err = tx.QueryRow(context, debitQuery, purchase.UserID, purchase.CoinsSpent).Scan(&balance)
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.InsufficientFunds()
		}
		if err != nil {
			return dberr.Wrap(err, resourceUser)
		}

		_, err = tx.Exec(context, recordQuery,
			purchase.ID, purchase.UserID, purchase.MangaID, purchase.ChapterID, purchase.CoinsSpent, purchase.CreatedAt)
		return dberr.Wrap(err, "Chapter purchase")
	})
	if err != nil {
		return 0, false, err
	}
	return balance, alreadyOwned, nil
}

func (repository *PostgresRepository) Balance(context context.Context, userID string) (int64, error) {
	return balanceOf(context, repository.db, userID)
}

// # History

func (repository *PostgresRepository) History(context context.Context, userID string) (*History, error) {
	topUpQuery := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s FROM %s WHERE %s = $1 ORDER BY %s DESC`,
		topUps.ID, topUps.UserID, topUps.PackageID, topUps.Amount, topUps.ProviderSessionID, topUps.CreatedAt,
		topUps.Table, topUps.UserID, topUps.CreatedAt)
	chapterQuery := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s FROM %s WHERE %s = $1 ORDER BY %s DESC`,
		purchases.ID, purchases.UserID, purchases.MangaID, purchases.ChapterID, purchases.CoinsSpent, purchases.CreatedAt,
		purchases.Table, purchases.UserID, purchases.CreatedAt)

	history := &History{TopUps: make([]*CoinPurchase, 0), Chapters: make([]*ChapterPurchase, 0)}

	rows, err := repository.db.Query(context, topUpQuery, userID)
	if err != nil {
		return nil, dberr.Wrap(err, "Coin purchase")
	}
	for rows.Next() {
		var packageID *string
		p := &CoinPurchase{}
		if err := rows.Scan(&p.ID, &p.UserID, &packageID, &p.Amount, &p.ProviderSessionID, &p.CreatedAt); err != nil {
			rows.Close()
			return nil, dberr.Wrap(err, "Coin purchase")
		}
		p.PackageID = pointer.Val(packageID)
		history.TopUps = append(history.TopUps, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "Coin purchase")
	}

	rows, err = repository.db.Query(context, chapterQuery, userID)
	if err != nil {
		return nil, dberr.Wrap(err, "Chapter purchase")
	}
	defer rows.Close()
	for rows.Next() {
		var mangaID, chapterID *string
		p := &ChapterPurchase{}
		if err := rows.Scan(&p.ID, &p.UserID, &mangaID, &chapterID, &p.CoinsSpent, &p.CreatedAt); err != nil {
			return nil, dberr.Wrap(err, "Chapter purchase")
		}
		p.MangaID, p.ChapterID = pointer.Val(mangaID), pointer.Val(chapterID)
		history.Chapters = append(history.Chapters, p)
	}
	return history, dberr.Wrap(rows.Err(), "Chapter purchase")
}

// # Helpers

type queryRower interface {
	QueryRow(context context.Context, sql string, args ...any) pgx.Row
}

func balanceOf(context context.Context, db queryRower, userID string) (int64, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, accounts.GalleCoins, accounts.Table, accounts.ID)

	var balance int64
	if err := db.QueryRow(context, query, userID).Scan(&balance); err != nil {
		return 0, dberr.Wrap(err, resourceUser)
	}
	return balance, nil
}

func nullable(value string) any {
	if value == "" {
		return nil
	}
	return value
}
