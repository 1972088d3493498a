// Copyright (c) 2026 GalleManga. All rights reserved.

package wallet_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gallemanga/gallemanga/internal/core/chapter"
	"github.com/gallemanga/gallemanga/internal/core/manga"
	"github.com/gallemanga/gallemanga/internal/platform/apperr"
	"github.com/gallemanga/gallemanga/internal/platform/postgres/pgtest"
	"github.com/gallemanga/gallemanga/internal/wallet"
	"github.com/gallemanga/gallemanga/pkg/uuid"
)

type seeded struct {
	userID   string
	mangaID  string
	chapters []*chapter.Chapter
}

func seed(t *testing.T, pool *pgxpool.Pool, balance int64, prices ...int64) seeded {
	t.Helper()
	ctx := context.Background()

	userID := uuid.New()
	pgtest.MustExec(t, pool,
		`INSERT INTO users.account (id, username, email, passwordhash, gallecoins) VALUES ($1, $2, $3, 'x', $4)`,
		userID, "reader"+userID[len(userID)-6:], userID+"@galle.test", balance)

	parent := &manga.Manga{ID: uuid.New(), Title: "Ledger " + userID, Slug: "ledger-" + userID, Status: manga.StatusOngoing}
	require.NoError(t, manga.NewPostgresRepository(pool).Create(ctx, parent))

	chapters := chapter.NewChapterRepository(pool)
	out := seeded{userID: userID, mangaID: parent.ID}
	for i, price := range prices {
		c := &chapter.Chapter{
			ID: uuid.New(), MangaID: parent.ID, ChapterNumber: i + 1, Price: price,
			FileURL: "/uploads/chapter/" + uuid.New() + ".pdf", PageCount: 10, Published: true,
		}
		require.NoError(t, chapters.Create(ctx, c))
		out.chapters = append(out.chapters, c)
	}
	return out
}

func count(t *testing.T, pool *pgxpool.Pool, query string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, pool.QueryRow(context.Background(), query, args...).Scan(&n))
	return n
}

/*
TestPostgresRepository_ConcurrentPurchases starts with 100 coins and buys two
60-coin chapters at once: one purchase, one INSUFFICIENT_FUNDS, balance 40.
*/
func TestPostgresRepository_ConcurrentPurchases(t *testing.T) {
	pool := pgtest.Open(t)
	repo := wallet.NewPostgresRepository(pool)
	data := seed(t, pool, 100, 60, 60)

	var (
		wg      sync.WaitGroup
		results = make([]error, 2)
		start   = make(chan struct{})
	)
	for i, c := range data.chapters {
		wg.Add(1)
		go func(i int, c *chapter.Chapter) {
			defer wg.Done()
			<-start
			_, _, results[i] = repo.PurchaseChapter(context.Background(), &wallet.ChapterPurchase{
				UserID: data.userID, MangaID: data.mangaID, ChapterID: c.ID, CoinsSpent: c.Price,
			})
		}(i, c)
	}
	close(start)
	wg.Wait()

	insufficient := 0
	for _, err := range results {
		if err != nil {
			require.True(t, apperr.HasCode(err, apperr.CodeInsufficientFunds), "unexpected error %v", err)
			insufficient++
		}
	}
	assert.Equal(t, 1, insufficient)

	balance, err := repo.Balance(context.Background(), data.userID)
	require.NoError(t, err)
	assert.Equal(t, int64(40), balance)
	assert.Equal(t, 1, count(t, pool, `SELECT COUNT(*) FROM library.entry WHERE userid = $1`, data.userID))
	assert.Equal(t, 1, count(t, pool, `SELECT COUNT(*) FROM wallet.chapterpurchase WHERE userid = $1`, data.userID))
}

/*
TestPostgresRepository_Repurchase verifies a second purchase of an owned
chapter changes nothing.
*/
func TestPostgresRepository_Repurchase(t *testing.T) {
	pool := pgtest.Open(t)
	repo := wallet.NewPostgresRepository(pool)
	data := seed(t, pool, 100, 30)
	purchase := func() (int64, bool, error) {
		return repo.PurchaseChapter(context.Background(), &wallet.ChapterPurchase{
			UserID: data.userID, MangaID: data.mangaID, ChapterID: data.chapters[0].ID, CoinsSpent: 30,
		})
	}

	balance, owned, err := purchase()
	require.NoError(t, err)
	assert.False(t, owned)
	assert.Equal(t, int64(70), balance)

	balance, owned, err = purchase()
	require.NoError(t, err)
	assert.True(t, owned)
	assert.Equal(t, int64(70), balance)
	assert.Equal(t, 1, count(t, pool, `SELECT COUNT(*) FROM wallet.chapterpurchase WHERE userid = $1`, data.userID))
}

/*
TestPostgresRepository_CreditOnce verifies a top-up session is credited a
single time even when confirmed concurrently.
*/
func TestPostgresRepository_CreditOnce(t *testing.T) {
	pool := pgtest.Open(t)
	repo := wallet.NewPostgresRepository(pool)
	ctx := context.Background()
	data := seed(t, pool, 0)

	pkg := &wallet.CoinPackage{ID: uuid.New(), Amount: 500, Price: decimal.RequireFromString("4.99"), Currency: "usd", Active: true}
	require.NoError(t, repo.CreatePackage(ctx, pkg))
	require.NoError(t, repo.CreateCheckout(ctx, &wallet.Checkout{
		ProviderSessionID: "cs_once", UserID: data.userID, PackageID: pkg.ID, Amount: 500,
	}))

	var (
		wg       sync.WaitGroup
		credited = make([]bool, 4)
	)
	for i := range credited {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, ok, err := repo.Credit(ctx, &wallet.CoinPurchase{
				UserID: data.userID, PackageID: pkg.ID, Amount: 500, ProviderSessionID: "cs_once",
			})
			assert.NoError(t, err)
			credited[i] = ok
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, ok := range credited {
		if ok {
			wins++
		}
	}
	assert.Equal(t, 1, wins)

	balance, err := repo.Balance(ctx, data.userID)
	require.NoError(t, err)
	assert.Equal(t, int64(500), balance)

	pending, err := repo.PendingCheckouts(ctx, time.Now().Add(24*time.Hour), 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	stored, err := repo.FindPackage(ctx, pkg.ID)
	require.NoError(t, err)
	assert.True(t, stored.Price.Equal(pkg.Price))

	history, err := repo.History(ctx, data.userID)
	require.NoError(t, err)
	assert.Len(t, history.TopUps, 1)
}
