// Copyright (c) 2026 GalleManga. All rights reserved.

package chapter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gallemanga/gallemanga/internal/platform/apperr"
	"github.com/gallemanga/gallemanga/internal/platform/database/schema"
	"github.com/gallemanga/gallemanga/internal/platform/dberr"
	"github.com/gallemanga/gallemanga/internal/platform/postgres"
)

const resource = "Chapter"

// # PostgreSQL Repository

// chapterRepository implements [ChapterRepository] using pgx.
type chapterRepository struct {
	pool *pgxpool.Pool
}

// NewChapterRepository constructs a PostgreSQL backed chapter store.
func NewChapterRepository(pool *pgxpool.Pool) ChapterRepository {
	return &chapterRepository{pool: pool}
}

var chapterColumns = strings.Join(schema.CoreChapter.Columns(), ", ")

// refreshCountSQL recomputes the denormalized chapter count of one manga.
var refreshCountSQL = fmt.Sprintf(`
	UPDATE %s SET %s = (
		SELECT COUNT(*) FROM %s WHERE %s = $1 AND %s
	) WHERE %s = $1`,
	schema.CoreManga.Table, schema.CoreManga.ChapterCount,
	schema.CoreChapter.Table, schema.CoreChapter.MangaID, schema.CoreChapter.Published,
	schema.CoreManga.ID)

func scanChapter(row pgx.Row) (*Chapter, error) {
	c := &Chapter{}
	err := row.Scan(
		&c.ID, &c.MangaID, &c.ChapterNumber, &c.Title, &c.Price, &c.FileURL,
		&c.PageCount, &c.Published, &c.CreatedAt, &c.UpdatedAt,
	)
	return c, err
}

/*
ListByManga returns the chapters of a manga in reading order.

Parameters:
  - context: context.Context
  - mangaID: string
  - includeDrafts: bool (admins see unpublished chapters)

Returns:
  - []*Chapter: Ordered by chapter number ascending
  - error: Database execution errors
*/
func (repository *chapterRepository) ListByManga(context context.Context, mangaID string, includeDrafts bool) ([]*Chapter, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE %s = $1 AND ($2 OR %s)
		ORDER BY %s ASC`,
		chapterColumns, schema.CoreChapter.Table,
		schema.CoreChapter.MangaID, schema.CoreChapter.Published,
		schema.CoreChapter.ChapterNumber)

	rows, err := repository.pool.Query(context, query, mangaID, includeDrafts)
	if err != nil {
		return nil, dberr.Wrap(err, "Manga")
	}
	defer rows.Close()

	chapters := make([]*Chapter, 0)
	for rows.Next() {
		c, err := scanChapter(rows)
		if err != nil {
			return nil, dberr.Wrap(err, resource)
		}
		chapters = append(chapters, c)
	}
	return chapters, dberr.Wrap(rows.Err(), resource)
}

// FindByID retrieves a chapter by primary key.
func (repository *chapterRepository) FindByID(context context.Context, id string) (*Chapter, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		chapterColumns, schema.CoreChapter.Table, schema.CoreChapter.ID)

	c, err := scanChapter(repository.pool.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, resource)
	}
	return c, nil
}

/*
Create inserts a chapter and refreshes the manga's chapter count.

Description: Both statements share one transaction, so readers never observe
a count that disagrees with the chapter rows.
*/
func (repository *chapterRepository) Create(context context.Context, chapter *Chapter) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		schema.CoreChapter.Table, chapterColumns)

	now := time.Now()
	chapter.CreatedAt, chapter.UpdatedAt = now, now

	return postgres.WithTx(context, repository.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(context, query,
			chapter.ID, chapter.MangaID, chapter.ChapterNumber, chapter.Title, chapter.Price,
			chapter.FileURL, chapter.PageCount, chapter.Published, chapter.CreatedAt, chapter.UpdatedAt,
		)
		if err != nil {
			return mapWriteError(err)
		}
		return refreshCount(context, tx, chapter.MangaID)
	})
}

// Update persists the mutable fields of a chapter.
func (repository *chapterRepository) Update(context context.Context, chapter *Chapter) error {
	query := fmt.Sprintf(`
		UPDATE %s SET %s = $2, %s = $3, %s = $4, %s = $5, %s = $6, %s = $7, %s = $8
		WHERE %s = $1`,
		schema.CoreChapter.Table,
		schema.CoreChapter.ChapterNumber, schema.CoreChapter.Title, schema.CoreChapter.Price,
		schema.CoreChapter.FileURL, schema.CoreChapter.PageCount, schema.CoreChapter.Published,
		schema.CoreChapter.UpdatedAt, schema.CoreChapter.ID)

	chapter.UpdatedAt = time.Now()

	return postgres.WithTx(context, repository.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(context, query,
			chapter.ID, chapter.ChapterNumber, chapter.Title, chapter.Price,
			chapter.FileURL, chapter.PageCount, chapter.Published, chapter.UpdatedAt,
		)
		if err != nil {
			return mapWriteError(err)
		}
		if tag.RowsAffected() == 0 {
			return apperr.NotFound(resource)
		}
		return refreshCount(context, tx, chapter.MangaID)
	})
}

// Delete removes a chapter and returns its file URL.
func (repository *chapterRepository) Delete(context context.Context, id string) (string, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 RETURNING %s, %s`,
		schema.CoreChapter.Table, schema.CoreChapter.ID, schema.CoreChapter.MangaID, schema.CoreChapter.FileURL)

	var fileURL string
	err := postgres.WithTx(context, repository.pool, func(tx pgx.Tx) error {
		var mangaID string
		if err := tx.QueryRow(context, query, id).Scan(&mangaID, &fileURL); err != nil {
			return dberr.Wrap(err, resource)
		}
		return refreshCount(context, tx, mangaID)
	})
	return fileURL, err
}

func refreshCount(context context.Context, tx pgx.Tx, mangaID string) error {
	if _, err := tx.Exec(context, refreshCountSQL, mangaID); err != nil {
		return dberr.Wrap(err, "Manga")
	}
	return nil
}

func mapWriteError(err error) error {
	if dberr.IsUniqueViolation(err, schema.CoreChapter.UniqueNumber) {
		return apperr.Conflict(MsgDuplicateNumber)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
		return apperr.NotFound("Manga")
	}
	return dberr.Wrap(err, resource)
}
