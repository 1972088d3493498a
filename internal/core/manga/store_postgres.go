// Copyright (c) 2026 GalleManga. All rights reserved.

package manga

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gallemanga/gallemanga/internal/platform/apperr"
	"github.com/gallemanga/gallemanga/internal/platform/database/schema"
	"github.com/gallemanga/gallemanga/internal/platform/dberr"
	"github.com/gallemanga/gallemanga/internal/platform/postgres"
	"github.com/gallemanga/gallemanga/pkg/query"
)

const (
	resource = "Manga"

	constraintTitle = "manga_title_key"
	constraintSlug  = "manga_slug_key"
)

// # PostgreSQL Repository

// PostgresRepository implements the [Repository] interface using pgx.
//
// It relies on two PostgreSQL features:
//   - Window Function: COUNT(*) OVER() returns the pagination total in the
//     same round trip as the page.
//   - Array Columns: categories is a TEXT[] matched with unnest for
//     case-insensitive lookups.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs a PostgreSQL backed manga store.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

var mangaColumns = strings.Join(schema.CoreManga.Columns(), ", ")

func scanManga(row pgx.Row, extra ...any) (*Manga, error) {
	m := &Manga{}
	destinations := []any{
		&m.ID, &m.Title, &m.Slug, &m.Description, &m.Author, &m.Genre, &m.ImageURL,
		&m.Status, &m.Categories, &m.ChapterCount, &m.CreatedAt, &m.UpdatedAt,
	}
	if err := row.Scan(append(destinations, extra...)...); err != nil {
		return nil, err
	}
	if m.Categories == nil {
		m.Categories = []string{}
	}
	return m, nil
}

func (repository *PostgresRepository) collect(context context.Context, sql string, arguments ...any) ([]*Manga, error) {
	rows, err := repository.pool.Query(context, sql, arguments...)
	if err != nil {
		return nil, dberr.Wrap(err, resource)
	}
	defer rows.Close()

	mangas := make([]*Manga, 0)
	for rows.Next() {
		m, err := scanManga(rows)
		if err != nil {
			return nil, dberr.Wrap(err, resource)
		}
		mangas = append(mangas, m)
	}
	return mangas, dberr.Wrap(rows.Err(), resource)
}

/*
List returns a paginated slice of manga and the total count.

Parameters:
  - context: context.Context
  - limit: int
  - offset: int

Returns:
  - []*Manga: The requested page
  - int: Total count across all pages
  - error: Database execution errors
*/
func (repository *PostgresRepository) List(context context.Context, limit, offset int) ([]*Manga, int, error) {
	sql := fmt.Sprintf(`
		SELECT %s, COUNT(*) OVER() AS total_count
		FROM %s
		ORDER BY %s DESC, %s DESC
		LIMIT $1 OFFSET $2`,
		mangaColumns, schema.CoreManga.Table, schema.CoreManga.CreatedAt, schema.CoreManga.ID)

	rows, err := repository.pool.Query(context, sql, limit, offset)
	if err != nil {
		return nil, 0, dberr.Wrap(err, resource)
	}
	defer rows.Close()

	total := 0
	mangas := make([]*Manga, 0, limit)
	for rows.Next() {
		m, err := scanManga(rows, &total)
		if err != nil {
			return nil, 0, dberr.Wrap(err, resource)
		}
		mangas = append(mangas, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, resource)
	}

	// An offset past the end returns no rows, so count separately
	if len(mangas) == 0 && offset > 0 {
		countSQL := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, schema.CoreManga.Table)
		if err := repository.pool.QueryRow(context, countSQL).Scan(&total); err != nil {
			return nil, 0, dberr.Wrap(err, resource)
		}
	}

	return mangas, total, nil
}

// FindByID retrieves a manga by primary key.
func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Manga, error) {
	sql := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		mangaColumns, schema.CoreManga.Table, schema.CoreManga.ID)

	m, err := scanManga(repository.pool.QueryRow(context, sql, id))
	if err != nil {
		return nil, dberr.Wrap(err, resource)
	}
	return m, nil
}

// FindBySlug retrieves a manga by slug.
func (repository *PostgresRepository) FindBySlug(context context.Context, slug string) (*Manga, error) {
	sql := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		mangaColumns, schema.CoreManga.Table, schema.CoreManga.Slug)

	m, err := scanManga(repository.pool.QueryRow(context, sql, slug))
	if err != nil {
		return nil, dberr.Wrap(err, resource)
	}
	return m, nil
}

/*
Search performs a case-insensitive substring match on the text columns.

Description: The term is escaped so '%' and '_' typed by a reader match
themselves. Each row carries its denormalized chapter count, so no per-row
follow-up query is needed.
*/
func (repository *PostgresRepository) Search(context context.Context, term string, limit int) ([]*Manga, error) {
	sql := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE %s ILIKE $1 ESCAPE '\' OR %s ILIKE $1 ESCAPE '\'
		   OR %s ILIKE $1 ESCAPE '\' OR %s ILIKE $1 ESCAPE '\'
		ORDER BY %s ASC
		LIMIT $2`,
		mangaColumns, schema.CoreManga.Table,
		schema.CoreManga.Title, schema.CoreManga.Description,
		schema.CoreManga.Author, schema.CoreManga.Genre,
		schema.CoreManga.Title)

	return repository.collect(context, sql, "%"+query.EscapeLike(term)+"%", limit)
}

// ListByCategory returns manga carrying the category name, ignoring case.
func (repository *PostgresRepository) ListByCategory(context context.Context, name string) ([]*Manga, error) {
	sql := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE EXISTS (SELECT 1 FROM unnest(%s) AS label WHERE LOWER(label) = LOWER($1))
		ORDER BY %s ASC`,
		mangaColumns, schema.CoreManga.Table, schema.CoreManga.Categories, schema.CoreManga.Title)

	return repository.collect(context, sql, name)
}

// Create persists a new manga row.
func (repository *PostgresRepository) Create(context context.Context, manga *Manga) error {
	sql := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		schema.CoreManga.Table, mangaColumns)

	now := time.Now()
	manga.CreatedAt, manga.UpdatedAt = now, now
	if manga.Categories == nil {
		manga.Categories = []string{}
	}

	_, err := repository.pool.Exec(context, sql,
		manga.ID, manga.Title, manga.Slug, manga.Description, manga.Author, manga.Genre,
		manga.ImageURL, manga.Status, manga.Categories, manga.ChapterCount,
		manga.CreatedAt, manga.UpdatedAt,
	)
	return mapWriteError(err)
}

// Update persists the mutable fields. The chapter count is owned by the chapter store.
func (repository *PostgresRepository) Update(context context.Context, manga *Manga) error {
	sql := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = $5, %s = $6, %s = $7, %s = $8, %s = $9, %s = $10
		WHERE %s = $1
		RETURNING %s`,
		schema.CoreManga.Table,
		schema.CoreManga.Title, schema.CoreManga.Slug, schema.CoreManga.Description,
		schema.CoreManga.Author, schema.CoreManga.Genre, schema.CoreManga.ImageURL,
		schema.CoreManga.Status, schema.CoreManga.Categories, schema.CoreManga.UpdatedAt,
		schema.CoreManga.ID, schema.CoreManga.ChapterCount)

	manga.UpdatedAt = time.Now()
	err := repository.pool.QueryRow(context, sql,
		manga.ID, manga.Title, manga.Slug, manga.Description, manga.Author, manga.Genre,
		manga.ImageURL, manga.Status, manga.Categories, manga.UpdatedAt,
	).Scan(&manga.ChapterCount)
	return mapWriteError(err)
}

/*
Delete removes a manga and its chapters atomically.

Description: Chapter rows are deleted explicitly (rather than relying on the
foreign key cascade alone) so their file URLs can be returned for cleanup.
*/
func (repository *PostgresRepository) Delete(context context.Context, id string) ([]string, error) {
	chaptersSQL := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 RETURNING %s`,
		schema.CoreChapter.Table, schema.CoreChapter.MangaID, schema.CoreChapter.FileURL)
	mangaSQL := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 RETURNING %s`,
		schema.CoreManga.Table, schema.CoreManga.ID, schema.CoreManga.ImageURL)

	var files []string
	err := postgres.WithTx(context, repository.pool, func(tx pgx.Tx) error {
		rows, err := tx.Query(context, chaptersSQL, id)
		if err != nil {
			return dberr.Wrap(err, resource)
		}
		chapterFiles, err := pgx.CollectRows(rows, pgx.RowTo[string])
		if err != nil {
			return dberr.Wrap(err, resource)
		}

		var coverURL string
		if err := tx.QueryRow(context, mangaSQL, id).Scan(&coverURL); err != nil {
			return dberr.Wrap(err, resource)
		}

		files = append(files, coverURL)
		files = append(files, chapterFiles...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func mapWriteError(err error) error {
	switch {
	case err == nil:
		return nil
	case dberr.IsUniqueViolation(err, constraintTitle):
		return apperr.Conflict(MsgDuplicateTitle)
	case dberr.IsUniqueViolation(err, constraintSlug):
		return errSlugTaken
	default:
		return dberr.Wrap(err, resource)
	}
}
