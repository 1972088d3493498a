// Copyright (c) 2026 GalleManga. All rights reserved.

package library

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gallemanga/gallemanga/internal/platform/apperr"
	"github.com/gallemanga/gallemanga/internal/platform/database/schema"
	"github.com/gallemanga/gallemanga/internal/platform/dberr"
	"github.com/gallemanga/gallemanga/internal/platform/postgres"
)

var (
	entries   = schema.LibraryEntry
	favorites = schema.LibraryFavorite
	mangas    = schema.CoreManga
	chapters  = schema.CoreChapter
)

// PostgresRepository implements [Repository] with pgx.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository constructs the library store.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Entries joins each owned chapter with its manga, newest first.
func (repository *PostgresRepository) Entries(context context.Context, userID string) ([]*Entry, error) {
	query := fmt.Sprintf(`
		SELECT e.%s, m.%s, m.%s, m.%s, c.%s, c.%s, c.%s, c.%s, c.%s, e.%s
		FROM %s e
		JOIN %s c ON c.%s = e.%s
		JOIN %s m ON m.%s = e.%s
		WHERE e.%s = $1
		ORDER BY e.%s DESC`,
		entries.ID, mangas.ID, mangas.Title, mangas.Slug,
		chapters.ID, chapters.ChapterNumber, chapters.Title, chapters.FileURL, chapters.PageCount, entries.CreatedAt,
		entries.Table,
		chapters.Table, chapters.ID, entries.ChapterID,
		mangas.Table, mangas.ID, entries.MangaID,
		entries.UserID, entries.CreatedAt)

	rows, err := repository.db.Query(context, query, userID)
	if err != nil {
		return nil, dberr.Wrap(err, "Library entry")
	}
	defer rows.Close()

	list := make([]*Entry, 0)
	for rows.Next() {
		e := &Entry{}
		if err := rows.Scan(&e.ID, &e.MangaID, &e.MangaTitle, &e.MangaSlug,
			&e.ChapterID, &e.ChapterNumber, &e.ChapterTitle, &e.FileURL, &e.PageCount, &e.AcquiredAt); err != nil {
			return nil, dberr.Wrap(err, "Library entry")
		}
		list = append(list, e)
	}
	return list, dberr.Wrap(rows.Err(), "Library entry")
}

func (repository *PostgresRepository) Owns(context context.Context, userID, chapterID string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1 AND %s = $2)`,
		entries.Table, entries.UserID, entries.ChapterID)

	var owned bool
	if err := repository.db.QueryRow(context, query, userID, chapterID).Scan(&owned); err != nil {
		return false, dberr.Wrap(err, "Library entry")
	}
	return owned, nil
}

/*
ToggleFavorite removes the favorite when present, otherwise adds it.

Returns:
  - bool: true when the manga is now a favorite
  - error: apperr.NotFound when the manga does not exist
*/
func (repository *PostgresRepository) ToggleFavorite(context context.Context, userID, mangaID string) (bool, error) {
	deleteQuery := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`,
		favorites.Table, favorites.UserID, favorites.MangaID)
	insertQuery := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s) VALUES ($1, $2, NOW())
		ON CONFLICT (%s, %s) DO NOTHING`,
		favorites.Table, favorites.UserID, favorites.MangaID, favorites.CreatedAt,
		favorites.UserID, favorites.MangaID)

	var isFavorite bool
	err := postgres.WithTx(context, repository.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(context, deleteQuery, userID, mangaID)
		if err != nil {
			return dberr.Wrap(err, "Manga")
		}
		if tag.RowsAffected() > 0 {
			return nil
		}

		if _, err := tx.Exec(context, insertQuery, userID, mangaID); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
				return apperr.NotFound("Manga")
			}
			return dberr.Wrap(err, "Manga")
		}
		isFavorite = true
		return nil
	})
	return isFavorite, err
}

func (repository *PostgresRepository) Favorites(context context.Context, userID string) ([]*Favorite, error) {
	query := fmt.Sprintf(`
		SELECT m.%s, m.%s, m.%s, m.%s, m.%s, m.%s, f.%s
		FROM %s f
		JOIN %s m ON m.%s = f.%s
		WHERE f.%s = $1
		ORDER BY f.%s DESC`,
		mangas.ID, mangas.Title, mangas.Slug, mangas.ImageURL, mangas.Status, mangas.ChapterCount, favorites.CreatedAt,
		favorites.Table,
		mangas.Table, mangas.ID, favorites.MangaID,
		favorites.UserID, favorites.CreatedAt)

	rows, err := repository.db.Query(context, query, userID)
	if err != nil {
		return nil, dberr.Wrap(err, "Favorite")
	}
	defer rows.Close()

	list := make([]*Favorite, 0)
	for rows.Next() {
		f := &Favorite{}
		if err := rows.Scan(&f.MangaID, &f.Title, &f.Slug, &f.ImageURL, &f.Status, &f.ChapterCount, &f.FavoritedAt); err != nil {
			return nil, dberr.Wrap(err, "Favorite")
		}
		list = append(list, f)
	}
	return list, dberr.Wrap(rows.Err(), "Favorite")
}
