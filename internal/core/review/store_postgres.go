// Copyright (c) 2026 GalleManga. All rights reserved.

package review

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gallemanga/gallemanga/internal/platform/apperr"
	"github.com/gallemanga/gallemanga/internal/platform/database/schema"
	"github.com/gallemanga/gallemanga/internal/platform/dberr"
)

const resource = "Review"

var (
	reviews  = schema.SocialReview
	accounts = schema.UsersAccount
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

var selectReview = fmt.Sprintf(`
	SELECT r.%s, r.%s, a.%s, r.%s, r.%s, r.%s, r.%s, r.%s
	FROM %s r JOIN %s a ON a.%s = r.%s`,
	reviews.ID, reviews.UserID, accounts.Username, reviews.MangaID, reviews.Rating, reviews.Comment,
	reviews.CreatedAt, reviews.UpdatedAt,
	reviews.Table, accounts.Table, accounts.ID, reviews.UserID)

func scanReview(row pgx.Row) (*Review, error) {
	r := &Review{}
	err := row.Scan(&r.ID, &r.UserID, &r.Username, &r.MangaID, &r.Rating, &r.Comment, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

func (repository *PostgresRepository) ListByManga(context context.Context, mangaID string) ([]*Review, error) {
	query := fmt.Sprintf(`%s WHERE r.%s = $1 ORDER BY r.%s DESC`, selectReview, reviews.MangaID, reviews.CreatedAt)

	rows, err := repository.db.Query(context, query, mangaID)
	if err != nil {
		return nil, dberr.Wrap(err, resource)
	}
	defer rows.Close()

	list := make([]*Review, 0)
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return nil, dberr.Wrap(err, resource)
		}
		list = append(list, r)
	}
	return list, dberr.Wrap(rows.Err(), resource)
}

func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Review, error) {
	query := fmt.Sprintf(`%s WHERE r.%s = $1`, selectReview, reviews.ID)

	r, err := scanReview(repository.db.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, resource)
	}
	return r, nil
}

func (repository *PostgresRepository) Create(context context.Context, review *Review) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s) VALUES ($1, $2, $3, $4, $5, $6, $6)`,
		reviews.Table, reviews.ID, reviews.UserID, reviews.MangaID, reviews.Rating, reviews.Comment,
		reviews.CreatedAt, reviews.UpdatedAt)

	now := time.Now()
	review.CreatedAt, review.UpdatedAt = now, now

	_, err := repository.db.Exec(context, query, review.ID, review.UserID, review.MangaID, review.Rating, review.Comment, now)
	if dberr.IsUniqueViolation(err, "review_user_manga_key") {
		return apperr.Conflict(MsgAlreadyReviewed)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
		return apperr.NotFound("Manga")
	}
	return dberr.Wrap(err, resource)
}

func (repository *PostgresRepository) Delete(context context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, reviews.Table, reviews.ID)

	tag, err := repository.db.Exec(context, query, id)
	if err != nil {
		return dberr.Wrap(err, resource)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(resource)
	}
	return nil
}
