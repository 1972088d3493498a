// Copyright (c) 2026 GalleManga. All rights reserved.

package category

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gallemanga/gallemanga/internal/platform/apperr"
	"github.com/gallemanga/gallemanga/internal/platform/database/schema"
	"github.com/gallemanga/gallemanga/internal/platform/dberr"
	"github.com/gallemanga/gallemanga/internal/platform/postgres"
)

const resource = "Category"

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

var selectColumns = fmt.Sprintf(`%s, %s, %s, %s`,
	schema.CoreCategory.ID, schema.CoreCategory.Name, schema.CoreCategory.Description, schema.CoreCategory.CreatedAt)

func (repository *PostgresRepository) List(context context.Context) ([]*Category, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY LOWER(%s) ASC`,
		selectColumns, schema.CoreCategory.Table, schema.CoreCategory.Name)

	rows, err := repository.db.Query(context, query)
	if err != nil {
		return nil, dberr.Wrap(err, resource)
	}
	defer rows.Close()

	categories := make([]*Category, 0)
	for rows.Next() {
		c := &Category{}
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt); err != nil {
			return nil, dberr.Wrap(err, resource)
		}
		categories = append(categories, c)
	}
	return categories, dberr.Wrap(rows.Err(), resource)
}

func (repository *PostgresRepository) GetByID(context context.Context, id string) (*Category, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		selectColumns, schema.CoreCategory.Table, schema.CoreCategory.ID)

	c := &Category{}
	err := repository.db.QueryRow(context, query, id).Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt)
	if err != nil {
		return nil, dberr.Wrap(err, resource)
	}
	return c, nil
}

func (repository *PostgresRepository) Create(context context.Context, category *Category) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES ($1, $2, $3, $4)`,
		schema.CoreCategory.Table, selectColumns)

	if category.CreatedAt.IsZero() {
		category.CreatedAt = time.Now()
	}

	_, err := repository.db.Exec(context, query, category.ID, category.Name, category.Description, category.CreatedAt)
	return mapWriteError(err)
}

func (repository *PostgresRepository) Update(context context.Context, category *Category) error {
	lockQuery := fmt.Sprintf(`SELECT %s, %s FROM %s WHERE %s = $1 FOR UPDATE`,
		schema.CoreCategory.Name, schema.CoreCategory.CreatedAt, schema.CoreCategory.Table, schema.CoreCategory.ID)
	updateQuery := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = $3 WHERE %s = $1`,
		schema.CoreCategory.Table, schema.CoreCategory.Name, schema.CoreCategory.Description, schema.CoreCategory.ID)
	propagateQuery := fmt.Sprintf(`
		UPDATE %s SET %s = ARRAY(
			SELECT CASE WHEN LOWER(label) = LOWER($1) THEN $2 ELSE label END
			FROM unnest(%s) WITH ORDINALITY AS labels(label, position) ORDER BY position
		)
		WHERE %s`,
		schema.CoreManga.Table, schema.CoreManga.Categories, schema.CoreManga.Categories, labelMatch)

	return postgres.WithTx(context, repository.db, func(tx pgx.Tx) error {
		var previousName string
		if err := tx.QueryRow(context, lockQuery, category.ID).Scan(&previousName, &category.CreatedAt); err != nil {
			return dberr.Wrap(err, resource)
		}

		if _, err := tx.Exec(context, updateQuery, category.ID, category.Name, category.Description); err != nil {
			return mapWriteError(err)
		}

		if previousName != category.Name {
			if _, err := tx.Exec(context, propagateQuery, previousName, category.Name); err != nil {
				return dberr.Wrap(err, "Manga")
			}
		}
		return nil
	})
}

func (repository *PostgresRepository) Delete(context context.Context, id string) error {
	deleteQuery := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 RETURNING %s`,
		schema.CoreCategory.Table, schema.CoreCategory.ID, schema.CoreCategory.Name)
	propagateQuery := fmt.Sprintf(`
		UPDATE %s SET %s = ARRAY(
			SELECT label FROM unnest(%s) WITH ORDINALITY AS labels(label, position)
			WHERE LOWER(label) <> LOWER($1) ORDER BY position
		)
		WHERE %s`,
		schema.CoreManga.Table, schema.CoreManga.Categories, schema.CoreManga.Categories, labelMatch)

	return postgres.WithTx(context, repository.db, func(tx pgx.Tx) error {
		var name string
		if err := tx.QueryRow(context, deleteQuery, id).Scan(&name); err != nil {
			return dberr.Wrap(err, resource)
		}
		if _, err := tx.Exec(context, propagateQuery, name); err != nil {
			return dberr.Wrap(err, "Manga")
		}
		return nil
	})
}

// labelMatch selects manga carrying the label $1 in any letter case, the same
// comparison the by-category listing uses.
var labelMatch = fmt.Sprintf(`EXISTS (SELECT 1 FROM unnest(%s) AS label WHERE LOWER(label) = LOWER($1))`,
	schema.CoreManga.Categories)

func mapWriteError(err error) error {
	if dberr.IsUniqueViolation(err, "category_name_key") {
		return apperr.Conflict(MsgDuplicateName)
	}
	return dberr.Wrap(err, resource)
}
