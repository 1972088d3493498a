// Copyright (c) 2026 GalleManga. All rights reserved.

package category

import "context"

type Repository interface {
	List(context context.Context) ([]*Category, error)
	GetByID(context context.Context, id string) (*Category, error)
	Create(context context.Context, category *Category) error

	// Update renames the category and rewrites it in every manga's list.
	Update(context context.Context, category *Category) error

	// Delete removes the category and strips it from every manga's list.
	Delete(context context.Context, id string) error
}
