// Copyright (c) 2026 GalleManga. All rights reserved.

package manga

import (
	"context"
	"errors"
)

// errSlugTaken reports a slug collision between two distinct titles.
var errSlugTaken = errors.New("manga: slug already taken")

// Repository defines the data access contract for manga.
type Repository interface {

	/*
		List returns one page of manga, newest first, and the total count.
	*/
	List(context context.Context, limit, offset int) ([]*Manga, int, error)

	// FindByID returns a manga by primary key.
	FindByID(context context.Context, id string) (*Manga, error)

	// FindBySlug returns a manga by its URL slug.
	FindBySlug(context context.Context, slug string) (*Manga, error)

	/*
		Search returns manga whose title, description, author or genre contain
		term, ignoring case. Wildcards in term match literally.
	*/
	Search(context context.Context, term string, limit int) ([]*Manga, error)

	// ListByCategory returns manga labelled with name, ignoring case.
	ListByCategory(context context.Context, name string) ([]*Manga, error)

	/*
		Create persists a new manga.

		Returns:
		  - error: apperr.Conflict on a duplicate title, errSlugTaken on a slug collision
	*/
	Create(context context.Context, manga *Manga) error

	// Update persists the mutable fields of a manga.
	Update(context context.Context, manga *Manga) error

	/*
		Delete removes the manga and its chapters in one transaction.

		Returns:
		  - []string: Public URLs of the cover and chapter files now orphaned
		  - error: apperr.NotFound or storage errors
	*/
	Delete(context context.Context, id string) ([]string, error)
}
