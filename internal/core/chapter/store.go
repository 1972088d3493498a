// Copyright (c) 2026 GalleManga. All rights reserved.

package chapter

import "context"

// # Repository Interfaces

// ChapterRepository defines data access for chapters.
type ChapterRepository interface {

	// ListByManga returns chapters ordered by number. Drafts are included only on request.
	ListByManga(context context.Context, mangaID string, includeDrafts bool) ([]*Chapter, error)

	// FindByID returns a chapter by primary key.
	FindByID(context context.Context, id string) (*Chapter, error)

	/*
		Create persists a chapter and refreshes the manga's chapter count.

		Returns:
		  - error: apperr.NotFound for an unknown manga, apperr.Conflict on a duplicate number
	*/
	Create(context context.Context, chapter *Chapter) error

	// Update persists the mutable fields and refreshes the manga's chapter count.
	Update(context context.Context, chapter *Chapter) error

	/*
		Delete removes a chapter and refreshes the manga's chapter count.

		Returns:
		  - string: Public URL of the orphaned PDF
	*/
	Delete(context context.Context, id string) (string, error)
}
