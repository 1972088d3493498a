// Copyright (c) 2026 GalleManga. All rights reserved.

// Package category manages the genre labels attached to manga.
//
// Manga reference categories by name, so a rename or delete is propagated to
// every manga's category list in the same transaction.
package category

import "time"

// Category is a named label used to browse the catalog.
type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

const (
	FieldName        = "name"
	FieldDescription = "description"

	MaxNameLength = 64

	MsgDuplicateName = "A category with this name already exists"
)
