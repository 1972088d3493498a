// Copyright (c) 2026 GalleManga. All rights reserved.

/*
Package manga defines the catalog aggregate of GalleManga.

A manga owns its chapters and its cover image. The chapter count shown in
listings is a denormalized column kept in step by the chapter store inside the
same transaction that adds or removes a chapter.

Core Responsibility:

  - Catalogue: Title, description, author, genre and publication status.
  - Discovery: Category labels, substring search and slug lookups.
  - Assets: Cover upload, replacement and removal on delete.
*/
package manga

import (
	"context"
	"io"
	"time"

	"github.com/gallemanga/gallemanga/internal/platform/storage"
)

// # Domain Enums

// Status represents the publication status of a manga.
type Status string

const (
	// StatusOngoing indicates the publication is actively updating.
	StatusOngoing Status = "ongoing"

	// StatusCompleted indicates no further chapters are expected.
	StatusCompleted Status = "completed"

	// StatusHiatus indicates the publication is paused.
	StatusHiatus Status = "hiatus"
)

// IsValid reports whether s is a recognised [Status] value.
func (s Status) IsValid() bool {
	switch s {
	case StatusOngoing, StatusCompleted, StatusHiatus:
		return true
	}
	return false
}

// # Core Entities

// Manga is a single serialised publication in the catalogue.
type Manga struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Slug         string    `json:"slug"`
	Description  string    `json:"description"`
	Author       string    `json:"author"`
	Genre        string    `json:"genre"`
	ImageURL     string    `json:"imageUrl"`
	Status       Status    `json:"status"`
	Categories   []string  `json:"categories"`
	ChapterCount int       `json:"chapterCount"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// # Collaborators

// FileStore persists uploaded files and removes them by public URL.
type FileStore interface {
	Save(context context.Context, kind storage.Kind, source io.Reader) (*storage.StoredFile, error)
	Remove(publicURL string) error
	MaxBytes() int64
}

// # Field Identifiers

const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldAuthor      = "author"
	FieldGenre       = "genre"
	FieldStatus      = "status"
	FieldCategories  = "categories"
	FieldImage       = "image"
	FieldQuery       = "q"
)

const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 5000
	MaxSearchResults     = 100

	MsgDuplicateTitle = "A manga with this title already exists"
)
