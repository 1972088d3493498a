// Copyright (c) 2026 GalleManga. All rights reserved.

/*
Package chapter manages the purchasable units of a manga.

Each chapter is one PDF with a page count taken at upload time and a price in
GalleCoins. A price of zero makes the chapter free to read.

# Invariants

  - (mangaId, chapterNumber) is unique.
  - The parent manga's chapterCount equals its number of published chapters
    after every write, since both change in one transaction.
*/
package chapter

import (
	"context"
	"io"
	"time"

	"github.com/gallemanga/gallemanga/internal/platform/pdfpage"
	"github.com/gallemanga/gallemanga/internal/platform/storage"
)

// Chapter is a single issue of a manga.
type Chapter struct {
	ID            string    `json:"id"`
	MangaID       string    `json:"mangaId"`
	ChapterNumber int       `json:"chapterNumber"`
	Title         string    `json:"title"`
	Price         int64     `json:"price"`
	PageCount     int       `json:"pageCount"`
	Published     bool      `json:"published"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`

	// FileURL is released only through the content endpoint or a purchase.
	FileURL string `json:"-"`
}

// IsFree reports whether the chapter can be read without a purchase.
func (chapter *Chapter) IsFree() bool {
	return chapter.Price == 0
}

// Content is the readable part of a chapter returned to entitled callers.
type Content struct {
	ChapterID string `json:"chapterId"`
	FileURL   string `json:"fileUrl"`
	PageCount int    `json:"pageCount"`
}

// # Collaborators

// FileStore persists uploaded files and removes them by public URL.
type FileStore interface {
	Save(context context.Context, kind storage.Kind, source io.Reader) (*storage.StoredFile, error)
	Remove(publicURL string) error
	MaxBytes() int64
}

// PageCounter counts the pages of a PDF on disk.
type PageCounter interface {
	Count(ctx context.Context, path string) (pdfpage.Result, error)
}

// Entitlements reports whether a user owns a chapter.
type Entitlements interface {
	Owns(context context.Context, userID, chapterID string) (bool, error)
}

// # Field Identifiers

const (
	FieldChapterNumber = "chapterNumber"
	FieldTitle         = "title"
	FieldPrice         = "price"
	FieldPublished     = "published"
	FieldFile          = "file"

	MaxTitleLength = 200

	MsgDuplicateNumber = "This chapter number already exists for the manga"
	MsgUnreadablePDF   = "Unreadable PDF"
)
