// Copyright (c) 2026 GalleManga. All rights reserved.

// Package library lists what a reader owns and the mangas they follow.
// A library entry is the entitlement checked before a paid chapter is served.
package library

import "time"

// Entry is an owned chapter with enough context to render a bookshelf.
type Entry struct {
	ID            string    `json:"id"`
	MangaID       string    `json:"mangaId"`
	MangaTitle    string    `json:"mangaTitle"`
	MangaSlug     string    `json:"mangaSlug"`
	ChapterID     string    `json:"chapterId"`
	ChapterNumber int       `json:"chapterNumber"`
	ChapterTitle  string    `json:"chapterTitle"`
	FileURL       string    `json:"fileUrl"`
	PageCount     int       `json:"pageCount"`
	AcquiredAt    time.Time `json:"acquiredAt"`
}

// Favorite is a followed manga.
type Favorite struct {
	MangaID      string    `json:"mangaId"`
	Title        string    `json:"title"`
	Slug         string    `json:"slug"`
	ImageURL     string    `json:"imageUrl"`
	Status       string    `json:"status"`
	ChapterCount int       `json:"chapterCount"`
	FavoritedAt  time.Time `json:"favoritedAt"`
}

const (
	FieldMangaID    = "mangaId"
	FieldIsFavorite = "isFavorite"
)
