// Copyright (c) 2026 GalleManga. All rights reserved.

package schema

// LibraryEntryTable represents the 'library.entry' table
type LibraryEntryTable struct {
	Table     string
	ID        string
	UserID    string
	MangaID   string
	ChapterID string
	CreatedAt string
}

// LibraryEntry is the schema definition for library.entry
var LibraryEntry = LibraryEntryTable{
	Table:     "library.entry",
	ID:        "id",
	UserID:    "userid",
	MangaID:   "mangaid",
	ChapterID: "chapterid",
	CreatedAt: "createdat",
}

// LibraryFavoriteTable represents the 'library.favorite' table
type LibraryFavoriteTable struct {
	Table     string
	UserID    string
	MangaID   string
	CreatedAt string
}

// LibraryFavorite is the schema definition for library.favorite
var LibraryFavorite = LibraryFavoriteTable{
	Table:     "library.favorite",
	UserID:    "userid",
	MangaID:   "mangaid",
	CreatedAt: "createdat",
}
