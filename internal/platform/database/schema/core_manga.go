// Copyright (c) 2026 GalleManga. All rights reserved.

package schema

// CoreMangaTable represents the 'core.manga' table
type CoreMangaTable struct {
	Table        string
	ID           string
	Title        string
	Slug         string
	Description  string
	Author       string
	Genre        string
	ImageURL     string
	Status       string
	Categories   string
	ChapterCount string
	CreatedAt    string
	UpdatedAt    string
}

// CoreManga is the schema definition for core.manga
var CoreManga = CoreMangaTable{
	Table:        "core.manga",
	ID:           "id",
	Title:        "title",
	Slug:         "slug",
	Description:  "description",
	Author:       "author",
	Genre:        "genre",
	ImageURL:     "imageurl",
	Status:       "status",
	Categories:   "categories",
	ChapterCount: "chaptercount",
	CreatedAt:    "createdat",
	UpdatedAt:    "updatedat",
}

func (t CoreMangaTable) Columns() []string {
	return []string{
		t.ID, t.Title, t.Slug, t.Description, t.Author, t.Genre, t.ImageURL,
		t.Status, t.Categories, t.ChapterCount, t.CreatedAt, t.UpdatedAt,
	}
}
