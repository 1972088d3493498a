// Copyright (c) 2026 GalleManga. All rights reserved.

package schema

// CoreChapterTable represents the 'core.chapter' table
type CoreChapterTable struct {
	Table         string
	ID            string
	MangaID       string
	ChapterNumber string
	Title         string
	Price         string
	FileURL       string
	PageCount     string
	Published     string
	CreatedAt     string
	UpdatedAt     string

	// UniqueNumber is the (mangaid, chapternumber) constraint.
	UniqueNumber string
}

// CoreChapter is the schema definition for core.chapter
var CoreChapter = CoreChapterTable{
	Table:         "core.chapter",
	ID:            "id",
	MangaID:       "mangaid",
	ChapterNumber: "chapternumber",
	Title:         "title",
	Price:         "price",
	FileURL:       "fileurl",
	PageCount:     "pagecount",
	Published:     "published",
	CreatedAt:     "createdat",
	UpdatedAt:     "updatedat",
	UniqueNumber:  "chapter_manga_number_key",
}

func (t CoreChapterTable) Columns() []string {
	return []string{
		t.ID, t.MangaID, t.ChapterNumber, t.Title, t.Price, t.FileURL,
		t.PageCount, t.Published, t.CreatedAt, t.UpdatedAt,
	}
}
