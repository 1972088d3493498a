// Copyright (c) 2026 GalleManga. All rights reserved.

package chapter_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gallemanga/gallemanga/internal/core/chapter"
	"github.com/gallemanga/gallemanga/internal/core/manga"
	"github.com/gallemanga/gallemanga/internal/platform/apperr"
	"github.com/gallemanga/gallemanga/internal/platform/postgres/pgtest"
	"github.com/gallemanga/gallemanga/pkg/uuid"
)

/*
TestChapterRepository_CountAndConstraints verifies the published chapter
count, the per-manga number uniqueness and the parent check.
*/
func TestChapterRepository_CountAndConstraints(t *testing.T) {
	pool := pgtest.Open(t)
	ctx := context.Background()
	mangas := manga.NewPostgresRepository(pool)
	repo := chapter.NewChapterRepository(pool)

	parent := &manga.Manga{ID: uuid.New(), Title: "Night Ferry", Slug: "night-ferry", Status: manga.StatusOngoing}
	require.NoError(t, mangas.Create(ctx, parent))

	newChapter := func(number int, published bool) *chapter.Chapter {
		return &chapter.Chapter{
			ID: uuid.New(), MangaID: parent.ID, ChapterNumber: number,
			FileURL: "/uploads/chapter/" + uuid.New() + ".pdf", PageCount: 3, Published: published,
		}
	}

	first := newChapter(1, true)
	require.NoError(t, repo.Create(ctx, first))
	draft := newChapter(2, false)
	require.NoError(t, repo.Create(ctx, draft))

	stored, err := mangas.FindByID(ctx, parent.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.ChapterCount)

	draft.Published = true
	require.NoError(t, repo.Update(ctx, draft))
	stored, err = mangas.FindByID(ctx, parent.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.ChapterCount)

	err = repo.Create(ctx, newChapter(1, true))
	assert.True(t, apperr.HasCode(err, apperr.CodeConflict))

	orphan := newChapter(1, true)
	orphan.MangaID = uuid.New()
	err = repo.Create(ctx, orphan)
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))

	listed, err := repo.ListByManga(ctx, parent.ID, false)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, 1, listed[0].ChapterNumber)

	fileURL, err := repo.Delete(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.FileURL, fileURL)

	stored, err = mangas.FindByID(ctx, parent.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.ChapterCount)

	_, err = repo.FindByID(ctx, first.ID)
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))
}
