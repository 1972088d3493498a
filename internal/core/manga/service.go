// Copyright (c) 2026 GalleManga. All rights reserved.

package manga

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/gallemanga/gallemanga/internal/platform/apperr"
	"github.com/gallemanga/gallemanga/internal/platform/storage"
	"github.com/gallemanga/gallemanga/internal/platform/validate"
	"github.com/gallemanga/gallemanga/pkg/pointer"
	"github.com/gallemanga/gallemanga/pkg/query"
	"github.com/gallemanga/gallemanga/pkg/slice"
	"github.com/gallemanga/gallemanga/pkg/slug"
	"github.com/gallemanga/gallemanga/pkg/uuid"
)

// # Service

// Service implements catalog use cases for manga.
type Service struct {
	repo   Repository
	files  FileStore
	logger *slog.Logger
}

// NewService constructs a manga [Service].
func NewService(repo Repository, files FileStore, logger *slog.Logger) *Service {
	return &Service{repo: repo, files: files, logger: logger}
}

// Input carries the admin form. Nil fields are left unchanged on update.
type Input struct {
	Title       *string
	Description *string
	Author      *string
	Genre       *string
	Status      *string

	// Categories is the comma-separated label list.
	Categories *string
}

// MaxUploadBytes exposes the cover size cap to the HTTP layer.
func (service *Service) MaxUploadBytes() int64 {
	return service.files.MaxBytes()
}

// # Read Operations

// List returns a page of the catalogue.
func (service *Service) List(context context.Context, limit, offset int) ([]*Manga, int, error) {
	return service.repo.List(context, limit, offset)
}

// Get resolves a manga by UUID or slug. UUID lookups take precedence.
func (service *Service) Get(context context.Context, identifier string) (*Manga, error) {
	if uuid.Valid(identifier) {
		return service.repo.FindByID(context, identifier)
	}
	return service.repo.FindBySlug(context, identifier)
}

// Search matches term against the text columns of every manga.
func (service *Service) Search(context context.Context, term string) ([]*Manga, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, validate.RequiredError(FieldQuery, "Search query is required")
	}
	return service.repo.Search(context, term, MaxSearchResults)
}

// ByCategory lists manga labelled with the category name.
func (service *Service) ByCategory(context context.Context, name string) ([]*Manga, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validate.RequiredError(FieldCategories, "Category is required")
	}
	return service.repo.ListByCategory(context, name)
}

// # Mutations

/*
Create validates the form, stores the optional cover and persists the manga.

Description: The cover is written first so its URL can be stored with the row.
If the row cannot be written the cover file is removed again.

Parameters:
  - context: context.Context
  - input: Input (Title and Description required)
  - cover: io.Reader (nil when no image was uploaded)

Returns:
  - *Manga: The created manga
  - error: Validation, 409 on duplicate title, 422 on a rejected image
*/
func (service *Service) Create(context context.Context, input Input, cover io.Reader) (*Manga, error) {
	manga := &Manga{ID: uuid.New(), Status: StatusOngoing}
	if err := apply(manga, input, true); err != nil {
		return nil, err
	}

	if cover != nil {
		stored, err := service.files.Save(context, storage.KindCover, cover)
		if err != nil {
			return nil, err
		}
		manga.ImageURL = stored.URL
	}

	if err := service.insert(context, manga); err != nil {
		service.discard(context, manga.ImageURL)
		return nil, err
	}

	service.logger.InfoContext(context, "manga_created", slog.String("manga_id", manga.ID))
	return manga, nil
}

// insert writes the row, disambiguating the slug once if another title already owns it.
func (service *Service) insert(context context.Context, manga *Manga) error {
	err := service.repo.Create(context, manga)
	if errors.Is(err, errSlugTaken) {
		manga.Slug = manga.Slug + "-" + manga.ID[len(manga.ID)-6:]
		err = service.repo.Create(context, manga)
	}
	if errors.Is(err, errSlugTaken) {
		return apperr.Conflict(MsgDuplicateTitle)
	}
	return err
}

/*
Update applies the non-nil form fields and an optional replacement cover.

Description: A replaced cover is removed from disk only after the row points
at the new file.
*/
func (service *Service) Update(context context.Context, id string, input Input, cover io.Reader) (*Manga, error) {
	manga, err := service.repo.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	if err := apply(manga, input, false); err != nil {
		return nil, err
	}

	previousCover := manga.ImageURL
	if cover != nil {
		stored, err := service.files.Save(context, storage.KindCover, cover)
		if err != nil {
			return nil, err
		}
		manga.ImageURL = stored.URL
	}

	err = service.repo.Update(context, manga)
	if errors.Is(err, errSlugTaken) {
		manga.Slug = manga.Slug + "-" + manga.ID[len(manga.ID)-6:]
		err = service.repo.Update(context, manga)
	}
	if err != nil {
		if cover != nil {
			service.discard(context, manga.ImageURL)
		}
		if errors.Is(err, errSlugTaken) {
			return nil, apperr.Conflict(MsgDuplicateTitle)
		}
		return nil, err
	}

	if cover != nil && previousCover != "" {
		service.discard(context, previousCover)
	}

	service.logger.InfoContext(context, "manga_updated", slog.String("manga_id", manga.ID))
	return manga, nil
}

/*
Delete removes a manga, its chapters, its cover and every chapter PDF.

Description: Rows go first in a single transaction. Files are removed after
commit, so a failed delete never leaves rows pointing at missing files.
*/
func (service *Service) Delete(context context.Context, id string) error {
	files, err := service.repo.Delete(context, id)
	if err != nil {
		return err
	}
	files = slice.Filter(files, func(url string) bool { return url != "" })

	for _, file := range files {
		service.discard(context, file)
	}

	service.logger.InfoContext(context, "manga_deleted",
		slog.String("manga_id", id),
		slog.Int("files_removed", len(files)),
	)
	return nil
}

func (service *Service) discard(context context.Context, publicURL string) {
	if publicURL == "" {
		return
	}
	if err := service.files.Remove(publicURL); err != nil {
		service.logger.WarnContext(context, "upload_remove_failed",
			slog.String("url", publicURL),
			slog.String("error", err.Error()),
		)
	}
}

// # Validation

// slugFor derives the URL slug of a title. Titles with no ASCII letters or
// digits (e.g. Japanese or Korean) fall back to an id-based slug.
func slugFor(id, title string) string {
	if derived := slug.From(title); derived != "" {
		return derived
	}
	return "manga-" + id[len(id)-6:]
}

func apply(manga *Manga, input Input, creating bool) error {
	validator := &validate.Validator{}

	if input.Title != nil || creating {
		title := strings.TrimSpace(pointer.Val(input.Title))
		validator.Required(FieldTitle, title).MaxLen(FieldTitle, title, MaxTitleLength)
		manga.Title = title
		manga.Slug = slugFor(manga.ID, title)
	}
	if input.Description != nil || creating {
		description := strings.TrimSpace(pointer.Val(input.Description))
		validator.Required(FieldDescription, description).MaxLen(FieldDescription, description, MaxDescriptionLength)
		manga.Description = description
	}
	if input.Author != nil {
		manga.Author = strings.TrimSpace(*input.Author)
	}
	if input.Genre != nil {
		manga.Genre = strings.TrimSpace(*input.Genre)
	}
	if input.Status != nil && strings.TrimSpace(*input.Status) != "" {
		status := Status(strings.ToLower(strings.TrimSpace(*input.Status)))
		validator.OneOf(FieldStatus, string(status), string(StatusOngoing), string(StatusCompleted), string(StatusHiatus))
		manga.Status = status
	}
	if input.Categories != nil {
		manga.Categories = query.StringSlice(*input.Categories)
		if manga.Categories == nil {
			manga.Categories = []string{}
		}
	}

	return validator.Err()
}
