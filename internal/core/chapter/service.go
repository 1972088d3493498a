// Copyright (c) 2026 GalleManga. All rights reserved.

package chapter

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/gallemanga/gallemanga/internal/platform/apperr"
	"github.com/gallemanga/gallemanga/internal/platform/metrics"
	"github.com/gallemanga/gallemanga/internal/platform/pdfpage"
	"github.com/gallemanga/gallemanga/internal/platform/sec"
	"github.com/gallemanga/gallemanga/internal/platform/storage"
	"github.com/gallemanga/gallemanga/internal/platform/validate"
	"github.com/gallemanga/gallemanga/pkg/uuid"
)

// # Service Layer

// Service orchestrates the business logic for chapters.
type Service struct {
	chapterRepo  ChapterRepository
	files        FileStore
	pages        PageCounter
	entitlements Entitlements
	logger       *slog.Logger
}

// NewService constructs a new [Service] with its collaborators.
func NewService(
	chapterRepo ChapterRepository,
	files FileStore,
	pages PageCounter,
	entitlements Entitlements,
	logger *slog.Logger,
) *Service {
	return &Service{
		chapterRepo:  chapterRepo,
		files:        files,
		pages:        pages,
		entitlements: entitlements,
		logger:       logger,
	}
}

// Input carries the admin form. Nil fields are left unchanged on update.
type Input struct {
	ChapterNumber *int
	Title         *string
	Price         *int64
	Published     *bool
}

// MaxUploadBytes exposes the PDF size cap to the HTTP layer.
func (service *Service) MaxUploadBytes() int64 {
	return service.files.MaxBytes()
}

// # Read Operations

// ListChapters returns the chapters of a manga. Drafts are visible to admins only.
func (service *Service) ListChapters(context context.Context, mangaID string, viewer *sec.Principal) ([]*Chapter, error) {
	return service.chapterRepo.ListByManga(context, mangaID, viewer != nil && viewer.IsAdmin())
}

/*
GetChapter retrieves metadata for a single chapter.

Returns:
  - error: apperr.NotFound for unknown chapters and for drafts seen by non-admins
*/
func (service *Service) GetChapter(context context.Context, id string, viewer *sec.Principal) (*Chapter, error) {
	chapter, err := service.chapterRepo.FindByID(context, id)
	if err != nil {
		return nil, err
	}
	if !chapter.Published && (viewer == nil || !viewer.IsAdmin()) {
		return nil, apperr.NotFound(resource)
	}
	return chapter, nil
}

/*
Content releases the PDF location to an entitled caller.

Description: Free chapters are open to every authenticated reader. Paid
chapters require a library entry. Admins can read everything.

Returns:
  - *Content: File URL and page count
  - error: apperr.ChapterLocked when the caller does not own a paid chapter
*/
func (service *Service) Content(context context.Context, id string, viewer sec.Principal) (*Content, error) {
	chapter, err := service.GetChapter(context, id, &viewer)
	if err != nil {
		return nil, err
	}

	if !chapter.IsFree() && !viewer.IsAdmin() {
		owned, err := service.entitlements.Owns(context, viewer.UserID, chapter.ID)
		if err != nil {
			return nil, err
		}
		if !owned {
			return nil, apperr.ChapterLocked()
		}
	}

	return &Content{ChapterID: chapter.ID, FileURL: chapter.FileURL, PageCount: chapter.PageCount}, nil
}

// # Mutations

/*
CreateChapter uploads the PDF, counts its pages and persists the chapter.

Description: The page count must be positive. A file no method can read is
removed again and the upload is rejected, as is any file whose row cannot be
written (e.g. a duplicate chapter number).

Parameters:
  - context: context.Context
  - mangaID: string
  - input: Input (ChapterNumber required)
  - file: io.Reader (required PDF)

Returns:
  - *Chapter: The created chapter
  - error: 400 validation, 404 unknown manga, 409 duplicate number, 422 unreadable PDF
*/
func (service *Service) CreateChapter(context context.Context, mangaID string, input Input, file io.Reader) (*Chapter, error) {
	chapter := &Chapter{ID: uuid.New(), MangaID: mangaID}
	if err := apply(chapter, input, true, file != nil); err != nil {
		return nil, err
	}

	stored, pages, err := service.store(context, file)
	if err != nil {
		return nil, err
	}
	chapter.FileURL, chapter.PageCount = stored.URL, pages

	if err := service.chapterRepo.Create(context, chapter); err != nil {
		service.discard(context, stored.URL)
		return nil, err
	}

	service.logger.InfoContext(context, "chapter_created",
		slog.String("chapter_id", chapter.ID),
		slog.String("manga_id", mangaID),
		slog.Int("pages", pages),
	)
	return chapter, nil
}

/*
UpdateChapter applies the non-nil fields and an optional replacement PDF.
The previous PDF is removed only after the row points at the new one.
*/
func (service *Service) UpdateChapter(context context.Context, id string, input Input, file io.Reader) (*Chapter, error) {
	chapter, err := service.chapterRepo.FindByID(context, id)
	if err != nil {
		return nil, err
	}
	if err := apply(chapter, input, false, true); err != nil {
		return nil, err
	}

	previousFile := chapter.FileURL
	if file != nil {
		stored, pages, err := service.store(context, file)
		if err != nil {
			return nil, err
		}
		chapter.FileURL, chapter.PageCount = stored.URL, pages
	}

	if err := service.chapterRepo.Update(context, chapter); err != nil {
		if file != nil {
			service.discard(context, chapter.FileURL)
		}
		return nil, err
	}

	if file != nil {
		service.discard(context, previousFile)
	}

	service.logger.InfoContext(context, "chapter_updated", slog.String("chapter_id", id))
	return chapter, nil
}

// DeleteChapter removes the chapter row and then its PDF.
func (service *Service) DeleteChapter(context context.Context, id string) error {
	fileURL, err := service.chapterRepo.Delete(context, id)
	if err != nil {
		return err
	}
	service.discard(context, fileURL)

	service.logger.InfoContext(context, "chapter_deleted", slog.String("chapter_id", id))
	return nil
}

// store writes the PDF and counts its pages, failing closed on unreadable files.
func (service *Service) store(context context.Context, file io.Reader) (*storage.StoredFile, int, error) {
	stored, err := service.files.Save(context, storage.KindChapter, file)
	if err != nil {
		return nil, 0, err
	}

	result, err := service.pages.Count(context, stored.Path)
	if err != nil {
		service.discard(context, stored.URL)
		if errors.Is(err, pdfpage.ErrUnreadable) {
			metrics.RecordUploadRejected("unreadable_pdf")
			return nil, 0, apperr.Unprocessable(MsgUnreadablePDF)
		}
		return nil, 0, err
	}

	service.logger.DebugContext(context, "pdf_pages_counted",
		slog.Int("pages", result.Pages),
		slog.String("method", result.Method),
	)
	return stored, result.Pages, nil
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

func apply(chapter *Chapter, input Input, creating, hasFile bool) error {
	validator := &validate.Validator{}

	if input.ChapterNumber != nil {
		validator.Min(FieldChapterNumber, int64(*input.ChapterNumber), 1)
		chapter.ChapterNumber = *input.ChapterNumber
	} else if creating {
		validator.Custom(FieldChapterNumber, true, "This field is required")
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		validator.MaxLen(FieldTitle, title, MaxTitleLength)
		chapter.Title = title
	}

	if input.Price != nil {
		validator.Min(FieldPrice, *input.Price, 0)
		chapter.Price = *input.Price
	}

	if input.Published != nil {
		chapter.Published = *input.Published
	}

	validator.Custom(FieldFile, !hasFile, "A PDF file is required")
	return validator.Err()
}
