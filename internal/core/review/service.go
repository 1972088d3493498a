// Copyright (c) 2026 GalleManga. All rights reserved.

package review

import (
	"context"
	"log/slog"
	"strings"

	"github.com/gallemanga/gallemanga/internal/platform/apperr"
	"github.com/gallemanga/gallemanga/internal/platform/sec"
	"github.com/gallemanga/gallemanga/internal/platform/validate"
	"github.com/gallemanga/gallemanga/pkg/uuid"
)

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

type Input struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func (service *Service) List(context context.Context, mangaID string) ([]*Review, error) {
	return service.repo.ListByManga(context, mangaID)
}

// Create stores the author's only review of a manga. A second one is a 409.
func (service *Service) Create(context context.Context, author sec.Principal, mangaID string, input Input) (*Review, error) {
	if !uuid.Valid(mangaID) {
		return nil, apperr.NotFound("Manga")
	}
	comment := strings.TrimSpace(input.Comment)

	validator := &validate.Validator{}
	validator.Range(FieldRating, input.Rating, MinRating, MaxRating).
		Required(FieldComment, comment).
		MaxLen(FieldComment, comment, MaxCommentLength)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	review := &Review{
		ID:       uuid.New(),
		UserID:   author.UserID,
		Username: author.Username,
		MangaID:  mangaID,
		Rating:   input.Rating,
		Comment:  comment,
	}
	if err := service.repo.Create(context, review); err != nil {
		return nil, err
	}

	service.logger.InfoContext(context, "review_created",
		slog.String("review_id", review.ID),
		slog.String("manga_id", mangaID),
		slog.String("user_id", author.UserID),
	)
	return review, nil
}

// Delete removes a review on behalf of its author or an admin.
func (service *Service) Delete(context context.Context, viewer sec.Principal, id string) error {
	review, err := service.repo.FindByID(context, id)
	if err != nil {
		return err
	}
	if review.UserID != viewer.UserID && !viewer.IsAdmin() {
		return apperr.Forbidden("Only the author can delete this review")
	}

	if err := service.repo.Delete(context, id); err != nil {
		return err
	}
	service.logger.InfoContext(context, "review_deleted",
		slog.String("review_id", id),
		slog.String("deleted_by", viewer.UserID),
	)
	return nil
}
