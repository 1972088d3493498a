// Copyright (c) 2026 GalleManga. All rights reserved.

package library

import (
	"context"
	"log/slog"

	"github.com/gallemanga/gallemanga/internal/platform/validate"
)

// Service serves the bookshelf and favorites of the current reader.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService constructs a new [Service].
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Library returns the chapters the user owns.
func (service *Service) Library(context context.Context, userID string) ([]*Entry, error) {
	return service.repo.Entries(context, userID)
}

// Owns reports whether the user holds a library entry for the chapter.
func (service *Service) Owns(context context.Context, userID, chapterID string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	return service.repo.Owns(context, userID, chapterID)
}

// ToggleFavorite flips the favorite state of a manga for the user.
func (service *Service) ToggleFavorite(context context.Context, userID, mangaID string) (bool, error) {
	validator := &validate.Validator{}
	validator.Required(FieldMangaID, mangaID).UUID(FieldMangaID, mangaID)
	if err := validator.Err(); err != nil {
		return false, err
	}

	isFavorite, err := service.repo.ToggleFavorite(context, userID, mangaID)
	if err != nil {
		return false, err
	}

	service.logger.InfoContext(context, "favorite_toggled",
		slog.String("user_id", userID),
		slog.String("manga_id", mangaID),
		slog.Bool("is_favorite", isFavorite),
	)
	return isFavorite, nil
}

// Favorites lists the user's favorite mangas.
func (service *Service) Favorites(context context.Context, userID string) ([]*Favorite, error) {
	return service.repo.Favorites(context, userID)
}
