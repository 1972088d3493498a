// Copyright (c) 2026 GalleManga. All rights reserved.

package category

import (
	"context"
	"log/slog"
	"strings"

	"github.com/gallemanga/gallemanga/internal/platform/validate"
	"github.com/gallemanga/gallemanga/pkg/uuid"
)

// Service manages the category list that labels manga.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a category [Service].
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// Input is the admin form for creating or editing a category.
type Input struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (input Input) validate() error {
	validator := &validate.Validator{}
	validator.Required(FieldName, input.Name).
		MaxLen(FieldName, input.Name, MaxNameLength).
		Custom(FieldName, strings.Contains(input.Name, ","), "Must not contain commas").
		Required(FieldDescription, input.Description)
	return validator.Err()
}

// List returns every category ordered by name.
func (service *Service) List(context context.Context) ([]*Category, error) {
	return service.repo.List(context)
}

// Get returns one category by id.
func (service *Service) Get(context context.Context, id string) (*Category, error) {
	return service.repo.GetByID(context, id)
}

// Create validates and stores a new category. Names are unique regardless of case.
func (service *Service) Create(context context.Context, input Input) (*Category, error) {
	input = trim(input)
	if err := input.validate(); err != nil {
		return nil, err
	}

	category := &Category{ID: uuid.New(), Name: input.Name, Description: input.Description}
	if err := service.repo.Create(context, category); err != nil {
		return nil, err
	}

	service.logger.InfoContext(context, "category_created", slog.String("category_id", category.ID))
	return category, nil
}

// Update renames or redescribes a category and relabels the manga that carry it.
func (service *Service) Update(context context.Context, id string, input Input) (*Category, error) {
	input = trim(input)
	if err := input.validate(); err != nil {
		return nil, err
	}

	category := &Category{ID: id, Name: input.Name, Description: input.Description}
	if err := service.repo.Update(context, category); err != nil {
		return nil, err
	}

	service.logger.InfoContext(context, "category_updated", slog.String("category_id", id))
	return category, nil
}

// Delete removes a category and strips its label from every manga.
func (service *Service) Delete(context context.Context, id string) error {
	if err := service.repo.Delete(context, id); err != nil {
		return err
	}
	service.logger.InfoContext(context, "category_deleted", slog.String("category_id", id))
	return nil
}

func trim(input Input) Input {
	return Input{Name: strings.TrimSpace(input.Name), Description: strings.TrimSpace(input.Description)}
}
