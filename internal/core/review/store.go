// Copyright (c) 2026 GalleManga. All rights reserved.

package review

import "context"

type Repository interface {
	ListByManga(context context.Context, mangaID string) ([]*Review, error)
	FindByID(context context.Context, id string) (*Review, error)
	Create(context context.Context, review *Review) error
	Delete(context context.Context, id string) error
}
