// Copyright (c) 2026 GalleManga. All rights reserved.

package library

import "context"

// Repository reads entitlements and maintains favorites.
type Repository interface {
	Entries(context context.Context, userID string) ([]*Entry, error)
	Owns(context context.Context, userID, chapterID string) (bool, error)
	// ToggleFavorite flips the favorite and returns the new state.
	ToggleFavorite(context context.Context, userID, mangaID string) (bool, error)
	Favorites(context context.Context, userID string) ([]*Favorite, error)
}
