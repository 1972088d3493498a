// Copyright (c) 2026 GalleManga. All rights reserved.

// Package review stores reader ratings. Each user reviews a manga at most once.
package review

import "time"

type Review struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	MangaID   string    `json:"mangaId"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

const (
	FieldRating  = "rating"
	FieldComment = "comment"

	MinRating        = 1
	MaxRating        = 5
	MaxCommentLength = 2000

	MsgAlreadyReviewed = "You have already reviewed this manga"
)
