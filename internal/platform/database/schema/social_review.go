// Copyright (c) 2026 GalleManga. All rights reserved.

package schema

// SocialReviewTable represents the 'social.review' table
type SocialReviewTable struct {
	Table     string
	ID        string
	UserID    string
	MangaID   string
	Rating    string
	Comment   string
	CreatedAt string
	UpdatedAt string
}

// SocialReview is the schema definition for social.review
var SocialReview = SocialReviewTable{
	Table:     "social.review",
	ID:        "id",
	UserID:    "userid",
	MangaID:   "mangaid",
	Rating:    "rating",
	Comment:   "comment",
	CreatedAt: "createdat",
	UpdatedAt: "updatedat",
}
