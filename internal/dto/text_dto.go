package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateTextRequest struct {
	Title       string  `json:"title" binding:"required,max=500"`
	Content     string  `json:"content" binding:"required"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	CoverImage  *string `json:"cover_image,omitempty"`
	LicenseType string  `json:"license_type"`
}

// UpdateTextRequest carries sparse fields; nil pointers are left unchanged.
type UpdateTextRequest struct {
	Title       *string `json:"title,omitempty"`
	Content     *string `json:"content,omitempty"`
	Description *string `json:"description,omitempty"`
	Category    *string `json:"category,omitempty"`
	CoverImage  *string `json:"cover_image,omitempty"`
	LicenseType *string `json:"license_type,omitempty"`
}

type ListTextsFilter struct {
	Limit    int    `form:"limit"`
	Offset   int    `form:"offset"`
	Category string `form:"category"`
}

type SearchTextsFilter struct {
	Query  string `form:"q"`
	Limit  int    `form:"limit"`
	Offset int    `form:"offset"`
}

type AuthorResponse struct {
	ID             uuid.UUID `json:"id,omitempty"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	ProfilePicture *string   `json:"profile_picture,omitempty"`
}

type TextResponse struct {
	ID            uuid.UUID      `json:"id"`
	Title         string         `json:"title"`
	Content       string         `json:"content,omitempty"`
	Slug          string         `json:"slug"`
	Description   string         `json:"description"`
	Excerpt       string         `json:"excerpt,omitempty"`
	Category      string         `json:"category"`
	CoverImage    *string        `json:"cover_image,omitempty"`
	LicenseType   string         `json:"license_type"`
	Status        string         `json:"status,omitempty"`
	WordCount     int            `json:"word_count"`
	ReadingTime   int            `json:"reading_time"`
	ViewCount     int            `json:"view_count"`
	LikeCount     int            `json:"like_count"`
	FavoriteCount int64          `json:"favorite_count,omitempty"`
	AuthorID      uuid.UUID      `json:"author_id,omitempty"`
	Author        AuthorResponse `json:"author"`
	PublishedAt   *time.Time     `json:"published_at,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

type PaginatedTextsResponse struct {
	Texts      []TextResponse `json:"texts"`
	Pagination Pagination     `json:"pagination"`
}
