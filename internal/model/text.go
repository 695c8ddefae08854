package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusDeleted   = "deleted"
)

type Text struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	AuthorID           uuid.UUID  `gorm:"type:uuid;not null;index" json:"author_id"`
	Author             User       `gorm:"constraint:OnDelete:CASCADE" json:"author,omitempty"`
	Title              string     `gorm:"size:500;not null" json:"title"`
	Content            string     `gorm:"type:text;not null" json:"content"`
	Slug               string     `gorm:"size:120;uniqueIndex;not null" json:"slug"`
	Description        string     `gorm:"type:text" json:"description"`
	Category           string     `gorm:"size:100;index" json:"category"`
	CoverImage         *string    `gorm:"type:text" json:"cover_image,omitempty"`
	LicenseType        string     `gorm:"size:50" json:"license_type"`
	Status             string     `gorm:"size:20;not null;default:draft;index" json:"status"`
	WordCount          int        `gorm:"not null;default:0" json:"word_count"`
	ReadingTimeMinutes int        `gorm:"not null;default:0" json:"reading_time_minutes"`
	ViewCount          int        `gorm:"not null;default:0" json:"view_count"`
	LikeCount          int        `gorm:"not null;default:0" json:"like_count"`
	PublishedAt        *time.Time `json:"published_at,omitempty"`
	CreatedAt          time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (t *Text) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == uuid.Nil {
		t.ID, err = uuid.NewV7()
	}
	return
}

// Favorite marks a text as favorited by a user. Only the count is surfaced.
type Favorite struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	TextID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"text_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
