package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	LicensePending   = "pending"
	LicenseCompleted = "completed"
)

// License records a usage grant purchased for a text. Payment settles
// asynchronously through the checkout provider and is correlated back here
// via the session id.
type License struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TextID          uuid.UUID `gorm:"type:uuid;not null;index" json:"text_id"`
	Text            Text      `gorm:"constraint:OnDelete:CASCADE" json:"text,omitempty"`
	BuyerID         uuid.UUID `gorm:"type:uuid;not null;index" json:"buyer_id"`
	AuthorID        uuid.UUID `gorm:"type:uuid;not null" json:"author_id"`
	LicenseType     string    `gorm:"size:50;not null" json:"license_type"`
	AmountCents     int64     `gorm:"not null" json:"amount_cents"`
	Currency        string    `gorm:"size:10;not null;default:brl" json:"currency"`
	StripeSessionID string    `gorm:"size:255;uniqueIndex;not null" json:"-"`
	Status          string    `gorm:"size:20;not null;default:pending" json:"status"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (l *License) BeforeCreate(tx *gorm.DB) (err error) {
	if l.ID == uuid.Nil {
		l.ID, err = uuid.NewV7()
	}
	return
}
