package dto

import (
	"time"

	"github.com/google/uuid"
)

type CheckoutRequest struct {
	PriceCents int64 `json:"price_cents" binding:"required,min=100"`
}

type CheckoutResponse struct {
	SessionID   string `json:"session_id"`
	RedirectURL string `json:"redirect_url"`
}

type LicenseResponse struct {
	ID          uuid.UUID `json:"id"`
	TextID      uuid.UUID `json:"text_id"`
	TextTitle   string    `json:"text_title"`
	LicenseType string    `json:"license_type"`
	AmountCents int64     `json:"amount_cents"`
	Currency    string    `json:"currency"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}
