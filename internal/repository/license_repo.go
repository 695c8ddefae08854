package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/recantodospoetas/backend/internal/model"
	"gorm.io/gorm"
)

type LicenseRepository interface {
	Create(ctx context.Context, license *model.License) error
	FindBySessionID(ctx context.Context, sessionID string) (*model.License, error)
	MarkCompleted(ctx context.Context, id uuid.UUID) error
	ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]*model.License, error)
}

type licenseRepository struct {
	db *gorm.DB
}

func NewLicenseRepository(db *gorm.DB) LicenseRepository {
	return &licenseRepository{db: db}
}

func (r *licenseRepository) Create(ctx context.Context, license *model.License) error {
	return r.db.WithContext(ctx).Create(license).Error
}

func (r *licenseRepository) FindBySessionID(ctx context.Context, sessionID string) (*model.License, error) {
	var license model.License
	if err := r.db.WithContext(ctx).
		Preload("Text").
		Where("stripe_session_id = ?", sessionID).
		First(&license).Error; err != nil {
		return nil, err
	}
	return &license, nil
}

func (r *licenseRepository) MarkCompleted(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&model.License{}).
		Where("id = ? AND status = ?", id, model.LicensePending).
		Update("status", model.LicenseCompleted).Error
}

func (r *licenseRepository) ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]*model.License, error) {
	var licenses []*model.License
	if err := r.db.WithContext(ctx).
		Preload("Text").
		Where("buyer_id = ?", buyerID).
		Order("created_at DESC").
		Find(&licenses).Error; err != nil {
		return nil, err
	}
	return licenses, nil
}
