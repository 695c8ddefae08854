package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/recantodospoetas/backend/internal/model"
	"gorm.io/gorm"
)

type TextRepository interface {
	Create(ctx context.Context, text *model.Text) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Text, error)
	FindBySlug(ctx context.Context, slug string) (*model.Text, error)
	FindByAuthor(ctx context.Context, authorID uuid.UUID, status string) ([]*model.Text, error)
	UpdateDraft(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (int64, error)
	Publish(ctx context.Context, id uuid.UUID, publishedAt time.Time) (int64, error)
	SoftDelete(ctx context.Context, id uuid.UUID) (int64, error)
	IncrementViewCount(ctx context.Context, id uuid.UUID) error
	ListPublished(ctx context.Context, limit, offset int, category string) ([]*model.Text, int64, error)
	Search(ctx context.Context, term string, limit, offset int) ([]*model.Text, error)
	FavoriteCount(ctx context.Context, id uuid.UUID) (int64, error)
}

type textRepository struct {
	db *gorm.DB
}

func NewTextRepository(db *gorm.DB) TextRepository {
	return &textRepository{db: db}
}

func (r *textRepository) Create(ctx context.Context, text *model.Text) error {
	return r.db.WithContext(ctx).Create(text).Error
}

func (r *textRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Text, error) {
	var text model.Text
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Where("id = ?", id).
		First(&text).Error; err != nil {
		return nil, err
	}
	return &text, nil
}

// FindBySlug only resolves published texts. Drafts and deleted texts are not
// reachable by slug.
func (r *textRepository) FindBySlug(ctx context.Context, slug string) (*model.Text, error) {
	var text model.Text
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Where("slug = ? AND status = ?", slug, model.StatusPublished).
		First(&text).Error; err != nil {
		return nil, err
	}
	return &text, nil
}

func (r *textRepository) FindByAuthor(ctx context.Context, authorID uuid.UUID, status string) ([]*model.Text, error) {
	var texts []*model.Text
	query := r.db.WithContext(ctx).Where("author_id = ?", authorID)
	if status != "all" {
		query = query.Where("status = ?", status)
	}
	if err := query.Order("created_at DESC").Find(&texts).Error; err != nil {
		return nil, err
	}
	return texts, nil
}

// UpdateDraft applies a sparse update guarded on status = draft, so a publish
// racing the update cannot mutate a text that is no longer editable. Returns
// the number of rows touched.
func (r *textRepository) UpdateDraft(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Text{}).
		Where("id = ? AND status = ?", id, model.StatusDraft).
		Updates(fields)
	return res.RowsAffected, res.Error
}

// Publish flips draft -> published conditioned on the stored status at commit
// time. Zero rows means the text was not in draft anymore.
func (r *textRepository) Publish(ctx context.Context, id uuid.UUID, publishedAt time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Text{}).
		Where("id = ? AND status = ?", id, model.StatusDraft).
		Updates(map[string]interface{}{
			"status":       model.StatusPublished,
			"published_at": publishedAt,
		})
	return res.RowsAffected, res.Error
}

func (r *textRepository) SoftDelete(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Text{}).
		Where("id = ?", id).
		Update("status", model.StatusDeleted)
	return res.RowsAffected, res.Error
}

// IncrementViewCount is a single DB-side increment so concurrent views never
// lose updates.
func (r *textRepository) IncrementViewCount(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&model.Text{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1)).Error
}

func (r *textRepository) ListPublished(ctx context.Context, limit, offset int, category string) ([]*model.Text, int64, error) {
	var texts []*model.Text
	var total int64

	query := r.db.WithContext(ctx).
		Model(&model.Text{}).
		Where("status = ?", model.StatusPublished)

	if category != "" {
		query = query.Where("category = ?", category)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.
		Preload("Author").
		Order("published_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&texts).Error; err != nil {
		return nil, 0, err
	}

	return texts, total, nil
}

// Search is a case-insensitive substring scan over title, description and
// content of published texts. LOWER/LIKE keeps the query portable across
// postgres and the sqlite test database.
func (r *textRepository) Search(ctx context.Context, term string, limit, offset int) ([]*model.Text, error) {
	var texts []*model.Text
	pattern := "%" + term + "%"
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Where("status = ?", model.StatusPublished).
		Where("LOWER(title) LIKE LOWER(?) OR LOWER(description) LIKE LOWER(?) OR LOWER(content) LIKE LOWER(?)",
			pattern, pattern, pattern).
		Order("published_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&texts).Error; err != nil {
		return nil, err
	}
	return texts, nil
}

func (r *textRepository) FavoriteCount(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Favorite{}).
		Where("text_id = ?", id).
		Count(&count).Error
	return count, err
}
