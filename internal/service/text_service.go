package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/recantodospoetas/backend/internal/dto"
	"github.com/recantodospoetas/backend/internal/model"
	"github.com/recantodospoetas/backend/internal/repository"
	"github.com/recantodospoetas/backend/pkg/apperror"
	"gorm.io/gorm"
)

const (
	minContentLength = 100
	maxTitleLength   = 500
	minSearchLength  = 3
	excerptLength    = 280
)

type TextService interface {
	Create(ctx context.Context, authorID uuid.UUID, req dto.CreateTextRequest) (*dto.TextResponse, error)
	Update(ctx context.Context, id, requesterID uuid.UUID, req dto.UpdateTextRequest) (*dto.TextResponse, error)
	Publish(ctx context.Context, id, requesterID uuid.UUID) (*dto.TextResponse, error)
	SoftDelete(ctx context.Context, id, requesterID uuid.UUID) (*dto.TextResponse, error)
	GetByID(ctx context.Context, id, viewerID uuid.UUID) (*dto.TextResponse, error)
	GetBySlug(ctx context.Context, slug string) (*dto.TextResponse, error)
	ListPublished(ctx context.Context, filter dto.ListTextsFilter) (*dto.PaginatedTextsResponse, error)
	Search(ctx context.Context, filter dto.SearchTextsFilter) ([]dto.TextResponse, error)
	ListByAuthor(ctx context.Context, authorID uuid.UUID, status string) ([]dto.TextResponse, error)
}

type textService struct {
	textRepo repository.TextRepository
}

func NewTextService(textRepo repository.TextRepository) TextService {
	return &textService{textRepo: textRepo}
}

// canMutate is the single ownership predicate consumed by update, publish and
// delete. Role grants no extra text privileges; only the author mutates.
func canMutate(requesterID uuid.UUID, text *model.Text) bool {
	return text.AuthorID == requesterID
}

func (s *textService) Create(ctx context.Context, authorID uuid.UUID, req dto.CreateTextRequest) (*dto.TextResponse, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperror.Wrap(apperror.ErrInvalidInput, "título e conteúdo são obrigatórios")
	}
	// Limits are in characters, not bytes, so accented text measures the
	// same as plain ASCII.
	if utf8.RuneCountInString(title) > maxTitleLength {
		return nil, apperror.Wrap(apperror.ErrInvalidInput, "título muito longo (máximo 500 caracteres)")
	}

	content := strings.TrimSpace(req.Content)
	if utf8.RuneCountInString(content) < minContentLength {
		return nil, apperror.Wrap(apperror.ErrInvalidInput, "texto muito curto (mínimo 100 caracteres)")
	}

	wordCount, readingTime := contentMetrics(content)

	category := req.Category
	if category == "" {
		category = "geral"
	}
	licenseType := req.LicenseType
	if licenseType == "" {
		licenseType = "CC-BY-SA"
	}

	text := &model.Text{
		AuthorID:           authorID,
		Title:              title,
		Content:            req.Content,
		Slug:               makeSlug(title),
		Description:        req.Description,
		Category:           category,
		CoverImage:         req.CoverImage,
		LicenseType:        licenseType,
		Status:             model.StatusDraft,
		WordCount:          wordCount,
		ReadingTimeMinutes: readingTime,
	}

	if err := s.textRepo.Create(ctx, text); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.Wrap(apperror.ErrConflict, "slug já existe, tente novamente")
		}
		return nil, err
	}

	resp := toTextResponse(text)
	return &resp, nil
}

func (s *textService) Update(ctx context.Context, id, requesterID uuid.UUID, req dto.UpdateTextRequest) (*dto.TextResponse, error) {
	text, err := s.loadOwned(ctx, id, requesterID)
	if err != nil {
		return nil, err
	}

	if text.Status == model.StatusPublished {
		return nil, apperror.Wrap(apperror.ErrInvalidState, "não é possível editar texto publicado, crie uma nova versão")
	}

	fields := map[string]interface{}{}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, apperror.Wrap(apperror.ErrInvalidInput, "título não pode ser vazio")
		}
		if utf8.RuneCountInString(title) > maxTitleLength {
			return nil, apperror.Wrap(apperror.ErrInvalidInput, "título muito longo (máximo 500 caracteres)")
		}
		fields["title"] = title
		fields["slug"] = makeSlug(title)
	}

	if req.Content != nil {
		content := strings.TrimSpace(*req.Content)
		if utf8.RuneCountInString(content) < minContentLength {
			return nil, apperror.Wrap(apperror.ErrInvalidInput, "texto muito curto (mínimo 100 caracteres)")
		}
		wordCount, readingTime := contentMetrics(content)
		fields["content"] = *req.Content
		fields["word_count"] = wordCount
		fields["reading_time_minutes"] = readingTime
	}

	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.Category != nil {
		fields["category"] = *req.Category
	}
	if req.CoverImage != nil {
		fields["cover_image"] = *req.CoverImage
	}
	if req.LicenseType != nil {
		fields["license_type"] = *req.LicenseType
	}

	if len(fields) > 0 {
		rows, err := s.textRepo.UpdateDraft(ctx, id, fields)
		if err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, apperror.Wrap(apperror.ErrConflict, "slug já existe, tente novamente")
			}
			return nil, err
		}
		// The status may have changed between the read above and the
		// conditional write; the text could have been published or deleted.
		if rows == 0 {
			return nil, apperror.Wrap(apperror.ErrInvalidState, "não é possível editar, o texto não está mais em rascunho")
		}
	}

	updated, err := s.textRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := toTextResponse(updated)
	return &resp, nil
}

func (s *textService) Publish(ctx context.Context, id, requesterID uuid.UUID) (*dto.TextResponse, error) {
	text, err := s.loadOwned(ctx, id, requesterID)
	if err != nil {
		return nil, err
	}

	if text.Status != model.StatusDraft {
		return nil, apperror.Wrap(apperror.ErrInvalidState, "texto já foi publicado")
	}

	rows, err := s.textRepo.Publish(ctx, id, time.Now())
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, apperror.Wrap(apperror.ErrInvalidState, "texto já foi publicado")
	}

	published, err := s.textRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := toTextResponse(published)
	return &resp, nil
}

func (s *textService) SoftDelete(ctx context.Context, id, requesterID uuid.UUID) (*dto.TextResponse, error) {
	text, err := s.loadOwned(ctx, id, requesterID)
	if err != nil {
		return nil, err
	}

	if _, err := s.textRepo.SoftDelete(ctx, id); err != nil {
		return nil, err
	}

	text.Status = model.StatusDeleted
	resp := toTextResponse(text)
	return &resp, nil
}

func (s *textService) GetByID(ctx context.Context, id, viewerID uuid.UUID) (*dto.TextResponse, error) {
	text, err := s.textRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Wrap(apperror.ErrNotFound, "texto não encontrado")
		}
		return nil, err
	}

	// Drafts and deleted texts are only visible to their author.
	if text.Status != model.StatusPublished && text.AuthorID != viewerID {
		return nil, apperror.Wrap(apperror.ErrForbidden, "acesso negado")
	}

	return s.viewedResponse(ctx, text)
}

func (s *textService) GetBySlug(ctx context.Context, slug string) (*dto.TextResponse, error) {
	text, err := s.textRepo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Wrap(apperror.ErrNotFound, "texto não encontrado")
		}
		return nil, err
	}

	return s.viewedResponse(ctx, text)
}

// viewedResponse applies the durable view increment and returns the text with
// the post-increment count visible to the caller.
func (s *textService) viewedResponse(ctx context.Context, text *model.Text) (*dto.TextResponse, error) {
	if err := s.textRepo.IncrementViewCount(ctx, text.ID); err != nil {
		return nil, err
	}
	text.ViewCount++

	resp := toTextResponse(text)
	if count, err := s.textRepo.FavoriteCount(ctx, text.ID); err == nil {
		resp.FavoriteCount = count
	}
	return &resp, nil
}

func (s *textService) ListPublished(ctx context.Context, filter dto.ListTextsFilter) (*dto.PaginatedTextsResponse, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	texts, total, err := s.textRepo.ListPublished(ctx, limit, offset, filter.Category)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.TextResponse, 0, len(texts))
	for _, text := range texts {
		resp := toTextResponse(text)
		resp.Content = ""
		resp.Excerpt = makeExcerpt(firstNonEmpty(text.Description, text.Content), excerptLength)
		responses = append(responses, resp)
	}

	return &dto.PaginatedTextsResponse{
		Texts: responses,
		Pagination: dto.Pagination{
			Limit:   limit,
			Offset:  offset,
			Total:   total,
			HasMore: int64(offset+limit) < total,
		},
	}, nil
}

func (s *textService) Search(ctx context.Context, filter dto.SearchTextsFilter) ([]dto.TextResponse, error) {
	term := strings.TrimSpace(filter.Query)
	if utf8.RuneCountInString(term) < minSearchLength {
		return nil, apperror.Wrap(apperror.ErrInvalidInput, "busca deve ter no mínimo 3 caracteres")
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	texts, err := s.textRepo.Search(ctx, term, limit, offset)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.TextResponse, 0, len(texts))
	for _, text := range texts {
		resp := toTextResponse(text)
		resp.Content = ""
		resp.Excerpt = makeExcerpt(firstNonEmpty(text.Description, text.Content), excerptLength)
		responses = append(responses, resp)
	}
	return responses, nil
}

func (s *textService) ListByAuthor(ctx context.Context, authorID uuid.UUID, status string) ([]dto.TextResponse, error) {
	if status == "" {
		status = model.StatusPublished
	}

	texts, err := s.textRepo.FindByAuthor(ctx, authorID, status)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.TextResponse, 0, len(texts))
	for _, text := range texts {
		resp := toTextResponse(text)
		resp.Content = ""
		responses = append(responses, resp)
	}
	return responses, nil
}

func (s *textService) loadOwned(ctx context.Context, id, requesterID uuid.UUID) (*model.Text, error) {
	text, err := s.textRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Wrap(apperror.ErrNotFound, "texto não encontrado")
		}
		return nil, err
	}

	if !canMutate(requesterID, text) {
		return nil, apperror.Wrap(apperror.ErrForbidden, "acesso negado")
	}

	return text, nil
}

func toTextResponse(text *model.Text) dto.TextResponse {
	return dto.TextResponse{
		ID:          text.ID,
		Title:       text.Title,
		Content:     text.Content,
		Slug:        text.Slug,
		Description: text.Description,
		Category:    text.Category,
		CoverImage:  text.CoverImage,
		LicenseType: text.LicenseType,
		Status:      text.Status,
		WordCount:   text.WordCount,
		ReadingTime: text.ReadingTimeMinutes,
		ViewCount:   text.ViewCount,
		LikeCount:   text.LikeCount,
		AuthorID:    text.AuthorID,
		Author: dto.AuthorResponse{
			ID:             text.Author.ID,
			FirstName:      text.Author.FirstName,
			LastName:       text.Author.LastName,
			ProfilePicture: text.Author.ProfilePicture,
		},
		PublishedAt: text.PublishedAt,
		CreatedAt:   text.CreatedAt,
		UpdatedAt:   text.UpdatedAt,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
