package service

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/recantodospoetas/backend/internal/dto"
	"github.com/recantodospoetas/backend/internal/model"
	"github.com/recantodospoetas/backend/internal/repository"
	"github.com/recantodospoetas/backend/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Text{}, &model.Favorite{}, &model.License{}))
	return db
}

func createUser(t *testing.T, db *gorm.DB, email, role string) *model.User {
	t.Helper()
	user := &model.User{
		Email:        email,
		PasswordHash: "hash",
		FirstName:    "Cecília",
		LastName:     "Meireles",
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// longContent clears the 100-character minimum and carries a known word count.
func longContent(words int) string {
	return strings.TrimSpace(strings.Repeat("palavra ", words))
}

func newTestTextService(t *testing.T) (TextService, *gorm.DB) {
	t.Helper()
	db := setupTestDB(t)
	return NewTextService(repository.NewTextRepository(db)), db
}

func TestCreateTextStartsAsDraft(t *testing.T) {
	svc, db := newTestTextService(t)
	ctx := context.Background()
	author := createUser(t, db, "autor@example.com", model.RoleAuthor)

	text, err := svc.Create(ctx, author.ID, dto.CreateTextRequest{
		Title:   "Motivo",
		Content: longContent(250),
	})
	require.NoError(t, err)

	assert.Equal(t, model.StatusDraft, text.Status)
	assert.Regexp(t, `^motivo-[0-9a-f]{8}$`, text.Slug)
	assert.Equal(t, 250, text.WordCount)
	assert.Equal(t, 2, text.ReadingTime)
	assert.Equal(t, "geral", text.Category)
	assert.Equal(t, "CC-BY-SA", text.LicenseType)
	assert.Nil(t, text.PublishedAt)
}

func TestCreateTextValidation(t *testing.T) {
	svc, db := newTestTextService(t)
	ctx := context.Background()
	author := createUser(t, db, "autor@example.com", model.RoleAuthor)

	_, err := svc.Create(ctx, author.ID, dto.CreateTextRequest{Title: "   ", Content: longContent(100)})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	_, err = svc.Create(ctx, author.ID, dto.CreateTextRequest{Title: "Curto", Content: "muito curto"})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	_, err = svc.Create(ctx, author.ID, dto.CreateTextRequest{
		Title:   strings.Repeat("t", maxTitleLength+1),
		Content: longContent(100),
	})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}

func TestLengthLimitsCountCharactersNotBytes(t *testing.T) {
	svc, db := newTestTextService(t)
	ctx := context.Background()
	author := createUser(t, db, "autor@example.com", model.RoleAuthor)

	// 60 accented characters occupy 120 bytes but stay under the 100-character
	// content minimum.
	_, err := svc.Create(ctx, author.ID, dto.CreateTextRequest{
		Title:   "Curto Demais",
		Content: strings.Repeat("ã", 60),
	})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	// A 450-character accented title is within the 500-character limit even
	// though it is 900 bytes long.
	_, err = svc.Create(ctx, author.ID, dto.CreateTextRequest{
		Title:   strings.Repeat("ã", 450),
		Content: longContent(100),
	})
	assert.NoError(t, err)
}

func TestSearchTermCountsCharactersNotBytes(t *testing.T) {
	svc, _ := newTestTextService(t)
	ctx := context.Background()

	// Two accented characters are four bytes but still below the minimum.
	_, err := svc.Search(ctx, dto.SearchTextsFilter{Query: "çã"})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	_, err = svc.Search(ctx, dto.SearchTextsFilter{Query: "ção"})
	assert.NoError(t, err)
}

func TestPublishLifecycle(t *testing.T) {
	svc, db := newTestTextService(t)
	ctx := context.Background()
	author := createUser(t, db, "autor@example.com", model.RoleAuthor)

	created, err := svc.Create(ctx, author.ID, dto.CreateTextRequest{
		Title:   "Canção do Exílio",
		Content: longContent(120),
	})
	require.NoError(t, err)

	published, err := svc.Publish(ctx, created.ID, author.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPublished, published.Status)
	require.NotNil(t, published.PublishedAt)

	// Publishing twice is an invalid transition.
	_, err = svc.Publish(ctx, created.ID, author.ID)
	assert.ErrorIs(t, err, apperror.ErrInvalidState)

	// Published texts are immutable.
	newTitle := "Outro Título"
	_, err = svc.Update(ctx, created.ID, author.ID, dto.UpdateTextRequest{Title: &newTitle})
	assert.ErrorIs(t, err, apperror.ErrInvalidState)
}

func TestUpdateDraftRecomputesDerivedFields(t *testing.T) {
	svc, db := newTestTextService(t)
	ctx := context.Background()
	author := createUser(t, db, "autor@example.com", model.RoleAuthor)

	created, err := svc.Create(ctx, author.ID, dto.CreateTextRequest{
		Title:   "Primeira Versão",
		Content: longContent(100),
	})
	require.NoError(t, err)

	newTitle := "Segunda Versão"
	newContent := longContent(450)
	updated, err := svc.Update(ctx, created.ID, author.ID, dto.UpdateTextRequest{
		Title:   &newTitle,
		Content: &newContent,
	})
	require.NoError(t, err)

	assert.Equal(t, newTitle, updated.Title)
	assert.Regexp(t, `^segunda-verso-[0-9a-f]{8}$`, updated.Slug)
	assert.NotEqual(t, created.Slug, updated.Slug)
	assert.Equal(t, 450, updated.WordCount)
	assert.Equal(t, 3, updated.ReadingTime)
}

func TestOnlyAuthorMutatesText(t *testing.T) {
	svc, db := newTestTextService(t)
	ctx := context.Background()
	author := createUser(t, db, "autor@example.com", model.RoleAuthor)
	intruder := createUser(t, db, "outro@example.com", model.RoleAdmin)

	created, err := svc.Create(ctx, author.ID, dto.CreateTextRequest{
		Title:   "Segredo",
		Content: longContent(100),
	})
	require.NoError(t, err)

	// Even an admin cannot mutate someone else's text.
	_, err = svc.Publish(ctx, created.ID, intruder.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	title := "Invasão"
	_, err = svc.Update(ctx, created.ID, intruder.ID, dto.UpdateTextRequest{Title: &title})
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	_, err = svc.SoftDelete(ctx, created.ID, intruder.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestDraftVisibleOnlyToAuthor(t *testing.T) {
	svc, db := newTestTextService(t)
	ctx := context.Background()
	author := createUser(t, db, "autor@example.com", model.RoleAuthor)
	reader := createUser(t, db, "leitor@example.com", model.RoleReader)

	created, err := svc.Create(ctx, author.ID, dto.CreateTextRequest{
		Title:   "Rascunho Privado",
		Content: longContent(100),
	})
	require.NoError(t, err)

	_, err = svc.GetByID(ctx, created.ID, reader.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	// Anonymous viewers carry the nil id.
	_, err = svc.GetByID(ctx, created.ID, uuid.Nil)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	own, err := svc.GetByID(ctx, created.ID, author.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, own.ID)
}

func TestGetByIDCountsView(t *testing.T) {
	svc, db := newTestTextService(t)
	ctx := context.Background()
	author := createUser(t, db, "autor@example.com", model.RoleAuthor)
	reader := createUser(t, db, "leitor@example.com", model.RoleReader)

	created, err := svc.Create(ctx, author.ID, dto.CreateTextRequest{
		Title:   "Poema Popular",
		Content: longContent(100),
	})
	require.NoError(t, err)
	_, err = svc.Publish(ctx, created.ID, author.ID)
	require.NoError(t, err)

	// The caller sees its own view already counted.
	first, err := svc.GetByID(ctx, created.ID, reader.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, first.ViewCount)

	second, err := svc.GetByID(ctx, created.ID, uuid.Nil)
	require.NoError(t, err)
	assert.Equal(t, 2, second.ViewCount)
}

func TestGetBySlugIgnoresDrafts(t *testing.T) {
	svc, db := newTestTextService(t)
	ctx := context.Background()
	author := createUser(t, db, "autor@example.com", model.RoleAuthor)

	created, err := svc.Create(ctx, author.ID, dto.CreateTextRequest{
		Title:   "Ainda Não Publicado",
		Content: longContent(100),
	})
	require.NoError(t, err)

	_, err = svc.GetBySlug(ctx, created.Slug)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = svc.Publish(ctx, created.ID, author.ID)
	require.NoError(t, err)

	found, err := svc.GetBySlug(ctx, created.Slug)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
}

func TestSoftDeleteHidesText(t *testing.T) {
	svc, db := newTestTextService(t)
	ctx := context.Background()
	author := createUser(t, db, "autor@example.com", model.RoleAuthor)
	reader := createUser(t, db, "leitor@example.com", model.RoleReader)

	created, err := svc.Create(ctx, author.ID, dto.CreateTextRequest{
		Title:   "Efêmero",
		Content: longContent(100),
	})
	require.NoError(t, err)
	_, err = svc.Publish(ctx, created.ID, author.ID)
	require.NoError(t, err)

	deleted, err := svc.SoftDelete(ctx, created.ID, author.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusDeleted, deleted.Status)

	_, err = svc.GetByID(ctx, created.ID, reader.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	_, err = svc.GetBySlug(ctx, created.Slug)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestUpdateDeletedTextReportsNonDraftState(t *testing.T) {
	svc, db := newTestTextService(t)
	ctx := context.Background()
	author := createUser(t, db, "autor@example.com", model.RoleAuthor)

	created, err := svc.Create(ctx, author.ID, dto.CreateTextRequest{
		Title:   "Apagado",
		Content: longContent(100),
	})
	require.NoError(t, err)

	_, err = svc.SoftDelete(ctx, created.ID, author.ID)
	require.NoError(t, err)

	title := "Ressuscitado"
	_, err = svc.Update(ctx, created.ID, author.ID, dto.UpdateTextRequest{Title: &title})
	require.ErrorIs(t, err, apperror.ErrInvalidState)
	// The message must not claim the text was published.
	assert.NotContains(t, err.Error(), "publicado")
	assert.Contains(t, err.Error(), "rascunho")
}

func TestListPublishedStripsContent(t *testing.T) {
	svc, db := newTestTextService(t)
	ctx := context.Background()
	author := createUser(t, db, "autor@example.com", model.RoleAuthor)

	for i := 0; i < 3; i++ {
		created, err := svc.Create(ctx, author.ID, dto.CreateTextRequest{
			Title:       "Texto Publicado",
			Content:     longContent(100),
			Description: "Uma pequena descrição",
		})
		require.NoError(t, err)
		_, err = svc.Publish(ctx, created.ID, author.ID)
		require.NoError(t, err)
	}
	_, err := svc.Create(ctx, author.ID, dto.CreateTextRequest{
		Title:   "Rascunho",
		Content: longContent(100),
	})
	require.NoError(t, err)

	page, err := svc.ListPublished(ctx, dto.ListTextsFilter{Limit: 2})
	require.NoError(t, err)

	assert.Equal(t, int64(3), page.Pagination.Total)
	assert.True(t, page.Pagination.HasMore)
	require.Len(t, page.Texts, 2)
	for _, text := range page.Texts {
		assert.Empty(t, text.Content)
		assert.Equal(t, "Uma pequena descrição", text.Excerpt)
	}

	last, err := svc.ListPublished(ctx, dto.ListTextsFilter{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.False(t, last.Pagination.HasMore)
	assert.Len(t, last.Texts, 1)
}

func TestSearchRequiresMinimumTerm(t *testing.T) {
	svc, _ := newTestTextService(t)
	ctx := context.Background()

	_, err := svc.Search(ctx, dto.SearchTextsFilter{Query: "ab"})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	_, err = svc.Search(ctx, dto.SearchTextsFilter{Query: "  a  "})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}

func TestListByAuthorDefaultsToPublished(t *testing.T) {
	svc, db := newTestTextService(t)
	ctx := context.Background()
	author := createUser(t, db, "autor@example.com", model.RoleAuthor)

	created, err := svc.Create(ctx, author.ID, dto.CreateTextRequest{
		Title:   "Publicado",
		Content: longContent(100),
	})
	require.NoError(t, err)
	_, err = svc.Publish(ctx, created.ID, author.ID)
	require.NoError(t, err)

	_, err = svc.Create(ctx, author.ID, dto.CreateTextRequest{
		Title:   "Rascunho",
		Content: longContent(100),
	})
	require.NoError(t, err)

	published, err := svc.ListByAuthor(ctx, author.ID, "")
	require.NoError(t, err)
	assert.Len(t, published, 1)

	all, err := svc.ListByAuthor(ctx, author.ID, "all")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
