package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/recantodospoetas/backend/internal/model"
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

	// A pooled sqlite :memory: connection is a separate database per
	// connection; a single connection keeps every query on the same database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Text{}, &model.Favorite{}, &model.License{}))
	return db
}

func createTestAuthor(t *testing.T, db *gorm.DB) *model.User {
	t.Helper()
	user := &model.User{
		Email:        fmt.Sprintf("autor-%s@example.com", uuid.New().String()[:8]),
		PasswordHash: "hash",
		FirstName:    "Carlos",
		LastName:     "Drummond",
		Role:         model.RoleAuthor,
		IsActive:     true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestText(t *testing.T, db *gorm.DB, authorID uuid.UUID, status string) *model.Text {
	t.Helper()
	text := &model.Text{
		AuthorID:    authorID,
		Title:       "No Meio do Caminho",
		Content:     "No meio do caminho tinha uma pedra, tinha uma pedra no meio do caminho.",
		Slug:        fmt.Sprintf("no-meio-do-caminho-%s", uuid.New().String()[:8]),
		Description: "Um poema sobre pedras",
		Category:    "poesia",
		LicenseType: "CC-BY-SA",
		Status:      status,
	}
	if status == model.StatusPublished {
		now := time.Now()
		text.PublishedAt = &now
	}
	require.NoError(t, db.Create(text).Error)
	return text
}

func TestCreateDuplicateSlugSurfacesAsDuplicatedKey(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTextRepository(db)
	ctx := context.Background()
	author := createTestAuthor(t, db)

	first := createTestText(t, db, author.ID, model.StatusDraft)

	clone := &model.Text{
		AuthorID:    author.ID,
		Title:       first.Title,
		Content:     first.Content,
		Slug:        first.Slug,
		Category:    first.Category,
		LicenseType: first.LicenseType,
		Status:      model.StatusDraft,
	}
	err := repo.Create(ctx, clone)
	// Services depend on this translation to answer a slug collision with a
	// retryable conflict instead of a generic failure.
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestFindBySlugOnlyResolvesPublished(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTextRepository(db)
	ctx := context.Background()
	author := createTestAuthor(t, db)

	published := createTestText(t, db, author.ID, model.StatusPublished)
	draft := createTestText(t, db, author.ID, model.StatusDraft)

	found, err := repo.FindBySlug(ctx, published.Slug)
	require.NoError(t, err)
	assert.Equal(t, published.ID, found.ID)
	assert.Equal(t, author.FirstName, found.Author.FirstName)

	_, err = repo.FindBySlug(ctx, draft.Slug)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestPublishIsConditionalOnDraftStatus(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTextRepository(db)
	ctx := context.Background()
	author := createTestAuthor(t, db)
	text := createTestText(t, db, author.ID, model.StatusDraft)

	rows, err := repo.Publish(ctx, text.ID, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	// The second publish finds no draft row to flip.
	rows, err = repo.Publish(ctx, text.ID, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)

	updated, err := repo.FindByID(ctx, text.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPublished, updated.Status)
	require.NotNil(t, updated.PublishedAt)
}

func TestUpdateDraftRefusesPublishedText(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTextRepository(db)
	ctx := context.Background()
	author := createTestAuthor(t, db)

	draft := createTestText(t, db, author.ID, model.StatusDraft)
	published := createTestText(t, db, author.ID, model.StatusPublished)

	rows, err := repo.UpdateDraft(ctx, draft.ID, map[string]interface{}{"title": "Nova Versão"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	rows, err = repo.UpdateDraft(ctx, published.ID, map[string]interface{}{"title": "Nova Versão"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)

	unchanged, err := repo.FindByID(ctx, published.ID)
	require.NoError(t, err)
	assert.Equal(t, "No Meio do Caminho", unchanged.Title)
}

func TestSoftDeleteFromAnyStatus(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTextRepository(db)
	ctx := context.Background()
	author := createTestAuthor(t, db)

	for _, status := range []string{model.StatusDraft, model.StatusPublished} {
		text := createTestText(t, db, author.ID, status)

		rows, err := repo.SoftDelete(ctx, text.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), rows)

		deleted, err := repo.FindByID(ctx, text.ID)
		require.NoError(t, err)
		assert.Equal(t, model.StatusDeleted, deleted.Status)
	}
}

func TestIncrementViewCountConcurrent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTextRepository(db)
	ctx := context.Background()
	author := createTestAuthor(t, db)
	text := createTestText(t, db, author.ID, model.StatusPublished)

	const viewers = 20
	var wg sync.WaitGroup
	errs := make(chan error, viewers)
	for i := 0; i < viewers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- repo.IncrementViewCount(ctx, text.ID)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	updated, err := repo.FindByID(ctx, text.ID)
	require.NoError(t, err)
	assert.Equal(t, viewers, updated.ViewCount)
}

func TestListPublishedPaginationAndCategory(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTextRepository(db)
	ctx := context.Background()
	author := createTestAuthor(t, db)

	for i := 0; i < 5; i++ {
		createTestText(t, db, author.ID, model.StatusPublished)
	}
	createTestText(t, db, author.ID, model.StatusDraft)

	cronica := createTestText(t, db, author.ID, model.StatusPublished)
	require.NoError(t, db.Model(cronica).Update("category", "cronica").Error)

	texts, total, err := repo.ListPublished(ctx, 4, 0, "")
	require.NoError(t, err)
	assert.Equal(t, int64(6), total)
	assert.Len(t, texts, 4)

	texts, total, err = repo.ListPublished(ctx, 4, 4, "")
	require.NoError(t, err)
	assert.Equal(t, int64(6), total)
	assert.Len(t, texts, 2)

	texts, total, err = repo.ListPublished(ctx, 10, 0, "cronica")
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, texts, 1)
	assert.Equal(t, cronica.ID, texts[0].ID)
}

func TestSearchMatchesSubstringsCaseInsensitive(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTextRepository(db)
	ctx := context.Background()
	author := createTestAuthor(t, db)

	published := createTestText(t, db, author.ID, model.StatusPublished)
	createTestText(t, db, author.ID, model.StatusDraft)

	// Substring of the title, different case.
	texts, err := repo.Search(ctx, "MEIO DO CAM", 10, 0)
	require.NoError(t, err)
	require.Len(t, texts, 1)
	assert.Equal(t, published.ID, texts[0].ID)

	// Substring of the content only.
	texts, err = repo.Search(ctx, "uma pedra", 10, 0)
	require.NoError(t, err)
	assert.Len(t, texts, 1)

	texts, err = repo.Search(ctx, "inexistente", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, texts)
}

func TestFavoriteCount(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTextRepository(db)
	ctx := context.Background()
	author := createTestAuthor(t, db)
	text := createTestText(t, db, author.ID, model.StatusPublished)

	for i := 0; i < 3; i++ {
		reader := createTestAuthor(t, db)
		require.NoError(t, db.Create(&model.Favorite{UserID: reader.ID, TextID: text.ID}).Error)
	}

	count, err := repo.FavoriteCount(ctx, text.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}
