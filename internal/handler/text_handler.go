package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/recantodospoetas/backend/internal/dto"
	"github.com/recantodospoetas/backend/internal/service"
	"github.com/recantodospoetas/backend/pkg/response"
	"github.com/recantodospoetas/backend/pkg/validator"
)

type TextHandler struct {
	textService service.TextService
}

func NewTextHandler(textService service.TextService) *TextHandler {
	return &TextHandler{textService: textService}
}

func (h *TextHandler) Create(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.CreateTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	text, err := h.textService.Create(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "texto criado com sucesso",
		"text":    text,
	})
}

func (h *TextHandler) Update(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	textID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id de texto inválido"})
		return
	}

	var req dto.UpdateTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	text, err := h.textService.Update(c.Request.Context(), textID, userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "texto atualizado com sucesso",
		"text":    text,
	})
}

func (h *TextHandler) Publish(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	textID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id de texto inválido"})
		return
	}

	text, err := h.textService.Publish(c.Request.Context(), textID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "texto publicado com sucesso",
		"text":    text,
	})
}

func (h *TextHandler) Delete(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	textID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id de texto inválido"})
		return
	}

	text, err := h.textService.SoftDelete(c.Request.Context(), textID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "texto deletado com sucesso",
		"text":    text,
	})
}

// GetByID is mounted behind OptionalAuth: the viewer identity, when present,
// lets an author read their own drafts.
func (h *TextHandler) GetByID(c *gin.Context) {
	textID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id de texto inválido"})
		return
	}

	viewerID := response.OptionalUserID(c)

	text, err := h.textService.GetByID(c.Request.Context(), textID, viewerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"text": text})
}

func (h *TextHandler) GetBySlug(c *gin.Context) {
	text, err := h.textService.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"text": text})
}

func (h *TextHandler) ListPublished(c *gin.Context) {
	var filter dto.ListTextsFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	res, err := h.textService.ListPublished(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *TextHandler) Search(c *gin.Context) {
	var filter dto.SearchTextsFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	texts, err := h.textService.Search(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"query": filter.Query,
		"texts": texts,
		"pagination": gin.H{
			"limit":  filter.Limit,
			"offset": filter.Offset,
		},
	})
}

func (h *TextHandler) ListByAuthor(c *gin.Context) {
	authorID, err := uuid.Parse(c.Param("authorId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id de autor inválido"})
		return
	}

	status := c.DefaultQuery("status", "published")

	texts, err := h.textService.ListByAuthor(c.Request.Context(), authorID, status)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"texts": texts})
}
