package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/recantodospoetas/backend/internal/service"
	"github.com/recantodospoetas/backend/pkg/response"
)

type AdminHandler struct {
	authService service.AuthService
}

func NewAdminHandler(authService service.AuthService) *AdminHandler {
	return &AdminHandler{authService: authService}
}

// PromoteToAuthor grants a reader the author role.
func (h *AdminHandler) PromoteToAuthor(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id de usuário inválido"})
		return
	}

	user, err := h.authService.PromoteToAuthor(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "usuário promovido a autor",
		"user":    user,
	})
}
