package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/recantodospoetas/backend/pkg/storage"
)

var allowedUploadFolders = map[string]bool{
	"covers":   true,
	"profiles": true,
}

type UploadHandler struct {
	imageStorage storage.ImageStorage
}

func NewUploadHandler(imageStorage storage.ImageStorage) *UploadHandler {
	return &UploadHandler{imageStorage: imageStorage}
}

// Upload stores a cover image or profile picture and returns its URL. The
// returned reference is what create/update text and profile endpoints accept.
func (h *UploadHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "arquivo é obrigatório"})
		return
	}

	folder := c.DefaultPostForm("folder", "covers")
	if !allowedUploadFolders[folder] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "pasta de upload inválida"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "não foi possível ler o arquivo"})
		return
	}
	defer file.Close()

	url, err := h.imageStorage.UploadImage(c.Request.Context(), file, folder, fileHeader.Filename)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "falha ao enviar imagem"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"url": url})
}
