package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/recantodospoetas/backend/internal/dto"
	"github.com/recantodospoetas/backend/internal/service"
	"github.com/recantodospoetas/backend/pkg/response"
	"github.com/recantodospoetas/backend/pkg/validator"
)

type LicenseHandler struct {
	licenseService service.LicenseService
}

func NewLicenseHandler(licenseService service.LicenseService) *LicenseHandler {
	return &LicenseHandler{licenseService: licenseService}
}

func (h *LicenseHandler) Checkout(c *gin.Context) {
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

	var req dto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	res, err := h.licenseService.CreateCheckout(c.Request.Context(), textID, userID, req.PriceCents)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, res)
}

// Webhook receives payment-provider callbacks. The raw body is needed for
// signature verification, so it is read before any binding.
func (h *LicenseHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "corpo de requisição inválido"})
		return
	}

	signature := c.GetHeader("Stripe-Signature")

	if err := h.licenseService.HandleWebhook(c.Request.Context(), payload, signature); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

func (h *LicenseHandler) ListMine(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	licenses, err := h.licenseService.ListMine(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"licenses": licenses})
}
