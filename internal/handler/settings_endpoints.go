package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// listKeys никогда не возвращает сами ключи, только признак наличия.
func (h *Handler) listKeys(c *gin.Context) {
	statuses, err := h.settings.ListKeys(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, statuses)
}

func (h *Handler) saveKey(c *gin.Context) {
	var req saveKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, "provider and apiKey are required")
		return
	}
	if err := h.settings.SaveKey(c.Request.Context(), req.Provider, req.APIKey); err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.logger.Info("API key saved via settings", zap.String("provider", req.Provider))
	c.JSON(http.StatusOK, messageResponse{Message: "API key saved"})
}

func (h *Handler) deleteKey(c *gin.Context) {
	provider := c.Param("provider")
	if err := h.settings.DeleteKey(c.Request.Context(), provider); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, messageResponse{Message: "API key deleted"})
}

func (h *Handler) listProviders(c *gin.Context) {
	c.JSON(http.StatusOK, h.settings.ListProviders())
}
