package handler

import (
	"net/http"

	"content-pipeline/internal/models"

	"github.com/gin-gonic/gin"
)

func (h *Handler) approveContent(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req approveContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, "Invalid request data: "+err.Error())
		return
	}

	content, err := h.pipeline.ApproveContent(c.Request.Context(), id, req.Content)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, content)
}

func (h *Handler) updateContent(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req updateContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, "Invalid request data: "+err.Error())
		return
	}

	content, err := h.pipeline.UpdateContent(c.Request.Context(), id, models.ContentPatch{Title: req.Title, Body: req.Content})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, content)
}
