package handler

import (
	"net/http"

	"content-pipeline/internal/middleware"
	"content-pipeline/internal/models"
	"content-pipeline/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// createTask возвращает 202: генерация продолжается в фоне, статус опрашивается через GET.
func (h *Handler) createTask(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		h.handleServiceError(c, models.ErrUnauthorized)
		return
	}

	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, "Invalid request data: "+err.Error())
		return
	}

	task, err := h.pipeline.CreateTask(c.Request.Context(), service.CreateTaskInput{
		UserID:       userID,
		Topic:        req.Topic,
		SourceURL:    req.SourceURL,
		SourceFile:   req.SourceFile,
		SourceText:   req.SourceText,
		Comparison:   req.Comparison,
		Requirements: req.Requirements,
		Provider:     req.Provider,
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, task)
}

func (h *Handler) listTasks(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		h.handleServiceError(c, models.ErrUnauthorized)
		return
	}

	tasks, err := h.pipeline.ListTasks(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	if tasks == nil {
		tasks = []*models.Task{}
	}
	c.JSON(http.StatusOK, tasks)
}

func (h *Handler) getTask(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	task, err := h.pipeline.GetTask(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *Handler) updateTaskStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, "Invalid request data: "+err.Error())
		return
	}

	task, err := h.pipeline.UpdateTaskStatus(c.Request.Context(), id, models.TaskStatus(req.Status))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *Handler) markDistributed(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	task, err := h.pipeline.MarkDistributed(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *Handler) listContent(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	items, err := h.pipeline.ListContent(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	if items == nil {
		items = []*models.Content{}
	}
	c.JSON(http.StatusOK, items)
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortBadRequest(c, "Invalid id format")
		return uuid.Nil, false
	}
	return id, true
}
