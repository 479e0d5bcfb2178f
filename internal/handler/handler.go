// Package handler содержит HTTP API конвейера на gin.
package handler

import (
	"content-pipeline/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	pipeline service.PipelineService
	settings service.SettingsService
	logger   *zap.Logger
}

func NewHandler(pipeline service.PipelineService, settings service.SettingsService, logger *zap.Logger) *Handler {
	return &Handler{
		pipeline: pipeline,
		settings: settings,
		logger:   logger.Named("Handler"),
	}
}

// RegisterRoutes регистрирует маршруты /api. auth определяет текущего пользователя.
func (h *Handler) RegisterRoutes(router *gin.Engine, auth gin.HandlerFunc) {
	api := router.Group("/api")
	api.Use(auth)
	{
		tasks := api.Group("/tasks")
		tasks.POST("", h.createTask)
		tasks.GET("", h.listTasks)
		tasks.GET("/:id", h.getTask)
		tasks.PATCH("/:id/status", h.updateTaskStatus)
		tasks.POST("/:id/distribute", h.markDistributed)
		tasks.GET("/:id/content", h.listContent)

		content := api.Group("/content")
		content.PATCH("/:id/approve", h.approveContent)
		content.PATCH("/:id", h.updateContent)

		settings := api.Group("/settings")
		settings.GET("/api-keys", h.listKeys)
		settings.POST("/api-keys", h.saveKey)
		settings.DELETE("/api-keys/:provider", h.deleteKey)
		settings.GET("/providers", h.listProviders)
	}
}
