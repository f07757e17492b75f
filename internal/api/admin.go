package api

import (
	"errors"
	"net/http"

	"tg_tasks_miniapp/internal/middleware"
	"tg_tasks_miniapp/internal/model"
	"tg_tasks_miniapp/internal/service"
	"tg_tasks_miniapp/pkg/auth"
	"tg_tasks_miniapp/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type adminRoutes struct {
	ts service.TaskServiceI
}

func NewAdminRoutes(handler *gin.RouterGroup, ts service.TaskServiceI, a *auth.TelegramAuth, authz *middleware.Authorization) {
	r := &adminRoutes{ts: ts}

	admin := handler.Group("/admin")
	admin.Use(a.TelegramAuthMiddleware(), authz.AdminOnly())
	{
		admin.POST("/tasks", r.CreateTask)
	}
}

type CreateTaskRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Type        string `json:"type" binding:"required,oneof=VISIT TELEGRAM REFERRAL"`
	Image       string `json:"image"`
	Link        string `json:"link"`
	Points      int    `json:"points" binding:"min=0"`
}

func (r *adminRoutes) CreateTask(c *gin.Context) {
	log := logger.Logger()

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Info("invalid create task request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	taskID, err := r.ts.CreateTask(c.Request.Context(), &model.Task{
		Title:       req.Title,
		Description: req.Description,
		Type:        model.TaskType(req.Type),
		Image:       req.Image,
		Link:        req.Link,
		Points:      req.Points,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidTask) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task definition"})
			return
		}
		log.Error("failed to create task", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create task"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"taskId": taskID})
}
