package api

import (
	"errors"
	"net/http"
	"time"

	"tg_tasks_miniapp/internal/model"
	"tg_tasks_miniapp/internal/service"
	"tg_tasks_miniapp/pkg/auth"
	"tg_tasks_miniapp/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type taskRoutes struct {
	ts service.TaskServiceI
	a  *auth.TelegramAuth
}

func NewTaskRoutes(handler *gin.RouterGroup, ts service.TaskServiceI, a *auth.TelegramAuth) {
	r := &taskRoutes{ts: ts, a: a}

	h := handler.Group("/tasks")
	{
		h.GET("", r.ListTasks)
		h.POST("/start", r.StartTask)
		h.POST("/check/visit", r.CheckVisitTask)
	}
}

type taskResponse struct {
	ID                 string     `json:"id"`
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	Type               string     `json:"type"`
	Image              string     `json:"image"`
	Link               string     `json:"link"`
	Points             int        `json:"points"`
	CreatedAt          time.Time  `json:"createdAt"`
	TaskStartTimestamp *time.Time `json:"taskStartTimestamp"`
	IsCompleted        bool       `json:"isCompleted"`
}

type ListTasksResponse struct {
	Tasks []taskResponse `json:"tasks"`
}

func (r *taskRoutes) ListTasks(c *gin.Context) {
	log := logger.Logger()

	initData := c.Query("initData")
	if initData == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidRequest})
		return
	}

	telegramUser, ok := verifyInitData(c, r.a, initData)
	if !ok {
		return
	}

	statuses, err := r.ts.ListUserTasks(c.Request.Context(), telegramUser.ID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": service.ErrUserNotFound.Error()})
			return
		}
		log.Error("failed to fetch user tasks",
			zap.Error(err),
			zap.Int64("telegram_id", telegramUser.ID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user tasks"})
		return
	}

	out := ListTasksResponse{Tasks: make([]taskResponse, len(statuses))}
	for i, status := range statuses {
		out.Tasks[i] = toTaskResponse(status)
	}

	c.JSON(http.StatusOK, out)
}

func toTaskResponse(status *model.UserTaskStatus) taskResponse {
	return taskResponse{
		ID:                 status.Task.ID,
		Title:              status.Task.Title,
		Description:        status.Task.Description,
		Type:               string(status.Task.Type),
		Image:              status.Task.Image,
		Link:               status.Task.Link,
		Points:             status.Task.Points,
		CreatedAt:          status.Task.CreatedAt,
		TaskStartTimestamp: status.TaskStartTimestamp,
		IsCompleted:        status.IsCompleted,
	}
}

type TaskActionRequest struct {
	InitData string `json:"initData"`
	TaskID   string `json:"taskId"`
}

type CheckVisitTaskResponse struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	IsCompleted bool   `json:"isCompleted"`
}

func (r *taskRoutes) CheckVisitTask(c *gin.Context) {
	log := logger.Logger()

	var req TaskActionRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.InitData == "" || req.TaskID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidRequest})
		return
	}

	telegramUser, ok := verifyInitData(c, r.a, req.InitData)
	if !ok {
		return
	}

	userTask, err := r.ts.CheckVisitTask(c.Request.Context(), telegramUser.ID, req.TaskID)
	if err != nil {
		status, message := taskErrorResponse(err)
		if status == http.StatusInternalServerError {
			log.Error("failed to check visit task",
				zap.Error(err),
				zap.Int64("telegram_id", telegramUser.ID),
				zap.String("task_id", req.TaskID))
			message = "Failed to check visit task"
		} else {
			log.Info("visit task rejected",
				zap.Error(err),
				zap.Int64("telegram_id", telegramUser.ID),
				zap.String("task_id", req.TaskID))
		}
		c.JSON(status, gin.H{"error": message})
		return
	}

	c.JSON(http.StatusOK, CheckVisitTaskResponse{
		Success:     true,
		Message:     "Task completed successfully",
		IsCompleted: userTask.IsCompleted,
	})
}

type StartTaskResponse struct {
	Success            bool      `json:"success"`
	TaskStartTimestamp time.Time `json:"taskStartTimestamp"`
	IsCompleted        bool      `json:"isCompleted"`
}

func (r *taskRoutes) StartTask(c *gin.Context) {
	log := logger.Logger()

	var req TaskActionRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.InitData == "" || req.TaskID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidRequest})
		return
	}

	telegramUser, ok := verifyInitData(c, r.a, req.InitData)
	if !ok {
		return
	}

	userTask, err := r.ts.StartTask(c.Request.Context(), telegramUser.ID, req.TaskID)
	if err != nil {
		status, message := taskErrorResponse(err)
		if status == http.StatusInternalServerError {
			log.Error("failed to start task",
				zap.Error(err),
				zap.Int64("telegram_id", telegramUser.ID),
				zap.String("task_id", req.TaskID))
			message = "Failed to start task"
		}
		c.JSON(status, gin.H{"error": message})
		return
	}

	c.JSON(http.StatusOK, StartTaskResponse{
		Success:            true,
		TaskStartTimestamp: userTask.TaskStartTimestamp,
		IsCompleted:        userTask.IsCompleted,
	})
}

var taskErrorStatuses = []struct {
	err    error
	status int
}{
	{service.ErrUserNotFound, http.StatusNotFound},
	{service.ErrTaskNotFound, http.StatusNotFound},
	{service.ErrInvalidTaskType, http.StatusBadRequest},
	{service.ErrTaskNotStarted, http.StatusPreconditionFailed},
	{service.ErrTaskAlreadyCompleted, http.StatusConflict},
	{service.ErrNotEnoughTimePassed, http.StatusPreconditionFailed},
}

// taskErrorResponse maps a task service error to a status code and the
// message shown to the client. The message is the matched sentinel's text,
// so wrapping never leaks into the response.
func taskErrorResponse(err error) (int, string) {
	for _, e := range taskErrorStatuses {
		if errors.Is(err, e.err) {
			return e.status, e.err.Error()
		}
	}
	return http.StatusInternalServerError, ""
}
