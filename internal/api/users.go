package api

import (
	"errors"
	"net/http"

	"tg_tasks_miniapp/internal/model"
	"tg_tasks_miniapp/internal/service"
	"tg_tasks_miniapp/pkg/auth"
	"tg_tasks_miniapp/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type userRoutes struct {
	us service.UserServiceI
	a  *auth.TelegramAuth
}

func NewUserRoutes(handler *gin.RouterGroup, us service.UserServiceI, a *auth.TelegramAuth) {
	r := &userRoutes{us: us, a: a}
	h := handler.Group("/users")
	{
		h.POST("", r.RegisterUser)
		h.GET("/me", r.GetCurrentUser)
	}
}

type RegisterUserRequest struct {
	InitData string `json:"initData"`
}

type userResponse struct {
	TelegramID    int64  `json:"telegramId"`
	Username      string `json:"username"`
	Points        int    `json:"points"`
	PointsBalance int    `json:"pointsBalance"`
}

func toUserResponse(user *model.User) userResponse {
	return userResponse{
		TelegramID:    user.TelegramID,
		Username:      user.Username,
		Points:        user.Points,
		PointsBalance: user.PointsBalance,
	}
}

func (r *userRoutes) RegisterUser(c *gin.Context) {
	log := logger.Logger()

	var req RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.InitData == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidRequest})
		return
	}

	telegramUser, ok := verifyInitData(c, r.a, req.InitData)
	if !ok {
		return
	}

	user, err := r.us.RegisterUser(c.Request.Context(), &model.User{
		TelegramID: telegramUser.ID,
		Username:   telegramUser.Username,
	})
	if err != nil {
		log.Error("failed to register user",
			zap.Error(err),
			zap.Int64("telegram_id", telegramUser.ID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register user"})
		return
	}

	c.JSON(http.StatusOK, toUserResponse(user))
}

func (r *userRoutes) GetCurrentUser(c *gin.Context) {
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

	user, err := r.us.GetUserByTelegramID(c.Request.Context(), telegramUser.ID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": service.ErrUserNotFound.Error()})
			return
		}
		log.Error("failed to get user", zap.Error(err), zap.Int64("telegram_id", telegramUser.ID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user"})
		return
	}

	c.JSON(http.StatusOK, toUserResponse(user))
}
