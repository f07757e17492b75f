package api

import (
	"net/http"

	"tg_tasks_miniapp/pkg/auth"
	"tg_tasks_miniapp/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	msgInvalidRequest      = "Invalid request"
	msgInvalidTelegramData = "Invalid Telegram data"
	msgInvalidUserData     = "Invalid user data"
)

// verifyInitData checks a Mini App init data payload taken from a query
// parameter or request body. On failure it writes the response and returns
// false.
func verifyInitData(c *gin.Context, a *auth.TelegramAuth, initData string) (*auth.TelegramUserData, bool) {
	log := logger.Logger()

	telegramUser, err := a.Verify(initData)
	if err != nil {
		log.Info("invalid telegram init data", zap.Error(err))
		c.JSON(http.StatusForbidden, gin.H{"error": msgInvalidTelegramData})
		return nil, false
	}

	if telegramUser.ID == 0 {
		log.Info("telegram init data carries no user id")
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidUserData})
		return nil, false
	}

	return telegramUser, true
}
