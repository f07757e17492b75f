package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"tg_tasks_miniapp/pkg/logger"

	"github.com/gin-gonic/gin"
	initdata "github.com/telegram-mini-apps/init-data-golang"
	"go.uber.org/zap"
)

const expTime = 24 * time.Hour

const ContextKeyTelegramUser = "telegram_user"

var ErrInvalidInitData = errors.New("invalid telegram init data")

type TelegramAuth struct {
	botToken  string
	debugMode bool
}

func NewTelegramAuth(botToken string, debugMode bool) *TelegramAuth {
	return &TelegramAuth{
		botToken:  botToken,
		debugMode: debugMode,
	}
}

// Verify checks the init data signature and expiry and returns the Telegram
// user it carries. A payload without a user yields a zero ID, not an error.
func (t *TelegramAuth) Verify(initData string) (*TelegramUserData, error) {
	if !t.debugMode {
		if err := initdata.Validate(initData, t.botToken, expTime); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInitData, err)
		}
	}

	telegramUserData, err := ExtractTelegramData(initData)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInitData, err)
	}

	return telegramUserData, nil
}

func (t *TelegramAuth) TelegramAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.Logger()

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			log.Info("missing authorization header")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header is required"})
			return
		}

		if !strings.HasPrefix(authHeader, "Telegram ") {
			log.Info("invalid authorization header format")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			return
		}

		telegramUserData, err := t.Verify(strings.TrimPrefix(authHeader, "Telegram "))
		if err != nil {
			log.Info("invalid telegram init data", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid telegram auth data"})
			return
		}

		if telegramUserData.ID == 0 {
			log.Info("telegram init data carries no user")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid telegram data"})
			return
		}

		c.Set(ContextKeyTelegramUser, telegramUserData)
		c.Next()
	}
}

func (t *TelegramAuth) GetBotToken() string {
	return t.botToken
}

type TelegramUserData struct {
	ID       int64
	Username string
	AuthDate time.Time
}

func ExtractTelegramData(initData string) (*TelegramUserData, error) {
	data, err := initdata.Parse(initData)
	if err != nil {
		return nil, err
	}

	telegramUserData := &TelegramUserData{
		ID:       data.User.ID,
		Username: data.User.Username,
	}
	if data.AuthDateRaw != 0 {
		telegramUserData.AuthDate = data.AuthDate()
	}

	return telegramUserData, nil
}

// UserFromContext returns the user stored by TelegramAuthMiddleware.
func UserFromContext(c *gin.Context) (*TelegramUserData, bool) {
	userData, exists := c.Get(ContextKeyTelegramUser)
	if !exists {
		return nil, false
	}

	telegramUser, ok := userData.(*TelegramUserData)
	return telegramUser, ok
}
