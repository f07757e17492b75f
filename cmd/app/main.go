package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"tg_tasks_miniapp/internal/api"
	"tg_tasks_miniapp/internal/middleware"
	"tg_tasks_miniapp/internal/repository"
	"tg_tasks_miniapp/internal/service"
	"tg_tasks_miniapp/migrations"
	"tg_tasks_miniapp/pkg/auth"
	"tg_tasks_miniapp/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	err = logger.Initialize(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	zapLogger := logger.Logger()

	if err := repository.RunMigrations(cfg.Database.GetDatabaseURL(), migrations.FS); err != nil {
		zapLogger.Fatal("Failed to run migrations", zap.Error(err))
	}

	repo, err := repository.New(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to initialize repository", zap.Error(err))
	}
	defer repo.Close()

	var notifier service.CompletionNotifier
	if cfg.TelegramAuth.NotifyOnCompletion {
		telegramNotifier, err := service.NewTelegramNotifier(service.NotifierConfig{
			BotToken: cfg.TelegramAuth.TelegramBotToken,
			Debug:    cfg.TelegramAuth.DebugMode,
		})
		if err != nil {
			zapLogger.Fatal("Failed to initialize notifier", zap.Error(err))
		}
		notifier = telegramNotifier
	}

	userService := service.NewUserService(repo)
	taskService := service.NewTaskService(repo, notifier, cfg.Tasks.VisitWaitTime)
	telegramAuth := auth.NewTelegramAuth(cfg.TelegramAuth.TelegramBotToken, cfg.TelegramAuth.DebugMode)
	authorization := middleware.NewAuthorization(userService)

	router := gin.New()
	router.Use(gin.Recovery())

	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowMethods = []string{
		http.MethodHead,
		http.MethodGet,
		http.MethodPost,
	}
	config.AllowHeaders = []string{"*"}
	config.MaxAge = 12 * time.Hour

	router.Use(cors.New(config))

	a := router.Group("/api")
	api.NewUserRoutes(a, userService, telegramAuth)
	api.NewTaskRoutes(a, taskService, telegramAuth)
	api.NewAdminRoutes(a, taskService, telegramAuth, authorization)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	zapLogger.Info("Starting server",
		zap.String("addr", addr),
		zap.Duration("visit_wait_time", cfg.Tasks.VisitWaitTime))
	if err := router.Run(addr); err != nil {
		zapLogger.Fatal("Failed to start server", zap.Error(err))
	}
}
