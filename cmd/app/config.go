package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"tg_tasks_miniapp/internal/repository"

	"github.com/spf13/viper"
)

const (
	configPath   = "./"
	configName   = "config"
	configFormat = "yaml"
)

type Config struct {
	Database repository.Config `mapstructure:"database"`
	Server   ServerConfig      `mapstructure:"server"`

	TelegramAuth TelegramAuthConfig `mapstructure:"telegramAuth"`
	Tasks        TasksConfig        `mapstructure:"tasks"`

	LogLevel string `mapstructure:"logLevel"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

type TelegramAuthConfig struct {
	TelegramBotToken   string `mapstructure:"telegramBotToken"`
	DebugMode          bool   `mapstructure:"debugMode"`
	NotifyOnCompletion bool   `mapstructure:"notifyOnCompletion"`
}

type TasksConfig struct {
	VisitWaitTime time.Duration `mapstructure:"visitWaitTime"`
}

var envKeys = []string{
	"database.host",
	"database.port",
	"database.user",
	"database.password",
	"database.name",
	"server.host",
	"server.port",
	"telegramAuth.telegramBotToken",
	"telegramAuth.debugMode",
	"telegramAuth.notifyOnCompletion",
	"tasks.visitWaitTime",
	"logLevel",
}

func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName(configName)
	v.AddConfigPath(configPath)
	v.SetConfigType(configFormat)

	v.SetDefault("server.port", "8080")
	v.SetDefault("tasks.visitWaitTime", time.Hour)
	v.SetDefault("logLevel", "info")

	v.AutomaticEnv()
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	// Unmarshal only sees env vars for keys viper already knows about.
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.TelegramAuth.TelegramBotToken == "" && !cfg.TelegramAuth.DebugMode {
		return nil, fmt.Errorf("telegramAuth.telegramBotToken is required")
	}

	return &cfg, nil
}
