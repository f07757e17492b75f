package service

import (
	"context"
	"fmt"

	"tg_tasks_miniapp/internal/model"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type NotifierConfig struct {
	BotToken string
	Debug    bool
}

// TelegramNotifier messages users through the Mini App's bot.
type TelegramNotifier struct {
	bot *tgbotapi.BotAPI
}

func NewTelegramNotifier(config NotifierConfig) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(config.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize bot: %w", err)
	}

	bot.Debug = config.Debug

	return &TelegramNotifier{
		bot: bot,
	}, nil
}

func (n *TelegramNotifier) NotifyTaskCompleted(ctx context.Context, telegramID int64, task *model.Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(telegramID, completionMessage(task))
	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	return nil
}

func completionMessage(task *model.Task) string {
	return fmt.Sprintf("Task \"%s\" completed! +%d points", task.Title, task.Points)
}
