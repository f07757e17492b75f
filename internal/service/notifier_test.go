package service

import (
	"context"
	"testing"

	"tg_tasks_miniapp/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestCompletionMessage(t *testing.T) {
	msg := completionMessage(&model.Task{Title: "Visit site", Points: 50})

	assert.Equal(t, "Task \"Visit site\" completed! +50 points", msg)
}

func TestTelegramNotifier_CancelledContext(t *testing.T) {
	n := &TelegramNotifier{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := n.NotifyTaskCompleted(ctx, 123, &model.Task{ID: "task-1"})

	assert.ErrorIs(t, err, context.Canceled)
}
