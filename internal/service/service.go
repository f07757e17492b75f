package service

import (
	"context"
	"errors"

	"tg_tasks_miniapp/internal/model"
	"tg_tasks_miniapp/internal/repository"
)

// Task flow errors carry the message returned to the client.
var (
	ErrUserNotFound         = errors.New("User not found")
	ErrTaskNotFound         = errors.New("Task not found")
	ErrInvalidTaskType      = errors.New("Invalid task type for this operation")
	ErrTaskNotStarted       = errors.New("Task not started")
	ErrTaskAlreadyCompleted = errors.New("Task already completed")
	ErrNotEnoughTimePassed  = errors.New("Not enough time has passed")
)

var ErrInvalidTask = errors.New("invalid task definition")

type Service struct {
	*UserService
	*TaskService
}

func NewService(userService *UserService, taskService *TaskService) *Service {
	return &Service{
		UserService: userService,
		TaskService: taskService,
	}
}

type UserServiceI interface {
	RegisterUser(ctx context.Context, user *model.User) (*model.User, error)
	GetUserByTelegramID(ctx context.Context, telegramID int64) (*model.User, error)
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) (bool, error)
	GetUserByTelegramID(ctx context.Context, telegramID int64) (*model.User, error)
}

type TaskServiceI interface {
	ListUserTasks(ctx context.Context, telegramID int64) ([]*model.UserTaskStatus, error)
	CheckVisitTask(ctx context.Context, telegramID int64, taskID string) (*model.UserTask, error)
	StartTask(ctx context.Context, telegramID int64, taskID string) (*model.UserTask, error)
	CreateTask(ctx context.Context, task *model.Task) (string, error)
}

type TaskRepository interface {
	GetUserByTelegramID(ctx context.Context, telegramID int64) (*model.User, error)
	ListTasks(ctx context.Context) ([]*model.Task, error)
	ListUserTasks(ctx context.Context, userID string) ([]*model.UserTask, error)
	CreateTask(ctx context.Context, task *model.Task) error
	InTx(ctx context.Context, fn func(store repository.Store) error) error
}

// CompletionNotifier tells a user that a task was credited. Failures never
// undo a completion.
type CompletionNotifier interface {
	NotifyTaskCompleted(ctx context.Context, telegramID int64, task *model.Task) error
}
