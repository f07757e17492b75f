package mocks

import (
	"context"

	"tg_tasks_miniapp/internal/model"
	"tg_tasks_miniapp/internal/repository"

	"github.com/stretchr/testify/mock"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, user *model.User) (bool, error) {
	args := m.Called(ctx, user)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) GetUserByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	args := m.Called(ctx, telegramID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

// MockTaskRepository runs InTx callbacks against Store, after recording the
// call. A non-nil error set on InTx is returned without running the callback.
type MockTaskRepository struct {
	mock.Mock
	Store *MockStore
}

func (m *MockTaskRepository) GetUserByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	args := m.Called(ctx, telegramID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockTaskRepository) ListTasks(ctx context.Context) ([]*model.Task, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Task), args.Error(1)
}

func (m *MockTaskRepository) ListUserTasks(ctx context.Context, userID string) ([]*model.UserTask, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.UserTask), args.Error(1)
}

func (m *MockTaskRepository) CreateTask(ctx context.Context, task *model.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskRepository) InTx(ctx context.Context, fn func(store repository.Store) error) error {
	args := m.Called(ctx)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(m.Store)
}

type MockStore struct {
	mock.Mock
}

var _ repository.Store = (*MockStore)(nil)

func (m *MockStore) GetUserByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	args := m.Called(ctx, telegramID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockStore) GetTaskByID(ctx context.Context, taskID string) (*model.Task, error) {
	args := m.Called(ctx, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Task), args.Error(1)
}

func (m *MockStore) GetUserTask(ctx context.Context, userID, taskID string) (*model.UserTask, error) {
	args := m.Called(ctx, userID, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UserTask), args.Error(1)
}

func (m *MockStore) GetUserTaskForUpdate(ctx context.Context, userID, taskID string) (*model.UserTask, error) {
	args := m.Called(ctx, userID, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UserTask), args.Error(1)
}

func (m *MockStore) CreateUserTask(ctx context.Context, userTask *model.UserTask) (bool, error) {
	args := m.Called(ctx, userTask)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) MarkUserTaskCompleted(ctx context.Context, userTaskID string) error {
	args := m.Called(ctx, userTaskID)
	return args.Error(0)
}

func (m *MockStore) CreditUserPoints(ctx context.Context, userID string, points int) error {
	args := m.Called(ctx, userID, points)
	return args.Error(0)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyTaskCompleted(ctx context.Context, telegramID int64, task *model.Task) error {
	args := m.Called(ctx, telegramID, task)
	return args.Error(0)
}
