package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tg_tasks_miniapp/internal/model"
	"tg_tasks_miniapp/internal/repository"
	"tg_tasks_miniapp/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const DefaultVisitWaitTime = time.Hour

type TaskService struct {
	repo     TaskRepository
	notifier CompletionNotifier
	waitTime time.Duration
	now      func() time.Time
}

// NewTaskService builds the task service. notifier may be nil.
func NewTaskService(repo TaskRepository, notifier CompletionNotifier, waitTime time.Duration) *TaskService {
	if waitTime <= 0 {
		waitTime = DefaultVisitWaitTime
	}

	return &TaskService{
		repo:     repo,
		notifier: notifier,
		waitTime: waitTime,
		now:      time.Now,
	}
}

// ListUserTasks returns every task merged with the user's progress.
func (s *TaskService) ListUserTasks(ctx context.Context, telegramID int64) ([]*model.UserTaskStatus, error) {
	user, err := s.repo.GetUserByTelegramID(ctx, telegramID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	userTasks, err := s.repo.ListUserTasks(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user tasks: %w", err)
	}

	tasks, err := s.repo.ListTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get tasks: %w", err)
	}

	return mergeUserTasks(tasks, userTasks), nil
}

func mergeUserTasks(tasks []*model.Task, userTasks []*model.UserTask) []*model.UserTaskStatus {
	progress := make(map[string]*model.UserTask, len(userTasks))
	for _, ut := range userTasks {
		progress[ut.TaskID] = ut
	}

	statuses := make([]*model.UserTaskStatus, len(tasks))
	for i, task := range tasks {
		status := &model.UserTaskStatus{Task: task}
		if ut, ok := progress[task.ID]; ok {
			started := ut.TaskStartTimestamp
			status.TaskStartTimestamp = &started
			status.IsCompleted = ut.IsCompleted
		}
		statuses[i] = status
	}

	return statuses
}

// CheckVisitTask completes a started VISIT task once the wait time has
// elapsed and credits its points. Checks and writes share one transaction;
// the first failed check aborts it.
func (s *TaskService) CheckVisitTask(ctx context.Context, telegramID int64, taskID string) (*model.UserTask, error) {
	var (
		task      *model.Task
		completed *model.UserTask
	)

	err := s.repo.InTx(ctx, func(store repository.Store) error {
		user, err := store.GetUserByTelegramID(ctx, telegramID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("failed to get user: %w", err)
		}

		task, err = store.GetTaskByID(ctx, taskID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrTaskNotFound
			}
			return fmt.Errorf("failed to get task: %w", err)
		}

		if task.Type != model.TaskTypeVisit {
			return ErrInvalidTaskType
		}

		userTask, err := store.GetUserTaskForUpdate(ctx, user.ID, task.ID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("failed to get user task: %w", err)
		}

		if err := checkVisitEligibility(userTask, s.now(), s.waitTime); err != nil {
			return err
		}

		err = store.MarkUserTaskCompleted(ctx, userTask.ID)
		if err != nil {
			if errors.Is(err, repository.ErrAlreadyCompleted) {
				return ErrTaskAlreadyCompleted
			}
			return fmt.Errorf("failed to complete user task: %w", err)
		}

		err = store.CreditUserPoints(ctx, user.ID, task.Points)
		if err != nil {
			return fmt.Errorf("failed to credit user points: %w", err)
		}

		userTask.IsCompleted = true
		completed = userTask
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyCompleted(ctx, telegramID, task)

	return completed, nil
}

// checkVisitEligibility evaluates the progress-row preconditions in order.
// A nil userTask means the task was never started.
func checkVisitEligibility(userTask *model.UserTask, now time.Time, waitTime time.Duration) error {
	if userTask == nil {
		return ErrTaskNotStarted
	}
	if userTask.IsCompleted {
		return ErrTaskAlreadyCompleted
	}
	if now.Sub(userTask.TaskStartTimestamp) < waitTime {
		return ErrNotEnoughTimePassed
	}
	return nil
}

func (s *TaskService) notifyCompleted(ctx context.Context, telegramID int64, task *model.Task) {
	if s.notifier == nil {
		return
	}

	if err := s.notifier.NotifyTaskCompleted(ctx, telegramID, task); err != nil {
		logger.Logger().Warn("failed to send task completion notification",
			zap.Error(err),
			zap.Int64("telegram_id", telegramID),
			zap.String("task_id", task.ID))
	}
}

// StartTask records when the user began a task. Starting an open task again
// keeps the original timestamp.
func (s *TaskService) StartTask(ctx context.Context, telegramID int64, taskID string) (*model.UserTask, error) {
	var started *model.UserTask

	err := s.repo.InTx(ctx, func(store repository.Store) error {
		user, err := store.GetUserByTelegramID(ctx, telegramID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("failed to get user: %w", err)
		}

		task, err := store.GetTaskByID(ctx, taskID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrTaskNotFound
			}
			return fmt.Errorf("failed to get task: %w", err)
		}

		existing, err := store.GetUserTask(ctx, user.ID, task.ID)
		switch {
		case err == nil:
			if existing.IsCompleted {
				return ErrTaskAlreadyCompleted
			}
			started = existing
			return nil
		case !errors.Is(err, repository.ErrNotFound):
			return fmt.Errorf("failed to get user task: %w", err)
		}

		userTask := &model.UserTask{
			ID:                 uuid.NewString(),
			UserID:             user.ID,
			TaskID:             task.ID,
			TaskStartTimestamp: s.now().UTC(),
		}

		inserted, err := store.CreateUserTask(ctx, userTask)
		if err != nil {
			return fmt.Errorf("failed to create user task: %w", err)
		}
		if inserted {
			started = userTask
			return nil
		}

		// a concurrent start won the insert
		started, err = store.GetUserTask(ctx, user.ID, task.ID)
		if err != nil {
			return fmt.Errorf("failed to get user task: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return started, nil
}

func (s *TaskService) CreateTask(ctx context.Context, task *model.Task) (string, error) {
	if task.Title == "" || !task.Type.Valid() || task.Points < 0 {
		return "", ErrInvalidTask
	}

	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	task.CreatedAt = s.now().UTC()

	if err := s.repo.CreateTask(ctx, task); err != nil {
		return "", fmt.Errorf("failed to create task: %w", err)
	}

	return task.ID, nil
}
