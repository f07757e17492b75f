package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"tg_tasks_miniapp/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

type task struct {
	ID          string    `db:"id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	Type        string    `db:"type"`
	Image       string    `db:"image"`
	Link        string    `db:"link"`
	Points      int       `db:"points"`
	CreatedAt   time.Time `db:"created_at"`
}

func (t *task) toModel() *model.Task {
	return &model.Task{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Type:        model.TaskType(t.Type),
		Image:       t.Image,
		Link:        t.Link,
		Points:      t.Points,
		CreatedAt:   t.CreatedAt,
	}
}

type userTask struct {
	ID                 string    `db:"id"`
	UserID             string    `db:"user_id"`
	TaskID             string    `db:"task_id"`
	TaskStartTimestamp time.Time `db:"task_start_timestamp"`
	IsCompleted        bool      `db:"is_completed"`
}

func (ut *userTask) toModel() *model.UserTask {
	return &model.UserTask{
		ID:                 ut.ID,
		UserID:             ut.UserID,
		TaskID:             ut.TaskID,
		TaskStartTimestamp: ut.TaskStartTimestamp,
		IsCompleted:        ut.IsCompleted,
	}
}

var (
	taskColumns     = []string{"id", "title", "description", "type", "image", "link", "points", "created_at"}
	userTaskColumns = []string{"id", "user_id", "task_id", "task_start_timestamp", "is_completed"}
)

func (r *queries) ListTasks(ctx context.Context) ([]*model.Task, error) {
	query, args, err := squirrel.
		Select(taskColumns...).
		From("tasks").
		OrderBy("created_at", "id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var dbTasks []*task
	err = sqlx.SelectContext(ctx, r.q, &dbTasks, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	tasks := make([]*model.Task, len(dbTasks))
	for i, t := range dbTasks {
		tasks[i] = t.toModel()
	}

	return tasks, nil
}

func (r *queries) GetTaskByID(ctx context.Context, taskID string) (*model.Task, error) {
	query, args, err := squirrel.
		Select(taskColumns...).
		From("tasks").
		Where(squirrel.Eq{"id": taskID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var dbTask task
	err = sqlx.GetContext(ctx, r.q, &dbTask, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	return dbTask.toModel(), nil
}

func (r *queries) CreateTask(ctx context.Context, t *model.Task) error {
	query, args, err := squirrel.
		Insert("tasks").
		SetMap(map[string]interface{}{
			"id":          t.ID,
			"title":       t.Title,
			"description": t.Description,
			"type":        string(t.Type),
			"image":       t.Image,
			"link":        t.Link,
			"points":      t.Points,
			"created_at":  t.CreatedAt,
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build task insert query: %w", err)
	}

	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}

	return nil
}

func (r *queries) ListUserTasks(ctx context.Context, userID string) ([]*model.UserTask, error) {
	query, args, err := squirrel.
		Select(userTaskColumns...).
		From("user_tasks").
		Where(squirrel.Eq{"user_id": userID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var dbUserTasks []*userTask
	err = sqlx.SelectContext(ctx, r.q, &dbUserTasks, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list user tasks: %w", err)
	}

	userTasks := make([]*model.UserTask, len(dbUserTasks))
	for i, ut := range dbUserTasks {
		userTasks[i] = ut.toModel()
	}

	return userTasks, nil
}

func (r *queries) GetUserTask(ctx context.Context, userID, taskID string) (*model.UserTask, error) {
	return r.getUserTask(ctx, userID, taskID, false)
}

// GetUserTaskForUpdate locks the progress row until the surrounding
// transaction ends. Outside a transaction the lock is released immediately.
func (r *queries) GetUserTaskForUpdate(ctx context.Context, userID, taskID string) (*model.UserTask, error) {
	return r.getUserTask(ctx, userID, taskID, true)
}

func (r *queries) getUserTask(ctx context.Context, userID, taskID string, forUpdate bool) (*model.UserTask, error) {
	builder := squirrel.
		Select(userTaskColumns...).
		From("user_tasks").
		Where(squirrel.Eq{
			"user_id": userID,
			"task_id": taskID,
		}).
		PlaceholderFormat(squirrel.Dollar)
	if forUpdate {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var dbUserTask userTask
	err = sqlx.GetContext(ctx, r.q, &dbUserTask, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user task: %w", err)
	}

	return dbUserTask.toModel(), nil
}

// CreateUserTask inserts a progress row and reports whether it was inserted;
// false means a row for the same (user, task) pair already exists.
func (r *queries) CreateUserTask(ctx context.Context, ut *model.UserTask) (bool, error) {
	query, args, err := squirrel.
		Insert("user_tasks").
		SetMap(map[string]interface{}{
			"id":                   ut.ID,
			"user_id":              ut.UserID,
			"task_id":              ut.TaskID,
			"task_start_timestamp": ut.TaskStartTimestamp,
			"is_completed":         ut.IsCompleted,
		}).
		Suffix("ON CONFLICT (user_id, task_id) DO NOTHING").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build user task insert query: %w", err)
	}

	result, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to insert user task: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return rows > 0, nil
}

// MarkUserTaskCompleted flips is_completed only while it is still false, so
// of two racing callers exactly one gets a nil error.
func (r *queries) MarkUserTaskCompleted(ctx context.Context, userTaskID string) error {
	query, args, err := squirrel.
		Update("user_tasks").
		Set("is_completed", true).
		Where(squirrel.Eq{
			"id":           userTaskID,
			"is_completed": false,
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	result, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update user task status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return ErrAlreadyCompleted
	}

	return nil
}
