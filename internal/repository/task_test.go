package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"tg_tasks_miniapp/internal/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepository(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewWithDB(sqlx.NewDb(db, "pgx")), mock
}

func TestRepository_GetUserTaskForUpdate(t *testing.T) {
	repo, mock := newMockRepository(t)
	started := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT id, user_id, task_id, task_start_timestamp, is_completed FROM user_tasks WHERE task_id = $1 AND user_id = $2 FOR UPDATE")).
		WithArgs("task-1", "user-1").
		WillReturnRows(sqlmock.NewRows(userTaskColumns).
			AddRow("ut-1", "user-1", "task-1", started, false))

	ut, err := repo.GetUserTaskForUpdate(context.Background(), "user-1", "task-1")
	require.NoError(t, err)
	assert.Equal(t, &model.UserTask{
		ID:                 "ut-1",
		UserID:             "user-1",
		TaskID:             "task-1",
		TaskStartTimestamp: started,
		IsCompleted:        false,
	}, ut)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetUserTaskNotFound(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery("SELECT (.+) FROM user_tasks").
		WithArgs("task-1", "user-1").
		WillReturnRows(sqlmock.NewRows(userTaskColumns))

	_, err := repo.GetUserTask(context.Background(), "user-1", "task-1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_InTxCommitsCompletion(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE user_tasks SET is_completed = $1 WHERE id = $2 AND is_completed = $3")).
		WithArgs(true, "ut-1", false).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET points = points + $1, points_balance = points_balance + $2 WHERE id = $3")).
		WithArgs(50, 50, "user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.InTx(context.Background(), func(store Store) error {
		if err := store.MarkUserTaskCompleted(context.Background(), "ut-1"); err != nil {
			return err
		}
		return store.CreditUserPoints(context.Background(), "user-1", 50)
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_InTxRollsBackWhenAlreadyCompleted(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE user_tasks SET is_completed").
		WithArgs(true, "ut-1", false).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.InTx(context.Background(), func(store Store) error {
		if err := store.MarkUserTaskCompleted(context.Background(), "ut-1"); err != nil {
			return err
		}
		return store.CreditUserPoints(context.Background(), "user-1", 50)
	})

	assert.ErrorIs(t, err, ErrAlreadyCompleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_InTxReportsRollbackFailure(t *testing.T) {
	repo, mock := newMockRepository(t)
	rollbackErr := errors.New("connection reset")

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE users SET points").
		WithArgs(10, 10, "user-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback().WillReturnError(rollbackErr)

	err := repo.InTx(context.Background(), func(store Store) error {
		return store.CreditUserPoints(context.Background(), "user-1", 10)
	})

	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_CreateUserTaskConflict(t *testing.T) {
	repo, mock := newMockRepository(t)
	started := time.Now()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO user_tasks")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	inserted, err := repo.CreateUserTask(context.Background(), &model.UserTask{
		ID:                 "ut-2",
		UserID:             "user-1",
		TaskID:             "task-1",
		TaskStartTimestamp: started,
	})

	require.NoError(t, err)
	assert.False(t, inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ListTasks(t *testing.T) {
	repo, mock := newMockRepository(t)
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT id, title, description, type, image, link, points, created_at FROM tasks ORDER BY created_at, id")).
		WillReturnRows(sqlmock.NewRows(taskColumns).
			AddRow("task-1", "Visit site", "", "VISIT", "", "https://example.com", 50, created).
			AddRow("task-2", "Join channel", "", "TELEGRAM", "", "https://t.me/x", 100, created))

	tasks, err := repo.ListTasks(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, model.TaskTypeVisit, tasks[0].Type)
	assert.Equal(t, 100, tasks[1].Points)
	assert.NoError(t, mock.ExpectationsWereMet())
}
