package repository

import (
	"context"
	"fmt"

	"tg_tasks_miniapp/internal/model"
	"tg_tasks_miniapp/pkg/logger"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrAlreadyCompleted = errors.New("user task already completed")
)

// Store is the set of queries the completion and start flows run inside a
// transaction. Repository satisfies it outside of one too.
type Store interface {
	GetUserByTelegramID(ctx context.Context, telegramID int64) (*model.User, error)
	GetTaskByID(ctx context.Context, taskID string) (*model.Task, error)
	GetUserTask(ctx context.Context, userID, taskID string) (*model.UserTask, error)
	GetUserTaskForUpdate(ctx context.Context, userID, taskID string) (*model.UserTask, error)
	CreateUserTask(ctx context.Context, userTask *model.UserTask) (bool, error)
	MarkUserTaskCompleted(ctx context.Context, userTaskID string) error
	CreditUserPoints(ctx context.Context, userID string, points int) error
}

// queries runs statements against either the pool or an open transaction.
type queries struct {
	q sqlx.ExtContext
}

type Repository struct {
	db *sqlx.DB
	queries
}

func NewWithDB(db *sqlx.DB) *Repository {
	return &Repository{
		db:      db,
		queries: queries{q: db},
	}
}

func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) Transaction(ctx context.Context, t func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	err = t(tx)
	if err != nil {
		txErr := tx.Rollback()
		if txErr != nil {
			return errors.Wrapf(err, "rollback error: %v", txErr)
		}
		return err
	}
	return tx.Commit()
}

// InTx runs fn with a Store bound to a single transaction. Any error returned
// by fn rolls the whole unit back.
func (r *Repository) InTx(ctx context.Context, fn func(store Store) error) error {
	return r.Transaction(ctx, func(tx *sqlx.Tx) error {
		return fn(&queries{q: tx})
	})
}

type Config struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
}

func New(cfg Config) (*Repository, error) {
	url := cfg.GetDatabaseURL()
	db, err := sqlx.Connect("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	err = db.Ping()
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Logger().Info("Connected to database successfully")

	return NewWithDB(db), nil
}

func (c *Config) GetDatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Name,
	)
}
