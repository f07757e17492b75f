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

type User struct {
	ID            string    `db:"id"`
	TelegramID    int64     `db:"telegram_id"`
	Username      string    `db:"username"`
	Points        int       `db:"points"`
	PointsBalance int       `db:"points_balance"`
	IsAdmin       bool      `db:"is_admin"`
	CreatedAt     time.Time `db:"created_at"`
}

func (u *User) toModel() *model.User {
	return &model.User{
		ID:            u.ID,
		TelegramID:    u.TelegramID,
		Username:      u.Username,
		Points:        u.Points,
		PointsBalance: u.PointsBalance,
		IsAdmin:       u.IsAdmin,
		CreatedAt:     u.CreatedAt,
	}
}

// CreateUser inserts the user unless one with the same telegram_id exists.
// It reports whether a row was inserted.
func (r *queries) CreateUser(ctx context.Context, user *model.User) (bool, error) {
	query, args, err := squirrel.
		Insert("users").
		SetMap(map[string]interface{}{
			"id":             user.ID,
			"telegram_id":    user.TelegramID,
			"username":       user.Username,
			"points":         user.Points,
			"points_balance": user.PointsBalance,
			"created_at":     user.CreatedAt,
		}).
		Suffix("ON CONFLICT (telegram_id) DO NOTHING").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build user insert query: %w", err)
	}

	result, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to insert user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return rows > 0, nil
}

func (r *queries) GetUserByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	var user User
	query, args, err := squirrel.
		Select("id", "telegram_id", "username", "points", "points_balance", "is_admin", "created_at").
		From("users").
		Where(squirrel.Eq{"telegram_id": telegramID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	err = sqlx.GetContext(ctx, r.q, &user, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return user.toModel(), nil
}

// CreditUserPoints adds points to both the lifetime total and the spendable
// balance.
func (r *queries) CreditUserPoints(ctx context.Context, userID string, points int) error {
	query, args, err := squirrel.
		Update("users").
		Set("points", squirrel.Expr("points + ?", points)).
		Set("points_balance", squirrel.Expr("points_balance + ?", points)).
		Where(squirrel.Eq{"id": userID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build points update query: %w", err)
	}

	result, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to credit user points: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}
