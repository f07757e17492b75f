package model

import "time"

type User struct {
	ID            string
	TelegramID    int64
	Username      string
	Points        int
	PointsBalance int
	IsAdmin       bool
	CreatedAt     time.Time
}
