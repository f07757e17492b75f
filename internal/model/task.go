package model

import "time"

type TaskType string

const (
	TaskTypeVisit    TaskType = "VISIT"
	TaskTypeTelegram TaskType = "TELEGRAM"
	TaskTypeReferral TaskType = "REFERRAL"
)

func (t TaskType) Valid() bool {
	switch t {
	case TaskTypeVisit, TaskTypeTelegram, TaskTypeReferral:
		return true
	}
	return false
}

type Task struct {
	ID          string
	Title       string
	Description string
	Type        TaskType
	Image       string
	Link        string
	Points      int
	CreatedAt   time.Time
}

// UserTask is one user's progress on one task.
type UserTask struct {
	ID                 string
	UserID             string
	TaskID             string
	TaskStartTimestamp time.Time
	IsCompleted        bool
}

// UserTaskStatus is a task definition merged with the requesting user's
// progress. TaskStartTimestamp is nil when the task was never started.
type UserTaskStatus struct {
	Task               *Task
	TaskStartTimestamp *time.Time
	IsCompleted        bool
}
