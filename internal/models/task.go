package models

import (
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the lifecycle state of a parse task.
type TaskStatus string

// TaskStatus constants define the possible states of a parse task.
const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusRunning   TaskStatus = "running"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusFailed    TaskStatus = "failed"
)

// Task is one tracked parse run of an uploaded file or archive.
type Task struct {
	ID       uuid.UUID  `json:"task_id" gorm:"type:text;primaryKey"`
	Filename string     `json:"filename"`
	Status   TaskStatus `json:"status"`
	Progress float64    `json:"progress"`
	Stage    string     `json:"stage"`

	// Result holds the final ParseResult (or {"error": ...}) as JSON text.
	Result string `json:"result,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsTerminal reports whether the task has finished, successfully or not.
func (t *Task) IsTerminal() bool {
	return t.Status == TaskStatusCompleted || t.Status == TaskStatusFailed
}
