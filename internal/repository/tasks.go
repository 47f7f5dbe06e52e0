// Package repository persists parse tasks in a SQLite database.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chatlens/chatlens/internal/models"
)

// ErrNotFound is returned when a task does not exist.
var ErrNotFound = errors.New("task not found")

// Open opens (or creates) the SQLite task store and migrates the schema.
func Open(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.AutoMigrate(&models.Task{}); err != nil {
		return nil, fmt.Errorf("migrate tasks: %w", err)
	}
	return db, nil
}

// TasksRepository handles task table operations.
type TasksRepository struct {
	db *gorm.DB
}

// NewTasksRepository creates a new tasks repository.
func NewTasksRepository(db *gorm.DB) *TasksRepository {
	return &TasksRepository{db: db}
}

// Create inserts a new task.
func (r *TasksRepository) Create(ctx context.Context, task *models.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// Get returns a task by id.
func (r *TasksRepository) Get(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	var task models.Task
	err := r.db.WithContext(ctx).First(&task, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	return &task, nil
}

// UpdateProgress marks a task running at the given progress and stage.
func (r *TasksRepository) UpdateProgress(ctx context.Context, id uuid.UUID, progress float64, stage string) error {
	err := r.db.WithContext(ctx).Model(&models.Task{}).Where("id = ?", id).Updates(map[string]any{
		"status":   models.TaskStatusRunning,
		"progress": progress,
		"stage":    stage,
	}).Error
	if err != nil {
		return fmt.Errorf("update task progress: %w", err)
	}
	return nil
}

// Complete marks a task finished and stores its result JSON.
func (r *TasksRepository) Complete(ctx context.Context, id uuid.UUID, result string) error {
	err := r.db.WithContext(ctx).Model(&models.Task{}).Where("id = ?", id).Updates(map[string]any{
		"status":   models.TaskStatusCompleted,
		"progress": 100.0,
		"stage":    "Completed",
		"result":   result,
	}).Error
	if err != nil {
		return fmt.Errorf("complete task: %w", err)
	}
	return nil
}

// Fail marks a task failed and stores the error payload.
func (r *TasksRepository) Fail(ctx context.Context, id uuid.UUID, result string) error {
	err := r.db.WithContext(ctx).Model(&models.Task{}).Where("id = ?", id).Updates(map[string]any{
		"status": models.TaskStatusFailed,
		"stage":  "Failed",
		"result": result,
	}).Error
	if err != nil {
		return fmt.Errorf("fail task: %w", err)
	}
	return nil
}

// DeleteOlderThan removes tasks created before now-age and returns how many
// rows were dropped. Results are ephemeral; old tasks only waste disk.
func (r *TasksRepository) DeleteOlderThan(ctx context.Context, age time.Duration) (int64, error) {
	cutoff := time.Now().Add(-age)
	res := r.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&models.Task{})
	if res.Error != nil {
		return 0, fmt.Errorf("cleanup tasks: %w", res.Error)
	}
	return res.RowsAffected, nil
}
