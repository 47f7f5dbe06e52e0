package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatlens/chatlens/internal/models"
)

func newTestRepo(t *testing.T) *TasksRepository {
	t.Helper()
	db, err := Open(":memory:")
	require.NoError(t, err)
	return NewTasksRepository(db)
}

func TestTasksRepository_CreateAndGet(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	task := &models.Task{
		ID:       uuid.New(),
		Filename: "export.zip",
		Status:   models.TaskStatusPending,
		Stage:    "Queued",
	}
	require.NoError(t, repo.Create(ctx, task))

	got, err := repo.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.ID, got.ID)
	assert.Equal(t, "export.zip", got.Filename)
	assert.Equal(t, models.TaskStatusPending, got.Status)
	assert.False(t, got.IsTerminal())
}

func TestTasksRepository_GetMissing(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTasksRepository_Lifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	task := &models.Task{ID: uuid.New(), Filename: "chat.json", Status: models.TaskStatusPending}
	require.NoError(t, repo.Create(ctx, task))

	require.NoError(t, repo.UpdateProgress(ctx, task.ID, 40.0, "Parsing single file"))
	got, err := repo.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusRunning, got.Status)
	assert.Equal(t, 40.0, got.Progress)
	assert.Equal(t, "Parsing single file", got.Stage)

	require.NoError(t, repo.Complete(ctx, task.ID, `{"messages":[]}`))
	got, err = repo.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusCompleted, got.Status)
	assert.Equal(t, 100.0, got.Progress)
	assert.Equal(t, "Completed", got.Stage)
	assert.Equal(t, `{"messages":[]}`, got.Result)
	assert.True(t, got.IsTerminal())
}

func TestTasksRepository_Fail(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	task := &models.Task{ID: uuid.New(), Filename: "bad.zip", Status: models.TaskStatusPending}
	require.NoError(t, repo.Create(ctx, task))

	require.NoError(t, repo.Fail(ctx, task.ID, `{"error":"boom"}`))
	got, err := repo.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusFailed, got.Status)
	assert.Equal(t, `{"error":"boom"}`, got.Result)
	assert.True(t, got.IsTerminal())
}

func TestTasksRepository_DeleteOlderThan(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	old := &models.Task{ID: uuid.New(), Filename: "old.zip", Status: models.TaskStatusCompleted}
	require.NoError(t, repo.Create(ctx, old))

	// Let the created_at of the first row fall behind the cutoff.
	time.Sleep(20 * time.Millisecond)

	removed, err := repo.DeleteOlderThan(ctx, 10*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	_, err = repo.Get(ctx, old.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTasksRepository_DeleteOlderThanKeepsRecent(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	recent := &models.Task{ID: uuid.New(), Filename: "recent.zip", Status: models.TaskStatusCompleted}
	require.NoError(t, repo.Create(ctx, recent))

	removed, err := repo.DeleteOlderThan(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Zero(t, removed)

	_, err = repo.Get(ctx, recent.ID)
	assert.NoError(t, err)
}
