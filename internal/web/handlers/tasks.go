package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/chatlens/chatlens/internal/models"
	"github.com/chatlens/chatlens/internal/repository"
)

// TasksRepository reads task rows.
type TasksRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Task, error)
}

// TasksHandler handles task status requests.
type TasksHandler struct {
	repo TasksRepository
}

// NewTasksHandler creates a new TasksHandler.
func NewTasksHandler(repo TasksRepository) *TasksHandler {
	return &TasksHandler{repo: repo}
}

type taskResponse struct {
	TaskID   uuid.UUID         `json:"task_id"`
	Filename string            `json:"filename"`
	Status   models.TaskStatus `json:"status"`
	Progress float64           `json:"progress"`
	Stage    string            `json:"stage"`
	Result   json.RawMessage   `json:"result,omitempty"`
}

// Get returns the status of a task, including its result once terminal.
func (h *TasksHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid task id")
		return
	}

	task, err := h.repo.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := taskResponse{
		TaskID:   task.ID,
		Filename: task.Filename,
		Status:   task.Status,
		Progress: task.Progress,
		Stage:    task.Stage,
	}
	if task.Result != "" {
		resp.Result = json.RawMessage(task.Result)
	}

	writeJSON(w, http.StatusOK, resp)
}
