// Package tasks orchestrates parse runs: task tracking, progress
// reporting, result storage and lifecycle events.
package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/chatlens/chatlens/internal/archive"
	"github.com/chatlens/chatlens/internal/logger"
	"github.com/chatlens/chatlens/internal/models"
	"github.com/chatlens/chatlens/internal/parser"
	"github.com/chatlens/chatlens/internal/repository"
)

// TaskEvent describes a finished task for downstream consumers.
type TaskEvent struct {
	TaskID        uuid.UUID `json:"task_id"`
	Filename      string    `json:"filename"`
	TotalMessages int       `json:"total_messages,omitempty"`
	Error         string    `json:"error,omitempty"`
	FinishedAt    time.Time `json:"finished_at"`
}

// EventPublisher publishes task lifecycle events.
type EventPublisher interface {
	PublishTaskCompleted(ctx context.Context, event TaskEvent) error
	PublishTaskFailed(ctx context.Context, event TaskEvent) error
}

// Broadcaster pushes progress updates to connected clients.
type Broadcaster interface {
	Broadcast(message interface{})
}

// ProgressEventFunc builds the broadcast payload for a progress update.
// Injected so this package stays independent of the transport's event
// envelope.
type ProgressEventFunc func(taskID string, status string, progress float64, stage string) interface{}

// Service runs uploads through the parsing pipeline, either synchronously
// or as tracked background tasks.
type Service struct {
	repo      *repository.TasksRepository
	pipeline  *parser.Pipeline
	publisher EventPublisher // optional
	hub       Broadcaster    // optional
	event     ProgressEventFunc
	log       *logger.Logger
}

// NewService creates a task service. publisher and hub may be nil.
func NewService(
	repo *repository.TasksRepository,
	pipeline *parser.Pipeline,
	publisher EventPublisher,
	hub Broadcaster,
	event ProgressEventFunc,
	log *logger.Logger,
) *Service {
	return &Service{
		repo:      repo,
		pipeline:  pipeline,
		publisher: publisher,
		hub:       hub,
		event:     event,
		log:       log,
	}
}

// ParseSync runs an upload to completion without task tracking and returns
// the full result.
func (s *Service) ParseSync(filename string, content []byte) (*models.ParseResult, error) {
	docs, err := archive.Expand(filename, content)
	if err != nil {
		return nil, err
	}
	return s.pipeline.Run(filename, docs)
}

// Submit creates a task for the upload and starts the parse in the
// background. The returned task is in the pending state.
func (s *Service) Submit(ctx context.Context, filename string, content []byte) (*models.Task, error) {
	task := &models.Task{
		ID:       uuid.New(),
		Filename: filename,
		Status:   models.TaskStatusPending,
		Stage:    "Queued",
	}
	if err := s.repo.Create(ctx, task); err != nil {
		return nil, err
	}

	go s.run(task.ID, filename, content)

	return task, nil
}

// run executes one tracked parse. All failures end on the task row; none
// escape the goroutine.
func (s *Service) run(taskID uuid.UUID, filename string, content []byte) {
	ctx := context.Background()

	s.log.Info().Str("task_id", taskID.String()).Str("file", filename).Msg("starting parse task")
	s.progress(ctx, taskID, 10.0, "Initializing")

	var docs []parser.Document
	var err error
	if archive.IsZip(content) {
		s.progress(ctx, taskID, 15.0, "Extracting from ZIP archive")
		docs, err = archive.Documents(content)
	} else {
		s.progress(ctx, taskID, 40.0, "Parsing single file")
		docs, err = archive.Expand(filename, content)
	}
	if err != nil {
		s.fail(ctx, taskID, filename, err)
		return
	}

	dedup := parser.NewDedup()
	var accepted []models.Message
	for i, doc := range docs {
		stage := fmt.Sprintf("Parsing file %d/%d: %s", i+1, len(docs), doc.Name)
		s.progress(ctx, taskID, 15.0+(float64(i+1)/float64(len(docs)))*60.0, stage)
		accepted = append(accepted, s.pipeline.ProcessDocument(doc, dedup)...)
	}

	s.progress(ctx, taskID, 80.0, "Finalizing and sorting")
	result := parser.Finalize(filename, accepted)

	payload, err := json.Marshal(result)
	if err != nil {
		s.fail(ctx, taskID, filename, err)
		return
	}
	if err := s.repo.Complete(ctx, taskID, string(payload)); err != nil {
		s.log.Error().Err(err).Str("task_id", taskID.String()).Msg("failed to store task result")
		return
	}

	s.broadcast(taskID, string(models.TaskStatusCompleted), 100.0, "Completed")
	if s.publisher != nil {
		event := TaskEvent{
			TaskID:        taskID,
			Filename:      filename,
			TotalMessages: result.Statistics.TotalMessages,
			FinishedAt:    time.Now(),
		}
		if err := s.publisher.PublishTaskCompleted(ctx, event); err != nil {
			s.log.Warn().Err(err).Str("task_id", taskID.String()).Msg("failed to publish task event")
		}
	}

	s.log.Info().
		Str("task_id", taskID.String()).
		Int("messages", result.Statistics.TotalMessages).
		Msg("parse task completed")
}

func (s *Service) progress(ctx context.Context, taskID uuid.UUID, progress float64, stage string) {
	if err := s.repo.UpdateProgress(ctx, taskID, progress, stage); err != nil {
		s.log.Warn().Err(err).Str("task_id", taskID.String()).Msg("failed to update task progress")
	}
	s.broadcast(taskID, string(models.TaskStatusRunning), progress, stage)
}

func (s *Service) fail(ctx context.Context, taskID uuid.UUID, filename string, cause error) {
	s.log.Error().Err(cause).Str("task_id", taskID.String()).Msg("parse task failed")

	payload, _ := json.Marshal(map[string]string{"error": cause.Error()})
	if err := s.repo.Fail(ctx, taskID, string(payload)); err != nil {
		s.log.Error().Err(err).Str("task_id", taskID.String()).Msg("failed to store task failure")
	}

	s.broadcast(taskID, string(models.TaskStatusFailed), 0, "Failed")
	if s.publisher != nil {
		event := TaskEvent{
			TaskID:     taskID,
			Filename:   filename,
			Error:      cause.Error(),
			FinishedAt: time.Now(),
		}
		if err := s.publisher.PublishTaskFailed(ctx, event); err != nil {
			s.log.Warn().Err(err).Str("task_id", taskID.String()).Msg("failed to publish task event")
		}
	}
}

func (s *Service) broadcast(taskID uuid.UUID, status string, progress float64, stage string) {
	if s.hub == nil || s.event == nil {
		return
	}
	s.hub.Broadcast(s.event(taskID.String(), status, progress, stage))
}
