package web

// WebSocket event types.
const (
	EventTaskProgress  = "task.progress"
	EventTaskCompleted = "task.completed"
	EventTaskFailed    = "task.failed"
)

// WSEvent represents a structured WebSocket message.
type WSEvent struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// TaskProgressPayload carries one task progress update.
type TaskProgressPayload struct {
	TaskID   string  `json:"task_id"`
	Status   string  `json:"status"`
	Progress float64 `json:"progress"`
	Stage    string  `json:"stage"`
}

// TaskProgressEvent builds the broadcast message for a task update. The
// event type follows the task status so clients can subscribe to terminal
// states only.
func TaskProgressEvent(taskID string, status string, progress float64, stage string) interface{} {
	eventType := EventTaskProgress
	switch status {
	case "completed":
		eventType = EventTaskCompleted
	case "failed":
		eventType = EventTaskFailed
	}
	return WSEvent{
		Type: eventType,
		Payload: TaskProgressPayload{
			TaskID:   taskID,
			Status:   status,
			Progress: progress,
			Stage:    stage,
		},
	}
}
