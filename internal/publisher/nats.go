// Package publisher emits task lifecycle events over NATS.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/chatlens/chatlens/internal/tasks"
)

// Subjects for task lifecycle events.
const (
	SubjectTaskCompleted = "tasks.completed"
	SubjectTaskFailed    = "tasks.failed"
)

// NATSClient interface to allow mocking.
type NATSClient interface {
	Publish(subject string, data []byte) error
}

// NATSPublisher implements tasks.EventPublisher.
type NATSPublisher struct {
	nc NATSClient
}

// NewNATSPublisher creates a new publisher.
func NewNATSPublisher(conn *nats.Conn) *NATSPublisher {
	return &NATSPublisher{nc: conn}
}

// PublishTaskCompleted publishes a completion event.
func (p *NATSPublisher) PublishTaskCompleted(_ context.Context, event tasks.TaskEvent) error {
	return p.publish(SubjectTaskCompleted, event)
}

// PublishTaskFailed publishes a failure event.
func (p *NATSPublisher) PublishTaskFailed(_ context.Context, event tasks.TaskEvent) error {
	return p.publish(SubjectTaskFailed, event)
}

func (p *NATSPublisher) publish(subject string, event tasks.TaskEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := p.nc.Publish(subject, data); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}
