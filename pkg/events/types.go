package events

import "time"

// EventType identifies the kind of event emitted during a pilot run.
type EventType string

const (
	EventRunStart      EventType = "run.start"
	EventRunEnd        EventType = "run.end"
	EventTaskStart     EventType = "task.start"
	EventAttemptResult EventType = "attempt.result"
	EventTaskPassed    EventType = "task.passed"
	EventTaskExhausted EventType = "task.exhausted"
	EventConfigError   EventType = "config.error"
)

// Event represents a single run event. TaskID and Attempt are set on
// task-scoped events and zero otherwise.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	TaskID    string    `json:"task_id,omitempty"`
	Attempt   int       `json:"attempt,omitempty"`
	Data      any       `json:"data,omitempty"`
}

// NewEvent creates a new Event with the current timestamp.
func NewEvent(typ EventType, data any) Event {
	return Event{
		Type:      typ,
		Timestamp: time.Now(),
		Data:      data,
	}
}
