// Package events provides change events and subscriber fan-out for taskdeck.
package events

import (
	"time"
)

// EventType defines the type of event.
type EventType string

const (
	// Project events

	// EventProjectCreated indicates a new project was added.
	EventProjectCreated EventType = "project_created"
	// EventProjectUpdated indicates a project's fields were merged.
	EventProjectUpdated EventType = "project_updated"
	// EventProjectDeleted indicates a project (and its tasks) was removed.
	EventProjectDeleted EventType = "project_deleted"

	// Task events

	// EventTaskCreated indicates a new task was added.
	EventTaskCreated EventType = "task_created"
	// EventTaskUpdated indicates a task's fields were merged.
	EventTaskUpdated EventType = "task_updated"
	// EventTaskDeleted indicates a task was removed.
	EventTaskDeleted EventType = "task_deleted"
)

// Topics events are published under.
const (
	TopicProject = "project"
	TopicTask    = "task"
	// GlobalTopic receives every event regardless of topic.
	GlobalTopic = "*"
)

// Topic returns the topic an event type belongs to.
func (t EventType) Topic() string {
	switch t {
	case EventProjectCreated, EventProjectUpdated, EventProjectDeleted:
		return TopicProject
	case EventTaskCreated, EventTaskUpdated, EventTaskDeleted:
		return TopicTask
	default:
		return GlobalTopic
	}
}

// Event represents a published change.
type Event struct {
	Type     EventType `json:"type"`
	EntityID string    `json:"entity_id"`
	Data     any       `json:"data,omitempty"`
	Time     time.Time `json:"time"`
}

// Topic returns the topic of the event's type.
func (e Event) Topic() string {
	return e.Type.Topic()
}

// NewEvent creates a new event with the current timestamp.
func NewEvent(eventType EventType, entityID string, data any) Event {
	return Event{
		Type:     eventType,
		EntityID: entityID,
		Data:     data,
		Time:     time.Now(),
	}
}

// CascadeData accompanies EventProjectDeleted.
type CascadeData struct {
	RemovedTaskIDs []string `json:"removed_task_ids"`
}
