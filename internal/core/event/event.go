// Package event provides the append-only domain event log that is the source
// of truth for the task collection. Replaying the log from the start must
// reconstruct the live index field-for-field.
package event

import (
	"time"

	"github.com/hay-kot/tally/internal/core/task"
)

// Type identifies a domain event.
type Type string

const (
	// Keep list sorted A-Z
	TypeTaskCompleted Type = "task.completed"
	TypeTaskCreated   Type = "task.created"
	TypeTaskDeleted   Type = "task.deleted"
	TypeTaskReopened  Type = "task.reopened"
	TypeTaskUpdated   Type = "task.updated"
)

// IsValid reports whether the type is a known event type.
func (t Type) IsValid() bool {
	switch t {
	case TypeTaskCreated, TypeTaskUpdated, TypeTaskDeleted, TypeTaskCompleted, TypeTaskReopened:
		return true
	}
	return false
}

// Event is an immutable record of a state transition. Seq is assigned by the
// log at append time and is strictly increasing for the process lifetime,
// including across undos.
//
// Task is a full snapshot: the task after the change for created/updated/
// completed/reopened events, and the final pre-deletion state for deleted
// events (so undoing a delete restores the task without tombstones).
type Event struct {
	Seq       int64     `json:"seq"`
	Type      Type      `json:"type"`
	TaskID    string    `json:"task_id"`
	Task      task.Task `json:"task"`
	NoOp      bool      `json:"no_op,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// TaskCreated records a new task entering the collection.
func TaskCreated(t task.Task) Event {
	return Event{Type: TypeTaskCreated, TaskID: t.ID, Task: t}
}

// TaskUpdated records a field mutation; the snapshot is the post-update task.
func TaskUpdated(t task.Task) Event {
	return Event{Type: TypeTaskUpdated, TaskID: t.ID, Task: t}
}

// TaskDeleted records a removal; the snapshot is the final pre-deletion task.
func TaskDeleted(t task.Task) Event {
	return Event{Type: TypeTaskDeleted, TaskID: t.ID, Task: t}
}

// TaskCompleted records a completion. noop marks the audit-only record
// appended when an already-completed task is completed again.
func TaskCompleted(t task.Task, noop bool) Event {
	return Event{Type: TypeTaskCompleted, TaskID: t.ID, Task: t, NoOp: noop}
}

// TaskReopened records a reopen. noop mirrors TaskCompleted.
func TaskReopened(t task.Task, noop bool) Event {
	return Event{Type: TypeTaskReopened, TaskID: t.ID, Task: t, NoOp: noop}
}
