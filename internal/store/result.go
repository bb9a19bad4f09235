package store

import (
	deckerrors "github.com/randalmurphal/taskdeck/internal/errors"
	"github.com/randalmurphal/taskdeck/internal/model"
)

// Reason explains why a mutation was not applied.
type Reason string

// Rejection and no-op reasons.
const (
	ReasonNone            Reason = ""
	ReasonNotFound        Reason = "not_found"
	ReasonEmptyName       Reason = "empty_name"
	ReasonEmptyTitle      Reason = "empty_title"
	ReasonMissingProject  Reason = "missing_project"
	ReasonUnknownProject  Reason = "unknown_project"
	ReasonInvalidPriority Reason = "invalid_priority"
	ReasonInvalidStatus   Reason = "invalid_status"
	ReasonInvalidDeadline Reason = "invalid_deadline"
)

var reasonMessages = map[Reason]string{
	ReasonNotFound:        "no entity with this id exists",
	ReasonEmptyName:       "name must not be empty",
	ReasonEmptyTitle:      "title must not be empty",
	ReasonMissingProject:  "a project is required",
	ReasonUnknownProject:  "the referenced project does not exist",
	ReasonInvalidPriority: "priority must be one of low, medium, high, urgent",
	ReasonInvalidStatus:   "status must be one of new, in_progress, blocked, done",
	ReasonInvalidDeadline: "deadline must be a date like 2025-01-15",
}

// Message returns a human-readable description of the reason.
func (r Reason) Message() string {
	if msg, ok := reasonMessages[r]; ok {
		return msg
	}
	return string(r)
}

// Result describes the outcome of a mutation.
//
// Applied is false both for validation rejections (nothing persisted, no
// notification) and for updates or deletes of a missing id (Reason is
// ReasonNotFound; the unchanged state is still persisted and subscribers
// are still notified).
type Result struct {
	Applied bool
	Reason  Reason

	// Project is the created or updated project, or the deleted one.
	Project *model.Project
	// Task is the created or updated task, or the deleted one.
	Task *model.Task
	// Removed counts tasks removed by a project delete cascade.
	Removed int
}

// Err converts a non-applied result into a structured error for callers
// that want one. kind and id name the target entity.
func (r Result) Err(kind, id string) error {
	switch {
	case r.Applied:
		return nil
	case r.Reason == ReasonNotFound:
		return deckerrors.ErrNotFound(kind, id)
	default:
		return deckerrors.ErrInvalidInput(kind+" rejected", r.Reason.Message())
	}
}

func rejected(reason Reason) Result { return Result{Reason: reason} }

// ProjectInput holds the fields of a new project.
type ProjectInput struct {
	Name        string
	Description string
}

// ProjectPatch lists the project fields to merge. Nil fields are left untouched.
type ProjectPatch struct {
	Name        *string
	Description *string
}

// TaskInput holds the fields of a new task. Empty Priority and Status take
// their defaults.
type TaskInput struct {
	ProjectID   string
	Title       string
	Description string
	Priority    model.Priority
	Status      model.Status
	Deadline    string
}

// TaskPatch lists the task fields to merge. Nil fields are left untouched.
// An empty Deadline clears it.
type TaskPatch struct {
	ProjectID   *string
	Title       *string
	Description *string
	Priority    *model.Priority
	Status      *model.Status
	Deadline    *string
}
