// Package model defines the projects and tasks held by the store.
package model

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// ID prefixes used when generating identifiers.
const (
	ProjectPrefix = "proj"
	TaskPrefix    = "task"
)

// DeadlineLayout is the calendar-date layout deadlines are entered in.
const DeadlineLayout = "2006-01-02"

// Project groups tasks.
type Project struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Task is a unit of work belonging to exactly one project.
type Task struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"projectId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Priority    Priority  `json:"priority"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	Deadline    string    `json:"deadline,omitempty"`
}

// HasDeadline reports whether the task carries a non-blank deadline.
func (t Task) HasDeadline() bool {
	return strings.TrimSpace(t.Deadline) != ""
}

// DeadlineTime parses the deadline. ok is false when it is blank or unparseable.
func (t Task) DeadlineTime() (time.Time, bool) {
	return ParseDate(t.Deadline)
}

// ParseDate accepts a calendar date (2006-01-02) or an RFC 3339 timestamp.
func ParseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	if ts, err := time.Parse(DeadlineLayout, value); err == nil {
		return ts, true
	}
	if ts, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return ts, true
	}
	return time.Time{}, false
}

// State is the complete store contents. Both collections keep insertion order.
type State struct {
	Projects []Project `json:"projects"`
	Tasks    []Task    `json:"tasks"`
}

// Clone returns a copy that shares no backing arrays with s.
// Every field of Project and Task is a value, so copying the slices is a deep copy.
func (s State) Clone() State {
	return State{
		Projects: CloneProjects(s.Projects),
		Tasks:    CloneTasks(s.Tasks),
	}
}

// CloneProjects copies a project slice. A nil input yields an empty slice.
func CloneProjects(in []Project) []Project {
	out := make([]Project, len(in))
	copy(out, in)
	return out
}

// CloneTasks copies a task slice. A nil input yields an empty slice.
func CloneTasks(in []Task) []Task {
	out := make([]Task, len(in))
	copy(out, in)
	return out
}

// FindProject returns the index of the project with the given id, or -1.
func (s State) FindProject(id string) int {
	for i := range s.Projects {
		if s.Projects[i].ID == id {
			return i
		}
	}
	return -1
}

// FindTask returns the index of the task with the given id, or -1.
func (s State) FindTask(id string) int {
	for i := range s.Tasks {
		if s.Tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// HasProject reports whether a project with the given id exists.
func (s State) HasProject(id string) bool {
	return s.FindProject(id) >= 0
}

// Normalize replaces nil collections with empty ones so the serialized form
// always carries both arrays, and fills an empty task priority or status
// with its default. The receiver's slices are never written.
func (s State) Normalize() State {
	if s.Projects == nil {
		s.Projects = []Project{}
	}
	if s.Tasks == nil {
		s.Tasks = []Task{}
	}
	if !slices.ContainsFunc(s.Tasks, lacksDefaults) {
		return s
	}
	s.Tasks = CloneTasks(s.Tasks)
	for i := range s.Tasks {
		if s.Tasks[i].Priority == "" {
			s.Tasks[i].Priority = DefaultPriority
		}
		if s.Tasks[i].Status == "" {
			s.Tasks[i].Status = DefaultStatus
		}
	}
	return s
}

func lacksDefaults(t Task) bool {
	return t.Priority == "" || t.Status == ""
}

// Check reports the first integrity violation in s: an empty or duplicate
// id, or a task whose project is missing.
func (s State) Check() error {
	projects := make(map[string]bool, len(s.Projects))
	for _, p := range s.Projects {
		if p.ID == "" {
			return fmt.Errorf("project with empty id")
		}
		if projects[p.ID] {
			return fmt.Errorf("duplicate project id %s", p.ID)
		}
		projects[p.ID] = true
	}

	tasks := make(map[string]bool, len(s.Tasks))
	for _, t := range s.Tasks {
		if t.ID == "" {
			return fmt.Errorf("task with empty id")
		}
		if tasks[t.ID] {
			return fmt.Errorf("duplicate task id %s", t.ID)
		}
		tasks[t.ID] = true
		if !projects[t.ProjectID] {
			return fmt.Errorf("task %s references missing project %q", t.ID, t.ProjectID)
		}
	}
	return nil
}

// Seed returns the state materialized the first time no persisted state exists.
func Seed() State {
	return State{
		Projects: []Project{
			{
				ID:          "proj_1",
				Name:        "Sample Project",
				Description: "Example description",
			},
		},
		Tasks: []Task{
			{
				ID:          "task_1",
				ProjectID:   "proj_1",
				Title:       "Example Task",
				Description: "Something to do",
				CreatedAt:   time.Date(2025, time.January, 1, 10, 0, 0, 0, time.UTC),
				Deadline:    "2025-01-15",
				Priority:    PriorityHigh,
				Status:      StatusNew,
			},
		},
	}
}
