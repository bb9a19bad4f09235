package store

import (
	"context"
	"strings"

	"github.com/randalmurphal/taskdeck/internal/events"
	"github.com/randalmurphal/taskdeck/internal/model"
)

// Mutation names used in metrics and logs.
const (
	OpCreateProject = "create_project"
	OpUpdateProject = "update_project"
	OpDeleteProject = "delete_project"
	OpCreateTask    = "create_task"
	OpUpdateTask    = "update_task"
	OpDeleteTask    = "delete_task"
)

// CreateProject appends a new project. An empty trimmed name is rejected.
func (s *Store) CreateProject(ctx context.Context, in ProjectInput) (Result, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return s.reject(OpCreateProject, ReasonEmptyName)
	}

	cur := s.current()
	p := model.Project{
		ID:          s.newID(model.ProjectPrefix),
		Name:        name,
		Description: strings.TrimSpace(in.Description),
	}
	next := model.State{
		Projects: append(model.CloneProjects(cur.Projects), p),
		Tasks:    cur.Tasks,
	}

	return s.commit(ctx, OpCreateProject, next,
		Result{Applied: true, Project: &p},
		events.NewEvent(events.EventProjectCreated, p.ID, p))
}

// UpdateProject merges patch onto the project with the given id. A missing
// id is not an error: the unchanged state is persisted and subscribers are
// notified, and the result carries ReasonNotFound.
func (s *Store) UpdateProject(ctx context.Context, projectID string, patch ProjectPatch) (Result, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	cur := s.current()
	i := cur.FindProject(projectID)
	if i < 0 {
		return s.commit(ctx, OpUpdateProject, cur, rejected(ReasonNotFound))
	}

	p := cur.Projects[i]
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return s.reject(OpUpdateProject, ReasonEmptyName)
		}
		p.Name = name
	}
	if patch.Description != nil {
		p.Description = strings.TrimSpace(*patch.Description)
	}

	projects := model.CloneProjects(cur.Projects)
	projects[i] = p
	next := model.State{Projects: projects, Tasks: cur.Tasks}

	return s.commit(ctx, OpUpdateProject, next,
		Result{Applied: true, Project: &p},
		events.NewEvent(events.EventProjectUpdated, p.ID, p))
}

// DeleteProject removes the project and every task that references it in
// one state transition. A missing id persists and notifies the unchanged state.
func (s *Store) DeleteProject(ctx context.Context, projectID string) (Result, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	cur := s.current()
	i := cur.FindProject(projectID)
	if i < 0 {
		return s.commit(ctx, OpDeleteProject, cur, rejected(ReasonNotFound))
	}
	p := cur.Projects[i]

	projects := make([]model.Project, 0, len(cur.Projects)-1)
	projects = append(projects, cur.Projects[:i]...)
	projects = append(projects, cur.Projects[i+1:]...)

	tasks := make([]model.Task, 0, len(cur.Tasks))
	var removed []string
	for _, t := range cur.Tasks {
		if t.ProjectID == projectID {
			removed = append(removed, t.ID)
			continue
		}
		tasks = append(tasks, t)
	}

	next := model.State{Projects: projects, Tasks: tasks}
	return s.commit(ctx, OpDeleteProject, next,
		Result{Applied: true, Project: &p, Removed: len(removed)},
		events.NewEvent(events.EventProjectDeleted, p.ID, events.CascadeData{RemovedTaskIDs: removed}))
}

// CreateTask appends a new task stamped with the current time.
func (s *Store) CreateTask(ctx context.Context, in TaskInput) (Result, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	cur := s.current()

	projectID := strings.TrimSpace(in.ProjectID)
	title := strings.TrimSpace(in.Title)
	switch {
	case projectID == "":
		return s.reject(OpCreateTask, ReasonMissingProject)
	case title == "":
		return s.reject(OpCreateTask, ReasonEmptyTitle)
	case !cur.HasProject(projectID):
		return s.reject(OpCreateTask, ReasonUnknownProject)
	}

	priority := in.Priority
	if priority == "" {
		priority = model.DefaultPriority
	}
	status := in.Status
	if status == "" {
		status = model.DefaultStatus
	}
	deadline := strings.TrimSpace(in.Deadline)
	if reason := checkFields(priority, status, deadline); reason != ReasonNone {
		return s.reject(OpCreateTask, reason)
	}

	t := model.Task{
		ID:          s.newID(model.TaskPrefix),
		ProjectID:   projectID,
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Priority:    priority,
		Status:      status,
		CreatedAt:   s.now().UTC().Truncate(timestampPrecision),
		Deadline:    deadline,
	}
	next := model.State{
		Projects: cur.Projects,
		Tasks:    append(model.CloneTasks(cur.Tasks), t),
	}

	return s.commit(ctx, OpCreateTask, next,
		Result{Applied: true, Task: &t},
		events.NewEvent(events.EventTaskCreated, t.ID, t))
}

// UpdateTask merges patch onto the task with the given id. ID and CreatedAt
// never change. A missing id persists and notifies the unchanged state.
func (s *Store) UpdateTask(ctx context.Context, taskID string, patch TaskPatch) (Result, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	cur := s.current()
	i := cur.FindTask(taskID)
	if i < 0 {
		return s.commit(ctx, OpUpdateTask, cur, rejected(ReasonNotFound))
	}

	t := cur.Tasks[i]
	if patch.ProjectID != nil {
		projectID := strings.TrimSpace(*patch.ProjectID)
		if projectID == "" {
			return s.reject(OpUpdateTask, ReasonMissingProject)
		}
		if !cur.HasProject(projectID) {
			return s.reject(OpUpdateTask, ReasonUnknownProject)
		}
		t.ProjectID = projectID
	}
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return s.reject(OpUpdateTask, ReasonEmptyTitle)
		}
		t.Title = title
	}
	if patch.Description != nil {
		t.Description = strings.TrimSpace(*patch.Description)
	}
	// Only the patched fields are validated; stored values stay as loaded.
	if patch.Priority != nil {
		if !patch.Priority.Valid() {
			return s.reject(OpUpdateTask, ReasonInvalidPriority)
		}
		t.Priority = *patch.Priority
	}
	if patch.Status != nil {
		if !patch.Status.Valid() {
			return s.reject(OpUpdateTask, ReasonInvalidStatus)
		}
		t.Status = *patch.Status
	}
	if patch.Deadline != nil {
		deadline := strings.TrimSpace(*patch.Deadline)
		if deadline != "" {
			if _, ok := model.ParseDate(deadline); !ok {
				return s.reject(OpUpdateTask, ReasonInvalidDeadline)
			}
		}
		t.Deadline = deadline
	}

	tasks := model.CloneTasks(cur.Tasks)
	tasks[i] = t
	next := model.State{Projects: cur.Projects, Tasks: tasks}

	return s.commit(ctx, OpUpdateTask, next,
		Result{Applied: true, Task: &t},
		events.NewEvent(events.EventTaskUpdated, t.ID, t))
}

// SetTaskStatus changes only the status of a task.
func (s *Store) SetTaskStatus(ctx context.Context, taskID string, status model.Status) (Result, error) {
	return s.UpdateTask(ctx, taskID, TaskPatch{Status: &status})
}

// DeleteTask removes the task. A missing id persists and notifies the
// unchanged state.
func (s *Store) DeleteTask(ctx context.Context, taskID string) (Result, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	cur := s.current()
	i := cur.FindTask(taskID)
	if i < 0 {
		return s.commit(ctx, OpDeleteTask, cur, rejected(ReasonNotFound))
	}
	t := cur.Tasks[i]

	tasks := make([]model.Task, 0, len(cur.Tasks)-1)
	tasks = append(tasks, cur.Tasks[:i]...)
	tasks = append(tasks, cur.Tasks[i+1:]...)
	next := model.State{Projects: cur.Projects, Tasks: tasks}

	return s.commit(ctx, OpDeleteTask, next,
		Result{Applied: true, Task: &t},
		events.NewEvent(events.EventTaskDeleted, t.ID, t))
}

// checkFields validates the enumerated and date fields of a task.
func checkFields(priority model.Priority, status model.Status, deadline string) Reason {
	if !priority.Valid() {
		return ReasonInvalidPriority
	}
	if !status.Valid() {
		return ReasonInvalidStatus
	}
	if deadline != "" {
		if _, ok := model.ParseDate(deadline); !ok {
			return ReasonInvalidDeadline
		}
	}
	return ReasonNone
}
