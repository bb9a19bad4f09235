// Package view derives what front ends display from a store snapshot:
// filtered and sorted task lists, dashboard statistics, upcoming deadlines
// and display formatting. Every function is pure and leaves its inputs
// untouched.
package view

import (
	"fmt"
	"math"
	"sort"

	"github.com/randalmurphal/taskdeck/internal/model"
)

// All disables a filter criterion.
const All = "all"

// DefaultUpcomingLimit is the number of deadlines Upcoming returns when no
// positive limit is given.
const DefaultUpcomingLimit = 4

// SortKey names a task field tasks can be ordered by.
type SortKey string

// Sort keys.
const (
	SortCreatedAt SortKey = "createdAt"
	SortDeadline  SortKey = "deadline"
	SortPriority  SortKey = "priority"
)

// Direction is the sort direction.
type Direction string

// Directions.
const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseSortKey validates a sort key.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(s); k {
	case SortCreatedAt, SortDeadline, SortPriority:
		return k, nil
	}
	return "", fmt.Errorf("unknown sort key %q (want createdAt, deadline or priority)", s)
}

// ParseDirection validates a sort direction.
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(s); d {
	case Asc, Desc:
		return d, nil
	}
	return "", fmt.Errorf("unknown sort direction %q (want asc or desc)", s)
}

// TaskFilter restricts a task list. Each field is All, empty (same as All),
// or a value the task field must equal exactly.
type TaskFilter struct {
	ProjectID string
	Status    string
	Priority  string
}

// NoFilter passes every task.
var NoFilter = TaskFilter{ProjectID: All, Status: All, Priority: All}

func matches(criterion, value string) bool {
	return criterion == "" || criterion == All || criterion == value
}

// Filter returns the tasks satisfying every criterion of f, in input order.
func Filter(tasks []model.Task, f TaskFilter) []model.Task {
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if matches(f.ProjectID, t.ProjectID) &&
			matches(f.Status, string(t.Status)) &&
			matches(f.Priority, string(t.Priority)) {
			out = append(out, t)
		}
	}
	return out
}

// SortSpec selects the order of a task list.
type SortSpec struct {
	By        SortKey
	Direction Direction
}

// DefaultSort lists the newest tasks first.
var DefaultSort = SortSpec{By: SortCreatedAt, Direction: Desc}

// Sort returns a sorted copy of tasks. The sort is stable, so ties keep
// their input order.
//
// Dates compare by time. A task whose date is missing or unparseable sorts
// after every task with a valid date in both directions. An unknown By
// leaves the order unchanged.
func Sort(tasks []model.Task, spec SortSpec) []model.Task {
	out := model.CloneTasks(tasks)

	var key func(model.Task) (int64, bool)
	switch spec.By {
	case SortCreatedAt:
		key = func(t model.Task) (int64, bool) {
			if t.CreatedAt.IsZero() {
				return 0, false
			}
			return t.CreatedAt.UnixNano(), true
		}
	case SortDeadline:
		key = func(t model.Task) (int64, bool) {
			ts, ok := t.DeadlineTime()
			if !ok {
				return 0, false
			}
			return ts.UnixNano(), true
		}
	case SortPriority:
		key = func(t model.Task) (int64, bool) {
			return int64(t.Priority.Rank()), true
		}
	default:
		return out
	}

	desc := spec.Direction == Desc
	sort.SliceStable(out, func(i, j int) bool {
		a, aok := key(out[i])
		b, bok := key(out[j])
		switch {
		case !aok || !bok:
			return aok && !bok
		case desc:
			return a > b
		default:
			return a < b
		}
	})
	return out
}

// Stats are the dashboard figures.
type Stats struct {
	Projects int `json:"projects"`
	Tasks    int `json:"tasks"`
	Open     int `json:"open"`
	Urgent   int `json:"urgent"`
	Done     int `json:"done"`
	// DoneRate is the percentage of tasks that are done, rounded to the
	// nearest integer. It is 0 when there are no tasks.
	DoneRate int `json:"doneRate"`
}

// Aggregate computes Stats.
func Aggregate(projects []model.Project, tasks []model.Task) Stats {
	s := Stats{Projects: len(projects), Tasks: len(tasks)}
	for _, t := range tasks {
		if t.Status == model.StatusDone {
			s.Done++
		} else {
			s.Open++
		}
		if t.Priority == model.PriorityUrgent {
			s.Urgent++
		}
	}
	if s.Tasks > 0 {
		s.DoneRate = int(math.Round(100 * float64(s.Done) / float64(s.Tasks)))
	}
	return s
}

// Upcoming returns up to limit tasks with a parseable deadline, earliest
// first. A limit of zero or less means DefaultUpcomingLimit.
func Upcoming(tasks []model.Task, limit int) []model.Task {
	if limit <= 0 {
		limit = DefaultUpcomingLimit
	}
	dated := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if _, ok := t.DeadlineTime(); ok {
			dated = append(dated, t)
		}
	}
	dated = Sort(dated, SortSpec{By: SortDeadline, Direction: Asc})
	if len(dated) > limit {
		dated = dated[:limit]
	}
	return dated
}

// ProjectTaskCounts returns the number of tasks per project id.
func ProjectTaskCounts(tasks []model.Task) map[string]int {
	counts := make(map[string]int)
	for _, t := range tasks {
		counts[t.ProjectID]++
	}
	return counts
}

// UnknownProject is shown for a task whose project cannot be found.
const UnknownProject = "Unknown"

// ProjectNames maps project ids to names.
func ProjectNames(projects []model.Project) map[string]string {
	names := make(map[string]string, len(projects))
	for _, p := range projects {
		names[p.ID] = p.Name
	}
	return names
}

// ProjectName looks up a project name, falling back to UnknownProject.
func ProjectName(names map[string]string, projectID string) string {
	if name, ok := names[projectID]; ok {
		return name
	}
	return UnknownProject
}
