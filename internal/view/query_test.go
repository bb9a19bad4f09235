package view

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/taskdeck/internal/model"
)

func at(day int) time.Time {
	return time.Date(2025, time.March, day, 9, 0, 0, 0, time.UTC)
}

func ids(tasks []model.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func sampleTasks() []model.Task {
	return []model.Task{
		{ID: "t1", ProjectID: "p1", Priority: model.PriorityUrgent, Status: model.StatusNew, CreatedAt: at(3), Deadline: "2025-04-10"},
		{ID: "t2", ProjectID: "p2", Priority: model.PriorityLow, Status: model.StatusDone, CreatedAt: at(1)},
		{ID: "t3", ProjectID: "p1", Priority: model.PriorityHigh, Status: model.StatusDone, CreatedAt: at(2), Deadline: "2025-04-01"},
		{ID: "t4", ProjectID: "p1", Priority: model.PriorityMedium, Status: model.StatusBlocked, CreatedAt: at(4), Deadline: "not a date"},
	}
}

func TestFilter(t *testing.T) {
	tasks := sampleTasks()

	tests := []struct {
		name string
		f    TaskFilter
		want []string
	}{
		{"all", NoFilter, []string{"t1", "t2", "t3", "t4"}},
		{"zero value passes all", TaskFilter{}, []string{"t1", "t2", "t3", "t4"}},
		{"project", TaskFilter{ProjectID: "p1", Status: All, Priority: All}, []string{"t1", "t3", "t4"}},
		{"status", TaskFilter{ProjectID: All, Status: "done", Priority: All}, []string{"t2", "t3"}},
		{"and", TaskFilter{ProjectID: "p1", Status: "done", Priority: All}, []string{"t3"}},
		{"all three", TaskFilter{ProjectID: "p1", Status: "done", Priority: "low"}, []string{}},
		{"no match", TaskFilter{ProjectID: "p9"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Filter(tasks, tt.f)))
		})
	}
}

func TestSort_PriorityAscending(t *testing.T) {
	tasks := []model.Task{
		{ID: "a", Priority: model.PriorityUrgent},
		{ID: "b", Priority: model.PriorityLow},
		{ID: "c", Priority: model.PriorityHigh},
	}

	got := Sort(tasks, SortSpec{By: SortPriority, Direction: Asc})
	assert.Equal(t, []string{"b", "c", "a"}, ids(got))

	got = Sort(tasks, SortSpec{By: SortPriority, Direction: Desc})
	assert.Equal(t, []string{"a", "c", "b"}, ids(got))

	assert.Equal(t, []string{"a", "b", "c"}, ids(tasks), "input untouched")
}

func TestSort_Dates(t *testing.T) {
	tasks := sampleTasks()

	assert.Equal(t, []string{"t2", "t3", "t1", "t4"}, ids(Sort(tasks, SortSpec{By: SortCreatedAt, Direction: Asc})))
	assert.Equal(t, []string{"t4", "t1", "t3", "t2"}, ids(Sort(tasks, DefaultSort)))

	// Missing and invalid deadlines go last in both directions, in input order.
	assert.Equal(t, []string{"t3", "t1", "t2", "t4"}, ids(Sort(tasks, SortSpec{By: SortDeadline, Direction: Asc})))
	assert.Equal(t, []string{"t1", "t3", "t2", "t4"}, ids(Sort(tasks, SortSpec{By: SortDeadline, Direction: Desc})))
}

func TestSort_StableTies(t *testing.T) {
	tasks := []model.Task{
		{ID: "x", Priority: model.PriorityHigh},
		{ID: "y", Priority: model.PriorityLow},
		{ID: "z", Priority: model.PriorityHigh},
	}
	assert.Equal(t, []string{"x", "z", "y"}, ids(Sort(tasks, SortSpec{By: SortPriority, Direction: Desc})))
}

func TestSort_UnknownKeyKeepsOrder(t *testing.T) {
	tasks := sampleTasks()
	assert.Equal(t, ids(tasks), ids(Sort(tasks, SortSpec{By: "title"})))
}

func TestParseSortSpec(t *testing.T) {
	k, err := ParseSortKey("deadline")
	require.NoError(t, err)
	assert.Equal(t, SortDeadline, k)
	_, err = ParseSortKey("title")
	assert.Error(t, err)

	d, err := ParseDirection("asc")
	require.NoError(t, err)
	assert.Equal(t, Asc, d)
	_, err = ParseDirection("up")
	assert.Error(t, err)
}

func TestAggregate(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		assert.Equal(t, Stats{}, Aggregate(nil, nil))
	})

	t.Run("half done", func(t *testing.T) {
		tasks := []model.Task{{Status: model.StatusDone}, {Status: model.StatusNew}}
		s := Aggregate([]model.Project{{ID: "p"}}, tasks)
		assert.Equal(t, 50, s.DoneRate)
		assert.Equal(t, 1, s.Open)
		assert.Equal(t, 1, s.Projects)
	})

	t.Run("sample", func(t *testing.T) {
		s := Aggregate([]model.Project{{ID: "p1"}, {ID: "p2"}}, sampleTasks())
		assert.Equal(t, Stats{Projects: 2, Tasks: 4, Open: 2, Urgent: 1, Done: 2, DoneRate: 50}, s)
	})

	t.Run("rounds", func(t *testing.T) {
		tasks := []model.Task{{Status: model.StatusDone}, {Status: model.StatusDone}, {Status: model.StatusNew}}
		assert.Equal(t, 67, Aggregate(nil, tasks).DoneRate)
	})
}

func TestUpcoming(t *testing.T) {
	tasks := []model.Task{
		{ID: "a", Deadline: "2025-05-01"},
		{ID: "b"},
		{ID: "c", Deadline: "2025-01-01"},
		{ID: "d", Deadline: "garbage"},
		{ID: "e", Deadline: "2025-03-01"},
		{ID: "f", Deadline: "2025-02-01"},
		{ID: "g", Deadline: "2025-06-01"},
	}

	assert.Equal(t, []string{"c", "f", "e", "a"}, ids(Upcoming(tasks, 0)))
	assert.Equal(t, []string{"c", "f"}, ids(Upcoming(tasks, 2)))
	assert.Equal(t, []string{"c", "f", "e", "a", "g"}, ids(Upcoming(tasks, 10)))
	assert.Empty(t, Upcoming(nil, 4))
}

func TestProjectTaskCounts(t *testing.T) {
	counts := ProjectTaskCounts(sampleTasks())
	assert.Equal(t, map[string]int{"p1": 3, "p2": 1}, counts)
	assert.Zero(t, counts["p9"])
}

func TestProjectName(t *testing.T) {
	names := ProjectNames([]model.Project{{ID: "p1", Name: "Alpha"}})
	assert.Equal(t, "Alpha", ProjectName(names, "p1"))
	assert.Equal(t, UnknownProject, ProjectName(names, "p2"))
}
