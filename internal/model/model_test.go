package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateClone_Independent(t *testing.T) {
	orig := Seed()
	cp := orig.Clone()

	require.Equal(t, orig, cp)

	cp.Projects[0].Name = "changed"
	cp.Tasks[0].Status = StatusDone
	cp.Tasks = append(cp.Tasks, Task{ID: "task_2"})

	assert.Equal(t, "Sample Project", orig.Projects[0].Name)
	assert.Equal(t, StatusNew, orig.Tasks[0].Status)
	assert.Len(t, orig.Tasks, 1)
}

func TestStateClone_NilBecomesEmpty(t *testing.T) {
	cp := State{}.Clone()

	assert.NotNil(t, cp.Projects)
	assert.NotNil(t, cp.Tasks)
	assert.Empty(t, cp.Projects)
}

func TestPriorityRank(t *testing.T) {
	assert.Less(t, PriorityLow.Rank(), PriorityMedium.Rank())
	assert.Less(t, PriorityMedium.Rank(), PriorityHigh.Rank())
	assert.Less(t, PriorityHigh.Rank(), PriorityUrgent.Rank())
	assert.Equal(t, -1, Priority("bogus").Rank())
}

func TestParseStatusAndPriority(t *testing.T) {
	st, err := ParseStatus("in_progress")
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, st)

	_, err = ParseStatus("finished")
	assert.Error(t, err)

	p, err := ParsePriority("urgent")
	require.NoError(t, err)
	assert.Equal(t, PriorityUrgent, p)

	_, err = ParsePriority("")
	assert.Error(t, err)
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
		ok    bool
	}{
		{"calendar date", "2025-01-15", time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), true},
		{"rfc3339", "2025-01-01T10:00:00.000Z", time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC), true},
		{"blank", "  ", time.Time{}, false},
		{"garbage", "next tuesday", time.Time{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDate(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.True(t, tt.want.Equal(got), "got %v", got)
			}
		})
	}
}

func TestOptionLabels(t *testing.T) {
	assert.Equal(t, "In progress", StatusInProgress.Label())
	assert.Equal(t, ToneDanger, StatusBlocked.Tone())
	assert.Equal(t, "Urgent", PriorityUrgent.Label())
	assert.Equal(t, "weird", Status("weird").Label())
}

func TestStateCheck(t *testing.T) {
	assert.NoError(t, Seed().Check())
	assert.NoError(t, State{}.Check())

	dupProject := Seed()
	dupProject.Projects = append(dupProject.Projects, dupProject.Projects[0])
	assert.ErrorContains(t, dupProject.Check(), "duplicate project")

	dupTask := Seed()
	dupTask.Tasks = append(dupTask.Tasks, dupTask.Tasks[0])
	assert.ErrorContains(t, dupTask.Check(), "duplicate task")

	dangling := Seed()
	dangling.Tasks[0].ProjectID = "proj_gone"
	assert.ErrorContains(t, dangling.Check(), "missing project")

	blank := Seed()
	blank.Projects[0].ID = ""
	assert.Error(t, blank.Check())
}

func TestNormalize_DefaultsWithoutTouchingReceiver(t *testing.T) {
	orig := State{Tasks: []Task{{ID: "t", ProjectID: "p"}, {ID: "u", ProjectID: "p", Priority: PriorityUrgent, Status: StatusDone}}}

	got := orig.Normalize()
	assert.Equal(t, DefaultPriority, got.Tasks[0].Priority)
	assert.Equal(t, DefaultStatus, got.Tasks[0].Status)
	assert.Equal(t, PriorityUrgent, got.Tasks[1].Priority)
	assert.Empty(t, orig.Tasks[0].Priority, "receiver slice unchanged")
	assert.NotNil(t, got.Projects)
}
