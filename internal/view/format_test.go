package view

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatDate(t *testing.T) {
	tests := map[string]string{
		"2025-01-15":               "Jan 15, 2025",
		"2025-12-01T10:00:00.000Z": "Dec 1, 2025",
		"":                         NoDate,
		"tomorrow":                 NoDate,
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatDate(in), in)
	}

	assert.Equal(t, NoDate, FormatTime(time.Time{}))
	assert.Equal(t, "Jan 1, 2025", FormatTime(time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)))
}

func TestRelativeDeadline(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		value string
		want  string
	}{
		{"", "No deadline"},
		{"soon", "No deadline"},
		{"2025-03-10", "Due today"},
		{"2025-03-11", "1 day left"},
		{"2025-03-15", "5 days left"},
		{"2025-03-09", "1 day overdue"},
		{"2025-03-01", "9 days overdue"},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, RelativeDeadline(tt.value, now))
		})
	}
}

func TestRouteMeta(t *testing.T) {
	assert.Equal(t, Meta{Path: RouteTasks, Label: "Tasks", Title: "Tasks"}, RouteMeta("/tasks"))
	assert.Equal(t, "Sign in", RouteMeta(RouteLogin).Title)
	assert.Equal(t, "Welcome back", RouteMeta(RouteHome).Title)
	assert.Equal(t, RouteHome, RouteMeta("/").Path)
	assert.Equal(t, RouteHome, RouteMeta("/nope").Path)

	routes := Routes()
	assert.Len(t, routes, 4)
	routes[0].Label = "changed"
	assert.Equal(t, "Home", RouteMeta(RouteHome).Label)
}
