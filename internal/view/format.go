package view

import (
	"fmt"
	"math"
	"time"

	"github.com/randalmurphal/taskdeck/internal/model"
)

// DisplayDateLayout is how dates are shown to people.
const DisplayDateLayout = "Jan 2, 2006"

// NoDate is shown in place of a missing or unparseable date.
const NoDate = "—"

const day = 24 * time.Hour

// FormatDate renders a calendar date or RFC 3339 timestamp for display.
func FormatDate(value string) string {
	ts, ok := model.ParseDate(value)
	if !ok {
		return NoDate
	}
	return ts.Format(DisplayDateLayout)
}

// FormatTime renders a timestamp for display.
func FormatTime(ts time.Time) string {
	if ts.IsZero() {
		return NoDate
	}
	return ts.Format(DisplayDateLayout)
}

// RelativeDeadline phrases a deadline relative to now, rounding to whole days.
func RelativeDeadline(value string, now time.Time) string {
	ts, ok := model.ParseDate(value)
	if !ok {
		return "No deadline"
	}
	days := int(math.Round(float64(ts.Sub(now)) / float64(day)))
	switch {
	case days == 0:
		return "Due today"
	case days > 0:
		return fmt.Sprintf("%d %s left", days, plural(days, "day"))
	default:
		return fmt.Sprintf("%d %s overdue", -days, plural(-days, "day"))
	}
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

// Route paths.
const (
	RouteHome     = "/home"
	RouteProjects = "/projects"
	RouteTasks    = "/tasks"
	RouteLogin    = "/login"
)

// Meta is the shell chrome shown for a route: the breadcrumb label and the
// panel title.
type Meta struct {
	Path  string `json:"path"`
	Label string `json:"label"`
	Title string `json:"title"`
}

var routes = []Meta{
	{Path: RouteHome, Label: "Home", Title: "Welcome back"},
	{Path: RouteProjects, Label: "Projects", Title: "Projects"},
	{Path: RouteTasks, Label: "Tasks", Title: "Tasks"},
	{Path: RouteLogin, Label: "Login", Title: "Sign in"},
}

// Routes lists every route in navigation order.
func Routes() []Meta {
	out := make([]Meta, len(routes))
	copy(out, routes)
	return out
}

// RouteMeta returns the chrome for path. Unknown paths, including "/", get
// the home route.
func RouteMeta(path string) Meta {
	for _, m := range routes {
		if m.Path == path {
			return m
		}
	}
	return routes[0]
}
