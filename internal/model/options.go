package model

import "fmt"

// Priority ranks how pressing a task is.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// DefaultPriority is applied when a task is created without one.
const DefaultPriority = PriorityMedium

var priorityRank = map[Priority]int{
	PriorityLow:    0,
	PriorityMedium: 1,
	PriorityHigh:   2,
	PriorityUrgent: 3,
}

// Rank returns the ordinal used for sorting (low < medium < high < urgent).
// Unknown values rank below low.
func (p Priority) Rank() int {
	if r, ok := priorityRank[p]; ok {
		return r
	}
	return -1
}

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	_, ok := priorityRank[p]
	return ok
}

// ParsePriority validates a priority string.
func ParsePriority(s string) (Priority, error) {
	p := Priority(s)
	if !p.Valid() {
		return "", fmt.Errorf("unknown priority %q", s)
	}
	return p, nil
}

// Status tracks where a task is in its lifecycle.
type Status string

const (
	StatusNew        Status = "new"
	StatusInProgress Status = "in_progress"
	StatusBlocked    Status = "blocked"
	StatusDone       Status = "done"
)

// DefaultStatus is applied when a task is created without one.
const DefaultStatus = StatusNew

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusInProgress, StatusBlocked, StatusDone:
		return true
	}
	return false
}

// ParseStatus validates a status string.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("unknown status %q", s)
	}
	return st, nil
}

// Tone is the visual emphasis a front end gives a status badge.
type Tone string

const (
	ToneWarning Tone = "warning"
	TonePrimary Tone = "primary"
	ToneDanger  Tone = "danger"
	ToneSuccess Tone = "success"
)

// StatusOption describes a status for pickers and badges.
type StatusOption struct {
	Value Status
	Label string
	Tone  Tone
}

// PriorityOption describes a priority for pickers.
type PriorityOption struct {
	Value Priority
	Label string
}

// StatusOptions lists statuses in display order.
var StatusOptions = []StatusOption{
	{Value: StatusNew, Label: "New", Tone: ToneWarning},
	{Value: StatusInProgress, Label: "In progress", Tone: TonePrimary},
	{Value: StatusBlocked, Label: "Blocked", Tone: ToneDanger},
	{Value: StatusDone, Label: "Done", Tone: ToneSuccess},
}

// PriorityOptions lists priorities in ascending rank.
var PriorityOptions = []PriorityOption{
	{Value: PriorityLow, Label: "Low"},
	{Value: PriorityMedium, Label: "Medium"},
	{Value: PriorityHigh, Label: "High"},
	{Value: PriorityUrgent, Label: "Urgent"},
}

// Label returns the display label for a status, or the raw value if unknown.
func (s Status) Label() string {
	for _, opt := range StatusOptions {
		if opt.Value == s {
			return opt.Label
		}
	}
	return string(s)
}

// Tone returns the badge tone for a status.
func (s Status) Tone() Tone {
	for _, opt := range StatusOptions {
		if opt.Value == s {
			return opt.Tone
		}
	}
	return ToneWarning
}

// Label returns the display label for a priority, or the raw value if unknown.
func (p Priority) Label() string {
	for _, opt := range PriorityOptions {
		if opt.Value == p {
			return opt.Label
		}
	}
	return string(p)
}
