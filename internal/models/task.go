package models

import "strings"

type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityNormal Priority = "Normal"
	PriorityLow    Priority = "Low"
)

// Rank orders priorities for sorting: High=0, Normal=1, Low=2.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityLow:
		return 2
	default:
		return 1
	}
}

// ParsePriority is case-insensitive and falls back to Normal.
func ParsePriority(s string) Priority {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high":
		return PriorityHigh
	case "low":
		return PriorityLow
	default:
		return PriorityNormal
	}
}

type TimePeriod string

const (
	PeriodNone      TimePeriod = ""
	PeriodMorning   TimePeriod = "Morning"
	PeriodAfternoon TimePeriod = "Afternoon"
	PeriodEvening   TimePeriod = "Evening"
)

// ParseTimePeriod is case-insensitive; unknown values yield PeriodNone.
func ParseTimePeriod(s string) TimePeriod {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "morning":
		return PeriodMorning
	case "afternoon":
		return PeriodAfternoon
	case "evening":
		return PeriodEvening
	default:
		return PeriodNone
	}
}

// Window returns the wall-clock interval a period covers.
func (p TimePeriod) Window() (start, end TimeOfDay, ok bool) {
	switch p {
	case PeriodMorning:
		return NewTimeOfDay(6, 0), NewTimeOfDay(12, 0), true
	case PeriodAfternoon:
		return NewTimeOfDay(12, 0), NewTimeOfDay(18, 0), true
	case PeriodEvening:
		return NewTimeOfDay(18, 0), NewTimeOfDay(23, 0), true
	default:
		return 0, 0, false
	}
}

// RawTask is one entry from the task source, in source order.
type RawTask struct {
	Title string `json:"title"`
	Notes string `json:"notes,omitempty"`
}

// TimeHint holds the scheduling signals found in a task's text.
type TimeHint struct {
	PreferredStart *TimeOfDay `json:"preferred_start,omitempty"`
	DurationHint   *int       `json:"duration_hint,omitempty"`
	Priority       Priority   `json:"priority"`
	TimePeriod     TimePeriod `json:"time_period,omitempty"`
}

// PreprocessedTask is a raw task with its opaque id and extracted hints.
// Ordinal is the ingestion position and only breaks ties; joins use ID.
type PreprocessedTask struct {
	ID      string   `json:"id"`
	Ordinal int      `json:"ordinal"`
	Title   string   `json:"title"`
	Notes   string   `json:"notes,omitempty"`
	Hints   TimeHint `json:"hints"`
}

// TaskEstimate is the estimator's view of a single task.
type TaskEstimate struct {
	TaskID            string     `json:"task_id"`
	EstimatedDuration int        `json:"estimated_duration"`
	Priority          Priority   `json:"priority"`
	PreferredPeriod   TimePeriod `json:"preferred_period,omitempty"`
	RequiresFocus     bool       `json:"requires_focus"`
	CanSplit          bool       `json:"can_split"`
}
