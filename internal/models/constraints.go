package models

// FixedActivity is a non-negotiable daily anchor such as a meal or sleep prep.
type FixedActivity struct {
	Name            string    `json:"name"`
	Start           TimeOfDay `json:"start"`
	DurationMinutes int       `json:"duration_minutes"`
}

// End returns the wall-clock end of the activity.
func (a FixedActivity) End() TimeOfDay {
	return a.Start.Add(a.DurationMinutes)
}

type SlotKind string

const (
	SlotAvailable SlotKind = "available"
	SlotFixed     SlotKind = "fixed"
	SlotBuffer    SlotKind = "buffer"
)

// TimeSlot is a contiguous interval of the day. End may be numerically smaller
// than Start when the slot crosses midnight.
type TimeSlot struct {
	Start TimeOfDay `json:"start"`
	End   TimeOfDay `json:"end"`
	Kind  SlotKind  `json:"kind"`
}

// Minutes returns the slot length, correct across midnight.
func (s TimeSlot) Minutes() int {
	return s.Start.MinutesUntil(s.End)
}

// DayConstraints are the anchors and free-time partition for one day.
type DayConstraints struct {
	WakeTime              TimeOfDay       `json:"wake_time"`
	SleepTime             TimeOfDay       `json:"sleep_time"`
	FixedActivities       []FixedActivity `json:"fixed_activities"`
	AvailableSlots        []TimeSlot      `json:"available_slots"`
	TotalAvailableMinutes int             `json:"total_available_minutes"`
}

// Timeline returns the wake-relative coordinate system for these constraints.
func (c DayConstraints) Timeline() Timeline {
	return Timeline{Wake: c.WakeTime, Sleep: c.SleepTime}
}

// Overnight reports whether sleep falls after midnight.
func (c DayConstraints) Overnight() bool {
	return c.Timeline().Overnight()
}
