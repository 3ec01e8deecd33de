package models

import (
	"sort"

	"github.com/julianstephens/morrow/internal/constants"
)

type ItemType string

const (
	ItemTask          ItemType = "Task"
	ItemFixed         ItemType = "Fixed"
	ItemPomodoroWork  ItemType = "PomodoroWork"
	ItemPomodoroBreak ItemType = "PomodoroBreak"
	ItemPomodoroLong  ItemType = "PomodoroLong"
	ItemBuffer        ItemType = "Buffer"
)

// IsWork reports whether the item counts toward continuous work time.
func (t ItemType) IsWork() bool {
	return t == ItemTask || t == ItemPomodoroWork
}

// IsBreak reports whether the item resets continuous work time.
func (t ItemType) IsBreak() bool {
	return t == ItemPomodoroBreak || t == ItemPomodoroLong || t == ItemFixed
}

// ScheduledItem is one entry of the generated day schedule.
type ScheduledItem struct {
	Time     string   `json:"time"` // HH:MM format
	Duration int      `json:"duration"`
	Title    string   `json:"title"`
	ItemType ItemType `json:"item_type"`
	TaskID   string   `json:"task_id,omitempty"`
}

// PolishedItem is a schedule entry after cosmetic rewriting.
type PolishedItem struct {
	Time       string   `json:"time"` // HH:MM format
	Duration   int      `json:"duration"`
	Title      string   `json:"title"`
	Suggestion string   `json:"suggestion,omitempty"`
	ItemType   ItemType `json:"item_type,omitempty"`
}

// Start parses the item's start time.
func (i ScheduledItem) Start() (TimeOfDay, error) {
	return ParseTimeOfDay(i.Time)
}

// SortSchedule orders items by position on the timeline. The sort is stable,
// and items whose time cannot be parsed sort last.
func SortSchedule(items []ScheduledItem, tl Timeline) {
	key := func(it ScheduledItem) int {
		t, err := it.Start()
		if err != nil {
			return constants.MinutesPerDay
		}
		return tl.Offset(t)
	}
	sort.SliceStable(items, func(a, b int) bool {
		return key(items[a]) < key(items[b])
	})
}
