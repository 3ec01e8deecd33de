package scheduler

import (
	"testing"

	"github.com/julianstephens/morrow/internal/constraints"
	"github.com/julianstephens/morrow/internal/models"
	"github.com/julianstephens/morrow/internal/preprocess"
)

// singleSlotDay is a day with one Available slot covering the whole window.
func singleSlotDay(wake, sleep string) models.DayConstraints {
	w := models.MustParseTimeOfDay(wake)
	s := models.MustParseTimeOfDay(sleep)
	slot := models.TimeSlot{Start: w, End: s, Kind: models.SlotAvailable}
	return models.DayConstraints{
		WakeTime:              w,
		SleepTime:             s,
		AvailableSlots:        []models.TimeSlot{slot},
		TotalAvailableMinutes: slot.Minutes(),
	}
}

func focusTask(minutes int) ([]models.PreprocessedTask, []models.TaskEstimate) {
	tasks := []models.PreprocessedTask{{ID: "t0", Title: "Deep work"}}
	estimates := []models.TaskEstimate{{
		TaskID:            "t0",
		EstimatedDuration: minutes,
		Priority:          models.PriorityNormal,
		RequiresFocus:     true,
		CanSplit:          true,
	}}
	return tasks, estimates
}

func countTypes(items []models.ScheduledItem) map[models.ItemType]int {
	counts := map[models.ItemType]int{}
	for _, it := range items {
		counts[it.ItemType]++
	}
	return counts
}

func TestGenerateSchedule_PomodoroFullCycle(t *testing.T) {
	tasks, estimates := focusTask(115)
	items := New().GenerateSchedule(singleSlotDay("09:00", "12:00"), tasks, estimates)

	counts := countTypes(items)
	if counts[models.ItemPomodoroWork] != 4 || counts[models.ItemPomodoroBreak] != 3 || counts[models.ItemPomodoroLong] != 0 {
		t.Fatalf("unexpected item mix: %v", counts)
	}

	total := 0
	for _, it := range items {
		total += it.Duration
		if it.ItemType == models.ItemPomodoroWork && it.Duration != 25 {
			t.Errorf("work block %q lasts %d minutes", it.Title, it.Duration)
		}
		if it.ItemType == models.ItemPomodoroBreak && it.Duration != 5 {
			t.Errorf("break at %s lasts %d minutes", it.Time, it.Duration)
		}
	}
	if total != 115 {
		t.Errorf("pomodoro items consume %d minutes, want 115", total)
	}

	last := items[len(items)-1]
	if last.Time != "10:30" || last.ItemType != models.ItemPomodoroWork {
		t.Errorf("last item = %+v, want work block at 10:30", last)
	}
	if items[0].Title != "Deep work (专注 #1)" {
		t.Errorf("first title = %q", items[0].Title)
	}
}

func TestGenerateSchedule_PomodoroLongBreak(t *testing.T) {
	tasks, estimates := focusTask(155)
	items := New().GenerateSchedule(singleSlotDay("09:00", "12:00"), tasks, estimates)

	counts := countTypes(items)
	if counts[models.ItemPomodoroWork] != 4 || counts[models.ItemPomodoroBreak] != 3 || counts[models.ItemPomodoroLong] != 1 {
		t.Fatalf("unexpected item mix: %v", counts)
	}

	last := items[len(items)-1]
	if last.ItemType != models.ItemPomodoroLong || last.Duration != 35 || last.Time != "10:55" {
		t.Errorf("last item = %+v, want 35 minute long break at 10:55", last)
	}
}

func TestGenerateSchedule_ShortFocusIsPlainTask(t *testing.T) {
	tasks, estimates := focusTask(20)
	items := New().GenerateSchedule(singleSlotDay("09:00", "12:00"), tasks, estimates)

	if len(items) != 1 || items[0].ItemType != models.ItemTask || items[0].Duration != 20 {
		t.Fatalf("items = %+v, want a single 20 minute task", items)
	}
}

func TestGenerateSchedule_EndToEnd(t *testing.T) {
	day := constraints.Extract(nil)
	tasks := preprocess.Tasks([]models.RawTask{
		{Title: "买菜", Notes: "urgent, 30 min"},
		{Title: "写报告", Notes: "需要专注 2 hours"},
	})

	if tasks[0].Hints.Priority != models.PriorityHigh || *tasks[0].Hints.DurationHint != 30 {
		t.Fatalf("task 0 hints = %+v", tasks[0].Hints)
	}
	if *tasks[1].Hints.DurationHint != 120 {
		t.Fatalf("task 1 hints = %+v", tasks[1].Hints)
	}

	estimates := []models.TaskEstimate{
		{TaskID: tasks[1].ID, EstimatedDuration: 120, Priority: models.PriorityNormal, RequiresFocus: true, CanSplit: true},
		{TaskID: tasks[0].ID, EstimatedDuration: 30, Priority: models.PriorityHigh, CanSplit: true},
	}

	items := New().GenerateSchedule(day, tasks, estimates)

	firstIdx := map[string]int{}
	for i, it := range items {
		if _, seen := firstIdx[it.TaskID]; it.TaskID != "" && !seen {
			firstIdx[it.TaskID] = i
		}
	}
	if firstIdx[tasks[0].ID] >= firstIdx[tasks[1].ID] {
		t.Errorf("task 0 should be scheduled before task 1: %+v", items)
	}

	shopping := items[firstIdx[tasks[0].ID]]
	if shopping.Time != "08:30" || shopping.ItemType != models.ItemTask {
		t.Errorf("shopping = %+v, want plain task at 08:30", shopping)
	}

	counts := countTypes(items)
	if counts[models.ItemPomodoroWork] != 4 {
		t.Errorf("report should be split into 4 work blocks, got %v", counts)
	}
	if counts[models.ItemFixed] != len(day.FixedActivities) {
		t.Errorf("fixed items = %d, want %d", counts[models.ItemFixed], len(day.FixedActivities))
	}

	for i := 1; i < len(items); i++ {
		if items[i-1].Time > items[i].Time {
			t.Errorf("schedule not sorted at %d: %s > %s", i, items[i-1].Time, items[i].Time)
		}
	}
}

func TestGenerateSchedule_PriorityOrder(t *testing.T) {
	tasks := []models.PreprocessedTask{
		{ID: "low", Title: "Low"},
		{ID: "high", Title: "High"},
		{ID: "normal", Title: "Normal"},
	}
	estimates := []models.TaskEstimate{
		{TaskID: "low", EstimatedDuration: 30, Priority: models.PriorityLow, CanSplit: true},
		{TaskID: "high", EstimatedDuration: 30, Priority: models.PriorityHigh, CanSplit: true},
		{TaskID: "normal", EstimatedDuration: 30, Priority: models.PriorityNormal, CanSplit: true},
	}

	items := New().GenerateSchedule(singleSlotDay("09:00", "12:00"), tasks, estimates)

	want := []struct{ id, time string }{{"high", "09:00"}, {"normal", "09:30"}, {"low", "10:00"}}
	if len(items) != len(want) {
		t.Fatalf("got %d items, want %d", len(items), len(want))
	}
	for i, w := range want {
		if items[i].TaskID != w.id || items[i].Time != w.time {
			t.Errorf("item %d = %s@%s, want %s@%s", i, items[i].TaskID, items[i].Time, w.id, w.time)
		}
	}
}

func TestGenerateSchedule_PreferredPeriod(t *testing.T) {
	day := constraints.Extract(nil)
	tasks := []models.PreprocessedTask{{ID: "a", Title: "Gym"}}
	estimates := []models.TaskEstimate{{
		TaskID:            "a",
		EstimatedDuration: 60,
		Priority:          models.PriorityNormal,
		PreferredPeriod:   models.PeriodAfternoon,
		CanSplit:          true,
	}}

	items := New().GenerateSchedule(day, tasks, estimates)
	for _, it := range items {
		if it.TaskID == "a" && it.Time != "13:00" {
			t.Errorf("afternoon task placed at %s, want 13:00", it.Time)
		}
	}
}

func TestGenerateSchedule_SplitAcrossSlots(t *testing.T) {
	day := constraints.Extract(nil)
	tasks := []models.PreprocessedTask{{ID: "big", Title: "Big"}}
	estimates := []models.TaskEstimate{{TaskID: "big", EstimatedDuration: 240, Priority: models.PriorityNormal, CanSplit: true}}

	items := New().GenerateSchedule(day, tasks, estimates)

	var parts []models.ScheduledItem
	for _, it := range items {
		if it.TaskID == "big" {
			parts = append(parts, it)
		}
	}
	if len(parts) != 2 {
		t.Fatalf("got %d parts, want 2: %+v", len(parts), parts)
	}
	if parts[0].Time != "08:30" || parts[0].Duration != 205 {
		t.Errorf("first part = %+v", parts[0])
	}
	if parts[1].Time != "13:00" || parts[1].Duration != 35 {
		t.Errorf("second part = %+v", parts[1])
	}
}

func TestGenerateSchedule_NoSplitNeedsWholeSlot(t *testing.T) {
	day := constraints.Extract(nil)
	tasks := []models.PreprocessedTask{{ID: "fits", Title: "Fits"}, {ID: "huge", Title: "Huge"}}
	estimates := []models.TaskEstimate{
		{TaskID: "fits", EstimatedDuration: 240, Priority: models.PriorityNormal},
		{TaskID: "huge", EstimatedDuration: 400, Priority: models.PriorityNormal},
	}

	items := New().GenerateSchedule(day, tasks, estimates)

	for _, it := range items {
		switch it.TaskID {
		case "fits":
			if it.Time != "13:00" || it.Duration != 240 {
				t.Errorf("unsplittable task = %+v, want 240 minutes at 13:00", it)
			}
		case "huge":
			t.Errorf("task larger than any slot should not be placed: %+v", it)
		}
	}
}

func TestGenerateSchedule_MissingEstimateOmitted(t *testing.T) {
	tasks := []models.PreprocessedTask{{ID: "a", Title: "A"}, {ID: "b", Title: "B"}}
	estimates := []models.TaskEstimate{
		{TaskID: "a", EstimatedDuration: 30, Priority: models.PriorityNormal, CanSplit: true},
		{TaskID: "ghost", EstimatedDuration: 30, Priority: models.PriorityHigh, CanSplit: true},
	}

	items := New().GenerateSchedule(singleSlotDay("09:00", "12:00"), tasks, estimates)
	if len(items) != 1 || items[0].TaskID != "a" {
		t.Errorf("items = %+v, want only task a", items)
	}
}

func TestGenerateSchedule_DuplicateEstimateKeepsFirst(t *testing.T) {
	tasks := []models.PreprocessedTask{{ID: "a", Title: "A"}}
	estimates := []models.TaskEstimate{
		{TaskID: "a", EstimatedDuration: 30, Priority: models.PriorityNormal, CanSplit: true},
		{TaskID: "a", EstimatedDuration: 90, Priority: models.PriorityNormal, CanSplit: true},
	}

	items := New().GenerateSchedule(singleSlotDay("09:00", "12:00"), tasks, estimates)
	if len(items) != 1 || items[0].Duration != 30 {
		t.Errorf("items = %+v, want one 30 minute item from the first estimate", items)
	}
}

func TestGenerateSchedule_SkipsTinySlots(t *testing.T) {
	tasks := []models.PreprocessedTask{{ID: "a", Title: "A"}}
	estimates := []models.TaskEstimate{{TaskID: "a", EstimatedDuration: 30, Priority: models.PriorityNormal, CanSplit: true}}

	items := New().GenerateSchedule(singleSlotDay("09:00", "09:10"), tasks, estimates)
	if len(items) != 0 {
		t.Errorf("items = %+v, want none in a 10 minute slot", items)
	}
}

func TestGenerateSchedule_Overnight(t *testing.T) {
	day := singleSlotDay("23:00", "01:00")
	tasks := []models.PreprocessedTask{{ID: "a", Title: "A"}, {ID: "b", Title: "B"}}
	estimates := []models.TaskEstimate{
		{TaskID: "a", EstimatedDuration: 60, Priority: models.PriorityHigh, CanSplit: true},
		{TaskID: "b", EstimatedDuration: 90, Priority: models.PriorityNormal, CanSplit: true},
	}

	items := New().GenerateSchedule(day, tasks, estimates)
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2: %+v", len(items), items)
	}
	if items[0].Time != "23:00" || items[1].Time != "00:00" || items[1].Duration != 60 {
		t.Errorf("overnight schedule = %+v", items)
	}
}
