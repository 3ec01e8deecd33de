package preprocess

import (
	"testing"

	"github.com/julianstephens/morrow/internal/models"
)

func TestTasks(t *testing.T) {
	raw := []models.RawTask{
		{Title: "买菜", Notes: "urgent, 30 min"},
		{Title: "写报告", Notes: "需要专注 2 hours"},
		{Title: "Evening walk", Notes: "optional"},
		{Title: "下午3点开会"},
	}

	got := Tasks(raw)
	if len(got) != len(raw) {
		t.Fatalf("got %d tasks, want %d", len(got), len(raw))
	}

	tests := []struct {
		priority models.Priority
		period   models.TimePeriod
		duration int // 0 means no hint
		start    string
	}{
		{models.PriorityHigh, models.PeriodNone, 30, ""},
		{models.PriorityNormal, models.PeriodNone, 120, ""},
		{models.PriorityLow, models.PeriodEvening, 0, ""},
		{models.PriorityNormal, models.PeriodAfternoon, 0, "15:00"},
	}

	for i, tt := range tests {
		task := got[i]
		if task.Ordinal != i {
			t.Errorf("task %d: ordinal = %d", i, task.Ordinal)
		}
		if task.Title != raw[i].Title || task.Notes != raw[i].Notes {
			t.Errorf("task %d: title/notes not carried through", i)
		}
		if task.Hints.Priority != tt.priority {
			t.Errorf("task %d: priority = %s, want %s", i, task.Hints.Priority, tt.priority)
		}
		if task.Hints.TimePeriod != tt.period {
			t.Errorf("task %d: period = %q, want %q", i, task.Hints.TimePeriod, tt.period)
		}

		switch {
		case tt.duration == 0 && task.Hints.DurationHint != nil:
			t.Errorf("task %d: unexpected duration hint %d", i, *task.Hints.DurationHint)
		case tt.duration != 0 && (task.Hints.DurationHint == nil || *task.Hints.DurationHint != tt.duration):
			t.Errorf("task %d: duration hint = %v, want %d", i, task.Hints.DurationHint, tt.duration)
		}

		switch {
		case tt.start == "" && task.Hints.PreferredStart != nil:
			t.Errorf("task %d: unexpected start %s", i, task.Hints.PreferredStart)
		case tt.start != "" && (task.Hints.PreferredStart == nil || task.Hints.PreferredStart.String() != tt.start):
			t.Errorf("task %d: start = %v, want %s", i, task.Hints.PreferredStart, tt.start)
		}
	}
}

func TestTaskIDs(t *testing.T) {
	raw := []models.RawTask{{Title: "a"}, {Title: "a"}, {Title: "b", Notes: "x"}}

	first := Tasks(raw)
	second := Tasks(raw)

	seen := map[string]bool{}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Errorf("task %d: id changed between runs", i)
		}
		if first[i].ID == "" {
			t.Errorf("task %d: empty id", i)
		}
		if seen[first[i].ID] {
			t.Errorf("task %d: duplicate id %s", i, first[i].ID)
		}
		seen[first[i].ID] = true
	}
}

func TestTasksEmpty(t *testing.T) {
	if got := Tasks(nil); len(got) != 0 {
		t.Errorf("Tasks(nil) = %v, want empty", got)
	}
}

func TestHintsNoSignal(t *testing.T) {
	h := Hints("read a book")
	if h.Priority != models.PriorityNormal || h.TimePeriod != models.PeriodNone ||
		h.DurationHint != nil || h.PreferredStart != nil {
		t.Errorf("Hints(no signal) = %+v", h)
	}
}
