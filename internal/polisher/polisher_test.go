package polisher

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/morrow/internal/llm"
	"github.com/julianstephens/morrow/internal/models"
)

type fakeCompleter struct {
	reply string
	err   error
	user  string
}

func (f *fakeCompleter) Complete(_ context.Context, _, user string, _ llm.Options) (string, error) {
	f.user = user
	return f.reply, f.err
}

func sampleSchedule() []models.ScheduledItem {
	return []models.ScheduledItem{
		{Time: "07:30", Duration: 30, Title: "起床洗漱", ItemType: models.ItemFixed},
		{Time: "09:00", Duration: 25, Title: "写报告 (专注 #1)", ItemType: models.ItemPomodoroWork, TaskID: "t1"},
		{Time: "09:25", Duration: 5, Title: "短休息", ItemType: models.ItemPomodoroBreak},
	}
}

var planDate = time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)

func TestPolish(t *testing.T) {
	fake := &fakeCompleter{reply: "```json\n" + `[
		{"time": "09:00", "duration": 50, "title": "专注写报告 #1", "suggestion": "先列提纲"},
		{"time": "07:30", "title": "起床", "suggestion": null},
		{"time": "12:00", "title": "invented"}
	]` + "\n```"}

	got, err := New(fake).Polish(context.Background(), sampleSchedule(), "student", planDate)
	if err != nil {
		t.Fatalf("Polish failed: %v", err)
	}

	if !strings.Contains(fake.user, "Date: 2026-10-16 (Friday)") || !strings.Contains(fake.user, "User context: student") {
		t.Errorf("prompt = %s", fake.user)
	}

	if len(got) != 3 {
		t.Fatalf("got %d items, want 3", len(got))
	}
	if got[0].Title != "起床" || got[0].Suggestion != "" {
		t.Errorf("item 0 = %+v", got[0])
	}
	if got[1].Title != "专注写报告 #1" || got[1].Suggestion != "先列提纲" || got[1].Duration != 25 {
		t.Errorf("item 1 = %+v (duration must stay 25)", got[1])
	}
	if got[2].Title != "短休息" || got[2].ItemType != models.ItemPomodoroBreak {
		t.Errorf("unmatched item should pass through: %+v", got[2])
	}
}

func TestPolishObjectResponse(t *testing.T) {
	fake := &fakeCompleter{reply: `{"items": [{"time": "09:25", "title": "伸展一下"}]}`}

	got, err := New(fake).Polish(context.Background(), sampleSchedule(), "", planDate)
	if err != nil {
		t.Fatalf("Polish failed: %v", err)
	}
	if got[2].Title != "伸展一下" {
		t.Errorf("item 2 = %+v", got[2])
	}
	if strings.Contains(fake.user, "User context") {
		t.Error("empty bio should not be sent")
	}
}

func TestPolishErrors(t *testing.T) {
	tests := []struct {
		name string
		fake *fakeCompleter
	}{
		{"client error", &fakeCompleter{err: errors.New("offline")}},
		{"bad json", &fakeCompleter{reply: "sure! here you go"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.fake).Polish(context.Background(), sampleSchedule(), "", planDate); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestPolishEmpty(t *testing.T) {
	fake := &fakeCompleter{err: errors.New("should not be called")}
	got, err := New(fake).Polish(context.Background(), nil, "", planDate)
	if err != nil || len(got) != 0 {
		t.Errorf("Polish(nil) = %v, %v", got, err)
	}
}

func TestFallback(t *testing.T) {
	schedule := sampleSchedule()
	got := Fallback(schedule)
	if len(got) != len(schedule) {
		t.Fatalf("got %d items", len(got))
	}
	for i := range schedule {
		if got[i].Time != schedule[i].Time || got[i].Duration != schedule[i].Duration ||
			got[i].Title != schedule[i].Title || got[i].Suggestion != "" {
			t.Errorf("item %d = %+v", i, got[i])
		}
	}
}
