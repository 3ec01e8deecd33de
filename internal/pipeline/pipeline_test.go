package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/julianstephens/morrow/internal/models"
)

type fakeEstimator struct {
	focus bool
	err   error
	calls int
}

func (f *fakeEstimator) Estimate(_ context.Context, tasks []models.PreprocessedTask, _ string) ([]models.TaskEstimate, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([]models.TaskEstimate, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, models.TaskEstimate{
			TaskID:            t.ID,
			EstimatedDuration: 60,
			Priority:          t.Hints.Priority,
			RequiresFocus:     f.focus,
			CanSplit:          true,
		})
	}
	return out, nil
}

type fakePolisher struct {
	err error
}

func (f *fakePolisher) Polish(_ context.Context, schedule []models.ScheduledItem, _ string, _ time.Time) ([]models.PolishedItem, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]models.PolishedItem, 0, len(schedule))
	for _, it := range schedule {
		out = append(out, models.PolishedItem{Time: it.Time, Duration: it.Duration, Title: "✨ " + it.Title, ItemType: it.ItemType})
	}
	return out, nil
}

var (
	date = time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)
	raw  = []models.RawTask{
		{Title: "买菜", Notes: "urgent, 30 min"},
		{Title: "写报告", Notes: "需要专注 2 hours"},
	}
)

func TestExecute(t *testing.T) {
	est := &fakeEstimator{focus: true}
	p := New(map[string]string{"wake_up": "7:30左右", "sleep": "23:00"}, "bio", est, &fakePolisher{})

	res, err := p.Execute(context.Background(), raw, date)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if est.calls != 1 {
		t.Errorf("estimator called %d times", est.calls)
	}
	if !res.Validation.IsValid {
		t.Errorf("expected valid schedule: %s", res.Validation.FormatReport())
	}
	if len(res.Polished) != len(res.Schedule) {
		t.Fatalf("polished %d items, schedule has %d", len(res.Polished), len(res.Schedule))
	}
	if res.Polished[0].Title != "✨ 起床洗漱" {
		t.Errorf("first polished title = %q", res.Polished[0].Title)
	}
	if res.EstimateErr != nil || res.PolishErr != nil {
		t.Errorf("unexpected collaborator errors: %v, %v", res.EstimateErr, res.PolishErr)
	}

	want := Stats{
		TotalTasks:       2,
		ScheduledTasks:   2,
		ScheduledMinutes: 100, // four 25 minute work blocks
		AvailableMinutes: 670,
		PomodoroSessions: 4,
	}
	if res.Stats != want {
		t.Errorf("stats = %+v, want %+v", res.Stats, want)
	}
}

func TestExecuteOffline(t *testing.T) {
	p := New(nil, "", nil, nil)

	res, err := p.Execute(context.Background(), raw, date)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if len(res.Estimates) != 2 || res.Estimates[0].EstimatedDuration != 30 || res.Estimates[1].EstimatedDuration != 120 {
		t.Errorf("offline estimates = %+v", res.Estimates)
	}
	for i := range res.Schedule {
		if res.Polished[i].Title != res.Schedule[i].Title {
			t.Errorf("offline polish should pass titles through: %q vs %q", res.Polished[i].Title, res.Schedule[i].Title)
		}
	}
	if res.Stats.PomodoroSessions != 0 {
		t.Errorf("defaults never request focus, got %d pomodoros", res.Stats.PomodoroSessions)
	}
}

func TestExecuteDegradesOnCollaboratorErrors(t *testing.T) {
	p := New(nil, "", &fakeEstimator{err: errors.New("llm down")}, &fakePolisher{err: errors.New("llm down")})

	res, err := p.Execute(context.Background(), raw, date)
	if err != nil {
		t.Fatalf("Execute should degrade, got %v", err)
	}
	if res.EstimateErr == nil || res.PolishErr == nil {
		t.Errorf("collaborator errors should be recorded: %v, %v", res.EstimateErr, res.PolishErr)
	}
	if res.Stats.ScheduledTasks != 2 {
		t.Errorf("scheduled %d tasks, want 2", res.Stats.ScheduledTasks)
	}
}

func TestExecuteCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := New(nil, "", &fakeEstimator{err: context.Canceled}, nil)
	if _, err := p.Execute(ctx, raw, date); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestComputeStats(t *testing.T) {
	schedule := []models.ScheduledItem{
		{Time: "07:30", Duration: 30, ItemType: models.ItemFixed},
		{Time: "08:30", Duration: 25, ItemType: models.ItemPomodoroWork, TaskID: "a"},
		{Time: "08:55", Duration: 5, ItemType: models.ItemPomodoroBreak},
		{Time: "09:00", Duration: 25, ItemType: models.ItemPomodoroWork, TaskID: "a"},
		{Time: "09:25", Duration: 40, ItemType: models.ItemTask, TaskID: "b"},
	}
	tasks := []models.PreprocessedTask{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	got := ComputeStats(schedule, tasks, models.DayConstraints{TotalAvailableMinutes: 500})
	want := Stats{TotalTasks: 3, ScheduledTasks: 2, ScheduledMinutes: 90, AvailableMinutes: 500, PomodoroSessions: 2}
	if got != want {
		t.Errorf("stats = %+v, want %+v", got, want)
	}
}
