// Package pipeline runs one planning pass: constraints, preprocessing,
// estimation, scheduling, validation with repair, and polishing.
package pipeline

import (
	"context"
	"time"

	"github.com/julianstephens/morrow/internal/constraints"
	"github.com/julianstephens/morrow/internal/estimator"
	"github.com/julianstephens/morrow/internal/logger"
	"github.com/julianstephens/morrow/internal/models"
	"github.com/julianstephens/morrow/internal/polisher"
	"github.com/julianstephens/morrow/internal/preprocess"
	"github.com/julianstephens/morrow/internal/scheduler"
	"github.com/julianstephens/morrow/internal/validation"
)

// Estimator produces task estimates
type Estimator interface {
	Estimate(ctx context.Context, tasks []models.PreprocessedTask, bio string) ([]models.TaskEstimate, error)
}

// Polisher rewrites schedule titles
type Polisher interface {
	Polish(ctx context.Context, schedule []models.ScheduledItem, bio string, date time.Time) ([]models.PolishedItem, error)
}

// Stats summarizes a planning run
type Stats struct {
	TotalTasks       int `json:"total_tasks"`
	ScheduledTasks   int `json:"scheduled_tasks"`
	ScheduledMinutes int `json:"scheduled_minutes"`
	AvailableMinutes int `json:"available_minutes"`
	PomodoroSessions int `json:"pomodoro_sessions"`
}

// Result is everything one run produced
type Result struct {
	Date        time.Time
	Constraints models.DayConstraints
	Tasks       []models.PreprocessedTask
	Estimates   []models.TaskEstimate
	Schedule    []models.ScheduledItem
	Polished    []models.PolishedItem
	Validation  validation.ValidationResult
	Fixes       []validation.FixAction
	Stats       Stats

	// Collaborator failures the run recovered from
	EstimateErr error
	PolishErr   error
}

// Pipeline plans a day from preferences and raw tasks. A nil Estimator or
// Polisher means that stage runs offline.
type Pipeline struct {
	Preferences map[string]string
	Bio         string
	Estimator   Estimator
	Polisher    Polisher

	scheduler *scheduler.Scheduler
	validator *validation.Validator
}

func New(prefs map[string]string, bio string, est Estimator, pol Polisher) *Pipeline {
	return &Pipeline{
		Preferences: prefs,
		Bio:         bio,
		Estimator:   est,
		Polisher:    pol,
		scheduler:   scheduler.New(),
		validator:   validation.New(),
	}
}

// Execute runs every stage for the given date. Estimator and polisher errors
// degrade to heuristic estimates and a pass-through schedule; only context
// cancellation aborts the run.
func (p *Pipeline) Execute(ctx context.Context, raw []models.RawTask, date time.Time) (*Result, error) {
	res := &Result{Date: date}

	// Step 1: Constraints and preprocessing
	res.Constraints = constraints.Extract(p.Preferences)
	res.Tasks = preprocess.Tasks(raw)
	logger.Info("constraints extracted",
		"wake", res.Constraints.WakeTime,
		"sleep", res.Constraints.SleepTime,
		"available_minutes", res.Constraints.TotalAvailableMinutes,
		"fixed_activities", len(res.Constraints.FixedActivities),
		"tasks", len(res.Tasks))

	// Step 2: Estimates
	if p.Estimator != nil {
		estimates, err := p.Estimator.Estimate(ctx, res.Tasks, p.Bio)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Warn("estimation failed, using heuristic defaults", "error", err)
			res.EstimateErr = err
		} else {
			res.Estimates = estimates
		}
	}
	if res.Estimates == nil {
		res.Estimates = estimator.Defaults(res.Tasks)
	}
	total := 0
	for _, e := range res.Estimates {
		total += e.EstimatedDuration
	}
	logger.Info("tasks estimated", "estimates", len(res.Estimates), "total_minutes", total)

	// Step 3: Schedule
	res.Schedule = p.scheduler.GenerateSchedule(res.Constraints, res.Tasks, res.Estimates)
	logger.Info("schedule generated", "items", len(res.Schedule))

	// Step 4: Validate, repair once, validate again
	res.Validation = p.validator.Validate(res.Schedule, res.Constraints, res.Tasks)
	if !res.Validation.IsValid {
		logger.Warn("schedule invalid, attempting auto-fix", "errors", len(res.Validation.Errors))
		res.Schedule, res.Fixes = p.validator.AutoFix(res.Schedule, res.Constraints)
		res.Validation = p.validator.Validate(res.Schedule, res.Constraints, res.Tasks)
	}
	logger.Info("schedule validated",
		"valid", res.Validation.IsValid,
		"errors", len(res.Validation.Errors),
		"warnings", len(res.Validation.Warnings),
		"fixes", len(res.Fixes))

	// Step 5: Polish
	if p.Polisher != nil {
		polished, err := p.Polisher.Polish(ctx, res.Schedule, p.Bio, date)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Warn("polish failed, using original titles", "error", err)
			res.PolishErr = err
		} else {
			res.Polished = polished
		}
	}
	if res.Polished == nil {
		res.Polished = polisher.Fallback(res.Schedule)
	}

	res.Stats = ComputeStats(res.Schedule, res.Tasks, res.Constraints)
	logger.Info("planning finished",
		"scheduled_tasks", res.Stats.ScheduledTasks,
		"total_tasks", res.Stats.TotalTasks,
		"pomodoros", res.Stats.PomodoroSessions)
	return res, nil
}

// ComputeStats counts distinct scheduled tasks, minutes spent on task items
// and pomodoro work blocks.
func ComputeStats(schedule []models.ScheduledItem, tasks []models.PreprocessedTask, c models.DayConstraints) Stats {
	stats := Stats{
		TotalTasks:       len(tasks),
		AvailableMinutes: c.TotalAvailableMinutes,
	}
	seen := make(map[string]bool)
	for _, it := range schedule {
		if it.TaskID != "" {
			seen[it.TaskID] = true
			stats.ScheduledMinutes += it.Duration
		}
		if it.ItemType == models.ItemPomodoroWork {
			stats.PomodoroSessions++
		}
	}
	stats.ScheduledTasks = len(seen)
	return stats
}
