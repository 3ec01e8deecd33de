package scheduler

import (
	"fmt"
	"sort"

	"github.com/julianstephens/morrow/internal/constants"
	"github.com/julianstephens/morrow/internal/logger"
	"github.com/julianstephens/morrow/internal/models"
)

type Scheduler struct{}

func New() *Scheduler {
	return &Scheduler{}
}

// schedulable is a task joined with its estimate, tracking what is left to place.
type schedulable struct {
	id            string
	title         string
	duration      int
	priority      models.Priority
	period        models.TimePeriod
	requiresFocus bool
	canSplit      bool
	remaining     int
	sessions      int // pomodoro work blocks emitted so far, across slots
}

// freeBlock is an Available slot in wake-relative offsets.
type freeBlock struct {
	start int
	end   int
	used  int
	items []models.ScheduledItem
}

func (b *freeBlock) free() int {
	return b.end - b.start - b.used
}

// GenerateSchedule places tasks into the day's Available slots, highest
// priority first, and returns the full schedule including fixed activities.
// Tasks without a matching estimate are left out.
func (s *Scheduler) GenerateSchedule(
	constraints models.DayConstraints,
	tasks []models.PreprocessedTask,
	estimates []models.TaskEstimate,
) []models.ScheduledItem {
	tl := constraints.Timeline()

	// Step 1: Seed with fixed activities
	schedule := make([]models.ScheduledItem, 0, len(constraints.FixedActivities))
	for _, a := range constraints.FixedActivities {
		schedule = append(schedule, models.ScheduledItem{
			Time:     a.Start.String(),
			Duration: a.DurationMinutes,
			Title:    a.Name,
			ItemType: models.ItemFixed,
		})
	}

	// Step 2: Join tasks with estimates by id
	byID := make(map[string]models.TaskEstimate, len(estimates))
	for _, e := range estimates {
		if _, ok := byID[e.TaskID]; !ok {
			byID[e.TaskID] = e
		}
	}

	pending := make([]*schedulable, 0, len(tasks))
	for _, t := range tasks {
		e, ok := byID[t.ID]
		if !ok {
			logger.Debug("task has no estimate, skipping", "task", t.Title)
			continue
		}
		pending = append(pending, &schedulable{
			id:            t.ID,
			title:         t.Title,
			duration:      e.EstimatedDuration,
			priority:      e.Priority,
			period:        e.PreferredPeriod,
			requiresFocus: e.RequiresFocus,
			canSplit:      e.CanSplit,
			remaining:     e.EstimatedDuration,
		})
	}

	// Step 3: Priority order, stable within a tier
	sort.SliceStable(pending, func(i, j int) bool {
		return pending[i].priority.Rank() < pending[j].priority.Rank()
	})

	// Step 4: Available slots become free blocks
	var blocks []*freeBlock
	for _, slot := range constraints.AvailableSlots {
		if slot.Kind != models.SlotAvailable {
			continue
		}
		start := tl.Offset(slot.Start)
		blocks = append(blocks, &freeBlock{start: start, end: start + slot.Minutes()})
	}

	// Step 5: Greedy allocation
	for _, task := range pending {
		for _, block := range visitOrder(tl, blocks, task.period) {
			if task.remaining <= 0 {
				break
			}

			free := block.free()
			if free < constants.MinAllocatableMin {
				continue
			}

			allocate := task.remaining
			if task.canSplit {
				allocate = min(task.remaining, free)
			} else if task.remaining > free {
				continue
			}

			if task.requiresFocus && allocate >= constants.PomodoroWorkMin {
				placePomodoro(tl, block, task, allocate)
			} else {
				placeTask(tl, block, task, allocate)
			}
			task.remaining -= allocate
		}

		if task.remaining == task.duration {
			logger.Debug("task could not be placed", "task", task.title, "duration", task.duration)
		}
	}

	for _, block := range blocks {
		schedule = append(schedule, block.items...)
	}
	models.SortSchedule(schedule, tl)
	return schedule
}

// visitOrder lists blocks overlapping the preferred period first, then the
// rest, each group keeping its original order.
func visitOrder(tl models.Timeline, blocks []*freeBlock, period models.TimePeriod) []*freeBlock {
	if period == models.PeriodNone {
		return blocks
	}

	preferred := make([]*freeBlock, 0, len(blocks))
	var rest []*freeBlock
	for _, b := range blocks {
		if overlapsPeriod(tl, b, period) {
			preferred = append(preferred, b)
		} else {
			rest = append(rest, b)
		}
	}
	return append(preferred, rest...)
}

// overlapsPeriod compares in absolute minutes from the wake day's midnight,
// so a block that runs past midnight is tested against both days' windows.
func overlapsPeriod(tl models.Timeline, b *freeBlock, period models.TimePeriod) bool {
	ps, pe, ok := period.Window()
	if !ok {
		return false
	}
	start := tl.Wake.Minutes() + b.start
	end := tl.Wake.Minutes() + b.end
	for _, shift := range []int{0, constants.MinutesPerDay} {
		if start < pe.Minutes()+shift && end > ps.Minutes()+shift {
			return true
		}
	}
	return false
}

func placeTask(tl models.Timeline, block *freeBlock, task *schedulable, minutes int) {
	block.items = append(block.items, models.ScheduledItem{
		Time:     tl.At(block.start + block.used).String(),
		Duration: minutes,
		Title:    task.title,
		ItemType: models.ItemTask,
		TaskID:   task.id,
	})
	block.used += minutes
}

// placePomodoro expands an allocation into 25-minute work blocks separated by
// short breaks, with a long break after every fourth block. Leftover minutes
// shorter than a work block are not placed.
func placePomodoro(tl models.Timeline, block *freeBlock, task *schedulable, allocate int) {
	emit := func(minutes int, title string, kind models.ItemType, taskID string) {
		block.items = append(block.items, models.ScheduledItem{
			Time:     tl.At(block.start + block.used).String(),
			Duration: minutes,
			Title:    title,
			ItemType: kind,
			TaskID:   taskID,
		})
		block.used += minutes
	}

	remaining := allocate
	cycle := 0
	for remaining >= constants.PomodoroWorkMin {
		task.sessions++
		cycle++
		emit(constants.PomodoroWorkMin,
			fmt.Sprintf("%s (%s #%d)", task.title, constants.PomodoroWorkSuffix, task.sessions),
			models.ItemPomodoroWork, task.id)
		remaining -= constants.PomodoroWorkMin

		switch {
		case cycle == constants.PomodorosPerCycle && remaining >= constants.PomodoroLongBreakMin:
			emit(constants.PomodoroLongBreakMin, constants.PomodoroLongTitle, models.ItemPomodoroLong, "")
			remaining -= constants.PomodoroLongBreakMin
			cycle = 0
		case remaining >= constants.PomodoroBreakMin &&
			remaining < constants.PomodoroWorkMin+constants.PomodoroBreakMin:
			emit(constants.PomodoroBreakMin, constants.PomodoroBreakTitle, models.ItemPomodoroBreak, "")
			return
		case remaining >= constants.PomodoroWorkMin+constants.PomodoroBreakMin:
			emit(constants.PomodoroBreakMin, constants.PomodoroBreakTitle, models.ItemPomodoroBreak, "")
			remaining -= constants.PomodoroBreakMin
		}
	}
}
