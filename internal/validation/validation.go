package validation

import (
	"fmt"
	"strings"

	"github.com/julianstephens/morrow/internal/constants"
	"github.com/julianstephens/morrow/internal/logger"
	"github.com/julianstephens/morrow/internal/models"
)

// IssueCode identifies the kind of problem found in a schedule
type IssueCode string

const (
	// Errors
	CodeTimeOverlap       IssueCode = "time_overlap"
	CodeExceedsDayBounds  IssueCode = "exceeds_day_bounds"
	CodeInvalidTimeFormat IssueCode = "invalid_time_format"
	CodeNegativeDuration  IssueCode = "negative_duration"

	// Warnings
	CodeTaskNotScheduled IssueCode = "task_not_scheduled"
	CodeLongWorkBlock    IssueCode = "long_work_block"
	CodeLateNightTask    IssueCode = "late_night_task"
)

// Warning is an informational finding that does not affect validity
type Warning struct {
	Code    IssueCode `json:"code"`
	Message string    `json:"message"`
}

// Error is a structural violation. AffectedItems holds schedule indices.
type Error struct {
	Code          IssueCode `json:"code"`
	Message       string    `json:"message"`
	AffectedItems []int     `json:"affected_items"`
}

// ValidationResult contains all findings for one schedule
type ValidationResult struct {
	IsValid  bool      `json:"is_valid"`
	Warnings []Warning `json:"warnings"`
	Errors   []Error   `json:"errors"`
}

// FixAction represents an action taken during auto-fix
type FixAction struct {
	Action string
}

func (vr *ValidationResult) HasErrors() bool {
	return len(vr.Errors) > 0
}

// CountErrors returns how many errors carry the given code
func (vr *ValidationResult) CountErrors(code IssueCode) int {
	n := 0
	for _, e := range vr.Errors {
		if e.Code == code {
			n++
		}
	}
	return n
}

// CountWarnings returns how many warnings carry the given code
func (vr *ValidationResult) CountWarnings(code IssueCode) int {
	n := 0
	for _, w := range vr.Warnings {
		if w.Code == code {
			n++
		}
	}
	return n
}

// FormatReport returns a human-readable report of all findings
func (vr *ValidationResult) FormatReport() string {
	if len(vr.Errors) == 0 && len(vr.Warnings) == 0 {
		return "No problems detected."
	}

	var b strings.Builder
	if len(vr.Errors) > 0 {
		b.WriteString("Errors:\n")
		for _, e := range vr.Errors {
			fmt.Fprintf(&b, "- %s\n", e.Message)
		}
	}
	if len(vr.Warnings) > 0 {
		b.WriteString("Warnings:\n")
		for _, w := range vr.Warnings {
			fmt.Fprintf(&b, "- %s\n", w.Message)
		}
	}
	return b.String()
}

// Validator checks generated schedules against the day's bounds
type Validator struct{}

// New creates a new Validator
func New() *Validator {
	return &Validator{}
}

// span is an item resolved onto the timeline. ok is false when the item's
// time is unparseable or its duration is not positive.
type span struct {
	start int
	end   int
	ok    bool
}

func resolve(tl models.Timeline, item models.ScheduledItem) span {
	t, err := item.Start()
	if err != nil || item.Duration <= 0 {
		return span{}
	}
	start := tl.Offset(t)
	return span{start: start, end: start + item.Duration, ok: true}
}

func (a span) overlaps(b span) bool {
	return a.ok && b.ok && a.start < b.end && b.start < a.end
}

// Validate runs every check against the schedule without modifying it.
func (v *Validator) Validate(
	schedule []models.ScheduledItem,
	constraints models.DayConstraints,
	tasks []models.PreprocessedTask,
) ValidationResult {
	tl := constraints.Timeline()
	spans := make([]span, len(schedule))
	for i, item := range schedule {
		spans[i] = resolve(tl, item)
	}

	result := ValidationResult{Warnings: []Warning{}, Errors: []Error{}}

	// Check for overlapping items
	for i := 0; i < len(schedule); i++ {
		for j := i + 1; j < len(schedule); j++ {
			if spans[i].overlaps(spans[j]) {
				result.Errors = append(result.Errors, Error{
					Code: CodeTimeOverlap,
					Message: fmt.Sprintf("Time overlap between \"%s\" at %s and \"%s\" at %s",
						schedule[i].Title, schedule[i].Time, schedule[j].Title, schedule[j].Time),
					AffectedItems: []int{i, j},
				})
			}
		}
	}

	// Check day bounds
	daySpan := tl.Span()
	for i, s := range spans {
		if !s.ok {
			continue
		}
		item := schedule[i]
		switch {
		case s.start >= daySpan:
			result.Errors = append(result.Errors, Error{
				Code: CodeExceedsDayBounds,
				Message: fmt.Sprintf("\"%s\" starts at %s which is outside the waking window %s-%s",
					item.Title, item.Time, tl.Wake, tl.Sleep),
				AffectedItems: []int{i},
			})
		case s.end > daySpan:
			result.Errors = append(result.Errors, Error{
				Code: CodeExceedsDayBounds,
				Message: fmt.Sprintf("\"%s\" ends at %s which is past sleep time %s",
					item.Title, tl.At(s.end), tl.Sleep),
				AffectedItems: []int{i},
			})
		}
	}

	// Check every task was scheduled
	scheduled := make(map[string]bool)
	for _, item := range schedule {
		if item.TaskID != "" {
			scheduled[item.TaskID] = true
		}
	}
	for _, task := range tasks {
		if !scheduled[task.ID] {
			result.Warnings = append(result.Warnings, Warning{
				Code:    CodeTaskNotScheduled,
				Message: fmt.Sprintf("Task \"%s\" was not scheduled", task.Title),
			})
		}
	}

	result.Warnings = append(result.Warnings, checkWorkBlocks(tl, schedule)...)

	// Check for work close to sleep time
	lateFrom := daySpan - constants.LateNightWindowMin
	for i, s := range spans {
		if s.ok && schedule[i].ItemType.IsWork() && s.start >= lateFrom && s.start < daySpan {
			result.Warnings = append(result.Warnings, Warning{
				Code:    CodeLateNightTask,
				Message: fmt.Sprintf("\"%s\" at %s is scheduled close to sleep time", schedule[i].Title, schedule[i].Time),
			})
		}
	}

	// Check formats
	for i, item := range schedule {
		if _, err := item.Start(); err != nil {
			result.Errors = append(result.Errors, Error{
				Code:          CodeInvalidTimeFormat,
				Message:       fmt.Sprintf("Invalid time format \"%s\" for \"%s\"", item.Time, item.Title),
				AffectedItems: []int{i},
			})
		}
		if item.Duration <= 0 {
			result.Errors = append(result.Errors, Error{
				Code:          CodeNegativeDuration,
				Message:       fmt.Sprintf("Non-positive duration (%d) for \"%s\"", item.Duration, item.Title),
				AffectedItems: []int{i},
			})
		}
	}

	result.IsValid = len(result.Errors) == 0
	return result
}

// checkWorkBlocks walks the schedule in time order accumulating work minutes
// across items that follow each other closely. Breaks and fixed activities
// reset the count.
func checkWorkBlocks(tl models.Timeline, schedule []models.ScheduledItem) []Warning {
	sorted := make([]models.ScheduledItem, len(schedule))
	copy(sorted, schedule)
	models.SortSchedule(sorted, tl)

	var warnings []Warning
	accumulated := 0
	lastEnd := -1
	for _, item := range sorted {
		s := resolve(tl, item)
		if !s.ok {
			continue
		}

		continuous := lastEnd >= 0 && s.start-lastEnd < constants.ContinuityGapMin
		switch {
		case item.ItemType.IsWork():
			if continuous {
				accumulated += item.Duration
			} else {
				accumulated = item.Duration
			}
			if accumulated > constants.MaxContinuousWorkMin {
				warnings = append(warnings, Warning{
					Code: CodeLongWorkBlock,
					Message: fmt.Sprintf("Work block exceeds %d minutes without a break, ending with \"%s\"",
						constants.MaxContinuousWorkMin, item.Title),
				})
				accumulated = 0
			}
		case item.ItemType.IsBreak():
			accumulated = 0
		}
		lastEnd = s.end
	}
	return warnings
}

// AutoFix makes one pass over the schedule: it sorts items, pushes each
// overlapping item to the end of the one before it, and drops items that can
// no longer fit before sleep. It returns the repaired schedule and the actions
// taken. A single pass may leave errors behind; callers must validate again.
func (v *Validator) AutoFix(schedule []models.ScheduledItem, constraints models.DayConstraints) ([]models.ScheduledItem, []FixAction) {
	tl := constraints.Timeline()
	daySpan := tl.Span()
	actions := []FixAction{}

	models.SortSchedule(schedule, tl)

	i := 0
	for i < len(schedule)-1 {
		prev := resolve(tl, schedule[i])
		next := resolve(tl, schedule[i+1])
		if !prev.overlaps(next) {
			i++
			continue
		}

		if prev.end < daySpan {
			newTime := tl.At(prev.end).String()
			actions = append(actions, FixAction{
				Action: fmt.Sprintf("Shifted \"%s\" from %s to %s", schedule[i+1].Title, schedule[i+1].Time, newTime),
			})
			schedule[i+1].Time = newTime
			i++
			continue
		}

		// No room left before sleep; re-check the same position afterwards.
		actions = append(actions, FixAction{
			Action: fmt.Sprintf("Removed \"%s\" at %s: does not fit in schedule", schedule[i+1].Title, schedule[i+1].Time),
		})
		schedule = append(schedule[:i+1], schedule[i+2:]...)
	}

	kept := schedule[:0]
	for _, item := range schedule {
		if s := resolve(tl, item); s.ok && s.end > daySpan {
			actions = append(actions, FixAction{
				Action: fmt.Sprintf("Removed \"%s\" at %s: exceeds sleep time", item.Title, item.Time),
			})
			continue
		}
		kept = append(kept, item)
	}

	for _, a := range actions {
		logger.Debug("auto-fix", "action", a.Action)
	}
	return kept, actions
}
