package plans

import (
	"fmt"
	"strings"

	"github.com/julianstephens/morrow/internal/cli"
	"github.com/julianstephens/morrow/internal/constants"
	"github.com/julianstephens/morrow/internal/models"
	"github.com/julianstephens/morrow/internal/pipeline"
	"github.com/julianstephens/morrow/internal/tui/components/schedule"
)

// RenderSchedule formats items one per line with their suggestion below.
func RenderSchedule(items []models.PolishedItem) string {
	var b strings.Builder
	for _, item := range items {
		fmt.Fprintf(&b, "  %s  %s\n", cli.TimeStyle.Render(fmt.Sprintf("%-13s", schedule.Span(item))), item.Title)
		if item.Suggestion != "" {
			fmt.Fprintf(&b, "  %s  %s\n", strings.Repeat(" ", 13), cli.DimStyle.Render(item.Suggestion))
		}
	}
	return b.String()
}

// RenderResult formats a full planning run.
func RenderResult(res *pipeline.Result) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n\n", cli.TitleStyle.Render(fmt.Sprintf("Schedule for %s (%s)",
		res.Date.Format(constants.DateFormat), res.Date.Weekday())))
	b.WriteString(RenderSchedule(res.Polished))

	if res.EstimateErr != nil {
		fmt.Fprintf(&b, "\n%s\n", cli.WarnStyle.Render("Estimates fell back to heuristics: "+res.EstimateErr.Error()))
	}
	if res.PolishErr != nil {
		fmt.Fprintf(&b, "%s\n", cli.WarnStyle.Render("Titles were not polished: "+res.PolishErr.Error()))
	}
	for _, fix := range res.Fixes {
		fmt.Fprintf(&b, "%s\n", cli.DimStyle.Render("auto-fix: "+fix.Action))
	}
	if len(res.Validation.Errors) > 0 || len(res.Validation.Warnings) > 0 {
		fmt.Fprintf(&b, "\n%s\n", res.Validation.FormatReport())
	}

	s := res.Stats
	fmt.Fprintf(&b, "\nScheduled %d/%d tasks, %d of %d available minutes, %d pomodoro sessions\n",
		s.ScheduledTasks, s.TotalTasks, s.ScheduledMinutes, s.AvailableMinutes, s.PomodoroSessions)
	return b.String()
}
