package tasks

import (
	"fmt"
	"strings"

	"github.com/julianstephens/morrow/internal/cli"
	"github.com/julianstephens/morrow/internal/models"
	"github.com/julianstephens/morrow/internal/preprocess"
)

type TaskAddCmd struct {
	Title string `arg:"" help:"Task title, e.g. '写报告'."`
	Notes string `short:"n" help:"Free-text notes: duration, priority or time hints such as 'urgent, 2 hours, afternoon'."`
	List  string `short:"l" help:"Task list (defaults to the configured source list)."`
}

func (c *TaskAddCmd) Validate() error {
	if strings.TrimSpace(c.Title) == "" {
		return fmt.Errorf("title cannot be empty")
	}
	return nil
}

func (c *TaskAddCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	listName := listOrSource(ctx, c.List)
	list, err := ctx.Store.EnsureList(listName)
	if err != nil {
		return err
	}

	task, err := ctx.Store.AddTask(models.Task{ListID: list.ID, Title: c.Title, Notes: c.Notes})
	if err != nil {
		return fmt.Errorf("failed to add task: %w", err)
	}

	fmt.Fprintf(ctx.Out, "Added %q to %q (ID: %s)\n", task.Title, listName, task.ID)
	if hints := describeHints(preprocess.Hints(c.Title + " " + c.Notes)); hints != "" {
		fmt.Fprintf(ctx.Out, "  %s\n", cli.DimStyle.Render("detected: "+hints))
	}
	return nil
}

type TaskListCmd struct {
	List    string `short:"l" help:"Task list (defaults to the configured source list)."`
	All     bool   `short:"a" help:"Include completed tasks."`
	ShowIDs bool   `help:"Show task IDs." name:"show-ids"`
}

func (c *TaskListCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	listName := listOrSource(ctx, c.List)
	list, err := ctx.Store.FindList(listName)
	if err != nil {
		return err
	}

	var tasks []models.Task
	if c.All {
		tasks, err = ctx.Store.GetTasks(list.ID)
	} else {
		tasks, err = ctx.Store.GetPendingTasks(list.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to get tasks: %w", err)
	}
	if len(tasks) == 0 {
		fmt.Fprintf(ctx.Out, "No tasks in %q\n", listName)
		return nil
	}

	fmt.Fprintf(ctx.Out, "%s\n", cli.TitleStyle.Render(listName))
	for _, task := range tasks {
		mark := "[ ]"
		if task.Status == models.TaskStatusCompleted {
			mark = "[x]"
		}
		idStr := ""
		if c.ShowIDs {
			idStr = fmt.Sprintf(" (ID: %s)", task.ID)
		}
		fmt.Fprintf(ctx.Out, "  %s %s%s\n", mark, task.Title, idStr)
		if task.Notes != "" {
			for _, line := range strings.Split(task.Notes, "\n") {
				fmt.Fprintf(ctx.Out, "      %s\n", cli.DimStyle.Render(line))
			}
		}
	}
	return nil
}

type TaskDoneCmd struct {
	ID string `arg:"" help:"Task ID (see 'morrow task list --show-ids')."`
}

func (c *TaskDoneCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	if err := ctx.Store.CompleteTask(c.ID); err != nil {
		return err
	}
	fmt.Fprintf(ctx.Out, "Completed task %s\n", c.ID)
	return nil
}

type TaskClearCmd struct {
	List     string `short:"l" help:"Task list (defaults to the configured output list)."`
	NoBackup bool   `help:"Skip the database snapshot taken before clearing." name:"no-backup"`
}

func (c *TaskClearCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	listName := c.List
	if listName == "" {
		listName = ctx.Config.Storage.OutputList
	}
	list, err := ctx.Store.FindList(listName)
	if err != nil {
		return err
	}
	if !c.NoBackup {
		path, err := ctx.Snapshot("clear")
		if err != nil {
			return fmt.Errorf("failed to snapshot before clearing: %w", err)
		}
		if path != "" {
			fmt.Fprintf(ctx.Out, "%s\n", cli.DimStyle.Render("snapshot: "+path))
		}
	}
	n, err := ctx.Store.ClearList(list.ID)
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.Out, "Removed %d tasks from %q\n", n, listName)
	return nil
}

func listOrSource(ctx *cli.Context, name string) string {
	if name != "" {
		return name
	}
	return ctx.Config.Storage.SourceList
}

func describeHints(h models.TimeHint) string {
	var parts []string
	if h.Priority != models.PriorityNormal {
		parts = append(parts, "priority "+string(h.Priority))
	}
	if h.DurationHint != nil {
		parts = append(parts, fmt.Sprintf("%d min", *h.DurationHint))
	}
	if h.TimePeriod != models.PeriodNone {
		parts = append(parts, string(h.TimePeriod))
	}
	if h.PreferredStart != nil {
		parts = append(parts, "at "+h.PreferredStart.String())
	}
	return strings.Join(parts, ", ")
}
