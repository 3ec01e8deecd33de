package plans

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/morrow/internal/cli"
	"github.com/julianstephens/morrow/internal/constants"
	apperrors "github.com/julianstephens/morrow/internal/errors"
	"github.com/julianstephens/morrow/internal/models"
	"github.com/julianstephens/morrow/internal/pipeline"
	"github.com/julianstephens/morrow/internal/tui"
)

type ShowCmd struct {
	Date  string `arg:"" optional:"" help:"Date to show (YYYY-MM-DD, 'today' or 'tomorrow')." default:"tomorrow"`
	Plain bool   `help:"Print the schedule instead of opening the viewer."`
}

// LoadSchedule decodes the schedule written for date from the output list.
func LoadSchedule(ctx *cli.Context, date string) ([]models.PolishedItem, error) {
	list, err := ctx.Store.FindList(ctx.Config.Storage.OutputList)
	if errors.Is(err, apperrors.ErrListNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	tasks, err := ctx.Store.GetTasksDue(list.ID, date)
	if err != nil {
		return nil, err
	}
	var items []models.PolishedItem
	for _, t := range tasks {
		if item, ok := pipeline.DecodeTask(t); ok {
			items = append(items, item)
		}
	}
	return items, nil
}

func (c *ShowCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	date, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}

	items, err := LoadSchedule(ctx, date.Format(constants.DateFormat))
	if err != nil {
		return err
	}

	if c.Plain {
		if len(items) == 0 {
			fmt.Fprintf(ctx.Out, "No schedule for %s.\n", date.Format(constants.DateFormat))
			return nil
		}
		fmt.Fprint(ctx.Out, RenderSchedule(items))
		return nil
	}

	var pending []models.Task
	if source, err := ctx.Store.FindList(ctx.Config.Storage.SourceList); err == nil {
		pending, err = ctx.Store.GetPendingTasks(source.ID)
		if err != nil {
			return err
		}
	}

	p := tea.NewProgram(tui.NewModel(ctx.Store, date, items, pending), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("viewer failed: %w", err)
	}
	return nil
}
