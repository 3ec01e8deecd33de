package plans

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/morrow/internal/cli"
	"github.com/julianstephens/morrow/internal/constants"
	apperrors "github.com/julianstephens/morrow/internal/errors"
)

type PlanCmd struct {
	Date     string `arg:"" optional:"" help:"Date to plan (YYYY-MM-DD, 'today' or 'tomorrow')." default:"tomorrow"`
	Offline  bool   `help:"Skip the LLM and plan with heuristic estimates."`
	DryRun   bool   `help:"Print the schedule without writing it to the output list." name:"dry-run"`
	Force    bool   `help:"Replace an output list that still has incomplete items."`
	NoPrompt bool   `help:"Never ask for confirmation." name:"no-prompt"`
}

func (c *PlanCmd) Run(ctx *cli.Context) error {
	date, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts := cli.PlanOptions{Date: date, Offline: c.Offline, DryRun: c.DryRun, Force: c.Force}
	outcome, err := ctx.Plan(runCtx, opts)
	if errors.Is(err, apperrors.ErrOutputListNotEmpty) && !c.NoPrompt {
		var replace bool
		confirm := huh.NewConfirm().
			Title(fmt.Sprintf("%q still has incomplete items. Replace them?", ctx.Config.Storage.OutputList)).
			Value(&replace)
		if cerr := confirm.Run(); cerr == nil && replace {
			opts.Force = true
			outcome, err = ctx.Plan(runCtx, opts)
		}
	}
	if err != nil {
		return err
	}

	if outcome.Result == nil {
		fmt.Fprintf(ctx.Out, "No tasks found in %q. Nothing to plan.\n", ctx.Config.Storage.SourceList)
		return nil
	}

	fmt.Fprint(ctx.Out, RenderResult(outcome.Result))
	if c.DryRun {
		fmt.Fprintln(ctx.Out, cli.DimStyle.Render("Dry run: nothing was written."))
	} else {
		fmt.Fprintln(ctx.Out, cli.OKStyle.Render(fmt.Sprintf("✓ Wrote %d items to %q for %s",
			outcome.Written, ctx.Config.Storage.OutputList, date.Format(constants.DateFormat))))
	}
	return nil
}
