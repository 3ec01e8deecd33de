package system

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/robfig/cron/v3"

	"github.com/julianstephens/morrow/internal/cli"
	"github.com/julianstephens/morrow/internal/config"
	"github.com/julianstephens/morrow/internal/constants"
	apperrors "github.com/julianstephens/morrow/internal/errors"
	"github.com/julianstephens/morrow/internal/logger"
	"github.com/julianstephens/morrow/internal/utils"
)

type DaemonCmd struct {
	Offline bool `help:"Plan without the LLM."`
	RunNow  bool `help:"Plan once immediately before waiting for the schedule." name:"run-now"`
}

func (c *DaemonCmd) Run(ctx *cli.Context) error {
	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d := NewDaemon(ctx, c.Offline)
	fmt.Fprintf(ctx.Out, "morrow daemon: planning on %q (%s), Ctrl+C to stop\n", ctx.Config.Daemon.Cron, ctx.Config.Timezone)
	return d.Run(runCtx, c.RunNow)
}

// Daemon plans tomorrow on a cron schedule and follows config file edits.
type Daemon struct {
	base    *cli.Context
	offline bool
	parser  cron.Parser

	mu   sync.Mutex
	cfg  *config.Config
	cron *cron.Cron

	// plan runs one planning pass; replaced in tests
	plan func(ctx context.Context, c *cli.Context) error
}

func NewDaemon(ctx *cli.Context, offline bool) *Daemon {
	d := &Daemon{
		base:    ctx,
		offline: offline,
		parser:  cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
		cfg:     ctx.Config,
	}
	d.plan = d.planTomorrow
	return d
}

func (d *Daemon) planTomorrow(ctx context.Context, c *cli.Context) error {
	date, err := c.Tomorrow()
	if err != nil {
		return err
	}
	outcome, err := c.Plan(ctx, cli.PlanOptions{Date: date, Offline: d.offline})
	if err != nil {
		return err
	}
	if outcome.Result == nil {
		logger.Info("daemon: nothing to plan", "date", date.Format(constants.DateFormat))
		return nil
	}
	logger.Info("daemon: planned",
		"date", date.Format(constants.DateFormat),
		"items", outcome.Written,
		"scheduled_tasks", outcome.Result.Stats.ScheduledTasks)
	return nil
}

// context returns a copy of the base context bound to the current config.
func (d *Daemon) context() *cli.Context {
	d.mu.Lock()
	defer d.mu.Unlock()
	c := *d.base
	c.Config = d.cfg
	return &c
}

// RunOnce plans tomorrow. Failures are logged and returned.
func (d *Daemon) RunOnce(ctx context.Context) error {
	err := d.plan(ctx, d.context())
	switch {
	case err == nil:
	case errors.Is(err, apperrors.ErrOutputListNotEmpty):
		logger.Warn("daemon: output list busy, skipping run", "error", err)
	default:
		logger.Error("daemon: planning failed", "error", err)
	}
	return err
}

// startLocked builds a cron for the current config. Callers hold d.mu.
func (d *Daemon) startLocked(ctx context.Context) error {
	loc, err := utils.LoadLocation(d.cfg.Timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", d.cfg.Timezone, err)
	}
	sched, err := d.parser.Parse(d.cfg.Daemon.Cron)
	if err != nil {
		return fmt.Errorf("invalid daemon cron %q: %w", d.cfg.Daemon.Cron, err)
	}

	c := cron.New(cron.WithParser(d.parser), cron.WithLocation(loc),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	c.Schedule(sched, cron.FuncJob(func() { _ = d.RunOnce(ctx) }))
	c.Start()
	d.cron = c
	logger.Info("daemon: scheduled", "cron", d.cfg.Daemon.Cron, "timezone", d.cfg.Timezone)
	return nil
}

// stop halts the cron and waits for a running job to finish.
func (d *Daemon) stop() {
	d.mu.Lock()
	c := d.cron
	d.cron = nil
	d.mu.Unlock()
	if c != nil {
		<-c.Stop().Done()
	}
}

// Apply swaps in a reloaded config and reschedules when the cron
// expression or timezone changed. An invalid new schedule keeps the old one.
func (d *Daemon) Apply(ctx context.Context, cfg *config.Config) {
	d.mu.Lock()
	defer d.mu.Unlock()

	old := d.cfg
	if cfg.Storage.Database != old.Storage.Database {
		logger.Warn("daemon: storage.database changed, restart the daemon to use it")
	}
	d.cfg = cfg
	if cfg.Daemon.Cron == old.Daemon.Cron && cfg.Timezone == old.Timezone {
		logger.Info("daemon: configuration reloaded")
		return
	}

	prev := d.cron
	d.cron = nil
	if err := d.startLocked(ctx); err != nil {
		logger.Error("daemon: keeping previous schedule", "error", err)
		kept := *cfg
		kept.Timezone = old.Timezone
		kept.Daemon = old.Daemon
		d.cfg = &kept
		d.cron = prev
		return
	}
	if prev != nil {
		prev.Stop()
	}
}

// Next returns the next scheduled run, if any.
func (d *Daemon) Next() (entry cron.Entry, ok bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cron == nil {
		return cron.Entry{}, false
	}
	entries := d.cron.Entries()
	if len(entries) == 0 {
		return cron.Entry{}, false
	}
	return entries[0], true
}

// Run blocks until ctx is cancelled.
func (d *Daemon) Run(ctx context.Context, runNow bool) error {
	d.mu.Lock()
	err := d.startLocked(ctx)
	d.mu.Unlock()
	if err != nil {
		return err
	}
	defer d.stop()

	watchErr := make(chan error, 1)
	go func() {
		watchErr <- config.Watch(ctx, d.base.ConfigPath, func(cfg *config.Config) { d.Apply(ctx, cfg) })
	}()

	if runNow {
		_ = d.RunOnce(ctx)
	}

	select {
	case <-ctx.Done():
		return nil
	case err := <-watchErr:
		if err != nil {
			logger.Warn("daemon: config watcher stopped, reload disabled", "error", err)
		}
		<-ctx.Done()
		return nil
	}
}
