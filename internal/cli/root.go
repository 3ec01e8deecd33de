package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/julianstephens/morrow/internal/backup"
	"github.com/julianstephens/morrow/internal/config"
	"github.com/julianstephens/morrow/internal/constants"
	apperrors "github.com/julianstephens/morrow/internal/errors"
	"github.com/julianstephens/morrow/internal/estimator"
	"github.com/julianstephens/morrow/internal/keyring"
	"github.com/julianstephens/morrow/internal/llm"
	"github.com/julianstephens/morrow/internal/logger"
	"github.com/julianstephens/morrow/internal/models"
	"github.com/julianstephens/morrow/internal/pipeline"
	"github.com/julianstephens/morrow/internal/polisher"
	"github.com/julianstephens/morrow/internal/storage"
	"github.com/julianstephens/morrow/internal/utils"
)

type Context struct {
	ConfigPath string
	Config     *config.Config
	Store      storage.Provider
	Out        io.Writer
}

// NewContext loads the config at path and opens (without loading) its store.
func NewContext(path string) (*Context, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	store, err := OpenStore(cfg)
	if err != nil {
		return nil, err
	}
	return &Context{ConfigPath: path, Config: cfg, Store: store, Out: os.Stdout}, nil
}

// OpenStore resolves storage.database. MORROW_DB_CONNECTION wins, then the
// literal "keyring" selects the stored connection string, otherwise the value
// is a sqlite path or a password-free PostgreSQL URL.
func OpenStore(cfg *config.Config) (storage.Provider, error) {
	if conn := os.Getenv(constants.EnvDBConnection); conn != "" {
		return storage.Open(conn, true)
	}
	if cfg.Storage.Database == constants.KeyringDatabase {
		conn, err := keyring.GetConnectionString()
		if err != nil {
			return nil, fmt.Errorf("read connection string from keyring: %w", err)
		}
		return storage.Open(conn, true)
	}
	store, err := storage.Open(config.ExpandHome(cfg.Storage.Database), false)
	if errors.Is(err, storage.ErrEmbeddedCredentials) {
		return nil, fmt.Errorf("%w: store it with 'morrow auth set-db' and set storage.database to %q, or export %s",
			err, constants.KeyringDatabase, constants.EnvDBConnection)
	}
	return store, err
}

// Planner builds a pipeline from the loaded config. Without an API key it
// falls back to offline planning.
func (c *Context) Planner(offline bool) (*pipeline.Pipeline, error) {
	prefs := c.Config.Preferences
	p := pipeline.New(prefs.Map(), prefs.Bio, nil, nil)
	if offline {
		return p, nil
	}

	apiKey, err := keyring.ResolveAPIKey()
	if err != nil {
		logger.Warn("planning offline", "reason", apperrors.ErrMissingAPIKey, "error", err)
		return p, nil
	}

	format, err := llm.ParseAPIFormat(c.Config.LLM.APIFormat)
	if err != nil {
		return nil, err
	}
	client, err := llm.New(llm.Config{
		Format:            format,
		BaseURL:           c.Config.LLM.BaseURL,
		Model:             c.Config.LLM.Model,
		APIKey:            apiKey,
		RequestsPerMinute: c.Config.LLM.RequestsPerMinute,
		Timeout:           c.Config.LLM.Timeout(),
	})
	if err != nil {
		return nil, err
	}
	p.Estimator = estimator.New(client)
	p.Polisher = polisher.New(client)
	return p, nil
}

// Snapshot backs up a sqlite store before a destructive list operation. It
// returns "" for stores it cannot snapshot.
func (c *Context) Snapshot(reason string) (string, error) {
	db, ok := c.Store.(*storage.SQLiteStore)
	if !ok {
		logger.Debug("snapshot skipped for non-sqlite store", "reason", reason)
		return "", nil
	}
	path, err := backup.NewManager(db.GetConfigPath()).Create(reason)
	if err != nil {
		return "", err
	}
	logger.Info("database snapshot written", "path", path, "reason", reason)
	return path, nil
}

// Tomorrow returns midnight of the next day in the configured timezone.
func (c *Context) Tomorrow() (time.Time, error) {
	return utils.TomorrowInTimezone(c.Config.Timezone)
}

type PlanOptions struct {
	Date    time.Time
	Offline bool
	DryRun  bool
	Force   bool
}

type PlanOutcome struct {
	Date    time.Time
	Sources []models.Task
	Result  *pipeline.Result // nil when there was nothing to plan
	Written int
}

// Plan reads the pending source tasks, runs the pipeline for opts.Date and,
// unless DryRun is set, writes the schedule to the output list.
func (c *Context) Plan(ctx context.Context, opts PlanOptions) (*PlanOutcome, error) {
	if err := c.Store.Load(); err != nil {
		return nil, err
	}

	out := &PlanOutcome{Date: opts.Date}
	source, err := c.Store.FindList(c.Config.Storage.SourceList)
	if err != nil {
		if errors.Is(err, apperrors.ErrListNotFound) {
			return out, nil
		}
		return nil, err
	}
	out.Sources, err = c.Store.GetPendingTasks(source.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to read source tasks: %w", err)
	}
	if len(out.Sources) == 0 {
		return out, nil
	}

	// Fail before spending LLM calls on a plan that cannot be written
	if !opts.DryRun && !opts.Force {
		output, err := c.Store.EnsureList(c.Config.Storage.OutputList)
		if err != nil {
			return nil, err
		}
		busy, err := c.Store.HasIncompleteTasks(output.ID)
		if err != nil {
			return nil, err
		}
		if busy {
			return nil, fmt.Errorf("%w (list %q)", apperrors.ErrOutputListNotEmpty, c.Config.Storage.OutputList)
		}
	}

	planner, err := c.Planner(opts.Offline)
	if err != nil {
		return nil, err
	}
	raw := make([]models.RawTask, len(out.Sources))
	for i, t := range out.Sources {
		raw[i] = t.Raw()
	}
	out.Result, err = planner.Execute(ctx, raw, opts.Date)
	if err != nil {
		return nil, err
	}

	if opts.DryRun {
		return out, nil
	}
	if opts.Force {
		if err := c.snapshotIfBusy(c.Config.Storage.OutputList, "force-plan"); err != nil {
			return out, err
		}
	}
	out.Written, err = pipeline.Publish(c.Store, c.Config.Storage.OutputList, opts.Date, out.Result.Polished, opts.Force)
	if err != nil {
		return out, err
	}
	logger.Info("schedule written", "list", c.Config.Storage.OutputList, "items", out.Written, "date", opts.Date.Format(constants.DateFormat))
	return out, nil
}

func (c *Context) snapshotIfBusy(listName, reason string) error {
	list, err := c.Store.FindList(listName)
	if errors.Is(err, apperrors.ErrListNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	busy, err := c.Store.HasIncompleteTasks(list.ID)
	if err != nil || !busy {
		return err
	}
	if _, err := c.Snapshot(reason); err != nil {
		return fmt.Errorf("refusing to replace %q without a snapshot: %w", listName, err)
	}
	return nil
}

// ResolveDate accepts "tomorrow" (or empty), "today" or YYYY-MM-DD, all in
// the configured timezone.
func (c *Context) ResolveDate(s string) (time.Time, error) {
	loc, err := utils.LoadLocation(c.Config.Timezone)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timezone %q: %w", c.Config.Timezone, err)
	}
	switch s {
	case "", "tomorrow":
		return utils.DayAfter(time.Now().In(loc)), nil
	case "today":
		return utils.DayAfter(time.Now().In(loc)).AddDate(0, 0, -1), nil
	}
	d, err := utils.ParseDateInLocation(s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format, use YYYY-MM-DD, 'today' or 'tomorrow': %w", err)
	}
	return d, nil
}
