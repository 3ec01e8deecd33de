package system

import (
	"errors"
	"fmt"

	"github.com/julianstephens/morrow/internal/backup"
	"github.com/julianstephens/morrow/internal/cli"
	"github.com/julianstephens/morrow/internal/storage"
)

var errNoSnapshots = errors.New("snapshots are only taken for sqlite stores")

func backupManager(ctx *cli.Context) (*backup.Manager, error) {
	db, ok := ctx.Store.(*storage.SQLiteStore)
	if !ok {
		return nil, errNoSnapshots
	}
	return backup.NewManager(db.GetConfigPath()), nil
}

type BackupCreateCmd struct{}

func (c *BackupCreateCmd) Run(ctx *cli.Context) error {
	path, err := ctx.Snapshot("manual")
	if err != nil {
		return err
	}
	if path == "" {
		return errNoSnapshots
	}
	fmt.Fprintln(ctx.Out, cli.OKStyle.Render("✓ Snapshot written to "+path))
	return nil
}

type BackupListCmd struct{}

func (c *BackupListCmd) Run(ctx *cli.Context) error {
	mgr, err := backupManager(ctx)
	if err != nil {
		return err
	}
	snaps, err := mgr.List()
	if err != nil {
		return err
	}
	if len(snaps) == 0 {
		fmt.Fprintf(ctx.Out, "No snapshots in %s\n", mgr.Dir())
		return nil
	}

	fmt.Fprintf(ctx.Out, "Snapshots in %s (keeping %d):\n", mgr.Dir(), backup.MaxSnapshots)
	for _, s := range snaps {
		reason := s.Reason
		if reason == "" {
			reason = "-"
		}
		fmt.Fprintf(ctx.Out, "  %s  %-12s %6.1f KB  %s\n",
			s.Timestamp.Format("2006-01-02 15:04:05"), reason, float64(s.Size)/1024, cli.DimStyle.Render(s.Path))
	}
	return nil
}

type BackupRestoreCmd struct {
	Snapshot string `arg:"" help:"Snapshot file name or path (see 'morrow backup list')."`
}

func (c *BackupRestoreCmd) Run(ctx *cli.Context) error {
	mgr, err := backupManager(ctx)
	if err != nil {
		return err
	}
	if err := ctx.Store.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	if err := mgr.Restore(c.Snapshot); err != nil {
		return err
	}
	fmt.Fprintln(ctx.Out, cli.OKStyle.Render("✓ Restored "+c.Snapshot))
	return nil
}
