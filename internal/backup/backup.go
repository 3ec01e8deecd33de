// Package backup snapshots the sqlite task store before destructive list
// operations such as a forced re-plan or `morrow task clear`.
package backup

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/morrow/internal/constants"
)

const (
	// MaxSnapshots is how many snapshots are kept per database
	MaxSnapshots = 10
	DirName      = "backups"

	filePrefix  = constants.AppName + "-"
	fileSuffix  = ".db"
	stampFormat = "20060102-150405"
)

type Snapshot struct {
	Path      string
	Reason    string
	Timestamp time.Time
	Size      int64
}

// Manager writes snapshots of one sqlite database into a backups directory
// next to it.
type Manager struct {
	dbPath string
	dir    string
	now    func() time.Time
}

func NewManager(dbPath string) *Manager {
	return &Manager{
		dbPath: dbPath,
		dir:    filepath.Join(filepath.Dir(dbPath), DirName),
		now:    time.Now,
	}
}

func (m *Manager) Dir() string {
	return m.dir
}

// Create snapshots the database with VACUUM INTO and prunes old snapshots.
// reason becomes part of the file name, e.g. "morrow-20260302-210000-clear.db".
func (m *Manager) Create(reason string) (string, error) {
	if _, err := os.Stat(m.dbPath); err != nil {
		return "", fmt.Errorf("database does not exist: %s", m.dbPath)
	}
	if err := os.MkdirAll(m.dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	name := filePrefix + m.now().Format(stampFormat)
	if reason = sanitize(reason); reason != "" {
		name += "-" + reason
	}
	path := filepath.Join(m.dir, name+fileSuffix)
	for i := 1; fileExists(path); i++ {
		path = filepath.Join(m.dir, fmt.Sprintf("%s.%d%s", name, i, fileSuffix))
	}

	if err := vacuumInto(m.dbPath, path); err != nil {
		return "", fmt.Errorf("failed to snapshot database: %w", err)
	}
	if err := m.prune(); err != nil {
		return path, fmt.Errorf("snapshot written but pruning failed: %w", err)
	}
	return path, nil
}

func vacuumInto(src, dst string) error {
	db, err := sql.Open("sqlite", src+"?mode=ro")
	if err != nil {
		return err
	}
	defer db.Close()
	_, err = db.Exec("VACUUM INTO ?", dst)
	return err
}

// List returns snapshots newest first. Files that do not follow the naming
// scheme are ignored.
func (m *Manager) List() ([]Snapshot, error) {
	entries, err := os.ReadDir(m.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var snaps []Snapshot
	for _, e := range entries {
		snap, ok := parseName(e.Name())
		if e.IsDir() || !ok {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		snap.Path = filepath.Join(m.dir, e.Name())
		snap.Size = info.Size()
		snaps = append(snaps, snap)
	}
	sort.SliceStable(snaps, func(i, j int) bool {
		if snaps[i].Timestamp.Equal(snaps[j].Timestamp) {
			return snaps[i].Path > snaps[j].Path
		}
		return snaps[i].Timestamp.After(snaps[j].Timestamp)
	})
	return snaps, nil
}

func parseName(name string) (Snapshot, bool) {
	if !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
		return Snapshot{}, false
	}
	rest := strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileSuffix)
	if len(rest) < len(stampFormat) {
		return Snapshot{}, false
	}
	ts, err := time.ParseInLocation(stampFormat, rest[:len(stampFormat)], time.Local)
	if err != nil {
		return Snapshot{}, false
	}
	reason := strings.TrimPrefix(rest[len(stampFormat):], "-")
	if i := strings.LastIndex(reason, "."); i >= 0 {
		reason = reason[:i]
	}
	return Snapshot{Timestamp: ts, Reason: reason}, true
}

func (m *Manager) prune() error {
	snaps, err := m.List()
	if err != nil {
		return err
	}
	for i := MaxSnapshots; i < len(snaps); i++ {
		if err := os.Remove(snaps[i].Path); err != nil {
			return fmt.Errorf("failed to remove old snapshot %s: %w", snaps[i].Path, err)
		}
	}
	return nil
}

// Restore replaces the database with a snapshot after snapshotting the
// current file. The store must be closed.
func (m *Manager) Restore(path string) error {
	if !filepath.IsAbs(path) && filepath.Dir(path) == "." {
		path = filepath.Join(m.dir, path)
	}
	if err := verify(path); err != nil {
		return fmt.Errorf("snapshot %s is not a usable database: %w", path, err)
	}
	if fileExists(m.dbPath) {
		if _, err := m.Create("pre-restore"); err != nil {
			return fmt.Errorf("failed to snapshot current database before restore: %w", err)
		}
	}

	tmp := m.dbPath + ".restore.tmp"
	_ = os.Remove(tmp)
	if err := vacuumInto(path, tmp); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to copy snapshot: %w", err)
	}
	if err := os.Rename(tmp, m.dbPath); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to restore database: %w", err)
	}
	return nil
}

func verify(path string) error {
	if !fileExists(path) {
		return fs.ErrNotExist
	}
	db, err := sql.Open("sqlite", path+"?mode=ro")
	if err != nil {
		return err
	}
	defer db.Close()
	var n int
	return db.QueryRow("SELECT COUNT(*) FROM tasks").Scan(&n)
}

func sanitize(reason string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		case r == ' ' || r == '_':
			return '-'
		}
		return -1
	}, reason)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
