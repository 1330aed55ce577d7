package index

import (
	"errors"
	"fmt"
	"os"
	"time"
)

// BackupPath returns where Backup writes the copy of the database file.
func (d *Database) BackupPath() string {
	if d.path == "" {
		return ""
	}
	return d.path + ".bak"
}

// Backup snapshots the database to BackupPath when the existing snapshot is
// older than interval (or missing). It reports whether a snapshot was taken.
func (d *Database) Backup(interval time.Duration, now time.Time) (bool, error) {
	bak := d.BackupPath()
	if bak == "" {
		return false, nil
	}

	st, err := os.Stat(bak)
	switch {
	case err == nil:
		if now.Sub(st.ModTime()) < interval {
			return false, nil
		}
		if err := os.Remove(bak); err != nil {
			return false, fmt.Errorf("remove old backup: %w", err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return false, err
	}

	// VACUUM INTO writes a consistent copy even with a WAL in use.
	if _, err := d.db.Exec(`VACUUM INTO ?`, bak); err != nil {
		return false, fmt.Errorf("backup database: %w", err)
	}
	return true, nil
}
