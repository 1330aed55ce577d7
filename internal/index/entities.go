package index

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/aidanlsb/labnotes/internal/model"
	"github.com/aidanlsb/labnotes/internal/paths"
	"github.com/aidanlsb/labnotes/internal/sqlutil"
	"github.com/aidanlsb/labnotes/internal/vault"
)

// ErrNotIndexed indicates the requested path has no row in the mirror.
var ErrNotIndexed = errors.New("entity not found in index")

// Row is the mirrored metadata of one entity.
type Row struct {
	Path     string     `json:"path"`
	Kind     model.Kind `json:"kind"`
	Title    string     `json:"title"`
	Status   string     `json:"status,omitempty"`
	Project  string     `json:"project,omitempty"`
	Idea     string     `json:"idea,omitempty"`
	Tags     []string   `json:"tags"`
	Priority string     `json:"priority,omitempty"`
	Created  string     `json:"created,omitempty"`
	Updated  string     `json:"updated,omitempty"`
	// FileMtime is the metadata file's modification time (Unix seconds).
	FileMtime int64 `json:"file_mtime,omitempty"`
}

// RowFromEntity converts a walked entity into a row.
func RowFromEntity(e *vault.Entity) Row {
	tags := e.Meta.Tags()
	list := tags.List
	if !tags.IsList {
		list = model.SplitTags(tags.Raw)
	}
	if list == nil {
		list = []string{}
	}

	row := Row{
		Path:     e.RelPath,
		Kind:     e.Kind,
		Title:    e.Title(),
		Status:   e.Status(),
		Project:  e.ProjectTitle,
		Idea:     e.IdeaTitle,
		Tags:     list,
		Priority: e.Meta.String("priority"),
		Created:  e.Meta.String("created"),
		Updated:  e.Meta.String("updated"),
	}
	if st, err := os.Stat(e.MetaPath); err == nil {
		row.FileMtime = st.ModTime().Unix()
	}
	return row
}

// Upsert inserts or replaces the row for r.Path.
func (d *Database) Upsert(r Row) error {
	return upsert(d.db, r, time.Now().Unix())
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func upsert(e execer, r Row, indexedAt int64) error {
	tags := r.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return err
	}
	_, err = e.Exec(`
		INSERT OR REPLACE INTO entities
			(path, kind, title, status, project, idea, tags, priority, created, updated, file_mtime, indexed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Path, string(r.Kind), r.Title, nullIfEmpty(r.Status), nullIfEmpty(r.Project), nullIfEmpty(r.Idea),
		string(tagsJSON), nullIfEmpty(r.Priority), nullIfEmpty(r.Created), nullIfEmpty(r.Updated),
		r.FileMtime, indexedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", r.Path, err)
	}
	return nil
}

// Remove deletes the row for a root-relative metadata path.
func (d *Database) Remove(relPath string) error {
	_, err := d.db.Exec(`DELETE FROM entities WHERE path = ?`, relPath)
	return err
}

// RemoveUnder deletes every row below a root-relative directory, which is
// what a deleted project or idea directory leaves behind.
func (d *Database) RemoveUnder(relDir string) (int64, error) {
	relDir = strings.TrimSuffix(relDir, "/")
	res, err := d.db.Exec(`DELETE FROM entities WHERE path LIKE ? ESCAPE '\'`, escapeLike(relDir)+"/%")
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const rowColumns = `path, kind, title, status, project, idea, tags, priority, created, updated, file_mtime`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRow(s rowScanner) (*Row, error) {
	var r Row
	var kind, tags string
	var status, project, idea, priority, created, updated sql.NullString
	var mtime sql.NullInt64
	if err := s.Scan(&r.Path, &kind, &r.Title, &status, &project, &idea, &tags, &priority, &created, &updated, &mtime); err != nil {
		return nil, err
	}
	r.Kind = model.Kind(kind)
	r.Status, r.Project, r.Idea = status.String, project.String, idea.String
	r.Priority, r.Created, r.Updated = priority.String, created.String, updated.String
	r.FileMtime = mtime.Int64
	if err := json.Unmarshal([]byte(tags), &r.Tags); err != nil {
		return nil, fmt.Errorf("decode tags of %s: %w", r.Path, err)
	}
	return &r, nil
}

// Get returns the row for a root-relative metadata path.
func (d *Database) Get(relPath string) (*Row, error) {
	r, err := scanRow(d.db.QueryRow(`SELECT `+rowColumns+` FROM entities WHERE path = ?`, relPath))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotIndexed
	}
	return r, err
}

// List returns the rows of the given kinds ordered by path.
func (d *Database) List(kinds []model.Kind) ([]Row, error) {
	in, args := sqlutil.Placeholders(kinds)
	rows, err := d.db.Query(`SELECT `+rowColumns+` FROM entities WHERE kind IN (`+in+`) ORDER BY path`, args...)
	if err != nil {
		return nil, err
	}
	return sqlutil.ScanRows(rows, func(rows *sql.Rows) (Row, error) {
		r, err := scanRow(rows)
		if err != nil {
			return Row{}, err
		}
		return *r, nil
	})
}

// Rebuild replaces the whole mirror with a fresh walk of v, in one
// transaction. It returns the number of rows written.
func (d *Database) Rebuild(v *vault.Vault) (int, error) {
	lock, err := acquireLock(d.path)
	if err != nil {
		return 0, err
	}
	defer lock.Release()

	entities, err := v.Collect(model.ScopeAll)
	if err != nil {
		return 0, err
	}

	tx, err := d.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM entities`); err != nil {
		return 0, fmt.Errorf("clear entities: %w", err)
	}
	now := time.Now().Unix()
	for _, e := range entities {
		if err := upsert(tx, RowFromEntity(e), now); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(entities), nil
}

// Refresh re-reads the entity whose metadata file is at absPath and updates
// its row, or removes the row when the file is gone. Paths that are not
// project.md, idea.md, or experiment.md files in the expected layout are
// ignored.
func (d *Database) Refresh(v *vault.Vault, absPath string) (bool, error) {
	rel := paths.Rel(v.Root, absPath)
	kind, ok := paths.EntityFromRel(rel)
	if !ok {
		return false, nil
	}
	if _, err := os.Stat(absPath); err != nil {
		if os.IsNotExist(err) {
			return true, d.Remove(rel)
		}
		return false, err
	}
	return true, d.Upsert(RowFromEntity(v.Load(kind, filepath.Dir(absPath))))
}

// Stats summarizes the mirror.
type Stats struct {
	Total    int                           `json:"total"`
	ByKind   map[model.Kind]int            `json:"by_kind"`
	ByStatus map[model.Kind]map[string]int `json:"by_status"`
	// LastIndexed is the most recent indexed_at, zero when empty.
	LastIndexed time.Time `json:"last_indexed,omitempty"`
}

// Statuses returns the statuses recorded for kind in a stable order: the
// kind's vocabulary first, anything else alphabetically after it.
func (s *Stats) Statuses(kind model.Kind) []string {
	counts := s.ByStatus[kind]
	var out []string
	seen := map[string]bool{}
	for _, st := range model.Statuses(kind) {
		if _, ok := counts[st]; ok {
			out = append(out, st)
			seen[st] = true
		}
	}
	var rest []string
	for st := range counts {
		if !seen[st] {
			rest = append(rest, st)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

// Stats returns counts by kind and status.
func (d *Database) Stats() (*Stats, error) {
	stats := &Stats{
		ByKind:   map[model.Kind]int{},
		ByStatus: map[model.Kind]map[string]int{},
	}

	rows, err := d.db.Query(`SELECT kind, COALESCE(status, ''), COUNT(*) FROM entities GROUP BY kind, status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var kind, status string
		var n int
		if err := rows.Scan(&kind, &status, &n); err != nil {
			return nil, err
		}
		k := model.Kind(kind)
		stats.Total += n
		stats.ByKind[k] += n
		if stats.ByStatus[k] == nil {
			stats.ByStatus[k] = map[string]int{}
		}
		stats.ByStatus[k][status] += n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var last sql.NullInt64
	if err := d.db.QueryRow(`SELECT MAX(indexed_at) FROM entities`).Scan(&last); err != nil {
		return nil, err
	}
	if last.Valid {
		stats.LastIndexed = time.Unix(last.Int64, 0)
	}
	return stats, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
