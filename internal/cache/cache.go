// Package cache persists the last-synced entity snapshot to a local
// sqlite file so listings keep working when the remote is unreachable.
// The cache is a dumb mirror of the store: whole-snapshot writes,
// whole-snapshot reads, no per-record mutation path.
package cache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jiralite/jl/internal/models"
	"github.com/jiralite/jl/internal/store"
)

const dbFile = "cache.db"

const schema = `
CREATE TABLE IF NOT EXISTS snapshot (
	kind TEXT NOT NULL,
	id   INTEGER NOT NULL,
	data TEXT NOT NULL,
	PRIMARY KEY (kind, id)
);
CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// Cache wraps the sqlite connection.
type Cache struct {
	conn *sql.DB
	path string
}

// Open opens (or creates) the cache database under dir and ensures the
// schema exists.
func Open(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	path := filepath.Join(dir, dbFile)

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}

	// WAL keeps reads open while a snapshot write is in progress.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA busy_timeout=500"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	conn.Exec("PRAGMA synchronous=NORMAL")

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Cache{conn: conn, path: path}, nil
}

// Close closes the cache database.
func (c *Cache) Close() error {
	return c.conn.Close()
}

// Path returns the cache file location.
func (c *Cache) Path() string {
	return c.path
}

// snapshotKinds are the collections a snapshot covers.
var snapshotKinds = []store.Kind{
	store.KindTeam,
	store.KindProject,
	store.KindIssue,
	store.KindNotification,
}

// Snapshot replaces the cached snapshot with the store's current
// contents. The write is a single transaction so a crash never leaves
// a half-written snapshot behind.
func (c *Cache) Snapshot(st *store.Store) error {
	tx, err := c.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin snapshot: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM snapshot"); err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}

	ins, err := tx.Prepare("INSERT INTO snapshot (kind, id, data) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer ins.Close()

	write := func(kind store.Kind, id int64, record any) error {
		data, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("encode %s %d: %w", kind, id, err)
		}
		if _, err := ins.Exec(string(kind), id, string(data)); err != nil {
			return fmt.Errorf("insert %s %d: %w", kind, id, err)
		}
		return nil
	}

	for _, team := range st.Teams() {
		if err := write(store.KindTeam, team.ID, team); err != nil {
			return err
		}
	}
	for _, project := range st.Projects(nil) {
		if err := write(store.KindProject, project.ID, project); err != nil {
			return err
		}
	}
	for _, issue := range st.Issues(nil) {
		if err := write(store.KindIssue, issue.ID, issue); err != nil {
			return err
		}
	}
	for _, n := range st.Notifications() {
		if err := write(store.KindNotification, n.ID, n); err != nil {
			return err
		}
	}

	saved := time.Now().UTC().Format(time.RFC3339)
	if _, err := tx.Exec("INSERT INTO meta (key, value) VALUES ('saved_at', ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value", saved); err != nil {
		return fmt.Errorf("record snapshot time: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	return nil
}

// Load replaces the store's collections with the cached snapshot.
func (c *Cache) Load(st *store.Store) error {
	for _, kind := range snapshotKinds {
		records, err := c.loadKind(kind)
		if err != nil {
			return err
		}
		if err := st.ReplaceAll(kind, records); err != nil {
			return fmt.Errorf("restore %s: %w", kind, err)
		}
	}
	return nil
}

func (c *Cache) loadKind(kind store.Kind) ([]any, error) {
	rows, err := c.conn.Query("SELECT data FROM snapshot WHERE kind = ? ORDER BY id", string(kind))
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", kind, err)
	}
	defer rows.Close()

	var records []any
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan %s: %w", kind, err)
		}
		record, err := decode(kind, []byte(data))
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func decode(kind store.Kind, data []byte) (any, error) {
	switch kind {
	case store.KindTeam:
		var v models.Team
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("decode %s: %w", kind, err)
		}
		return v, nil
	case store.KindProject:
		var v models.Project
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("decode %s: %w", kind, err)
		}
		return v, nil
	case store.KindIssue:
		var v models.Issue
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("decode %s: %w", kind, err)
		}
		return v, nil
	case store.KindNotification:
		var v models.Notification
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("decode %s: %w", kind, err)
		}
		return v, nil
	default:
		return nil, fmt.Errorf("decode: unknown kind %q", kind)
	}
}

// SavedAt returns when the snapshot was last written, or the zero time
// when no snapshot exists.
func (c *Cache) SavedAt() (time.Time, error) {
	var value string
	err := c.conn.QueryRow("SELECT value FROM meta WHERE key = 'saved_at'").Scan(&value)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("read snapshot time: %w", err)
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse snapshot time: %w", err)
	}
	return t, nil
}
