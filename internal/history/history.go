// Package history persists the navigation history in a small sqlite
// database under the XDG state directory, giving pv browser-style
// back/forward across restarts.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/proofdeck/proofdeck/pkg/route"
)

const schema = `
CREATE TABLE IF NOT EXISTS history (
	pos        INTEGER PRIMARY KEY,
	proof_id   TEXT    NOT NULL,
	step       INTEGER NOT NULL,
	visited_at TEXT    NOT NULL
);
CREATE TABLE IF NOT EXISTS cursor (
	id  INTEGER PRIMARY KEY CHECK (id = 1),
	pos INTEGER NOT NULL
);
`

// Store is a sqlite-backed route.Store.
type Store struct {
	db   *sql.DB
	path string
}

var _ route.Store = (*Store)(nil)

// Open opens (creating if necessary) the history database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("cannot create history dir: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open history database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("cannot initialize history schema: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) cursor() (int64, bool, error) {
	var pos int64
	err := s.db.QueryRow(`SELECT pos FROM cursor WHERE id = 1`).Scan(&pos)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return pos, true, nil
}

func (s *Store) setCursor(pos int64) error {
	_, err := s.db.Exec(
		`INSERT INTO cursor (id, pos) VALUES (1, ?)
		 ON CONFLICT(id) DO UPDATE SET pos = excluded.pos`, pos)
	return err
}

func (s *Store) entryAt(pos int64) (route.Route, bool, error) {
	var r route.Route
	err := s.db.QueryRow(
		`SELECT proof_id, step FROM history WHERE pos = ?`, pos).
		Scan(&r.ProofID, &r.Step)
	if err == sql.ErrNoRows {
		return route.Route{}, false, nil
	}
	if err != nil {
		return route.Route{}, false, err
	}
	return r, true, nil
}

// Current returns the entry under the cursor.
func (s *Store) Current() (route.Route, bool, error) {
	pos, ok, err := s.cursor()
	if err != nil || !ok {
		return route.Route{}, false, err
	}
	return s.entryAt(pos)
}

// Push truncates the forward branch and appends a new entry.
func (s *Store) Push(r route.Route) error {
	pos, ok, err := s.cursor()
	if err != nil {
		return fmt.Errorf("history push: %w", err)
	}
	next := int64(1)
	if ok {
		next = pos + 1
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("history push: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM history WHERE pos >= ?`, next); err != nil {
		return fmt.Errorf("history push: %w", err)
	}
	if _, err := tx.Exec(
		`INSERT INTO history (pos, proof_id, step, visited_at) VALUES (?, ?, ?, ?)`,
		next, r.ProofID, r.Step, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("history push: %w", err)
	}
	if _, err := tx.Exec(
		`INSERT INTO cursor (id, pos) VALUES (1, ?)
		 ON CONFLICT(id) DO UPDATE SET pos = excluded.pos`, next); err != nil {
		return fmt.Errorf("history push: %w", err)
	}
	return tx.Commit()
}

// Replace rewrites the entry under the cursor, seeding the history when
// empty.
func (s *Store) Replace(r route.Route) error {
	pos, ok, err := s.cursor()
	if err != nil {
		return fmt.Errorf("history replace: %w", err)
	}
	if !ok {
		return s.Push(r)
	}
	_, err = s.db.Exec(
		`INSERT INTO history (pos, proof_id, step, visited_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(pos) DO UPDATE SET
			proof_id = excluded.proof_id,
			step = excluded.step,
			visited_at = excluded.visited_at`,
		pos, r.ProofID, r.Step, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("history replace: %w", err)
	}
	return nil
}

// Back moves the cursor one entry back and returns it.
func (s *Store) Back() (route.Route, bool, error) {
	pos, ok, err := s.cursor()
	if err != nil || !ok {
		return route.Route{}, false, err
	}
	r, found, err := s.entryAt(pos - 1)
	if err != nil || !found {
		return route.Route{}, false, err
	}
	if err := s.setCursor(pos - 1); err != nil {
		return route.Route{}, false, err
	}
	return r, true, nil
}

// Forward moves the cursor one entry forward and returns it.
func (s *Store) Forward() (route.Route, bool, error) {
	pos, ok, err := s.cursor()
	if err != nil || !ok {
		return route.Route{}, false, err
	}
	r, found, err := s.entryAt(pos + 1)
	if err != nil || !found {
		return route.Route{}, false, err
	}
	if err := s.setCursor(pos + 1); err != nil {
		return route.Route{}, false, err
	}
	return r, true, nil
}
