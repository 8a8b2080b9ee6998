// Package store implements the §6 "Persisted state" requirement: saving
// an environment layer's (key, value, generation) entries and dependency
// edges to a side file so a later process can restart from saved state
// instead of recomputing from scratch. It stays deliberately below
// internal/environment — dealing only in layer/key strings and opaque
// []byte blobs — so internal/environment can import it without a cycle;
// internal/environment owns the encode/decode-per-type step.
package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Entry is one saved (layer, key) -> value pair, stamped with the
// generation token that produced it (spec §8 property 9, cache
// correctness: a restored read must carry its original generation so a
// caller can tell a stale restore apart from a fresh recompute).
type Entry struct {
	Layer      string
	Key        string
	Value      []byte
	Generation string
}

// Edge is one saved dependency edge: an upstream (layer, key) that was
// read while producing a downstream (depLayer, depKey) — the persisted
// form of environment.Trigger, kept as a plain struct here rather than
// importing that type to avoid the import cycle described above.
type Edge struct {
	Layer    string
	Key      string
	DepLayer string
	DepKey   string
}

// Store wraps a SQLite side file holding the layer_entries and
// dependency_edges tables.
type Store struct {
	db *sql.DB
}

// Open opens (creating if absent) a SQLite side file at path and ensures
// its schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS layer_entries (
			layer TEXT NOT NULL,
			key TEXT NOT NULL,
			value BLOB NOT NULL,
			generation TEXT NOT NULL,
			PRIMARY KEY (layer, key)
		)`,
		`CREATE TABLE IF NOT EXISTS dependency_edges (
			layer TEXT NOT NULL,
			key TEXT NOT NULL,
			dep_layer TEXT NOT NULL,
			dep_key TEXT NOT NULL,
			PRIMARY KEY (layer, key, dep_layer, dep_key)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("store: migrate: %w", err)
		}
	}
	return nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveEntry upserts one layer entry.
func (s *Store) SaveEntry(e Entry) error {
	_, err := s.db.Exec(
		`INSERT INTO layer_entries (layer, key, value, generation) VALUES (?, ?, ?, ?)
		 ON CONFLICT(layer, key) DO UPDATE SET value = excluded.value, generation = excluded.generation`,
		e.Layer, e.Key, e.Value, e.Generation,
	)
	if err != nil {
		return fmt.Errorf("store: save entry %s[%s]: %w", e.Layer, e.Key, err)
	}
	return nil
}

// LoadEntry returns the saved entry for (layer, key), or ok=false if none
// exists.
func (s *Store) LoadEntry(layer, key string) (Entry, bool, error) {
	row := s.db.QueryRow(
		`SELECT value, generation FROM layer_entries WHERE layer = ? AND key = ?`, layer, key,
	)
	var e Entry
	e.Layer, e.Key = layer, key
	if err := row.Scan(&e.Value, &e.Generation); err != nil {
		if err == sql.ErrNoRows {
			return Entry{}, false, nil
		}
		return Entry{}, false, fmt.Errorf("store: load entry %s[%s]: %w", layer, key, err)
	}
	return e, true, nil
}

// DeleteEntry removes a saved entry, e.g. after its key is invalidated.
func (s *Store) DeleteEntry(layer, key string) error {
	_, err := s.db.Exec(`DELETE FROM layer_entries WHERE layer = ? AND key = ?`, layer, key)
	if err != nil {
		return fmt.Errorf("store: delete entry %s[%s]: %w", layer, key, err)
	}
	return nil
}

// SaveEdge upserts one dependency edge.
func (s *Store) SaveEdge(e Edge) error {
	_, err := s.db.Exec(
		`INSERT INTO dependency_edges (layer, key, dep_layer, dep_key) VALUES (?, ?, ?, ?)
		 ON CONFLICT(layer, key, dep_layer, dep_key) DO NOTHING`,
		e.Layer, e.Key, e.DepLayer, e.DepKey,
	)
	if err != nil {
		return fmt.Errorf("store: save edge %s[%s]->%s[%s]: %w", e.DepLayer, e.DepKey, e.Layer, e.Key, err)
	}
	return nil
}

// EdgesFor returns every saved edge recorded against (layer, key) — the
// restored form of what internal/environment's Table.dependents tracks
// in memory.
func (s *Store) EdgesFor(layer, key string) ([]Edge, error) {
	rows, err := s.db.Query(
		`SELECT dep_layer, dep_key FROM dependency_edges WHERE layer = ? AND key = ?`, layer, key,
	)
	if err != nil {
		return nil, fmt.Errorf("store: edges for %s[%s]: %w", layer, key, err)
	}
	defer rows.Close()

	var out []Edge
	for rows.Next() {
		e := Edge{Layer: layer, Key: key}
		if err := rows.Scan(&e.DepLayer, &e.DepKey); err != nil {
			return nil, fmt.Errorf("store: scan edge: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// AllEntries returns every saved entry for one layer, used to repopulate
// a Table[V] in full on process restart.
func (s *Store) AllEntries(layer string) ([]Entry, error) {
	rows, err := s.db.Query(`SELECT key, value, generation FROM layer_entries WHERE layer = ?`, layer)
	if err != nil {
		return nil, fmt.Errorf("store: all entries for %s: %w", layer, err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e := Entry{Layer: layer}
		if err := rows.Scan(&e.Key, &e.Value, &e.Generation); err != nil {
			return nil, fmt.Errorf("store: scan entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
