package regress

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNoBaseline means no baseline is stored under the case name.
var ErrNoBaseline = errors.New("no baseline recorded")

// Baseline is the persisted fingerprint of one corpus case.
type Baseline struct {
	Name         string
	PositionHash string
	Overlap      float64
	Atoms        int
	UpdatedAt    time.Time
}

// BaselineStore keeps baselines in a SQLite database, one row per case.
type BaselineStore struct {
	db *sql.DB
}

// OpenBaselines opens (creating if needed) the baseline database at path.
func OpenBaselines(path string) (*BaselineStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open baselines: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping baselines: %w", err)
	}
	if _, err := db.Exec(`PRAGMA journal_mode=WAL;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &BaselineStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *BaselineStore) migrate() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS baselines (
		name          TEXT PRIMARY KEY,
		position_hash TEXT NOT NULL,
		overlap       REAL NOT NULL,
		atoms         INTEGER NOT NULL,
		updated_at    INTEGER NOT NULL
	);`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("migrate baselines: %w", err)
	}
	return nil
}

// Get returns the baseline stored under name, or [ErrNoBaseline].
func (s *BaselineStore) Get(ctx context.Context, name string) (*Baseline, error) {
	const query = `
	SELECT position_hash, overlap, atoms, updated_at
	FROM baselines WHERE name = ?`

	b := Baseline{Name: name}
	var updatedAt int64
	err := s.db.QueryRowContext(ctx, query, name).
		Scan(&b.PositionHash, &b.Overlap, &b.Atoms, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("baseline %s: %w", name, ErrNoBaseline)
	}
	if err != nil {
		return nil, fmt.Errorf("get baseline %s: %w", name, err)
	}
	b.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return &b, nil
}

// Put inserts or replaces the baseline keyed by its case name.
func (s *BaselineStore) Put(ctx context.Context, b Baseline) error {
	if b.Name == "" {
		return fmt.Errorf("put baseline: missing name")
	}
	if b.UpdatedAt.IsZero() {
		b.UpdatedAt = time.Now().UTC()
	}

	const query = `
	INSERT INTO baselines (name, position_hash, overlap, atoms, updated_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(name) DO UPDATE SET
		position_hash = excluded.position_hash,
		overlap       = excluded.overlap,
		atoms         = excluded.atoms,
		updated_at    = excluded.updated_at`

	_, err := s.db.ExecContext(ctx, query,
		b.Name, b.PositionHash, b.Overlap, b.Atoms, b.UpdatedAt.Unix())
	if err != nil {
		return fmt.Errorf("put baseline %s: %w", b.Name, err)
	}
	return nil
}

// All returns every stored baseline ordered by case name.
func (s *BaselineStore) All(ctx context.Context) ([]Baseline, error) {
	const query = `
	SELECT name, position_hash, overlap, atoms, updated_at
	FROM baselines ORDER BY name`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list baselines: %w", err)
	}
	defer rows.Close()

	var baselines []Baseline
	for rows.Next() {
		var b Baseline
		var updatedAt int64
		if err := rows.Scan(&b.Name, &b.PositionHash, &b.Overlap, &b.Atoms, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan baseline: %w", err)
		}
		b.UpdatedAt = time.Unix(updatedAt, 0).UTC()
		baselines = append(baselines, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list baselines: %w", err)
	}
	return baselines, nil
}

// Delete removes the baseline under name. Deleting an absent name is not
// an error.
func (s *BaselineStore) Delete(ctx context.Context, name string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM baselines WHERE name = ?`, name); err != nil {
		return fmt.Errorf("delete baseline %s: %w", name, err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *BaselineStore) Close() error {
	return s.db.Close()
}
