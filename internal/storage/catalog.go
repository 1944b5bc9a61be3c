package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Fixed width so saved_at sorts lexically.
const savedAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Entry describes one save file known to the catalog.
type Entry struct {
	Path     string
	Seed     int64
	Tick     uint64
	Chunks   int
	Entities int
	SavedAt  time.Time
}

// EntryFor summarises snap as a catalog entry for path.
func EntryFor(path string, snap *SnapshotV1) Entry {
	return Entry{
		Path:     path,
		Seed:     snap.Seed,
		Tick:     snap.Tick,
		Chunks:   len(snap.Chunks),
		Entities: len(snap.Entities),
		SavedAt:  snap.Header.SavedAt,
	}
}

// Catalog is a sqlite index of save files.
type Catalog struct {
	db *sql.DB
}

func OpenCatalog(path string) (*Catalog, error) {
	if path == "" {
		return nil, fmt.Errorf("catalog: empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	stmts := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=5000;",
		`CREATE TABLE IF NOT EXISTS saves (
			path TEXT PRIMARY KEY,
			seed INTEGER NOT NULL,
			tick INTEGER NOT NULL,
			chunks INTEGER NOT NULL,
			entities INTEGER NOT NULL,
			saved_at TEXT NOT NULL
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("catalog init: %w", err)
		}
	}
	return &Catalog{db: db}, nil
}

func (c *Catalog) Close() error {
	return c.db.Close()
}

// Record inserts e, replacing any entry with the same path.
func (c *Catalog) Record(ctx context.Context, e Entry) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO saves (path, seed, tick, chunks, entities, saved_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			seed = excluded.seed,
			tick = excluded.tick,
			chunks = excluded.chunks,
			entities = excluded.entities,
			saved_at = excluded.saved_at`,
		e.Path, e.Seed, int64(e.Tick), e.Chunks, e.Entities, e.SavedAt.UTC().Format(savedAtLayout))
	if err != nil {
		return fmt.Errorf("catalog record %s: %w", e.Path, err)
	}
	return nil
}

// List returns every entry, most recently saved first.
func (c *Catalog) List(ctx context.Context) ([]Entry, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT path, seed, tick, chunks, entities, saved_at FROM saves ORDER BY saved_at DESC, path`)
	if err != nil {
		return nil, fmt.Errorf("catalog list: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e       Entry
			tick    int64
			savedAt string
		)
		if err := rows.Scan(&e.Path, &e.Seed, &tick, &e.Chunks, &e.Entities, &savedAt); err != nil {
			return nil, fmt.Errorf("catalog list: %w", err)
		}
		e.Tick = uint64(tick)
		if e.SavedAt, err = time.Parse(savedAtLayout, savedAt); err != nil {
			return nil, fmt.Errorf("catalog list: saved_at for %s: %w", e.Path, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Forget removes the entry for path. Unknown paths are ignored.
func (c *Catalog) Forget(ctx context.Context, path string) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM saves WHERE path = ?`, path); err != nil {
		return fmt.Errorf("catalog forget %s: %w", path, err)
	}
	return nil
}
