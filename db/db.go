// Package db keeps a sqlite history of generated schematics.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

type Run struct {
	ID       string
	Song     string
	Output   string
	Rows     int
	Interval int
	BPM      float64

	Events       int
	Length       int
	Height       int
	Width        int
	Depth        int
	DepthReached int
	TowerRow     int
	NoteBlocks   int
	Bytes        int

	CreatedAt time.Time
}

type History struct {
	db *sql.DB
}

func Open(path string) (*History, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &History{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			song TEXT NOT NULL,
			output TEXT NOT NULL,
			grid_rows INTEGER NOT NULL,
			tick_interval INTEGER NOT NULL,
			bpm REAL NOT NULL,
			events INTEGER NOT NULL,
			length INTEGER NOT NULL,
			height INTEGER NOT NULL,
			width INTEGER NOT NULL,
			depth INTEGER NOT NULL,
			depth_reached INTEGER NOT NULL,
			tower_row INTEGER NOT NULL,
			note_blocks INTEGER NOT NULL,
			bytes INTEGER NOT NULL,
			created_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS runs_created_at ON runs(created_at);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// Record stores r, filling in ID and CreatedAt when they are empty, and
// returns the stored row.
func (h *History) Record(ctx context.Context, r Run) (Run, error) {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	_, err := h.db.ExecContext(ctx, `INSERT INTO runs (
			id, song, output, grid_rows, tick_interval, bpm, events, length,
			height, width, depth, depth_reached, tower_row, note_blocks, bytes, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Song, r.Output, r.Rows, r.Interval, r.BPM, r.Events, r.Length,
		r.Height, r.Width, r.Depth, r.DepthReached, r.TowerRow, r.NoteBlocks, r.Bytes,
		r.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Run{}, fmt.Errorf("record run %s: %w", r.ID, err)
	}
	return r, nil
}

// List returns up to limit runs, newest first. A limit of zero or less
// returns everything.
func (h *History) List(ctx context.Context, limit int) ([]Run, error) {
	q := `SELECT id, song, output, grid_rows, tick_interval, bpm, events, length,
			height, width, depth, depth_reached, tower_row, note_blocks, bytes, created_at
		FROM runs ORDER BY created_at DESC, id`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := h.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []Run
	for rows.Next() {
		var r Run
		var created string
		if err := rows.Scan(&r.ID, &r.Song, &r.Output, &r.Rows, &r.Interval, &r.BPM, &r.Events, &r.Length,
			&r.Height, &r.Width, &r.Depth, &r.DepthReached, &r.TowerRow, &r.NoteBlocks, &r.Bytes, &created); err != nil {
			return nil, err
		}
		if r.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("run %s: bad created_at %q: %w", r.ID, created, err)
		}
		res = append(res, r)
	}
	return res, rows.Err()
}

func (h *History) Close() error {
	return h.db.Close()
}
