package orrery

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const recorderSchema = `
CREATE TABLE IF NOT EXISTS bodies (
	tick    INTEGER,
	elapsed REAL, -- simulated seconds
	id      TEXT,
	x       REAL,
	y       REAL,
	z       REAL,
	vx      REAL,
	vy      REAL,
	vz      REAL,
	mass    REAL
);
CREATE INDEX IF NOT EXISTS idx_bodies_tick ON bodies (tick, id);
`

const recorderInsert = `INSERT INTO bodies VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`

// Recorder writes per-tick body state into a sqlite database, one row per
// body per tick. Sqlite allows a single writer, and RecordTick is invoked
// from the simulation's ticking goroutine only, so no locking is needed.
type Recorder struct {
	db     *sql.DB
	insert *sql.Stmt
}

// NewRecorder opens (or creates) the database at path and prepares the
// trajectory table. Journaling is disabled: recordings are bulk output,
// rebuilt from scratch on corruption.
func NewRecorder(path string) (*Recorder, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?_journal_mode=OFF&_synchronous=OFF")
	if err != nil {
		return nil, fmt.Errorf("failed to open recording database: %w", err)
	}
	if _, err := db.Exec(recorderSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create recording schema: %w", err)
	}
	insert, err := db.Prepare(recorderInsert)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare insert: %w", err)
	}
	return &Recorder{db: db, insert: insert}, nil
}

// RecordTick writes one row per body inside a single transaction.
func (r *Recorder) RecordTick(tick uint64, elapsed float64, bodies []Body) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	stmt := tx.Stmt(r.insert)
	for _, b := range bodies {
		if _, err := stmt.Exec(
			tick, elapsed, b.ID,
			b.Position.X(), b.Position.Y(), b.Position.Z(),
			b.Velocity.X(), b.Velocity.Y(), b.Velocity.Z(),
			b.Mass,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record body %s: %w", b.ID, err)
		}
	}

	return tx.Commit()
}

// Close releases the prepared statement and the database handle.
func (r *Recorder) Close() error {
	r.insert.Close()
	return r.db.Close()
}
