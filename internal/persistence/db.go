// Package persistence archives simulation runs in SQLite: run settings, the
// per-tick statistics of the final boundary, and the frozen world's people
// and settlements.
package persistence

import (
	"database/sql"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/worldhistory/internal/engine"
	"github.com/talgya/worldhistory/internal/world"
)

// DB wraps a SQLite connection for run archiving.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		seed INTEGER NOT NULL,
		direction TEXT NOT NULL,
		timespan TEXT NOT NULL,
		steps_complete INTEGER NOT NULL,
		steps_total INTEGER NOT NULL,
		started_at TIMESTAMP NOT NULL,
		frozen_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS run_samples (
		run_id TEXT NOT NULL REFERENCES runs(id),
		idx INTEGER NOT NULL,
		tick_seconds REAL NOT NULL,
		entities INTEGER NOT NULL,
		people INTEGER NOT NULL,
		places INTEGER NOT NULL,
		PRIMARY KEY (run_id, idx)
	);

	CREATE TABLE IF NOT EXISTS people (
		run_id TEXT NOT NULL,
		entity_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		age_days INTEGER NOT NULL,
		living TEXT NOT NULL,
		health REAL,
		PRIMARY KEY (run_id, entity_id)
	);

	CREATE TABLE IF NOT EXISTS settlements (
		run_id TEXT NOT NULL,
		entity_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		pos_q INTEGER NOT NULL,
		pos_r INTEGER NOT NULL,
		population INTEGER NOT NULL,
		PRIMARY KEY (run_id, entity_id)
	);

	CREATE TABLE IF NOT EXISTS world_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// Run is one archived run.
type Run struct {
	ID            string    `db:"id" json:"id"`
	Name          string    `db:"name" json:"name"`
	Seed          int64     `db:"seed" json:"seed"`
	Direction     string    `db:"direction" json:"direction"`
	Timespan      string    `db:"timespan" json:"timespan"`
	StepsComplete uint32    `db:"steps_complete" json:"steps_complete"`
	StepsTotal    uint32    `db:"steps_total" json:"steps_total"`
	StartedAt     time.Time `db:"started_at" json:"started_at"`
	FrozenAt      time.Time `db:"frozen_at" json:"frozen_at"`
}

// Sample is one recorded tick of a run.
type Sample struct {
	Index       int     `db:"idx" json:"index"`
	TickSeconds float64 `db:"tick_seconds" json:"tick_seconds"`
	Entities    int     `db:"entities" json:"entities"`
	People      int     `db:"people" json:"people"`
	Places      int     `db:"places" json:"places"`
}

// PersonRecord is one archived person.
type PersonRecord struct {
	EntityID uint32          `db:"entity_id" json:"entity_id"`
	Name     string          `db:"name" json:"name"`
	AgeDays  uint32          `db:"age_days" json:"age_days"`
	Living   string          `db:"living" json:"living"`
	Health   sql.NullFloat64 `db:"health" json:"-"`
}

// SaveRun writes a run's settings and the samples of its final snapshot,
// replacing any earlier archive of the same run.
func (db *DB) SaveRun(cfg *world.SimulationConfig, snap engine.BoundarySnapshot) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	runID := snap.RunID.String()
	_, err = tx.Exec(`INSERT OR REPLACE INTO runs
		(id, name, seed, direction, timespan, steps_complete, steps_total, started_at, frozen_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, cfg.Name(), cfg.Seed(), cfg.Direction().String(), cfg.Timespan().String(),
		snap.StepsComplete, snap.StepsTotal, snap.StartedAt.UTC(), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", runID, err)
	}

	if _, err := tx.Exec("DELETE FROM run_samples WHERE run_id = ?", runID); err != nil {
		return err
	}

	stmt, err := tx.Preparex(`INSERT INTO run_samples
		(run_id, idx, tick_seconds, entities, people, places)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := range snap.TickSeconds {
		_, err := stmt.Exec(runID, i, snap.TickSeconds[i], snap.Entities[i], snap.People[i], snap.Places[i])
		if err != nil {
			return fmt.Errorf("insert sample %d of run %s: %w", i, runID, err)
		}
	}

	return tx.Commit()
}

// SavePeople writes every person of a frozen world under runID (full replace).
// Health that has not been computed yet is stored as NULL.
func (db *DB) SavePeople(runID string, people []world.PersonView) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM people WHERE run_id = ?", runID); err != nil {
		return err
	}

	stmt, err := tx.Preparex(`INSERT INTO people
		(run_id, entity_id, name, age_days, living, health)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range people {
		health := sql.NullFloat64{Float64: float64(p.Health), Valid: !math.IsInf(float64(p.Health), 0)}
		_, err := stmt.Exec(runID, p.Entity.ID(), p.Name, p.Age.DaysPassed(), p.State.String(), health)
		if err != nil {
			return fmt.Errorf("insert person %d: %w", p.Entity.ID(), err)
		}
	}

	return tx.Commit()
}

// SaveSettlements writes every settlement of a frozen world under runID.
func (db *DB) SaveSettlements(runID string, settlements []world.SettlementView) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM settlements WHERE run_id = ?", runID); err != nil {
		return err
	}

	for _, s := range settlements {
		_, err := tx.Exec(`INSERT INTO settlements
			(run_id, entity_id, name, pos_q, pos_r, population)
			VALUES (?, ?, ?, ?, ?, ?)`,
			runID, s.Entity.ID(), s.Name, s.Settlement.Coord.Q, s.Settlement.Coord.R, s.Settlement.Population,
		)
		if err != nil {
			return fmt.Errorf("insert settlement %d: %w", s.Entity.ID(), err)
		}
	}

	return tx.Commit()
}

// SaveMeta stores a key-value pair in world metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM world_meta WHERE key = ?", key)
	return value, err
}

// SaveWorldState archives a finished run together with its frozen world.
func (db *DB) SaveWorldState(s *world.Store, snap engine.BoundarySnapshot) error {
	runID := snap.RunID.String()
	people := s.People()
	settlements := s.Settlements()
	slog.Info("saving world state", "run", runID, "people", len(people), "settlements", len(settlements))

	if err := db.SaveRun(s.Config(), snap); err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	if err := db.SavePeople(runID, people); err != nil {
		return fmt.Errorf("save people: %w", err)
	}
	if err := db.SaveSettlements(runID, settlements); err != nil {
		return fmt.Errorf("save settlements: %w", err)
	}
	if err := db.SaveMeta("last_run", runID); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}
	if err := db.SaveMeta("last_seed", strconv.FormatInt(s.Config().Seed(), 10)); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}

	slog.Info("world state saved", "run", runID)
	return nil
}

// RecentRuns returns the most recently started runs, newest first.
func (db *DB) RecentRuns(limit int) ([]Run, error) {
	var runs []Run
	err := db.conn.Select(&runs,
		`SELECT id, name, seed, direction, timespan, steps_complete, steps_total, started_at, frozen_at
		 FROM runs ORDER BY started_at DESC LIMIT ?`,
		limit,
	)
	return runs, err
}

// RunSamples returns a run's recorded ticks, oldest first.
func (db *DB) RunSamples(runID string) ([]Sample, error) {
	var samples []Sample
	err := db.conn.Select(&samples,
		"SELECT idx, tick_seconds, entities, people, places FROM run_samples WHERE run_id = ? ORDER BY idx",
		runID,
	)
	return samples, err
}

// RunPeople returns the people archived for a run in entity order.
func (db *DB) RunPeople(runID string) ([]PersonRecord, error) {
	var people []PersonRecord
	err := db.conn.Select(&people,
		"SELECT entity_id, name, age_days, living, health FROM people WHERE run_id = ? ORDER BY entity_id",
		runID,
	)
	return people, err
}
