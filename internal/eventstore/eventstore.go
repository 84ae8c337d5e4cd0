// Package eventstore persists generated pseudo-experiment runs and their
// event samples in a SQLite database, so a sample can be regenerated
// once and refit many times.
package eventstore

import (
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/hepfit/phisfit/internal/model"
	"github.com/hepfit/phisfit/internal/toymc"
)

type Store struct {
	*sql.DB
}

// schema.sql defines the runs and events tables.
//
//go:embed schema.sql
var schemaSQL string

// Open opens (creating if needed) the event store at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	log.Println("initialized event store schema")
	return &Store{db}, nil
}

// Run describes one stored pseudo-experiment.
type Run struct {
	ID         string
	Seed       uint64
	TimeLower  float64
	TimeUpper  float64
	Params     model.Parameters
	EventCount int
}

// CreateRun records a new run and stores its events in one transaction,
// returning the generated run ID.
func (s *Store) CreateRun(seed uint64, lower, upper float64, params model.Parameters, events []toymc.Event) (string, error) {
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("failed to encode parameters: %w", err)
	}

	id := uuid.NewString()

	tx, err := s.Begin()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO runs (id, seed, time_lower, time_upper, params_json, event_count)
		VALUES (?, ?, ?, ?, ?, ?)`,
		id, int64(seed), lower, upper, string(paramsJSON), len(events))
	if err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO events (run_id, seq, t, cos_theta_h, cos_theta_l, phi, flavor)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer stmt.Close()

	for i, ev := range events {
		if _, err := stmt.Exec(id, i, ev.T, ev.CosThetaH, ev.CosThetaL, ev.Phi, int(ev.Flavor)); err != nil {
			return "", fmt.Errorf("failed to insert event %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

// GetRun returns the run record for id.
func (s *Store) GetRun(id string) (*Run, error) {
	row := s.QueryRow(`
		SELECT id, seed, time_lower, time_upper, params_json, event_count
		FROM runs WHERE id = ?`, id)

	var r Run
	var seed int64
	var paramsJSON string
	if err := row.Scan(&r.ID, &seed, &r.TimeLower, &r.TimeUpper, &paramsJSON, &r.EventCount); err != nil {
		return nil, fmt.Errorf("failed to load run %s: %w", id, err)
	}
	r.Seed = uint64(seed)
	if err := json.Unmarshal([]byte(paramsJSON), &r.Params); err != nil {
		return nil, fmt.Errorf("failed to decode parameters for run %s: %w", id, err)
	}
	return &r, nil
}

// ListRuns returns all stored runs, newest first.
func (s *Store) ListRuns() ([]Run, error) {
	rows, err := s.Query(`
		SELECT id, seed, time_lower, time_upper, params_json, event_count
		FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var seed int64
		var paramsJSON string
		if err := rows.Scan(&r.ID, &seed, &r.TimeLower, &r.TimeUpper, &paramsJSON, &r.EventCount); err != nil {
			return nil, err
		}
		r.Seed = uint64(seed)
		if err := json.Unmarshal([]byte(paramsJSON), &r.Params); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Events loads the event sample of a run in insertion order.
func (s *Store) Events(runID string) ([]toymc.Event, error) {
	rows, err := s.Query(`
		SELECT t, cos_theta_h, cos_theta_l, phi, flavor
		FROM events WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []toymc.Event
	for rows.Next() {
		var ev toymc.Event
		var flavor int
		if err := rows.Scan(&ev.T, &ev.CosThetaH, &ev.CosThetaL, &ev.Phi, &flavor); err != nil {
			return nil, err
		}
		ev.Flavor = model.Flavor(flavor)
		events = append(events, ev)
	}
	return events, rows.Err()
}
