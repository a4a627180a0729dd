// Copyright 2025 The Refuge Authors
// SPDX-License-Identifier: Apache-2.0

// Package store persists finder runs and geocoding results in DuckDB.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uber/h3-go/v4"

	"github.com/openrefuge/refuge/finder"
	"github.com/openrefuge/refuge/spatial"
)

// Run is one recorded FindResources invocation with its outcome.
type Run struct {
	ID         string             `json:"id"`
	Location   string             `json:"location"`
	Resolved   string             `json:"resolved_location,omitempty"`
	Point      *spatial.Point     `json:"point,omitempty"`
	Services   []finder.Category  `json:"services"`
	Confidence finder.Confidence  `json:"confidence"`
	CreatedAt  time.Time          `json:"created_at"`
	Results    []finder.Candidate `json:"results"`
	H3Res1     int64              `json:"-"`
	H3Res2     int64              `json:"-"`
	H3Res3     int64              `json:"-"`
	H3Res4     int64              `json:"-"`
	H3Res5     int64              `json:"-"`
	H3Res6     int64              `json:"-"`
	H3Res7     int64              `json:"-"`
	H3Res8     int64              `json:"-"`
}

func (run *Run) computeH3() error {
	if run.Point == nil {
		run.H3Res1, run.H3Res2, run.H3Res3, run.H3Res4 = 0, 0, 0, 0
		run.H3Res5, run.H3Res6, run.H3Res7, run.H3Res8 = 0, 0, 0, 0

		return nil
	}

	latLng := h3.NewLatLng(run.Point.Lat, run.Point.Lng)
	for res := 1; res <= 8; res++ {
		cell, err := h3.LatLngToCell(latLng, res)
		if err != nil {
			return fmt.Errorf("error converting to h3 cell at res %d: %w", res, err)
		}

		switch res {
		case 1:
			run.H3Res1 = int64(cell)
		case 2:
			run.H3Res2 = int64(cell)
		case 3:
			run.H3Res3 = int64(cell)
		case 4:
			run.H3Res4 = int64(cell)
		case 5:
			run.H3Res5 = int64(cell)
		case 6:
			run.H3Res6 = int64(cell)
		case 7:
			run.H3Res7 = int64(cell)
		case 8:
			run.H3Res8 = int64(cell)
		}
	}

	return nil
}

// ErrRunNotFound is returned when the requested run does not exist.
var ErrRunNotFound = errors.New("run not found")

// RunRepository handles persistence of finder runs.
type RunRepository interface {
	// CreateSchema creates the runs tables
	CreateSchema() error

	// SaveRun stores a run and its results
	SaveRun(run *Run) error

	// GetRun returns one run with its results
	GetRun(id string) (*Run, error)

	// ListRuns returns runs newest-first, without their results
	ListRuns(limit, offset int) ([]*Run, error)

	// CountRuns returns the total number of stored runs
	CountRuns() (int, error)

	// DB returns the underlying database connection
	DB() *sql.DB
}

type sqlRunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a run repository over db.
func NewRunRepository(db *sql.DB) RunRepository {
	return &sqlRunRepository{db: db}
}

// DB returns the underlying database connection for advanced queries.
func (r *sqlRunRepository) DB() *sql.DB {
	return r.db
}

func (r *sqlRunRepository) CreateSchema() error {
	// DuckDB needs to load the spatial extension
	_, err := r.db.Exec(`INSTALL spatial; LOAD spatial;`)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			id VARCHAR PRIMARY KEY,
			location VARCHAR NOT NULL,
			resolved_location VARCHAR,
			point POINT_2D,
			services VARCHAR NOT NULL,
			confidence VARCHAR NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			h3_res1 UBIGINT,
			h3_res2 UBIGINT,
			h3_res3 UBIGINT,
			h3_res4 UBIGINT,
			h3_res5 UBIGINT,
			h3_res6 UBIGINT,
			h3_res7 UBIGINT,
			h3_res8 UBIGINT
		);

		CREATE SEQUENCE IF NOT EXISTS run_results_seq START 1;

		CREATE TABLE IF NOT EXISTS run_results (
			id INTEGER PRIMARY KEY DEFAULT nextval('run_results_seq'),
			run_id VARCHAR NOT NULL,
			position INTEGER NOT NULL,
			name VARCHAR NOT NULL,
			url VARCHAR NOT NULL,
			snippet TEXT,
			matching_services VARCHAR NOT NULL,
			distance_km DOUBLE,
			match_score DOUBLE NOT NULL,
			llm_summary TEXT,
			llm_score DOUBLE,
			address VARCHAR,
			phone VARCHAR,
			hours VARCHAR,
			UNIQUE(run_id, position)
		);

		CREATE TABLE IF NOT EXISTS geocode_cache (
			key VARCHAR PRIMARY KEY,
			point POINT_2D NOT NULL,
			confidence VARCHAR NOT NULL,
			provider VARCHAR NOT NULL,
			display_name VARCHAR,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`)

	return err
}

func (r *sqlRunRepository) SaveRun(run *Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}

	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}

	if err := run.computeH3(); err != nil {
		return err
	}

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}

	var lng, lat any
	if run.Point != nil {
		lng, lat = run.Point.Lng, run.Point.Lat
	}

	_, err = tx.Exec(`
		INSERT INTO runs(
			id, location, resolved_location, point, services, confidence, created_at,
			h3_res1, h3_res2, h3_res3, h3_res4, h3_res5, h3_res6, h3_res7, h3_res8
		)
		VALUES (?, ?, ?, ST_Point(?, ?), ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.Location,
		nullable(run.Resolved),
		lng,
		lat,
		joinCategories(run.Services),
		string(run.Confidence),
		run.CreatedAt,
		run.H3Res1,
		run.H3Res2,
		run.H3Res3,
		run.H3Res4,
		run.H3Res5,
		run.H3Res6,
		run.H3Res7,
		run.H3Res8,
	)
	if err != nil {
		if rErr := tx.Rollback(); rErr != nil {
			err = rErr
		}

		return err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO run_results(
			run_id, position, name, url, snippet, matching_services,
			distance_km, match_score, llm_summary, llm_score, address, phone, hours
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		if rErr := tx.Rollback(); rErr != nil {
			err = rErr
		}

		return err
	}
	defer stmt.Close()

	for position, result := range run.Results {
		_, err = stmt.Exec(
			run.ID,
			position,
			result.Name,
			result.URL,
			result.Snippet,
			joinCategories(result.MatchingServices),
			result.DistanceKm,
			result.MatchScore,
			nullable(result.LLMSummary),
			result.LLMScore,
			nullable(result.Address),
			nullable(result.Phone),
			nullable(result.Hours),
		)
		if err != nil {
			if rErr := tx.Rollback(); rErr != nil {
				err = rErr
			}

			return err
		}
	}

	return tx.Commit()
}

var baseRunSelect = `
	SELECT id, location, resolved_location, point, services, confidence, created_at,
	       h3_res1, h3_res2, h3_res3, h3_res4, h3_res5, h3_res6, h3_res7, h3_res8
	FROM runs
`

func (r *sqlRunRepository) GetRun(id string) (*Run, error) {
	runs, err := r.listRuns(baseRunSelect+" WHERE id = ?", []any{id})
	if err != nil {
		return nil, err
	}

	if len(runs) == 0 {
		return nil, ErrRunNotFound
	}

	run := runs[0]

	run.Results, err = r.listResults(id)
	if err != nil {
		return nil, err
	}

	return run, nil
}

func (r *sqlRunRepository) ListRuns(limit, offset int) ([]*Run, error) {
	query := baseRunSelect + " ORDER BY created_at DESC"

	args := []any{}

	if limit > 0 {
		query += " LIMIT ? OFFSET ?"

		args = append(args, limit, offset)
	}

	return r.listRuns(query, args)
}

func (r *sqlRunRepository) CountRuns() (int, error) {
	var count int
	err := r.db.QueryRow(
		"SELECT COUNT(*) FROM runs",
	).Scan(&count)

	return count, err
}

func (r *sqlRunRepository) listRuns(query string, args []any) ([]*Run, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*Run

	for rows.Next() {
		run := &Run{Point: &spatial.Point{}}

		var (
			resolved   sql.NullString
			services   string
			confidence string
		)

		var h3Res1, h3Res2, h3Res3, h3Res4, h3Res5, h3Res6, h3Res7, h3Res8 sql.NullInt64

		err := rows.Scan(
			&run.ID, &run.Location, &resolved, &run.Point,
			&services, &confidence, &run.CreatedAt,
			&h3Res1, &h3Res2, &h3Res3, &h3Res4, &h3Res5, &h3Res6, &h3Res7, &h3Res8,
		)
		if err != nil {
			return nil, err
		}

		if resolved.Valid {
			run.Resolved = resolved.String
		}

		run.Services = splitCategories(services)
		run.Confidence = finder.Confidence(confidence)

		if h3Res1.Valid {
			run.H3Res1 = h3Res1.Int64
		}

		if h3Res2.Valid {
			run.H3Res2 = h3Res2.Int64
		}

		if h3Res3.Valid {
			run.H3Res3 = h3Res3.Int64
		}

		if h3Res4.Valid {
			run.H3Res4 = h3Res4.Int64
		}

		if h3Res5.Valid {
			run.H3Res5 = h3Res5.Int64
		}

		if h3Res6.Valid {
			run.H3Res6 = h3Res6.Int64
		}

		if h3Res7.Valid {
			run.H3Res7 = h3Res7.Int64
		}

		if h3Res8.Valid {
			run.H3Res8 = h3Res8.Int64
		}

		runs = append(runs, run)
	}

	return runs, rows.Err()
}

func (r *sqlRunRepository) listResults(runID string) ([]finder.Candidate, error) {
	rows, err := r.db.Query(`
		SELECT name, url, snippet, matching_services, distance_km,
		       match_score, llm_summary, llm_score, address, phone, hours
		FROM run_results
		WHERE run_id = ?
		ORDER BY position
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []finder.Candidate

	for rows.Next() {
		var (
			candidate  finder.Candidate
			snippet    sql.NullString
			services   string
			distance   sql.NullFloat64
			llmSummary sql.NullString
			llmScore   sql.NullFloat64
			address    sql.NullString
			phone      sql.NullString
			hours      sql.NullString
		)

		err := rows.Scan(
			&candidate.Name, &candidate.URL, &snippet, &services, &distance,
			&candidate.MatchScore, &llmSummary, &llmScore, &address, &phone, &hours,
		)
		if err != nil {
			return nil, err
		}

		candidate.Snippet = snippet.String
		candidate.MatchingServices = splitCategories(services)
		candidate.LLMSummary = llmSummary.String
		candidate.Address = address.String
		candidate.Phone = phone.String
		candidate.Hours = hours.String

		if distance.Valid {
			candidate.DistanceKm = &distance.Float64
		}

		if llmScore.Valid {
			candidate.LLMScore = &llmScore.Float64
		}

		results = append(results, candidate)
	}

	return results, rows.Err()
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}

func joinCategories(categories []finder.Category) string {
	parts := make([]string, 0, len(categories))
	for _, c := range categories {
		parts = append(parts, string(c))
	}

	return strings.Join(parts, ",")
}

func splitCategories(s string) []finder.Category {
	if s == "" {
		return nil
	}

	parts := strings.Split(s, ",")

	categories := make([]finder.Category, 0, len(parts))
	for _, p := range parts {
		categories = append(categories, finder.Category(p))
	}

	return categories
}
