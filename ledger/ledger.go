// Copyright 2026 The Trailpost Authors
// SPDX-License-Identifier: Apache-2.0

// Package ledger remembers which trails were already exported, so a
// rerun doesn't create a second destination map by accident. It stores
// references only (ids, URLs, the start point), never the track
// geometry. The ledger is opt-in; the pipeline runs stateless without
// it.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/duckdb/duckdb-go/v2" // register duckdb driver
	"github.com/google/uuid"
	"github.com/uber/h3-go/v4"

	"github.com/trailpost/trailpost/maphub"
	"github.com/trailpost/trailpost/spatial"
	"github.com/trailpost/trailpost/trail"
	"github.com/trailpost/trailpost/wikiloc"
)

// H3 resolutions recorded for the start point: res 4 is roughly a
// region, res 7 roughly a town. Enough to ask "what did I export
// around here" without storing geometry.
const (
	h3CoarseRes = 4
	h3FineRes   = 7
)

// Record is one remembered export.
type Record struct {
	ID         string
	TrailID    int64
	Slug       string
	Title      string
	Activity   string
	MapID      string
	MapURL     string
	Points     int
	Distance   float64 // meters
	Start      spatial.Point
	ExportedAt time.Time
}

// Repository persists export records in a DuckDB database.
type Repository struct {
	db *sql.DB
}

// Open opens (or creates) the ledger database at path and makes sure
// the schema exists.
func Open(path string) (*Repository, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("opening ledger database: %w", err)
	}

	repo, err := NewRepository(db)
	if err != nil {
		db.Close()

		return nil, err
	}

	return repo, nil
}

// NewRepository wraps an open database handle. The handle must point at
// a DuckDB database; the spatial extension is loaded here.
func NewRepository(db *sql.DB) (*Repository, error) {
	if _, err := db.Exec(`INSTALL spatial; LOAD spatial;`); err != nil {
		return nil, fmt.Errorf("loading spatial extension: %w", err)
	}

	repo := &Repository{db: db}
	if err := repo.CreateSchema(); err != nil {
		return nil, err
	}

	return repo, nil
}

// CreateSchema creates the exports table when it isn't there yet.
func (r *Repository) CreateSchema() error {
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS exports (
			id VARCHAR PRIMARY KEY,
			trail_id BIGINT NOT NULL,
			slug VARCHAR,
			title VARCHAR NOT NULL,
			activity VARCHAR,
			map_id VARCHAR NOT NULL,
			map_url VARCHAR NOT NULL,
			points INTEGER NOT NULL,
			distance_m DOUBLE,
			start_point POINT_2D,
			h3_res4 UBIGINT,
			h3_res7 UBIGINT,
			exported_at TIMESTAMPTZ NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("creating ledger schema: %w", err)
	}

	return nil
}

// Close closes the underlying database.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Previous returns the destination URL of an earlier export of the
// trail, or the empty string when the trail was never recorded. The
// most recent export wins when there are several (forced reruns).
func (r *Repository) Previous(ctx context.Context, trailID int64) (string, error) {
	var mapURL string

	err := r.db.QueryRowContext(ctx, `
		SELECT map_url
		FROM exports
		WHERE trail_id = ?
		ORDER BY exported_at DESC
		LIMIT 1
	`, trailID).Scan(&mapURL)

	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}

	if err != nil {
		return "", fmt.Errorf("querying previous export of trail %d: %w", trailID, err)
	}

	return mapURL, nil
}

// Record notes a successful export.
func (r *Repository) Record(ctx context.Context, t *trail.Trail, ref *wikiloc.TrailRef, result *maphub.UploadResult) error {
	start := t.Start()

	cell4, cell7, err := startCells(start.Point)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO exports (
			id, trail_id, slug, title, activity, map_id, map_url,
			points, distance_m, start_point, h3_res4, h3_res7, exported_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ST_Point(?, ?), ?, ?, ?)
	`,
		uuid.NewString(),
		ref.ID,
		ref.Slug,
		t.Name,
		t.Activity.String(),
		result.MapID.String(),
		result.URL,
		len(t.Points),
		t.Distance.Meters,
		start.Lng,
		start.Lat,
		cell4,
		cell7,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("recording export of trail %d: %w", ref.ID, err)
	}

	return nil
}

// List returns every recorded export, newest first.
func (r *Repository) List(ctx context.Context) ([]*Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, trail_id, slug, title, activity, map_id, map_url,
		       points, distance_m, start_point, exported_at
		FROM exports
		ORDER BY exported_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("listing exports: %w", err)
	}
	defer rows.Close()

	var records []*Record

	for rows.Next() {
		record := &Record{}
		if err := rows.Scan(
			&record.ID, &record.TrailID, &record.Slug, &record.Title,
			&record.Activity, &record.MapID, &record.MapURL,
			&record.Points, &record.Distance, &record.Start,
			&record.ExportedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning export record: %w", err)
		}

		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing exports: %w", err)
	}

	return records, nil
}

func startCells(p spatial.Point) (uint64, uint64, error) {
	latLng := h3.NewLatLng(p.Lat, p.Lng)

	cell4, err := h3.LatLngToCell(latLng, h3CoarseRes)
	if err != nil {
		return 0, 0, fmt.Errorf("computing h3 cell at res %d: %w", h3CoarseRes, err)
	}

	cell7, err := h3.LatLngToCell(latLng, h3FineRes)
	if err != nil {
		return 0, 0, fmt.Errorf("computing h3 cell at res %d: %w", h3FineRes, err)
	}

	return uint64(cell4), uint64(cell7), nil
}
