// Copyright 2026 The Trailpost Authors
// SPDX-License-Identifier: Apache-2.0

// Package trail holds the platform-neutral trail model: the raw payload
// extracted from a source page, the canonical representation used by the
// rest of the pipeline, and the serializations of the latter.
package trail

import (
	"time"

	"github.com/trailpost/trailpost/spatial"
)

// Raw is the unvalidated payload extracted from a source trail page. It
// is owned by the fetch step and discarded after normalization.
type Raw struct {
	Schema        string        `json:"schema,omitempty"` // parser schema that matched
	Title         string        `json:"title"`
	Description   string        `json:"description,omitempty"`
	Author        string        `json:"author,omitempty"`
	Activity      string        `json:"activity,omitempty"` // free text, source vocabulary
	Date          string        `json:"date,omitempty"`     // as published by the source
	Distance      float64       `json:"distance,omitempty"` // meters, 0 when not reported
	ElevationGain float64       `json:"elevation_gain,omitempty"`
	Points        []RawPoint    `json:"points"`
	Waypoints     []RawWaypoint `json:"waypoints,omitempty"`
	SourceURL     string        `json:"source_url,omitempty"`
	SourcePath    string        `json:"source_path,omitempty"`
}

// RawPoint is a single track sample as reported by the source.
type RawPoint struct {
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	Elevation float64 `json:"ele,omitempty"`
	Time      string  `json:"time,omitempty"` // source format, parsed during normalization
}

// RawWaypoint is a manually labeled point of interest on the trail.
type RawWaypoint struct {
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	Elevation float64 `json:"elevation,omitempty"`
	Name      string  `json:"name,omitempty"`
	Pictogram string  `json:"pictogram,omitempty"`
}

// Point is a validated track sample.
type Point struct {
	spatial.Point
	Elevation float64   `json:"ele"`
	Time      time.Time `json:"time,omitzero"`
}

// Waypoint is a validated point of interest.
type Waypoint struct {
	spatial.Point
	Elevation float64 `json:"ele"`
	Name      string  `json:"name,omitempty"`
	Pictogram string  `json:"pictogram,omitempty"`
}

// Metric is a distance-like quantity together with how it was obtained.
type Metric struct {
	Meters float64 `json:"meters"`
	// Computed is true when the value was derived from the track
	// geometry because the source didn't report it.
	Computed bool `json:"computed,omitempty"`
}

// Provenance records where a trail came from.
type Provenance struct {
	SourceURL  string `json:"source_url"`
	SourcePath string `json:"source_path,omitempty"`
	Author     string `json:"author,omitempty"`
	Date       string `json:"date,omitempty"` // source string, passed through
}

// Trail is the validated, platform-agnostic representation.
//
// Invariants: Name is non-empty, Points has at least two entries, every
// point and waypoint passes spatial.Point.Valid, and Points are ordered
// by timestamp when every point carries one (original order otherwise).
type Trail struct {
	Name          string     `json:"name"`
	Description   string     `json:"description,omitempty"`
	Activity      Activity   `json:"activity"`
	Points        []Point    `json:"points"`
	Waypoints     []Waypoint `json:"waypoints,omitempty"`
	Distance      Metric     `json:"distance"`
	ElevationGain Metric     `json:"elevation_gain"`
	Provenance    Provenance `json:"provenance"`
}

// Start returns the first track point.
func (t *Trail) Start() Point {
	return t.Points[0]
}
