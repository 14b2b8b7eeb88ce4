// Copyright 2026 The Trailpost Authors
// SPDX-License-Identifier: Apache-2.0

package trail

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/trailpost/trailpost/spatial"
)

// Normalize validates raw trail data and promotes it to the canonical
// representation. It is deterministic: the same input always produces
// the same trail, and nothing is read from the clock or the
// environment.
//
// Track points with NaN or out-of-range coordinates are dropped. The
// surviving points keep the source ordering unless every one of them
// carries a timestamp, in which case they are sorted by it (stable, so
// equal timestamps keep their relative order).
func Normalize(raw *Raw) (*Trail, error) {
	if raw == nil {
		return nil, &ValidationError{Message: "no trail data"}
	}

	var problems []string

	name := strings.TrimSpace(raw.Title)
	if name == "" {
		problems = append(problems, "title must not be empty")
	}

	points := make([]Point, 0, len(raw.Points))
	for _, rp := range raw.Points {
		p := Point{
			Point:     spatial.Point{Lat: rp.Lat, Lng: rp.Lon},
			Elevation: rp.Elevation,
			Time:      parsePointTime(rp.Time),
		}
		if !p.Valid() {
			continue
		}
		points = append(points, p)
	}
	if len(points) < 2 {
		problems = append(problems,
			fmt.Sprintf("a track needs at least 2 valid points, got %d", len(points)))
	}

	if len(problems) > 0 {
		return nil, &ValidationError{Message: strings.Join(problems, "; ")}
	}

	if allTimestamped(points) {
		sort.SliceStable(points, func(i, j int) bool {
			return points[i].Time.Before(points[j].Time)
		})
	}

	var waypoints []Waypoint
	for _, rw := range raw.Waypoints {
		w := Waypoint{
			Point:     spatial.Point{Lat: rw.Lat, Lng: rw.Lon},
			Elevation: rw.Elevation,
			Name:      strings.TrimSpace(rw.Name),
			Pictogram: rw.Pictogram,
		}
		if !w.Valid() {
			continue
		}
		waypoints = append(waypoints, w)
	}

	distance := Metric{Meters: raw.Distance}
	if distance.Meters <= 0 {
		distance = Metric{Meters: trackDistance(points), Computed: true}
	}
	gain := Metric{Meters: raw.ElevationGain}
	if gain.Meters <= 0 {
		gain = Metric{Meters: trackElevationGain(points), Computed: true}
	}

	return &Trail{
		Name:          name,
		Description:   strings.TrimSpace(raw.Description),
		Activity:      ActivityFromLabel(raw.Activity),
		Points:        points,
		Waypoints:     waypoints,
		Distance:      distance,
		ElevationGain: gain,
		Provenance: Provenance{
			SourceURL:  raw.SourceURL,
			SourcePath: raw.SourcePath,
			Author:     strings.TrimSpace(raw.Author),
			Date:       strings.TrimSpace(raw.Date),
		},
	}, nil
}

func allTimestamped(points []Point) bool {
	for _, p := range points {
		if p.Time.IsZero() {
			return false
		}
	}

	return true
}

// trackDistance sums the great-circle distance between consecutive
// points, in meters.
func trackDistance(points []Point) float64 {
	var total float64
	for i := 1; i < len(points); i++ {
		total += points[i-1].Point.HaversineDistance(&points[i].Point)
	}

	return total
}

// trackElevationGain sums the positive elevation deltas between
// consecutive points, in meters.
func trackElevationGain(points []Point) float64 {
	var total float64
	for i := 1; i < len(points); i++ {
		if d := points[i].Elevation - points[i-1].Elevation; d > 0 {
			total += d
		}
	}

	return total
}

var pointTimeFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// parsePointTime parses the per-point timestamp formats seen in the
// wild: RFC 3339 variants and unix epochs in seconds or milliseconds.
// Unparseable values yield the zero time.
func parsePointTime(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}

	if n, err := strconv.ParseInt(s, 10, 64); err == nil && n > 0 {
		if n >= 1e12 { // too large for seconds, take as milliseconds
			return time.UnixMilli(n).UTC()
		}

		return time.Unix(n, 0).UTC()
	}

	for _, format := range pointTimeFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t.UTC()
		}
	}

	return time.Time{}
}
