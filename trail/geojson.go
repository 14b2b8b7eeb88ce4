// Copyright 2026 The Trailpost Authors
// SPDX-License-Identifier: Apache-2.0

package trail

import "strconv"

// startMarkerColor highlights the first point of the track so viewers
// can tell at a glance where the trail begins.
const startMarkerColor = "#3cc954"

const defaultMarkerSymbol = "location-pin"

// markerSymbols maps source pictogram names to the closest marker
// symbol the destination renders.
var markerSymbols = map[string]string{
	"Intersection": "crossing",
	"Cave":         "summit",
	"River":        "dam",
	"Tree":         "forest",
	"Waterfall":    "dam",
	"Museum":       "museum",
	"Castle":       "museum",
}

func markerSymbol(pictogram string) string {
	if symbol, found := markerSymbols[pictogram]; found {
		return symbol
	}

	return defaultMarkerSymbol
}

// FeatureCollection is the subset of GeoJSON (RFC 7946) the pipeline
// emits.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties,omitempty"`
}

type Geometry struct {
	Type        string `json:"type"`
	Coordinates any    `json:"coordinates"` // [lng, lat, ele] or a list of them
}

// GeoJSON renders the trail as a feature collection: the track as a
// LineString, a highlighted start marker, and one Point per waypoint.
// The output is deterministic for a given trail.
func (t *Trail) GeoJSON() *FeatureCollection {
	features := make([]Feature, 0, 2+len(t.Waypoints))

	coordinates := make([][]float64, 0, len(t.Points))
	for _, p := range t.Points {
		coordinates = append(coordinates, []float64{p.Lng, p.Lat, p.Elevation})
	}
	features = append(features, Feature{
		Type:     "Feature",
		Geometry: Geometry{Type: "LineString", Coordinates: coordinates},
		Properties: map[string]any{
			"title": t.Name,
		},
	})

	if len(t.Points) > 0 {
		start := t.Start()
		features = append(features, Feature{
			Type: "Feature",
			Geometry: Geometry{
				Type:        "Point",
				Coordinates: []float64{start.Lng, start.Lat, start.Elevation},
			},
			Properties: map[string]any{
				"title":        "Start",
				"marker-color": startMarkerColor,
			},
		})
	}

	for _, w := range t.Waypoints {
		features = append(features, Feature{
			Type: "Feature",
			Geometry: Geometry{
				Type:        "Point",
				Coordinates: []float64{w.Lng, w.Lat, w.Elevation},
			},
			Properties: map[string]any{
				"title":         w.Name,
				"description":   "Elevation: " + strconv.FormatFloat(w.Elevation, 'f', -1, 64) + "m",
				"marker-symbol": markerSymbol(w.Pictogram),
			},
		})
	}

	return &FeatureCollection{Type: "FeatureCollection", Features: features}
}
