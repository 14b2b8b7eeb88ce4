// Copyright 2026 The Trailpost Authors
// SPDX-License-Identifier: Apache-2.0

package trail

import (
	"encoding/xml"
	"time"
)

// GPX 1.1 document model, output only. Only the elements the trail
// model can fill are declared.
type gpxDocument struct {
	XMLName   xml.Name     `xml:"gpx"`
	Version   string       `xml:"version,attr"`
	Creator   string       `xml:"creator,attr"`
	Namespace string       `xml:"xmlns,attr"`
	Metadata  *gpxMetadata `xml:"metadata,omitempty"`
	Waypoints []gpxPoint   `xml:"wpt,omitempty"`
	Track     gpxTrack     `xml:"trk"`
}

type gpxMetadata struct {
	Name string   `xml:"name,omitempty"`
	Desc string   `xml:"desc,omitempty"`
	Link *gpxLink `xml:"link,omitempty"`
}

type gpxLink struct {
	Href string `xml:"href,attr"`
	Text string `xml:"text,omitempty"`
}

type gpxTrack struct {
	Name    string     `xml:"name,omitempty"`
	Type    string     `xml:"type,omitempty"`
	Segment gpxSegment `xml:"trkseg"`
}

type gpxSegment struct {
	Points []gpxPoint `xml:"trkpt"`
}

type gpxPoint struct {
	Lat  float64 `xml:"lat,attr"`
	Lon  float64 `xml:"lon,attr"`
	Ele  float64 `xml:"ele"`
	Time string  `xml:"time,omitempty"`
	Name string  `xml:"name,omitempty"`
}

// GPX renders the trail as a GPX 1.1 document: trail metadata, one wpt
// per waypoint and the track as a single segment. Timestamps are
// emitted in RFC 3339 when present.
func (t *Trail) GPX(creator string) ([]byte, error) {
	doc := gpxDocument{
		Version:   "1.1",
		Creator:   creator,
		Namespace: "http://www.topografix.com/GPX/1/1",
		Metadata: &gpxMetadata{
			Name: t.Name,
			Desc: t.Description,
		},
		Track: gpxTrack{
			Name: t.Name,
			Type: t.Activity.String(),
		},
	}
	if t.Provenance.SourceURL != "" {
		doc.Metadata.Link = &gpxLink{Href: t.Provenance.SourceURL, Text: t.Name}
	}

	for _, w := range t.Waypoints {
		doc.Waypoints = append(doc.Waypoints, gpxPoint{
			Lat:  w.Lat,
			Lon:  w.Lng,
			Ele:  w.Elevation,
			Name: w.Name,
		})
	}

	doc.Track.Segment.Points = make([]gpxPoint, 0, len(t.Points))
	for _, p := range t.Points {
		gp := gpxPoint{Lat: p.Lat, Lon: p.Lng, Ele: p.Elevation}
		if !p.Time.IsZero() {
			gp.Time = p.Time.UTC().Format(time.RFC3339)
		}
		doc.Track.Segment.Points = append(doc.Track.Segment.Points, gp)
	}

	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}

	return append([]byte(xml.Header), body...), nil
}
