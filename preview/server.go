// Copyright 2026 The Trailpost Authors
// SPDX-License-Identifier: Apache-2.0

// Package preview serves a normalized trail on a local map, so the
// export can be eyeballed before anything is published.
package preview

import (
	"fmt"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/trailpost/trailpost/trail"
)

// Server renders one trail. It holds no state beyond the trail itself;
// a new invocation builds a new server.
type Server struct {
	trail   *trail.Trail
	creator string
}

// NewServer builds a preview server for a normalized trail. The
// creator tags the GPX download.
func NewServer(t *trail.Trail, creator string) *Server {
	return &Server{trail: t, creator: creator}
}

// Router builds the gin engine: the map page plus the two payload
// endpoints the page (and the user) can download.
func (s *Server) Router() *gin.Engine {
	r := gin.Default()
	r.SetHTMLTemplate(template.Must(template.New("trail.html").Parse(pageTemplate)))

	r.GET("/", s.trailView)
	r.GET("/api/trail.geojson", s.trailGeoJSON)
	r.GET("/api/trail.gpx", s.trailGPX)

	return r
}

// Run serves until the process is interrupted.
func (s *Server) Run(addr string) error {
	return s.Router().Run(addr)
}

func (s *Server) trailView(ctx *gin.Context) {
	t := s.trail

	ctx.HTML(http.StatusOK, "trail.html", gin.H{
		"Name":       t.Name,
		"Activity":   t.Activity.String(),
		"DistanceKm": fmt.Sprintf("%.1f", t.Distance.Meters/1000),
		"AscentM":    fmt.Sprintf("%.0f", t.ElevationGain.Meters),
		"Points":     len(t.Points),
		"Waypoints":  len(t.Waypoints),
		"Author":     t.Provenance.Author,
		"SourceURL":  t.Provenance.SourceURL,
	})
}

func (s *Server) trailGeoJSON(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, s.trail.GeoJSON())
}

func (s *Server) trailGPX(ctx *gin.Context) {
	body, err := s.trail.GPX(s.creator)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	ctx.Header("Content-Disposition", `attachment; filename="trail.gpx"`)
	ctx.Data(http.StatusOK, "application/gpx+xml", body)
}

// The page is self-contained on purpose: one template, Leaflet from a
// CDN, the trail loaded from the geojson endpoint.
const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Name}} — trailpost preview</title>
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<style>
  body { margin: 0; font-family: sans-serif; }
  header { padding: 0.6em 1em; background: #2d3436; color: #fff; }
  header h1 { margin: 0; font-size: 1.1em; display: inline; }
  header span { margin-left: 1em; color: #b2bec3; font-size: 0.9em; }
  header a { color: #74b9ff; }
  #map { position: absolute; top: 3em; bottom: 0; left: 0; right: 0; }
</style>
</head>
<body>
<header>
  <h1>{{.Name}}</h1>
  <span>{{.Activity}} · {{.DistanceKm}} km · {{.AscentM}} m ascent
    · {{.Points}} points · {{.Waypoints}} waypoints</span>
  <span>{{if .Author}}by {{.Author}} · {{end}}<a href="{{.SourceURL}}">source</a>
    · <a href="/api/trail.gpx">gpx</a>
    · <a href="/api/trail.geojson">geojson</a></span>
</header>
<div id="map"></div>
<script>
  const map = L.map('map');
  L.tileLayer('https://tile.openstreetmap.org/{z}/{x}/{y}.png', {
    attribution: '&copy; OpenStreetMap contributors'
  }).addTo(map);

  fetch('/api/trail.geojson')
    .then(resp => resp.json())
    .then(collection => {
      const layer = L.geoJSON(collection, {
        pointToLayer: (feature, latlng) => {
          const props = feature.properties || {};
          const marker = L.circleMarker(latlng, {
            radius: 6,
            color: props['marker-color'] || '#0984e3'
          });
          if (props.title) {
            marker.bindPopup(props.title +
              (props.description ? '<br>' + props.description : ''));
          }
          return marker;
        }
      }).addTo(map);
      map.fitBounds(layer.getBounds(), { padding: [20, 20] });
    });
</script>
</body>
</html>
`
