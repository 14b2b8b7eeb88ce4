// Copyright 2026 The Trailpost Authors
// SPDX-License-Identifier: Apache-2.0

package wikiloc

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/trailpost/trailpost/trail"
	"github.com/trailpost/trailpost/utils/htmlutils"
)

// pageData is what the shared page scan gathers before the schema
// parsers run: document title, canonical link and every inline script.
type pageData struct {
	Title     string
	Canonical string
	Scripts   []pageScript
}

type pageScript struct {
	Type string
	ID   string
	Text string
}

// scanPage walks the document collecting the pieces every schema
// parser feeds on.
func scanPage(page *pageData, n *html.Node) {
	if n.Type == html.ElementNode {
		switch strings.ToLower(n.Data) {
		case "title":
			sb := strings.Builder{}
			if err := htmlutils.Node2string(n, &sb); err == nil {
				page.Title = strings.TrimSpace(sb.String())
			}
		case "link":
			var rel, href string

			for _, attr := range n.Attr {
				switch {
				case strings.EqualFold("rel", attr.Key):
					rel = attr.Val
				case strings.EqualFold("href", attr.Key):
					href = attr.Val
				}
			}

			if strings.EqualFold(rel, "canonical") && href != "" {
				page.Canonical = href
			}
		case "script":
			script := pageScript{}

			for _, attr := range n.Attr {
				switch {
				case strings.EqualFold("type", attr.Key):
					script.Type = attr.Val
				case strings.EqualFold("id", attr.Key):
					script.ID = attr.Val
				}
			}

			sb := strings.Builder{}
			for child := n.FirstChild; child != nil; child = child.NextSibling {
				if child.Type == html.TextNode {
					sb.WriteString(child.Data)
				}
			}

			script.Text = sb.String()
			if strings.TrimSpace(script.Text) != "" {
				page.Scripts = append(page.Scripts, script)
			}
		}
	}

	for child := n.FirstChild; child != nil; child = child.NextSibling {
		scanPage(page, child)
	}
}

// Parser extracts the raw trail payload out of a scanned page. Each
// implementation targets one page schema; the source reworks its pages
// every few years, so old schemas stay around until pages stop shipping
// them.
type Parser interface {
	// Name identifies the schema, for logs and the debug command.
	Name() string

	// Parse extracts the trail payload. It returns errNoPayload when
	// the page doesn't carry this parser's schema at all.
	Parse(page *pageData, ref *TrailRef) (*trail.Raw, error)
}

// errNoPayload means the schema isn't on the page and the next parser
// should get a chance. A schema that IS present but broken fails hard
// instead.
var errNoPayload = errors.New("page carries no payload for this schema")

// Parsers returns the schema parsers, newest first.
func Parsers() []Parser {
	return []Parser{&mapDataParser{}, &geojsonIslandParser{}}
}

// ParsePage runs the schema parsers over a fetched trail page and
// fills the shared page-level fields on whatever payload they find.
func ParsePage(n *html.Node, ref *TrailRef) (*trail.Raw, error) {
	page := &pageData{}
	scanPage(page, n)

	for _, parser := range Parsers() {
		raw, err := parser.Parse(page, ref)
		if errors.Is(err, errNoPayload) {
			continue
		}

		if err != nil {
			return nil, &FetchError{
				Type:    ErrorTypeBadPage,
				URL:     ref.URL,
				Message: fmt.Sprintf("parsing %s payload", parser.Name()),
				Err:     err,
			}
		}

		raw.Schema = parser.Name()
		fillPageFields(raw, page, ref)

		return raw, nil
	}

	return nil, &FetchError{
		Type:    ErrorTypeBadPage,
		URL:     ref.URL,
		Message: "no known trail payload on page",
	}
}

func fillPageFields(raw *trail.Raw, page *pageData, ref *TrailRef) {
	if raw.Title == "" {
		raw.Title = trailTitle(page.Title)
	}

	if raw.Activity == "" {
		raw.Activity = ref.Activity
	}

	raw.SourceURL = ref.URL
	raw.SourcePath = ref.Path

	if page.Canonical != "" {
		raw.SourceURL = page.Canonical

		if u, err := url.Parse(page.Canonical); err == nil && u.Path != "" {
			raw.SourcePath = u.Path
		}
	}
}

// trailTitle strips the site branding off a document title, e.g.
// "Wikiloc | Cerro Pan de Azúcar" -> "Cerro Pan de Azúcar".
func trailTitle(docTitle string) string {
	if _, after, found := strings.Cut(docTitle, "|"); found {
		return strings.TrimSpace(after)
	}

	return strings.TrimSpace(docTitle)
}

// flexString decodes a JSON string or number into its textual form, so
// timestamps survive whether the page ships them quoted or not.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}

		*f = flexString(s)

		return nil
	}

	if string(b) == "null" {
		*f = ""

		return nil
	}

	*f = flexString(b)

	return nil
}

// mapDataParser handles the current page schema: an inline script
// assigning a mapData object with the full trail payload.
type mapDataParser struct{}

type mapDataPayload struct {
	Title         string            `json:"title"`
	Author        string            `json:"author"`
	Activity      string            `json:"activity"`
	Date          string            `json:"date"`
	Distance      float64           `json:"distance"`
	ElevationGain float64           `json:"elevationGain"`
	Description   string            `json:"description"`
	Points        []mapDataPoint    `json:"points"`
	Waypoints     []mapDataWaypoint `json:"waypoints"`
}

type mapDataPoint struct {
	Lat  float64    `json:"lat"`
	Lon  float64    `json:"lon"`
	Ele  float64    `json:"ele"`
	Time flexString `json:"time"`
}

type mapDataWaypoint struct {
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	Elevation float64 `json:"elevation"`
	Name      string  `json:"name"`
	Pictogram string  `json:"pictogramName"`
}

func (p *mapDataParser) Name() string {
	return "mapData"
}

func (p *mapDataParser) Parse(page *pageData, _ *TrailRef) (*trail.Raw, error) {
	var payload string

	for _, script := range page.Scripts {
		if !strings.Contains(script.Text, "mapData") {
			continue
		}

		obj, err := balancedJSONObject(script.Text, "mapData")
		if err != nil {
			// other scripts may mention mapData without carrying it
			continue
		}

		payload = obj

		break
	}

	if payload == "" {
		return nil, errNoPayload
	}

	var data mapDataPayload
	if err := json.Unmarshal([]byte(payload), &data); err != nil {
		return nil, fmt.Errorf("decoding mapData object: %w", err)
	}

	// an empty points array is still a valid extraction; whether the
	// track is long enough is the normalizer's call
	raw := &trail.Raw{
		Title:         data.Title,
		Author:        data.Author,
		Activity:      data.Activity,
		Date:          data.Date,
		Distance:      data.Distance,
		ElevationGain: data.ElevationGain,
		Description:   data.Description,
		Points:        make([]trail.RawPoint, 0, len(data.Points)),
	}

	for _, pt := range data.Points {
		raw.Points = append(raw.Points, trail.RawPoint{
			Lat:       pt.Lat,
			Lon:       pt.Lon,
			Elevation: pt.Ele,
			Time:      string(pt.Time),
		})
	}

	for _, w := range data.Waypoints {
		raw.Waypoints = append(raw.Waypoints, trail.RawWaypoint{
			Lat:       w.Lat,
			Lon:       w.Lon,
			Elevation: w.Elevation,
			Name:      w.Name,
			Pictogram: w.Pictogram,
		})
	}

	return raw, nil
}

// balancedJSONObject returns the first balanced {...} after marker,
// honoring strings and escapes so braces inside values don't cut the
// object short.
func balancedJSONObject(text, marker string) (string, error) {
	idx := strings.Index(text, marker)
	if idx < 0 {
		return "", fmt.Errorf("marker %q not present", marker)
	}

	start := strings.IndexByte(text[idx:], '{')
	if start < 0 {
		return "", fmt.Errorf("no object after marker %q", marker)
	}

	start += idx

	var depth int

	var inString, escaped bool

	for i := start; i < len(text); i++ {
		c := text[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}

			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], nil
			}
		}
	}

	return "", fmt.Errorf("unterminated object after marker %q", marker)
}

// geojsonIslandParser handles the older page schema: a JSON data
// island with the track as a GeoJSON feature collection. Those pages
// carry no per-point timestamps, title or author; the page-level
// fields cover for them.
type geojsonIslandParser struct{}

const geojsonIslandID = "trail-geojson"

type islandFeatureCollection struct {
	Type     string          `json:"type"`
	Features []islandFeature `json:"features"`
}

type islandFeature struct {
	Type     string `json:"type"`
	Geometry struct {
		Type        string          `json:"type"`
		Coordinates json.RawMessage `json:"coordinates"`
	} `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

func (p *geojsonIslandParser) Name() string {
	return "geojson-island"
}

func (p *geojsonIslandParser) Parse(page *pageData, _ *TrailRef) (*trail.Raw, error) {
	var payload string

	for _, script := range page.Scripts {
		if strings.EqualFold(script.Type, "application/json") && script.ID == geojsonIslandID {
			payload = script.Text

			break
		}
	}

	if strings.TrimSpace(payload) == "" {
		return nil, errNoPayload
	}

	var fc islandFeatureCollection
	if err := json.Unmarshal([]byte(payload), &fc); err != nil {
		return nil, fmt.Errorf("decoding geojson island: %w", err)
	}

	raw := &trail.Raw{}

	for _, f := range fc.Features {
		switch f.Geometry.Type {
		case "LineString":
			var coordinates [][]float64
			if err := json.Unmarshal(f.Geometry.Coordinates, &coordinates); err != nil {
				return nil, fmt.Errorf("decoding track coordinates: %w", err)
			}

			for _, c := range coordinates {
				if len(c) < 2 {
					return nil, fmt.Errorf("track position with %d ordinates", len(c))
				}

				pt := trail.RawPoint{Lon: c[0], Lat: c[1]}
				if len(c) > 2 {
					pt.Elevation = c[2]
				}

				raw.Points = append(raw.Points, pt)
			}
		case "Point":
			var c []float64
			if err := json.Unmarshal(f.Geometry.Coordinates, &c); err != nil {
				return nil, fmt.Errorf("decoding waypoint coordinates: %w", err)
			}

			if len(c) < 2 {
				return nil, fmt.Errorf("waypoint position with %d ordinates", len(c))
			}

			w := trail.RawWaypoint{Lon: c[0], Lat: c[1]}
			if len(c) > 2 {
				w.Elevation = c[2]
			}

			if v, ok := f.Properties["name"].(string); ok {
				w.Name = v
			}

			if v, ok := f.Properties["pictogramName"].(string); ok {
				w.Pictogram = v
			}

			if v, ok := f.Properties["elevation"].(float64); ok {
				w.Elevation = v
			}

			raw.Waypoints = append(raw.Waypoints, w)
		}
	}

	// an island without a track line extracts to zero points; the
	// normalizer decides whether that makes a trail
	return raw, nil
}
