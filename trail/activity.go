// Copyright 2026 The Trailpost Authors
// SPDX-License-Identifier: Apache-2.0

package trail

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Activity classifies what a trail was recorded doing.
type Activity int

const (
	ActivityOther Activity = iota
	ActivityHiking
	ActivityTrailRunning
	ActivityRunning
	ActivityWalking
	ActivityMountainBiking
	ActivityCycling
	ActivityKayaking
	ActivityClimbing
	ActivitySkiing
	ActivitySnowshoeing
	ActivityHorsebackRiding
	ActivityMotorcycling
)

var activityNames = map[Activity]string{
	ActivityOther:           "other",
	ActivityHiking:          "hiking",
	ActivityTrailRunning:    "trail running",
	ActivityRunning:         "running",
	ActivityWalking:         "walking",
	ActivityMountainBiking:  "mountain biking",
	ActivityCycling:         "cycling",
	ActivityKayaking:        "kayaking",
	ActivityClimbing:        "climbing",
	ActivitySkiing:          "skiing",
	ActivitySnowshoeing:     "snowshoeing",
	ActivityHorsebackRiding: "horseback riding",
	ActivityMotorcycling:    "motorcycling",
}

func (a Activity) String() string {
	if name, found := activityNames[a]; found {
		return name
	}
	return "other"
}

func (a Activity) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// activityVocabulary maps each activity to the labels sources use for
// it: display names, localized names and URL path segments. Hyphens and
// underscores fold to spaces, so "hiking-trails" needs no entry of its
// own.
var activityVocabulary = map[Activity][]string{
	ActivityHiking: {"hiking", "hiking trails", "senderismo", "rutas senderismo",
		"trekking", "excursionismo", "randonnée", "wandern", "escursionismo"},
	ActivityTrailRunning: {"trail running", "trail running trails", "carrera de montaña"},
	ActivityRunning:      {"running", "running trails", "correr", "jogging"},
	ActivityWalking:      {"walking", "walking trails", "caminata", "marcha"},
	ActivityMountainBiking: {"mountain biking", "mountain biking trails", "mountain bike",
		"btt", "bicicleta de montaña", "mtb"},
	ActivityCycling: {"cycling", "cycling trails", "road bike", "cicloturismo",
		"bicicleta de carretera"},
	ActivityKayaking: {"kayaking canoeing", "kayaking canoeing trails", "kayaking",
		"canoeing", "kayak", "piragüismo"},
	ActivityClimbing: {"climbing", "climbing trails", "escalada", "alpinismo",
		"mountaineering"},
	ActivitySkiing: {"skiing", "skiing trails", "esquí", "backcountry skiing",
		"esquí de travesía"},
	ActivitySnowshoeing: {"snowshoeing", "snowshoeing trails", "raquetas de nieve"},
	ActivityHorsebackRiding: {"horseback riding", "horseback riding prints",
		"a caballo", "rutas a caballo"},
	ActivityMotorcycling: {"motorcycling", "motorcycling routes", "moto", "enduro"},
}

var activityIndex = func() map[string]Activity {
	index := make(map[string]Activity)
	for activity, labels := range activityVocabulary {
		for _, label := range labels {
			key := foldLabel(label)
			if previous, found := index[key]; found && previous != activity {
				panic(fmt.Sprintf("activity label %q is ambiguous", label))
			}
			index[key] = activity
		}
	}
	return index
}()

// foldLabel lowercases, trims, strips diacritics and normalizes word
// separators so lookups tolerate the usual source spelling variations.
func foldLabel(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	s = strings.NewReplacer("-", " ", "_", " ").Replace(s)
	folded, _, err := transform.String(
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), s)
	if err != nil {
		return s
	}
	return folded
}

// ActivityFromLabel resolves a source activity label, localized name or
// URL path segment. Unknown labels map to ActivityOther.
func ActivityFromLabel(label string) Activity {
	if activity, found := activityIndex[foldLabel(label)]; found {
		return activity
	}
	return ActivityOther
}
