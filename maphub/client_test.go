// Copyright 2026 The Trailpost Authors
// SPDX-License-Identifier: Apache-2.0

package maphub

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/trailpost/trailpost/spatial"
	"github.com/trailpost/trailpost/trail"
	"github.com/trailpost/trailpost/utils/httputils"
)

func publishableTrail() *trail.Trail {
	return &trail.Trail{
		Name:        "Cerro Pan de Azúcar",
		Description: "Subida por la ladera sur.",
		Activity:    trail.ActivityHiking,
		Points: []trail.Point{
			{Point: spatial.Point{Lat: -34.7930, Lng: -55.2357}, Elevation: 48},
			{Point: spatial.Point{Lat: -34.7921, Lng: -55.2349}, Elevation: 95},
		},
		Distance:      trail.Metric{Meters: 5230.5},
		ElevationGain: trail.Metric{Meters: 312},
		Provenance: trail.Provenance{
			SourceURL:  "https://www.wikiloc.com/hiking-trails/cerro-pan-de-azucar-12345678",
			SourcePath: "/hiking-trails/cerro-pan-de-azucar-12345678",
			Author:     "veronica.m",
		},
	}
}

func testClient(serverURL string) *Client {
	return NewClient(&ClientOptions{
		APIKey:  "sekret-key",
		BaseURL: serverURL + "/api/1",
	})
}

func TestPublish_HappyPath(t *testing.T) {
	var (
		calls         []string
		authorization string
		gotArgs       uploadArgs
		gotUpdate     updateRequest
	)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/1/map/upload", func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, "upload")
		authorization = r.Header.Get("Authorization")

		if err := json.Unmarshal([]byte(r.Header.Get("MapHub-API-Arg")), &gotArgs); err != nil {
			t.Errorf("MapHub-API-Arg is not JSON: %s", err)
		}

		_, _ = w.Write([]byte(`{"id": 4242, "url": "https://maphub.net/veronica/cerro-pan-de-azucar"}`))
	})
	mux.HandleFunc("/api/1/map/update", func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, "update")

		if err := json.NewDecoder(r.Body).Decode(&gotUpdate); err != nil {
			t.Errorf("update body is not JSON: %s", err)
		}

		_, _ = w.Write([]byte(`{}`))
	})
	mux.HandleFunc("/api/1/map/refresh_image", func(w http.ResponseWriter, _ *http.Request) {
		calls = append(calls, "refresh_image")
		_, _ = w.Write([]byte(`{}`))
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	result, err := testClient(server.URL).Publish(context.Background(), publishableTrail(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	if want := []string{"upload", "update", "refresh_image"}; len(calls) != 3 ||
		calls[0] != want[0] || calls[1] != want[1] || calls[2] != want[2] {
		t.Errorf("calls = %v, want %v", calls, want)
	}

	if authorization != "Token sekret-key" {
		t.Errorf("Authorization = %q, want Token sekret-key", authorization)
	}

	if gotArgs.FileType != "empty" || gotArgs.Title != "Cerro Pan de Azúcar" ||
		gotArgs.ShortName != "/hiking-trails/cerro-pan-de-azucar-12345678" ||
		gotArgs.Visibility != VisibilityPublic {
		t.Errorf("upload args = %+v", gotArgs)
	}

	if gotUpdate.MapID != "4242" || gotUpdate.Basemap != defaultBasemap ||
		gotUpdate.Visibility != VisibilityPublic {
		t.Errorf("update request = %+v", gotUpdate)
	}

	if gotUpdate.GeoJSON == nil || len(gotUpdate.GeoJSON.Features) != 2 {
		t.Errorf("update geojson = %+v, want line and start marker", gotUpdate.GeoJSON)
	}

	for _, want := range []string{"ladera sur", "Activity: hiking", "5.2 km", "312 m",
		"wikiloc.com", "veronica.m"} {
		if !strings.Contains(gotUpdate.Description, want) {
			t.Errorf("description %q should mention %q", gotUpdate.Description, want)
		}
	}

	if result.MapID != "4242" || result.URL != "https://maphub.net/veronica/cerro-pan-de-azucar" {
		t.Errorf("result = %+v", result)
	}
}

func TestPublish_Overrides(t *testing.T) {
	var gotArgs uploadArgs

	var gotUpdate updateRequest

	mux := http.NewServeMux()
	mux.HandleFunc("/api/1/map/upload", func(w http.ResponseWriter, r *http.Request) {
		_ = json.Unmarshal([]byte(r.Header.Get("MapHub-API-Arg")), &gotArgs)
		_, _ = w.Write([]byte(`{"id": 7}`))
	})
	mux.HandleFunc("/api/1/map/update", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotUpdate)
		_, _ = w.Write([]byte(`{}`))
	})
	mux.HandleFunc("/api/1/map/refresh_image", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	opts := &PublishOptions{Visibility: VisibilityUnlisted, Basemap: "maphub-outdoor"}

	result, err := testClient(server.URL).Publish(context.Background(), publishableTrail(), opts)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	if gotArgs.Visibility != VisibilityUnlisted || gotUpdate.Visibility != VisibilityUnlisted {
		t.Errorf("visibility = %v/%v, want unlisted", gotArgs.Visibility, gotUpdate.Visibility)
	}

	if gotUpdate.Basemap != "maphub-outdoor" {
		t.Errorf("basemap = %v, want maphub-outdoor", gotUpdate.Basemap)
	}

	// no url in the create response: built from the map id
	if result.URL != "https://maphub.net/map/7" {
		t.Errorf("URL = %v, want the fallback", result.URL)
	}
}

func TestPublish_AuthRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": "invalid token"}`))
	}))
	defer server.Close()

	_, err := testClient(server.URL).Publish(context.Background(), publishableTrail(), nil)
	if !IsAuthError(err) {
		t.Fatalf("expected an auth error, got %v", err)
	}

	if IsUploadError(err) {
		t.Error("an auth failure must not classify as an upload failure")
	}

	if !strings.Contains(err.Error(), "invalid token") {
		t.Errorf("error should carry the API message: %v", err)
	}
}

func TestPublish_UpdateFailureReportsOrphanMap(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/1/map/upload", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"id": 4242, "url": "https://maphub.net/x/y"}`))
	})
	mux.HandleFunc("/api/1/map/update", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error": "geometry too large"}`, http.StatusInternalServerError)
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	_, err := testClient(server.URL).Publish(context.Background(), publishableTrail(), nil)
	if !IsUploadError(err) {
		t.Fatalf("expected an upload error, got %v", err)
	}

	if !strings.Contains(err.Error(), "4242") {
		t.Errorf("error should name the orphan map: %v", err)
	}
}

func TestPublish_ErrorKeyOnSuccessStatus(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/1/map/upload", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"id": 4242}`))
	})
	mux.HandleFunc("/api/1/map/update", func(w http.ResponseWriter, _ *http.Request) {
		// HTTP 200 with an error key is still a failure
		_, _ = w.Write([]byte(`{"error": "invalid geojson"}`))
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	_, err := testClient(server.URL).Publish(context.Background(), publishableTrail(), nil)
	if !IsUploadError(err) {
		t.Fatalf("expected an upload error, got %v", err)
	}

	if !strings.Contains(err.Error(), "invalid geojson") {
		t.Errorf("error should carry the API message: %v", err)
	}
}

func TestPublish_RefreshFailureIsNotFatal(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/1/map/upload", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"id": 4242, "url": "https://maphub.net/x/y"}`))
	})
	mux.HandleFunc("/api/1/map/update", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})
	mux.HandleFunc("/api/1/map/refresh_image", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "thumbnailer down", http.StatusInternalServerError)
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	result, err := testClient(server.URL).Publish(context.Background(), publishableTrail(), nil)
	if err != nil {
		t.Fatalf("a failed preview refresh must not fail the publish: %s", err)
	}

	if result.MapID != "4242" {
		t.Errorf("result = %+v", result)
	}
}

func TestPublish_MissingMapID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	_, err := testClient(server.URL).Publish(context.Background(), publishableTrail(), nil)
	if !IsUploadError(err) {
		t.Fatalf("expected an upload error, got %v", err)
	}

	if !strings.Contains(err.Error(), "map id") {
		t.Errorf("error should mention the missing map id: %v", err)
	}
}

func TestPublish_NetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
	server.Close() // nothing listens anymore

	_, err := testClient(server.URL).Publish(context.Background(), publishableTrail(), nil)
	if !httputils.IsNetworkError(err) {
		t.Fatalf("expected a network error, got %v", err)
	}

	if IsUploadError(err) || IsAuthError(err) {
		t.Error("transport failures must not classify as API errors")
	}
}

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		statusCode int
		want       ErrorType
	}{
		{http.StatusUnauthorized, ErrorTypeAuth},
		{http.StatusForbidden, ErrorTypeAuth},
		{http.StatusTooManyRequests, ErrorTypeRateLimit},
		{http.StatusBadRequest, ErrorTypeUpload},
		{http.StatusInternalServerError, ErrorTypeUpload},
	}

	for _, tt := range tests {
		if got := ClassifyStatus(tt.statusCode); got != tt.want {
			t.Errorf("ClassifyStatus(%d) = %v, want %v", tt.statusCode, got, tt.want)
		}
	}
}
