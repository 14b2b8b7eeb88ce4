// Copyright 2026 The Trailpost Authors
// SPDX-License-Identifier: Apache-2.0

package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trailpost/trailpost/maphub"
	"github.com/trailpost/trailpost/spatial"
	"github.com/trailpost/trailpost/trail"
	"github.com/trailpost/trailpost/wikiloc"
)

func setupLedger(t *testing.T) *Repository {
	t.Helper()

	db, err := sql.Open("duckdb", "") // in-memory database
	require.NoError(t, err)

	repo, err := NewRepository(db)
	require.NoError(t, err)

	t.Cleanup(func() { repo.Close() })

	return repo
}

func testTrail(name string) *trail.Trail {
	return &trail.Trail{
		Name:     name,
		Activity: trail.ActivityHiking,
		Points: []trail.Point{
			{Point: spatial.Point{Lat: -34.7908, Lng: -55.3708}, Elevation: 120},
			{Point: spatial.Point{Lat: -34.7901, Lng: -55.3692}, Elevation: 160},
			{Point: spatial.Point{Lat: -34.7895, Lng: -55.3680}, Elevation: 210},
		},
		Distance: trail.Metric{Meters: 5120},
	}
}

func TestPreviousOnEmptyLedger(t *testing.T) {
	repo := setupLedger(t)

	previous, err := repo.Previous(context.Background(), 12345678)
	require.NoError(t, err)
	assert.Empty(t, previous)
}

func TestRecordThenPrevious(t *testing.T) {
	repo := setupLedger(t)
	ctx := context.Background()

	ref := &wikiloc.TrailRef{
		ID:   12345678,
		Slug: "cerro-pan-de-azucar-12345678",
		URL:  "https://www.wikiloc.com/hiking-trails/cerro-pan-de-azucar-12345678",
	}
	result := &maphub.UploadResult{
		MapID: json.Number("98765"),
		URL:   "https://maphub.net/example/cerro-pan-de-azucar",
	}

	err := repo.Record(ctx, testTrail("Cerro Pan de Azúcar"), ref, result)
	require.NoError(t, err)

	previous, err := repo.Previous(ctx, ref.ID)
	require.NoError(t, err)
	assert.Equal(t, result.URL, previous)

	// other trails stay unknown
	previous, err = repo.Previous(ctx, 999)
	require.NoError(t, err)
	assert.Empty(t, previous)
}

func TestRecordStoresTheReference(t *testing.T) {
	repo := setupLedger(t)
	ctx := context.Background()

	ref := &wikiloc.TrailRef{ID: 11, Slug: "salto-del-penitente-11"}
	result := &maphub.UploadResult{MapID: json.Number("42"), URL: "https://maphub.net/u/m/42"}

	require.NoError(t, repo.Record(ctx, testTrail("Salto del Penitente"), ref, result))

	records, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)

	record := records[0]
	assert.NotEmpty(t, record.ID)
	assert.Equal(t, int64(11), record.TrailID)
	assert.Equal(t, "salto-del-penitente-11", record.Slug)
	assert.Equal(t, "Salto del Penitente", record.Title)
	assert.Equal(t, "hiking", record.Activity)
	assert.Equal(t, "42", record.MapID)
	assert.Equal(t, "https://maphub.net/u/m/42", record.MapURL)
	assert.Equal(t, 3, record.Points)
	assert.InDelta(t, 5120, record.Distance, 0.001)
	assert.InDelta(t, -34.7908, record.Start.Lat, 0.0001)
	assert.InDelta(t, -55.3708, record.Start.Lng, 0.0001)
	assert.False(t, record.ExportedAt.IsZero())
}

func TestListNewestFirst(t *testing.T) {
	repo := setupLedger(t)
	ctx := context.Background()

	for i, title := range []string{"first", "second", "third"} {
		ref := &wikiloc.TrailRef{ID: int64(i + 1)}
		result := &maphub.UploadResult{
			MapID: json.Number("1"),
			URL:   "https://maphub.net/u/m/" + title,
		}
		require.NoError(t, repo.Record(ctx, testTrail(title), ref, result))
	}

	records, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 3)

	for i := 1; i < len(records); i++ {
		assert.False(t, records[i-1].ExportedAt.Before(records[i].ExportedAt))
	}
}

func TestForcedRerunKeepsBothRecords(t *testing.T) {
	repo := setupLedger(t)
	ctx := context.Background()

	ref := &wikiloc.TrailRef{ID: 7, Slug: "quebrada-7"}

	first := &maphub.UploadResult{MapID: json.Number("100"), URL: "https://maphub.net/u/m/100"}
	require.NoError(t, repo.Record(ctx, testTrail("Quebrada"), ref, first))

	second := &maphub.UploadResult{MapID: json.Number("101"), URL: "https://maphub.net/u/m/101"}
	require.NoError(t, repo.Record(ctx, testTrail("Quebrada"), ref, second))

	// the most recent export is the one a later run gets warned about
	previous, err := repo.Previous(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "https://maphub.net/u/m/101", previous)

	records, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}
