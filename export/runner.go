// Copyright 2026 The Trailpost Authors
// SPDX-License-Identifier: Apache-2.0

// Package export wires the pipeline: fetch one trail from the source,
// normalize it, publish it to the destination, and optionally record
// the export in a ledger. One attempt per run, no retries.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"github.com/trailpost/trailpost/maphub"
	"github.com/trailpost/trailpost/trail"
	"github.com/trailpost/trailpost/wikiloc"
)

// Fetcher retrieves the raw trail payload behind a ref.
type Fetcher interface {
	FetchTrail(ctx context.Context, ref *wikiloc.TrailRef) (*trail.Raw, error)
}

// Publisher ships a canonical trail to the destination.
type Publisher interface {
	Publish(ctx context.Context, t *trail.Trail, opts *maphub.PublishOptions) (*maphub.UploadResult, error)
}

// Recorder remembers successful exports so accidental duplicates get
// refused. A nil Recorder disables both the check and the recording.
type Recorder interface {
	// Previous describes an earlier export of the trail, or returns
	// the empty string.
	Previous(ctx context.Context, trailID int64) (string, error)

	// Record notes a successful export.
	Record(ctx context.Context, t *trail.Trail, ref *wikiloc.TrailRef, result *maphub.UploadResult) error
}

// Options tune one export run.
type Options struct {
	// DryRun runs fetch and normalize, writes the artifacts, and stops
	// before touching the destination.
	DryRun bool

	// Force exports even when the ledger already has the trail.
	Force bool

	// GeoJSONPath, when set, also writes the destination payload there.
	GeoJSONPath string

	// GPXPath, when set, also writes a GPX rendition there.
	GPXPath string

	// Creator tags generated artifacts.
	Creator string

	// Publish is forwarded to the destination client.
	Publish maphub.PublishOptions
}

// Summary is what a completed run reports back.
type Summary struct {
	Trail    *trail.Trail
	Schema   string
	Result   *maphub.UploadResult // nil on dry runs
	Recorded bool
}

// Runner drives the export pipeline for one trail.
type Runner struct {
	Fetcher   Fetcher
	Publisher Publisher
	Recorder  Recorder
	Options   Options
}

const runSteps = 4 // fetch, normalize, publish, record

// Run executes the pipeline once. Errors come back classifiable with
// Classify; nothing is retried and nothing is rolled back.
func (r *Runner) Run(ctx context.Context, ref *wikiloc.TrailRef) (*Summary, error) {
	if r.Recorder != nil && !r.Options.Force {
		previous, err := r.Recorder.Previous(ctx, ref.ID)
		if err != nil {
			return nil, fmt.Errorf("consulting the export ledger: %w", err)
		}

		if previous != "" {
			return nil, fmt.Errorf("%w: %s", ErrAlreadyExported, previous)
		}
	}

	var bar *progressbar.ProgressBar
	if isatty.IsTerminal(os.Stderr.Fd()) {
		bar = progressbar.NewOptions(runSteps,
			progressbar.OptionSetDescription("Exporting "+ref.String()),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	step := func(description string) {
		if bar == nil {
			log.Print(description)

			return
		}

		bar.Describe(description)

		if err := bar.Add(1); err != nil {
			log.Printf("updating progress bar: %s", err)
		}
	}

	step("Fetching " + ref.String())

	raw, err := r.Fetcher.FetchTrail(ctx, ref)
	if err != nil {
		return nil, err
	}

	step("Normalizing")

	t, err := trail.Normalize(raw)
	if err != nil {
		return nil, err
	}

	summary := &Summary{Trail: t, Schema: raw.Schema}

	if err := r.writeArtifacts(t); err != nil {
		return nil, err
	}

	if r.Options.DryRun {
		if bar != nil {
			if err := bar.Finish(); err != nil {
				log.Printf("finishing progress bar: %s", err)
			}
		}

		log.Printf("Dry run, not publishing %q (%d points)", t.Name, len(t.Points))

		return summary, nil
	}

	step("Publishing " + t.Name)

	result, err := r.Publisher.Publish(ctx, t, &r.Options.Publish)
	if err != nil {
		return nil, err
	}

	summary.Result = result

	step("Recording")

	if r.Recorder != nil {
		// the map exists by now; a ledger hiccup must not turn the
		// run into a failure
		if err := r.Recorder.Record(ctx, t, ref, result); err != nil {
			log.Printf("Recording the export failed: %s", err)
		} else {
			summary.Recorded = true
		}
	}

	return summary, nil
}

func (r *Runner) writeArtifacts(t *trail.Trail) error {
	if path := r.Options.GeoJSONPath; path != "" {
		b, err := json.MarshalIndent(t.GeoJSON(), "", "  ")
		if err != nil {
			return fmt.Errorf("encoding geojson artifact: %w", err)
		}

		if err := os.WriteFile(path, append(b, '\n'), 0o644); err != nil {
			return fmt.Errorf("writing geojson artifact: %w", err)
		}

		log.Printf("Wrote %s", path)
	}

	if path := r.Options.GPXPath; path != "" {
		creator := r.Options.Creator
		if creator == "" {
			creator = "trailpost"
		}

		b, err := t.GPX(creator)
		if err != nil {
			return fmt.Errorf("encoding gpx artifact: %w", err)
		}

		if err := os.WriteFile(path, append(b, '\n'), 0o644); err != nil {
			return fmt.Errorf("writing gpx artifact: %w", err)
		}

		log.Printf("Wrote %s", path)
	}

	return nil
}
