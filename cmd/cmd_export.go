// Copyright 2026 The Trailpost Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/trailpost/trailpost/export"
	"github.com/trailpost/trailpost/ledger"
	"github.com/trailpost/trailpost/maphub"
	"github.com/trailpost/trailpost/wikiloc"
)

var exportOptions = struct {
	DryRun              bool
	Force               bool
	GeoJSONPath         string
	GPXPath             string
	Visibility          string
	Basemap             string
	LedgerPath          string
	EnableHTTPTrace     bool
	EnableHTTPBodyTrace bool
}{}

var exportCmd = &cobra.Command{
	Use:   "export <trail-url>",
	Short: "Export one Wikiloc trail to MapHub",
	Long: `Fetches the public trail page, normalizes the track, and publishes it
as a new MapHub map. Prints the map URL on stdout.

Examples:
  trailpost export https://www.wikiloc.com/hiking-trails/cerro-pan-de-azucar-12345678
  trailpost export --dry-run --gpx trail.gpx 12345678`,
	Args: cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		ref, err := wikiloc.ParseRef(args[0])
		if err != nil {
			return err
		}

		switch exportOptions.Visibility {
		case "", maphub.VisibilityPublic, maphub.VisibilityUnlisted, maphub.VisibilityPrivate:
		default:
			return fmt.Errorf("invalid visibility %q: must be public, unlisted or private",
				exportOptions.Visibility)
		}

		var apiKey string
		if !exportOptions.DryRun {
			apiKey = os.Getenv("MAPHUB_KEY")
			if apiKey == "" {
				return errors.New("MAPHUB_KEY is not set; get an API key at https://maphub.net and export it")
			}
		}

		runner := &export.Runner{
			Fetcher: wikiloc.NewClient(&wikiloc.ClientOptions{
				UserAgent:           userAgent(),
				EnableHTTPTrace:     exportOptions.EnableHTTPTrace,
				EnableHTTPBodyTrace: exportOptions.EnableHTTPBodyTrace,
			}),
			Publisher: maphub.NewClient(&maphub.ClientOptions{
				APIKey:              apiKey,
				UserAgent:           userAgent(),
				EnableHTTPTrace:     exportOptions.EnableHTTPTrace,
				EnableHTTPBodyTrace: exportOptions.EnableHTTPBodyTrace,
			}),
			Options: export.Options{
				DryRun:      exportOptions.DryRun,
				Force:       exportOptions.Force,
				GeoJSONPath: exportOptions.GeoJSONPath,
				GPXPath:     exportOptions.GPXPath,
				Creator:     userAgent(),
				Publish: maphub.PublishOptions{
					Visibility: exportOptions.Visibility,
					Basemap:    exportOptions.Basemap,
				},
			},
		}

		if exportOptions.LedgerPath != "" {
			repo, err := ledger.Open(exportOptions.LedgerPath)
			if err != nil {
				return err
			}
			defer repo.Close()

			runner.Recorder = repo
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		summary, err := runner.Run(ctx, ref)
		if err != nil {
			if errors.Is(err, export.ErrAlreadyExported) {
				return fmt.Errorf("%w (use --force to export again)", err)
			}

			return &stageError{Op: "export", Err: err}
		}

		t := summary.Trail
		log.Printf("%q: %d points, %.1f km, %d waypoints (%s schema)",
			t.Name, len(t.Points), t.Distance.Meters/1000, len(t.Waypoints), summary.Schema)

		if summary.Result != nil {
			log.Printf("Published as map %s", summary.Result.MapID)

			if summary.Recorded {
				log.Printf("Recorded in %s", exportOptions.LedgerPath)
			}

			fmt.Println(summary.Result.URL)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().BoolVar(
		&exportOptions.DryRun,
		"dry-run",
		false,
		"Fetch and normalize only; publish nothing",
	)
	exportCmd.Flags().BoolVar(
		&exportOptions.Force,
		"force",
		false,
		"Export even when the ledger already has this trail",
	)
	exportCmd.Flags().StringVar(
		&exportOptions.GeoJSONPath,
		"geojson",
		"",
		"Also write the GeoJSON payload to this file",
	)
	exportCmd.Flags().StringVar(
		&exportOptions.GPXPath,
		"gpx",
		"",
		"Also write a GPX rendition to this file",
	)
	exportCmd.Flags().StringVar(
		&exportOptions.Visibility,
		"visibility",
		maphub.VisibilityPublic,
		"Visibility of the created map: public, unlisted or private",
	)
	exportCmd.Flags().StringVar(
		&exportOptions.Basemap,
		"basemap",
		"",
		"Basemap rendered under the trail (default maphub-earth)",
	)
	exportCmd.Flags().StringVar(
		&exportOptions.LedgerPath,
		"ledger",
		"",
		"Track exports in this database and refuse duplicates",
	)
	exportCmd.Flags().BoolVar(
		&exportOptions.EnableHTTPTrace,
		"trace-http",
		false,
		"Display HTTP requests-responses",
	)
	exportCmd.Flags().BoolVar(
		&exportOptions.EnableHTTPBodyTrace,
		"trace-http-body",
		false,
		"Display HTTP requests-responses bodies",
	)
}
