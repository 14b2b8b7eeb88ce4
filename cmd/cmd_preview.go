// Copyright 2026 The Trailpost Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/trailpost/trailpost/preview"
	"github.com/trailpost/trailpost/trail"
	"github.com/trailpost/trailpost/wikiloc"
)

var previewOptions = struct {
	Listen              string
	EnableHTTPTrace     bool
	EnableHTTPBodyTrace bool
}{}

var previewCmd = &cobra.Command{
	Use:   "preview <trail-url>",
	Short: "Fetch a trail and serve it on a local map",
	Long: `Fetches and normalizes the trail like export does, then serves it on a
local Leaflet map instead of publishing, so the result can be inspected
first. The page links the GeoJSON and GPX renditions.`,
	Args: cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		ref, err := wikiloc.ParseRef(args[0])
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		client := wikiloc.NewClient(&wikiloc.ClientOptions{
			UserAgent:           userAgent(),
			EnableHTTPTrace:     previewOptions.EnableHTTPTrace,
			EnableHTTPBodyTrace: previewOptions.EnableHTTPBodyTrace,
		})

		raw, err := client.FetchTrail(ctx, ref)
		if err != nil {
			return &stageError{Op: "preview", Err: err}
		}

		t, err := trail.Normalize(raw)
		if err != nil {
			return &stageError{Op: "preview", Err: err}
		}

		log.Printf("%q: %d points, %.1f km, %d waypoints (%s schema)",
			t.Name, len(t.Points), t.Distance.Meters/1000, len(t.Waypoints), raw.Schema)
		log.Printf("Serving preview on http://%s", previewOptions.Listen)

		return preview.NewServer(t, userAgent()).Run(previewOptions.Listen)
	},
}

func init() {
	rootCmd.AddCommand(previewCmd)

	previewCmd.Flags().StringVar(
		&previewOptions.Listen,
		"listen",
		"localhost:8080",
		"Address to serve the preview on",
	)
	previewCmd.Flags().BoolVar(
		&previewOptions.EnableHTTPTrace,
		"trace-http",
		false,
		"Display HTTP requests-responses",
	)
	previewCmd.Flags().BoolVar(
		&previewOptions.EnableHTTPBodyTrace,
		"trace-http-body",
		false,
		"Display HTTP requests-responses bodies",
	)
}
