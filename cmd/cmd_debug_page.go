// Copyright 2026 The Trailpost Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/trailpost/trailpost/utils/htmlutils"
	"github.com/trailpost/trailpost/wikiloc"
)

var debugPageURL string

var debugPageCmd = &cobra.Command{
	Use:   "page [file]",
	Short: "Parse a saved trail page and print the raw extraction as JSON",
	Long: `Reads a trail page from a file or from standard input, runs the schema
parsers over it, and prints the extracted raw payload as indented JSON.
The schema field names the parser that matched.

Examples:
  curl -s https://www.wikiloc.com/hiking-trails/some-trail-123 | trailpost debug page
  trailpost debug page ./saved-trail-page.html`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		var r io.Reader

		if len(args) > 0 {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening page: %w", err)
			}
			defer f.Close()

			r = f
		} else {
			r = os.Stdin
			if isTerminal(os.Stdin) {
				fmt.Fprintln(os.Stderr, "Reading from stdin. Paste HTML and press Ctrl+D to finish.")
			}
		}

		ref := &wikiloc.TrailRef{}
		if debugPageURL != "" {
			var err error

			ref, err = wikiloc.ParseTrailURL(debugPageURL)
			if err != nil {
				return err
			}
		}

		node, err := htmlutils.AsNode(r)
		if err != nil {
			return fmt.Errorf("parsing html: %w", err)
		}

		raw, err := wikiloc.ParsePage(node, ref)
		if err != nil {
			return err
		}

		log.Printf("Matched the %s schema with %d points", raw.Schema, len(raw.Points))

		output, err := json.MarshalIndent(raw, "", "  ")
		if err != nil {
			return fmt.Errorf("marshalling json: %w", err)
		}

		fmt.Println(string(output))

		return nil
	},
}

func init() {
	debugPageCmd.Flags().StringVar(
		&debugPageURL,
		"url",
		"",
		"Trail page URL the file was saved from, for page-level fallbacks",
	)
}
