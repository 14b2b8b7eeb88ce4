// Copyright 2026 The Trailpost Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/trailpost/trailpost/ledger"
)

var historyLedgerPath string

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List the trails recorded in the export ledger",
	RunE: func(_ *cobra.Command, _ []string) error {
		repo, err := ledger.Open(historyLedgerPath)
		if err != nil {
			return err
		}
		defer repo.Close()

		records, err := repo.List(context.Background())
		if err != nil {
			return err
		}

		if len(records) == 0 {
			fmt.Println("No exports recorded yet.")

			return nil
		}

		a, b, c, d, e := strings.Repeat("─", 16), strings.Repeat("─", 34),
			strings.Repeat("─", 15), strings.Repeat("─", 8), strings.Repeat("─", 40)
		fmt.Printf("╭─%s─┬─%s─┬─%s─┬─%s─┬─%s─╮\n", a, b, c, d, e)
		fmt.Printf("│ %-16s │ %-34s │ %-15s │ %8s │ %-40s │\n",
			"Exported", "Trail", "Activity", "Km", "Map")
		fmt.Printf("├─%s─┼─%s─┼─%s─┼─%s─┼─%s─┤\n", a, b, c, d, e)

		for _, record := range records {
			fmt.Printf("│ %-16s │ %-34s │ %-15s │ %8.1f │ %-40s │\n",
				record.ExportedAt.Local().Format("2006-01-02 15:04"),
				clip(record.Title, 34),
				record.Activity,
				record.Distance/1000,
				clip(record.MapURL, 40),
			)
		}

		fmt.Printf("╰─%s─┴─%s─┴─%s─┴─%s─┴─%s─╯\n", a, b, c, d, e)

		return nil
	},
}

func clip(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}

	return string(r[:max-1]) + "…"
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().StringVar(
		&historyLedgerPath,
		"ledger",
		"",
		"Export ledger database to read",
	)
	_ = historyCmd.MarkFlagRequired("ledger")
}
