// Copyright 2026 The Trailpost Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

var debugCmd = &cobra.Command{
	Use:   "debug",
	Short: "Dev tools",
}

func init() {
	rootCmd.AddCommand(debugCmd)
	debugCmd.AddCommand(debugPageCmd)
}
