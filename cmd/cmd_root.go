// Copyright 2026 The Trailpost Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/trailpost/trailpost/export"
)

type logWriter struct {
	writer io.Writer
}

func (w *logWriter) Write(bytes []byte) (int, error) {
	return fmt.Fprintf(w.writer, "%s %s", time.Now().Format("2006-01-02 15:04:05"), string(bytes))
}

func init() {
	log.SetFlags(0)
	log.SetOutput(&logWriter{writer: os.Stderr})
}

var rootCmd = &cobra.Command{
	Use:   "trailpost",
	Short: "re-publish Wikiloc trails on MapHub",
	Long: `
trailpost exports a single GPS trail from its public Wikiloc page and
re-publishes it as a MapHub map, keeping attribution to the original
author. The MapHub API key is read from the MAPHUB_KEY environment
variable (a .env file is honored when present).
`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var Version = "dev"

func userAgent() string {
	return fmt.Sprintf("trailpost/%s (+https://github.com/trailpost/trailpost)", Version)
}

// stageError carries a pipeline failure up to Execute, so deferred
// cleanups (ledger close, signal stop) run before the process exits
// with the stage code.
type stageError struct {
	Op  string
	Err error
}

func (e *stageError) Error() string {
	return fmt.Sprintf("%s failed at the %s stage: %s", e.Op, export.Classify(e.Err), e.Err)
}

func (e *stageError) Unwrap() error {
	return e.Err
}

// exitCode maps a command failure to the process exit code: the stage
// code for pipeline failures, 1 for usage and configuration trouble.
func exitCode(err error) int {
	if err == nil {
		return 0
	}

	var stageErr *stageError
	if errors.As(err, &stageErr) {
		return export.Classify(stageErr.Err).ExitCode()
	}

	return 1
}

func Execute(version string) {
	Version = version
	rootCmd.Version = version

	// flags never carry the credential; .env is the one local
	// convenience on top of the environment
	if err := godotenv.Load(); err == nil {
		log.Print("Loaded environment from .env")
	}

	err := rootCmd.Execute()
	if err != nil {
		log.Print(err)
		os.Exit(exitCode(err))
	}
}
