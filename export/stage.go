// Copyright 2026 The Trailpost Authors
// SPDX-License-Identifier: Apache-2.0

package export

import (
	"errors"

	"github.com/trailpost/trailpost/maphub"
	"github.com/trailpost/trailpost/trail"
	"github.com/trailpost/trailpost/utils/httputils"
	"github.com/trailpost/trailpost/wikiloc"
)

// ErrAlreadyExported means the ledger already has this trail and the
// run wasn't forced.
var ErrAlreadyExported = errors.New("trail already exported")

// Stage identifies which part of the pipeline a run failed in.
type Stage int

const (
	// StageNone no failure.
	StageNone Stage = iota
	// StageConfig bad usage, bad configuration or local I/O trouble.
	StageConfig
	// StageFetch the source couldn't serve a usable trail page.
	StageFetch
	// StageValidate the trail data doesn't satisfy the canonical rules.
	StageValidate
	// StageAuth the destination rejected the credential.
	StageAuth
	// StageUpload the destination failed the upload.
	StageUpload
	// StageNetwork a connection-level failure on either side.
	StageNetwork
)

func (s Stage) String() string {
	switch s {
	case StageNone:
		return "ok"
	case StageConfig:
		return "config"
	case StageFetch:
		return "fetch"
	case StageValidate:
		return "validate"
	case StageAuth:
		return "auth"
	case StageUpload:
		return "upload"
	case StageNetwork:
		return "network"
	default:
		return "unknown"
	}
}

// ExitCode returns the process exit code a failed stage maps to, so
// callers can tell failure classes apart without parsing messages.
func (s Stage) ExitCode() int {
	switch s {
	case StageNone:
		return 0
	case StageFetch:
		return 2
	case StageValidate:
		return 3
	case StageAuth:
		return 4
	case StageUpload:
		return 5
	case StageNetwork:
		return 6
	default:
		return 1
	}
}

// Classify maps a pipeline error to the stage that owns it. Anything
// unrecognized counts as configuration trouble.
func Classify(err error) Stage {
	switch {
	case err == nil:
		return StageNone
	case httputils.IsNetworkError(err):
		return StageNetwork
	case wikiloc.IsFetchError(err):
		return StageFetch
	case trail.IsValidationError(err):
		return StageValidate
	case maphub.IsAuthError(err):
		return StageAuth
	case maphub.IsUploadError(err):
		return StageUpload
	default:
		return StageConfig
	}
}
