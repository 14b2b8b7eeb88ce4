// Copyright 2026 The Trailpost Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/trailpost/trailpost/maphub"
	"github.com/trailpost/trailpost/trail"
	"github.com/trailpost/trailpost/utils/httputils"
	"github.com/trailpost/trailpost/wikiloc"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{
			name: "no error",
			err:  nil,
			want: 0,
		},
		{
			name: "usage error",
			err:  errors.New("unknown flag"),
			want: 1,
		},
		{
			name: "fetch failure",
			err:  &stageError{Op: "export", Err: &wikiloc.FetchError{Type: wikiloc.ErrorTypeNotFound, Message: "gone"}},
			want: 2,
		},
		{
			name: "validation failure",
			err:  &stageError{Op: "export", Err: &trail.ValidationError{Message: "too short"}},
			want: 3,
		},
		{
			name: "auth failure",
			err:  &stageError{Op: "export", Err: &maphub.APIError{Type: maphub.ErrorTypeAuth, Message: "bad token"}},
			want: 4,
		},
		{
			name: "upload failure",
			err:  &stageError{Op: "export", Err: &maphub.APIError{Type: maphub.ErrorTypeUpload, Message: "refused"}},
			want: 5,
		},
		{
			name: "network failure",
			err:  &stageError{Op: "preview", Err: &httputils.NetworkError{URL: "https://example.com", Err: errors.New("refused")}},
			want: 6,
		},
		{
			name: "wrapped stage error keeps its code",
			err:  fmt.Errorf("running: %w", &stageError{Op: "export", Err: &trail.ValidationError{Message: "too short"}}),
			want: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestStageErrorNamesTheStage(t *testing.T) {
	err := &stageError{
		Op:  "export",
		Err: &maphub.APIError{Type: maphub.ErrorTypeAuth, Message: "bad token"},
	}

	if !strings.Contains(err.Error(), "export failed at the auth stage") {
		t.Errorf("message should name the operation and stage: %v", err)
	}

	// the cause stays matchable through the wrapper
	if !maphub.IsAuthError(err) {
		t.Error("stageError must unwrap to its cause")
	}
}
