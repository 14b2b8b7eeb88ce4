// Copyright 2026 The Trailpost Authors
// SPDX-License-Identifier: Apache-2.0

package trail

import "errors"

// ValidationError reports raw trail data that can't be promoted to a
// canonical trail.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return "invalid trail: " + e.Message
}

// IsValidationError reports whether err is, or wraps, a ValidationError.
func IsValidationError(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
