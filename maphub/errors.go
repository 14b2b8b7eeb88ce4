// Copyright 2026 The Trailpost Authors
// SPDX-License-Identifier: Apache-2.0

package maphub

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType classifies destination API failures.
type ErrorType int

const (
	// ErrorTypeUnknown unexpected failure.
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeAuth the API key was rejected.
	ErrorTypeAuth
	// ErrorTypeRateLimit the destination throttled us.
	ErrorTypeRateLimit
	// ErrorTypeUpload the destination refused or failed the upload.
	ErrorTypeUpload
)

// APIError reports a failed destination API call.
type APIError struct {
	Type       ErrorType
	StatusCode int
	Operation  string
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	msg := e.Message
	if e.Operation != "" {
		msg = e.Operation + ": " + msg
	}

	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}

	return msg
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// IsAuthError reports whether the destination rejected the credential.
func IsAuthError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Type == ErrorTypeAuth
}

// IsUploadError reports whether the destination failed the upload for
// any reason other than authentication.
func IsUploadError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Type != ErrorTypeAuth
}

// ClassifyStatus maps an API response status to an error type.
func ClassifyStatus(statusCode int) ErrorType {
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrorTypeAuth
	case http.StatusTooManyRequests:
		return ErrorTypeRateLimit
	default:
		return ErrorTypeUpload
	}
}
