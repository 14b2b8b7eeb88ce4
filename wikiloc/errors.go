// Copyright 2026 The Trailpost Authors
// SPDX-License-Identifier: Apache-2.0

package wikiloc

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType classifies why a trail page could not be fetched.
type ErrorType int

const (
	// ErrorTypeUnknown unexpected failure.
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeNotFound the trail doesn't exist or was removed.
	ErrorTypeNotFound
	// ErrorTypeDenied the source refused to serve the page.
	ErrorTypeDenied
	// ErrorTypeRateLimit the source throttled us.
	ErrorTypeRateLimit
	// ErrorTypeUnavailable the source is temporarily down.
	ErrorTypeUnavailable
	// ErrorTypeBadPage the page came back but carries no usable trail.
	ErrorTypeBadPage
)

// FetchError reports a failure retrieving or understanding a source
// trail page.
type FetchError struct {
	Type    ErrorType
	URL     string
	Message string
	Err     error
}

func (e *FetchError) Error() string {
	msg := e.Message
	if e.URL != "" {
		msg = fmt.Sprintf("%s: %s", e.URL, msg)
	}

	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}

	return msg
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsFetchError reports whether err is, or wraps, a FetchError.
func IsFetchError(err error) bool {
	var fetchErr *FetchError
	return errors.As(err, &fetchErr)
}

// IsNotFound reports whether err means the trail doesn't exist.
func IsNotFound(err error) bool {
	var fetchErr *FetchError
	return errors.As(err, &fetchErr) && fetchErr.Type == ErrorTypeNotFound
}

// ClassifyHTTPStatus maps a non-200 page response to a fetch error.
func ClassifyHTTPStatus(url string, statusCode int) *FetchError {
	switch statusCode {
	case http.StatusNotFound, http.StatusGone:
		return &FetchError{
			Type:    ErrorTypeNotFound,
			URL:     url,
			Message: fmt.Sprintf("trail not found (HTTP %d)", statusCode),
		}
	case http.StatusTooManyRequests:
		return &FetchError{
			Type:    ErrorTypeRateLimit,
			URL:     url,
			Message: "rate limited by the source",
		}
	case http.StatusUnauthorized, http.StatusForbidden:
		return &FetchError{
			Type:    ErrorTypeDenied,
			URL:     url,
			Message: fmt.Sprintf("access denied by the source (HTTP %d)", statusCode),
		}
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		return &FetchError{
			Type:    ErrorTypeUnavailable,
			URL:     url,
			Message: fmt.Sprintf("source unavailable (HTTP %d)", statusCode),
		}
	default:
		return &FetchError{
			Type:    ErrorTypeUnknown,
			URL:     url,
			Message: fmt.Sprintf("unexpected HTTP status %d", statusCode),
		}
	}
}
