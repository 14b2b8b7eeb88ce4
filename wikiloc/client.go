// Copyright 2026 The Trailpost Authors
// SPDX-License-Identifier: Apache-2.0

package wikiloc

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/http/cookiejar"
	"os"
	"time"

	"github.com/trailpost/trailpost/trail"
	"github.com/trailpost/trailpost/utils/htmlutils"
	"github.com/trailpost/trailpost/utils/httputils"
)

// contextKey is a type for context keys to avoid collisions.
type contextKey string

// Context keys used by the package.
const (
	allowRedirectKey contextKey = "allowRedirect"
)

// ClientOptions configuration for the page client.
type ClientOptions struct {
	// UserAgent is the User-Agent header to use in HTTP requests
	UserAgent string

	// Enables light tracing of HTTP requests and responses
	EnableHTTPTrace bool

	// Enables full HTTP body tracing
	EnableHTTPBodyTrace bool
}

// Client fetches public trail pages.
type Client struct {
	client  *http.Client
	options *ClientOptions
}

// NewClient creates a page client with the provided options.
func NewClient(options *ClientOptions) *Client {
	if options == nil {
		options = &ClientOptions{}
	}

	var httpLogWriter io.Writer
	if options.EnableHTTPTrace {
		httpLogWriter = os.Stderr
	}

	jar, err := cookiejar.New(&cookiejar.Options{})
	if err != nil {
		log.Fatalf("Failed to create cookie jar: %v", err)
	}

	// The session cookies the site sets carry no expiration but stop
	// being honored quickly anyway
	cookieJar := &httputils.EnforceExpirationCookieJar{
		Target:   jar,
		Duration: 10 * time.Minute,
	}

	transport := &http.Transport{
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   4,
		MaxConnsPerHost:       4,
		IdleConnTimeout:       30 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		DisableKeepAlives:     false,
		DisableCompression:    false,
	}

	loggingTransport := &httputils.LoggingRoundTripper{
		Writer:    httpLogWriter,
		DumpBody:  options.EnableHTTPBodyTrace,
		Transport: transport,
	}

	userAgent := "trailpost/unknown"
	if options.UserAgent != "" {
		userAgent = options.UserAgent
	}

	headerTransport := &httputils.AppendRequestHeadersRoundTripper{
		Headers: map[string]string{
			"User-Agent": userAgent,
			"Accept":     "*/*",
		},
		Transport: loggingTransport,
	}

	client := &http.Client{
		Timeout: 60 * time.Second,
		CheckRedirect: func(req *http.Request, _ []*http.Request) error {
			// No redirects is the policy, except when resolving a
			// bare-id reference through the legacy endpoint
			v := req.Context().Value(allowRedirectKey)
			allowRedirect, ok := v.(bool)
			if ok && allowRedirect {
				return nil
			}

			return http.ErrUseLastResponse
		},
		Jar:       cookieJar,
		Transport: headerTransport,
	}

	return &Client{
		client:  client,
		options: options,
	}
}

// FetchTrail retrieves one trail page and extracts its raw payload.
// Transport failures come back as httputils.NetworkError; everything
// HTTP or page shaped comes back as *FetchError.
func (c *Client) FetchTrail(ctx context.Context, ref *TrailRef) (*trail.Raw, error) {
	// only a bare-id ref goes through the legacy endpoint, which
	// answers with a redirect to the canonical page
	if ref.Slug == "" {
		ctx = context.WithValue(ctx, allowRedirectKey, true)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref.URL, nil)
	if err != nil {
		return nil, &FetchError{
			Type:    ErrorTypeUnknown,
			URL:     ref.URL,
			Message: "building request",
			Err:     err,
		}
	}

	resp, err := httputils.Do(c.client, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ClassifyHTTPStatus(ref.URL, resp.StatusCode)
	}

	r, err := htmlutils.AsReader(resp)
	if err != nil {
		return nil, &FetchError{
			Type:    ErrorTypeBadPage,
			URL:     ref.URL,
			Message: "reading trail page",
			Err:     err,
		}
	}

	node, err := htmlutils.AsNode(r)
	if err != nil {
		return nil, &FetchError{
			Type:    ErrorTypeBadPage,
			URL:     ref.URL,
			Message: "parsing trail page",
			Err:     err,
		}
	}

	return ParsePage(node, ref)
}
