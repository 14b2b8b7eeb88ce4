// Copyright 2026 The Trailpost Authors
// SPDX-License-Identifier: Apache-2.0

// Package maphub publishes canonical trails through the MapHub API
// (https://maphub.net/docs/api). Publishing is a three call sequence:
// create an empty map, fill it with the trail geometry, refresh its
// preview image.
package maphub

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/trailpost/trailpost/trail"
	"github.com/trailpost/trailpost/utils/httputils"
)

const (
	defaultBaseURL = "https://maphub.net/api/1"
	defaultBasemap = "maphub-earth"

	// API error payloads are small; anything bigger is not ours to buffer.
	maxResponseBytes = 1 << 20
)

// Map visibility values the API accepts.
const (
	VisibilityPublic   = "public"
	VisibilityUnlisted = "unlisted"
	VisibilityPrivate  = "private"
)

// ClientOptions configuration for the API client.
type ClientOptions struct {
	// APIKey authenticates every call. Required.
	APIKey string

	// BaseURL overrides the production endpoint, for tests.
	BaseURL string

	// UserAgent is the User-Agent header to use in HTTP requests
	UserAgent string

	// Enables light tracing of HTTP requests and responses
	EnableHTTPTrace bool

	// Enables full HTTP body tracing
	EnableHTTPBodyTrace bool
}

// PublishOptions tune how the created map looks.
type PublishOptions struct {
	// Visibility of the created map; public when empty.
	Visibility string

	// Basemap rendered under the trail; maphub-earth when empty.
	Basemap string
}

// UploadResult is what a successful publication returns.
type UploadResult struct {
	MapID json.Number
	URL   string
	Title string
}

// Client talks to the destination API.
type Client struct {
	baseURL string
	client  *http.Client
	options *ClientOptions
}

// NewClient creates an API client. The token transport sits inside the
// logging transport, so HTTP traces never see the Authorization header.
func NewClient(options *ClientOptions) *Client {
	if options == nil {
		options = &ClientOptions{}
	}

	var httpLogWriter io.Writer
	if options.EnableHTTPTrace {
		httpLogWriter = os.Stderr
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

	tokenTransport := &oauth2.Transport{
		Source: oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: options.APIKey,
			TokenType:   "Token",
		}),
		Base: transport,
	}

	loggingTransport := &httputils.LoggingRoundTripper{
		Writer:    httpLogWriter,
		DumpBody:  options.EnableHTTPBodyTrace,
		Transport: tokenTransport,
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

	baseURL := defaultBaseURL
	if options.BaseURL != "" {
		baseURL = strings.TrimSuffix(options.BaseURL, "/")
	}

	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout:   60 * time.Second,
			Transport: headerTransport,
		},
		options: options,
	}
}

// uploadArgs ride in the MapHub-API-Arg header of the create call.
type uploadArgs struct {
	FileType   string `json:"file_type"`
	Title      string `json:"title"`
	ShortName  string `json:"short_name,omitempty"`
	Visibility string `json:"visibility"`
}

type createResponse struct {
	ID  json.Number `json:"id"`
	URL string      `json:"url"`
}

type updateRequest struct {
	MapID       json.Number              `json:"map_id"`
	GeoJSON     *trail.FeatureCollection `json:"geojson"`
	Basemap     string                   `json:"basemap"`
	Description string                   `json:"description,omitempty"`
	Visibility  string                   `json:"visibility"`
}

type refreshRequest struct {
	MapID json.Number `json:"map_id"`
}

// Publish creates a map on the destination and fills it with the
// trail. One attempt per call: a failure after the map was created
// reports the orphan map id instead of retrying or cleaning up.
func (c *Client) Publish(ctx context.Context, t *trail.Trail, opts *PublishOptions) (*UploadResult, error) {
	if opts == nil {
		opts = &PublishOptions{}
	}

	visibility := opts.Visibility
	if visibility == "" {
		visibility = VisibilityPublic
	}

	basemap := opts.Basemap
	if basemap == "" {
		basemap = defaultBasemap
	}

	args, err := json.Marshal(uploadArgs{
		FileType:   "empty",
		Title:      t.Name,
		ShortName:  t.Provenance.SourcePath,
		Visibility: visibility,
	})
	if err != nil {
		return nil, &APIError{
			Type:      ErrorTypeUpload,
			Operation: "creating map",
			Message:   "encoding upload arguments",
			Err:       err,
		}
	}

	header := http.Header{}
	header.Set("MapHub-API-Arg", string(args))

	var created createResponse
	if err := c.post(ctx, "/map/upload", header, nil, &created, "creating map"); err != nil {
		return nil, err
	}

	if created.ID == "" {
		return nil, &APIError{
			Type:      ErrorTypeUpload,
			Operation: "creating map",
			Message:   "response carries no map id",
		}
	}

	update := updateRequest{
		MapID:       created.ID,
		GeoJSON:     t.GeoJSON(),
		Basemap:     basemap,
		Description: describe(t),
		Visibility:  visibility,
	}
	if err := c.post(ctx, "/map/update", nil, update, nil, "updating map"); err != nil {
		// the map exists but is empty; surface the id so the user can
		// find and remove it
		return nil, fmt.Errorf("map %s created but not filled: %w", created.ID, err)
	}

	// a stale preview image is cosmetic, never fail the export over it
	if err := c.post(ctx, "/map/refresh_image", nil, refreshRequest{MapID: created.ID}, nil, "refreshing preview image"); err != nil {
		log.Printf("Refreshing the map preview image failed: %s", err)
	}

	result := &UploadResult{MapID: created.ID, URL: created.URL, Title: t.Name}
	if result.URL == "" {
		result.URL = fmt.Sprintf("https://maphub.net/map/%s", created.ID)
	}

	return result, nil
}

// post runs one API call. Transport failures come back as
// httputils.NetworkError, everything else as *APIError.
func (c *Client) post(ctx context.Context, path string, header http.Header, body, out any, operation string) error {
	var reader io.Reader

	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return &APIError{
				Type:      ErrorTypeUpload,
				Operation: operation,
				Message:   "encoding request",
				Err:       err,
			}
		}

		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return &APIError{
			Type:      ErrorTypeUnknown,
			Operation: operation,
			Message:   "building request",
			Err:       err,
		}
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	for key, values := range header {
		for _, value := range values {
			req.Header.Set(key, value)
		}
	}

	resp, err := httputils.Do(c.client, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &APIError{
			Type:       ClassifyStatus(resp.StatusCode),
			StatusCode: resp.StatusCode,
			Operation:  operation,
			Message:    "reading response",
			Err:        err,
		}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &APIError{
			Type:       ClassifyStatus(resp.StatusCode),
			StatusCode: resp.StatusCode,
			Operation:  operation,
			Message:    apiMessage(payload, resp.StatusCode),
		}
	}

	// the API reports some failures as 200 plus an error key
	if msg := errorKey(payload); msg != "" {
		return &APIError{
			Type:       ErrorTypeUpload,
			StatusCode: resp.StatusCode,
			Operation:  operation,
			Message:    msg,
		}
	}

	if out != nil {
		if err := json.Unmarshal(payload, out); err != nil {
			return &APIError{
				Type:       ErrorTypeUpload,
				StatusCode: resp.StatusCode,
				Operation:  operation,
				Message:    "decoding response",
				Err:        err,
			}
		}
	}

	return nil
}

func errorKey(payload []byte) string {
	var probe struct {
		Error string `json:"error"`
	}

	if err := json.Unmarshal(payload, &probe); err != nil {
		return ""
	}

	return probe.Error
}

func apiMessage(payload []byte, statusCode int) string {
	if msg := errorKey(payload); msg != "" {
		return msg
	}

	return fmt.Sprintf("HTTP %d", statusCode)
}

// describe composes the destination map description: the source text,
// the trail facts, and where it came from.
func describe(t *trail.Trail) string {
	sb := strings.Builder{}

	if t.Description != "" {
		sb.WriteString(t.Description)
		sb.WriteString("\n\n")
	}

	fmt.Fprintf(&sb, "Activity: %s. Distance: %.1f km. Ascent: %.0f m.",
		t.Activity, t.Distance.Meters/1000, t.ElevationGain.Meters)

	sb.WriteString("\n\nExported from ")
	sb.WriteString(t.Provenance.SourceURL)

	if t.Provenance.Author != "" {
		sb.WriteString(", a trail by ")
		sb.WriteString(t.Provenance.Author)
	}

	sb.WriteString(".")

	return sb.String()
}
