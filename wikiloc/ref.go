// Copyright 2026 The Trailpost Authors
// SPDX-License-Identifier: Apache-2.0

// Package wikiloc fetches public trail pages from wikiloc.com and
// extracts the raw trail payload out of them.
package wikiloc

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// TrailRef identifies one trail on the source platform.
type TrailRef struct {
	// ID is the numeric trail id, the trailing digits of the slug.
	ID int64
	// Slug is the last path segment, e.g. "cerro-pan-de-azucar-12345678".
	Slug string
	// Activity is the path segment hint, e.g. "hiking-trails". Empty
	// for bare-id references.
	Activity string
	// URL is the absolute page URL to fetch.
	URL string
	// Path is the URL path, reused as the destination short name.
	Path string
}

func (r *TrailRef) String() string {
	if r.Slug != "" {
		return r.Slug
	}

	return strconv.FormatInt(r.ID, 10)
}

// Trail pages look like /hiking-trails/cerro-pan-de-azucar-12345678.
// The id is always the trailing dash-separated digits.
var trailPathPattern = regexp.MustCompile(`^/([^/]+)/([^/]+)-([0-9]+)/?$`)

// ParseRef accepts what users paste: a full trail page URL or a bare
// numeric trail id.
func ParseRef(s string) (*TrailRef, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty trail reference")
	}

	if id, err := strconv.ParseInt(s, 10, 64); err == nil && id > 0 {
		return &TrailRef{
			ID: id,
			// the legacy endpoint redirects to the canonical page
			URL:  fmt.Sprintf("https://www.wikiloc.com/wikiloc/view.do?id=%d", id),
			Path: fmt.Sprintf("/trails/%d", id),
		}, nil
	}

	return ParseTrailURL(s)
}

// ParseTrailURL validates a trail page URL and breaks it into a ref.
func ParseTrailURL(rawURL string) (*TrailRef, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("parsing trail URL: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("trail URL %q: unsupported scheme %q", rawURL, u.Scheme)
	}

	host := u.Hostname()
	if host != "wikiloc.com" && !strings.HasSuffix(host, ".wikiloc.com") {
		return nil, fmt.Errorf("trail URL %q: host %q is not wikiloc.com", rawURL, host)
	}

	m := trailPathPattern.FindStringSubmatch(u.Path)
	if m == nil {
		return nil, fmt.Errorf("trail URL %q: path doesn't look like a trail page", rawURL)
	}

	id, err := strconv.ParseInt(m[3], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("trail URL %q: invalid trail id %q", rawURL, m[3])
	}

	return &TrailRef{
		ID:       id,
		Slug:     m[2] + "-" + m[3],
		Activity: m[1],
		URL:      u.String(),
		Path:     strings.TrimSuffix(u.Path, "/"),
	}, nil
}
