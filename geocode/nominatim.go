// Copyright 2025 The Refuge Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/openrefuge/refuge/spatial"
	"github.com/openrefuge/refuge/utils/httputils"
)

const nominatimBaseURL = "https://nominatim.openstreetmap.org/search"

// NominatimGeocoder uses the OpenStreetMap Nominatim API.
// Nominatim requires a meaningful User-Agent and at most one request
// per second; the pipeline's shared rate limiter covers the latter.
type NominatimGeocoder struct {
	baseURL    string
	httpClient *http.Client
}

// NewNominatimGeocoder creates a Nominatim-backed geocoding provider.
func NewNominatimGeocoder(userAgent string) *NominatimGeocoder {
	return &NominatimGeocoder{
		baseURL: nominatimBaseURL,
		httpClient: httputils.NewClient(
			10*time.Second,
			map[string]string{
				"User-Agent": userAgent,
				"Accept":     "application/json",
			},
			nil,
			false,
		),
	}
}

// NewNominatimGeocoderWithBaseURL is used by tests to point at a fake server.
func NewNominatimGeocoderWithBaseURL(baseURL, userAgent string) *NominatimGeocoder {
	g := NewNominatimGeocoder(userAgent)
	g.baseURL = baseURL

	return g
}

type nominatimResult struct {
	Lat         string  `json:"lat"`
	Lon         string  `json:"lon"`
	DisplayName string  `json:"display_name"`
	Importance  float64 `json:"importance"`
}

func (g *NominatimGeocoder) Geocode(ctx context.Context, query string, countryBias string) (*Result, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", "1")

	if countryBias != "" {
		params.Set("countrycodes", countryBias)
	}

	reqURL := g.baseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating geocoding request: %w", err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, &GeocodeError{
			Type:     ErrorTypeNetworkError,
			Location: query,
			Message:  "geocoding request failed",
			Err:      err,
		}
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		geoErr := ClassifyHTTPError(resp.StatusCode)
		geoErr.Location = query

		return nil, geoErr
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("decoding geocoding response: %w", err)
	}

	if len(results) == 0 {
		return nil, &GeocodeError{
			Type:     ErrorTypeNotFound,
			Location: query,
			Message:  "no results found",
		}
	}

	first := results[0]

	lat, err := strconv.ParseFloat(first.Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing latitude %q: %w", first.Lat, err)
	}

	lng, err := strconv.ParseFloat(first.Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing longitude %q: %w", first.Lon, err)
	}

	point := spatial.Point{Lat: lat, Lng: lng}
	if err := point.Validate(); err != nil {
		return nil, fmt.Errorf("provider returned invalid coordinate: %w", err)
	}

	// Nominatim reports an importance score per match; use it as a
	// coarse confidence indicator.
	confidence := "low"

	switch {
	case first.Importance >= 0.6:
		confidence = "high"
	case first.Importance >= 0.4:
		confidence = "medium"
	}

	return &Result{
		Point:       point,
		Confidence:  confidence,
		Provider:    "nominatim",
		DisplayName: first.DisplayName,
	}, nil
}
