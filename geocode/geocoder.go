// Copyright 2025 The Refuge Authors
// SPDX-License-Identifier: Apache-2.0

// Package geocode resolves free-text locations into coordinates through an
// ordered chain of fallback strategies.
package geocode

import (
	"context"

	"github.com/openrefuge/refuge/spatial"
)

// Result represents a geocoding result from any provider.
type Result struct {
	Point       spatial.Point
	Confidence  string // high, medium, low
	Provider    string
	DisplayName string
}

// Provider is a single upstream geocoding capability.
// countryBias is an ISO 3166-1 alpha-2 code, or empty for an unbiased query.
type Provider interface {
	Geocode(ctx context.Context, query string, countryBias string) (*Result, error)
}
