// Copyright 2025 The Refuge Authors
// SPDX-License-Identifier: Apache-2.0

package finder

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingSearchProvider is returned when a Finder is built
	// without a search provider.
	ErrMissingSearchProvider = errors.New("finder: search provider is required")
	// ErrMissingGeolocator is returned when a Finder is built without a
	// geolocator.
	ErrMissingGeolocator = errors.New("finder: geolocator is required")
	// ErrNoCategories is returned when a request carries no recognized
	// service category.
	ErrNoCategories = errors.New("finder: at least one known service category is required")
	// ErrEmptyLocation is returned when a request carries no location.
	ErrEmptyLocation = errors.New("finder: location is required")
)

// SearchProviderError wraps a failure of one search query. Query failures
// are non-fatal for the run as a whole; the aggregator records them and
// moves on.
type SearchProviderError struct {
	Query string
	Err   error
}

func (e *SearchProviderError) Error() string {
	return fmt.Sprintf("search query %q failed: %v", e.Query, e.Err)
}

func (e *SearchProviderError) Unwrap() error {
	return e.Err
}

// FetchError wraps a failure to fetch or parse one candidate page during
// deep extraction. These never abort a run.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
