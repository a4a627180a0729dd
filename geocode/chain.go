// Copyright 2025 The Refuge Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/openrefuge/refuge/spatial"
	"github.com/openrefuge/refuge/utils/textutils"
)

// Canadian bounding box used to reject plausible-looking results from the
// wrong country. Postal codes and short city names are ambiguous to
// unbiased providers, so country-biased strategies only accept coordinates
// inside this box.
const (
	canadaMinLng = -141.0
	canadaMaxLng = -52.0
)

func inCanadaBounds(p spatial.Point) bool {
	return p.Lat > 0 && p.Lng > canadaMinLng && p.Lng < canadaMaxLng
}

// postalCodeRegex matches Canadian postal codes, with or without the
// middle separator ("M5S 1A1", "M5S1A1", "m5s-1a1").
var postalCodeRegex = regexp.MustCompile(`(?i)^[ABCEGHJ-NPRSTVXY]\d[A-Z][\s-]?\d[A-Z]\d$`)

// cityEntry maps a well-known city name to its coordinate.
type cityEntry struct {
	name  string
	point spatial.Point
}

// majorCities is an ordered table of major Canadian cities used as a
// fallback when providers fail. First substring match wins, so larger
// metros come first.
var majorCities = []cityEntry{
	{"toronto", spatial.Point{Lat: 43.6532, Lng: -79.3832}},
	{"montreal", spatial.Point{Lat: 45.5017, Lng: -73.5673}},
	{"vancouver", spatial.Point{Lat: 49.2827, Lng: -123.1207}},
	{"calgary", spatial.Point{Lat: 51.0447, Lng: -114.0719}},
	{"edmonton", spatial.Point{Lat: 53.5461, Lng: -113.4938}},
	{"ottawa", spatial.Point{Lat: 45.4215, Lng: -75.6972}},
	{"winnipeg", spatial.Point{Lat: 49.8951, Lng: -97.1384}},
	{"quebec city", spatial.Point{Lat: 46.8139, Lng: -71.2080}},
	{"hamilton", spatial.Point{Lat: 43.2557, Lng: -79.8711}},
	{"kitchener", spatial.Point{Lat: 43.4516, Lng: -80.4925}},
	{"london", spatial.Point{Lat: 42.9849, Lng: -81.2453}},
	{"victoria", spatial.Point{Lat: 48.4284, Lng: -123.3656}},
	{"halifax", spatial.Point{Lat: 44.6488, Lng: -63.5752}},
	{"saskatoon", spatial.Point{Lat: 52.1332, Lng: -106.6700}},
	{"regina", spatial.Point{Lat: 50.4452, Lng: -104.6189}},
	{"st. john's", spatial.Point{Lat: 47.5615, Lng: -52.7126}},
	{"mississauga", spatial.Point{Lat: 43.5890, Lng: -79.6441}},
	{"brampton", spatial.Point{Lat: 43.7315, Lng: -79.7624}},
	{"scarborough", spatial.Point{Lat: 43.7764, Lng: -79.2318}},
	{"windsor", spatial.Point{Lat: 42.3149, Lng: -83.0364}},
}

// strategy attempts to resolve a location. A (nil, nil) return means
// "no result, try the next strategy"; an error aborts only when it is
// the final strategy.
type strategy func(ctx context.Context, location string) (*Result, error)

// Resolver resolves free-text locations through an ordered fallback chain:
//
//  1. postal-code query variants with country bias
//  2. country-biased query on the raw text
//  3. static major-city table
//  4. unbiased provider query
//
// Country-biased results are accepted only inside the national bounding box.
type Resolver struct {
	provider Provider
	cache    Cache
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithCache attaches an advisory read-through cache.
func WithCache(cache Cache) ResolverOption {
	return func(r *Resolver) {
		r.cache = cache
	}
}

// NewResolver creates a Resolver over the given provider.
func NewResolver(provider Provider, opts ...ResolverOption) *Resolver {
	r := &Resolver{provider: provider}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Resolve turns a free-text location into a coordinate. It fails only
// after exhausting the whole fallback chain; the returned error is then a
// *GeocodeError with ErrorTypeExhausted.
func (r *Resolver) Resolve(ctx context.Context, location string) (*Result, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, &GeocodeError{
			Type:    ErrorTypeInvalidRequest,
			Message: "location is empty",
		}
	}

	key := CacheKey(location)

	if r.cache != nil {
		if result, ok := r.cache.Lookup(key); ok {
			return result, nil
		}
	}

	strategies := []struct {
		name string
		fn   strategy
	}{
		{"postal_code", r.resolvePostalCode},
		{"country_biased", r.resolveCountryBiased},
		{"city_table", r.resolveCityTable},
		{"unbiased", r.resolveUnbiased},
	}

	for _, s := range strategies {
		result, err := s.fn(ctx, location)
		if err != nil {
			log.Printf("Geocode - strategy %s failed for %q: %v", s.name, location, err)

			continue
		}

		if result == nil {
			continue
		}

		if r.cache != nil {
			r.cache.Store(key, result)
		}

		return result, nil
	}

	return nil, &GeocodeError{
		Type:     ErrorTypeExhausted,
		Location: location,
		Message:  "all geocoding strategies failed",
	}
}

// postalCodeVariants builds the query variants tried for a postal code:
// space-separated, hyphenated, a literal "postal code" prefix, and a
// city-qualified form.
func postalCodeVariants(code string) []string {
	compact := strings.ToUpper(strings.NewReplacer(" ", "", "-", "").Replace(code))
	spaced := compact[:3] + " " + compact[3:]

	return []string{
		spaced + ", Canada",
		compact[:3] + "-" + compact[3:] + ", Canada",
		"postal code " + spaced + ", Canada",
		spaced + ", Toronto, Canada",
	}
}

func (r *Resolver) resolvePostalCode(ctx context.Context, location string) (*Result, error) {
	if !postalCodeRegex.MatchString(location) {
		return nil, nil
	}

	var lastErr error

	for _, variant := range postalCodeVariants(location) {
		result, err := r.provider.Geocode(ctx, variant, "ca")
		if err != nil {
			lastErr = err

			continue
		}

		if !inCanadaBounds(result.Point) {
			lastErr = fmt.Errorf("result for %q outside national bounds: %s", variant, result.Point.String())

			continue
		}

		return result, nil
	}

	if lastErr != nil {
		return nil, lastErr
	}

	return nil, nil
}

func (r *Resolver) resolveCountryBiased(ctx context.Context, location string) (*Result, error) {
	result, err := r.provider.Geocode(ctx, location+", Canada", "ca")
	if err != nil {
		return nil, err
	}

	if !inCanadaBounds(result.Point) {
		return nil, fmt.Errorf("result outside national bounds: %s", result.Point.String())
	}

	return result, nil
}

func (r *Resolver) resolveCityTable(_ context.Context, location string) (*Result, error) {
	folded := textutils.LowerASCIIFolding(location)

	for _, city := range majorCities {
		if strings.Contains(folded, city.name) {
			return &Result{
				Point:       city.point,
				Confidence:  "low",
				Provider:    "city_table",
				DisplayName: city.name,
			}, nil
		}
	}

	return nil, nil
}

func (r *Resolver) resolveUnbiased(ctx context.Context, location string) (*Result, error) {
	return r.provider.Geocode(ctx, location, "")
}
