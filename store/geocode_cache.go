// Copyright 2025 The Refuge Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"database/sql"
	"errors"
	"log"

	"github.com/openrefuge/refuge/geocode"
	"github.com/openrefuge/refuge/spatial"
)

// GeocodeCache is a read-through cache of resolved coordinates backed by
// the geocode_cache table. The cache is advisory: storage errors are
// logged and treated as misses, never surfaced to the resolver.
type GeocodeCache struct {
	db *sql.DB
}

// NewGeocodeCache builds a cache over db. CreateSchema on the run
// repository must have run first.
func NewGeocodeCache(db *sql.DB) *GeocodeCache {
	return &GeocodeCache{db: db}
}

// Lookup implements geocode.Cache.
func (c *GeocodeCache) Lookup(key string) (*geocode.Result, bool) {
	result := &geocode.Result{Point: spatial.Point{}}

	var displayName sql.NullString

	err := c.db.QueryRow(`
		SELECT point, confidence, provider, display_name
		FROM geocode_cache
		WHERE key = ?
	`, key).Scan(&result.Point, &result.Confidence, &result.Provider, &displayName)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Printf("GeocodeCache - lookup %q: %v", key, err)
		}

		return nil, false
	}

	result.DisplayName = displayName.String

	return result, true
}

// Store implements geocode.Cache.
func (c *GeocodeCache) Store(key string, result *geocode.Result) {
	_, err := c.db.Exec(`
		INSERT OR REPLACE INTO geocode_cache(key, point, confidence, provider, display_name)
		VALUES (?, ST_Point(?, ?), ?, ?, ?)
	`, key, result.Point.Lng, result.Point.Lat, result.Confidence, result.Provider, nullable(result.DisplayName))
	if err != nil {
		log.Printf("GeocodeCache - store %q: %v", key, err)
	}
}
