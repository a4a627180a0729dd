// Copyright 2025 The Refuge Authors
//
// SPDX-License-Identifier: Apache-2.0
package spatial

import (
	"math"
	"testing"
)

func TestHaversineDistance(t *testing.T) {
	toronto := &Point{Lat: 43.6532, Lng: -79.3832}
	ottawa := &Point{Lat: 45.4215, Lng: -75.6972}

	t.Run("distance to itself is zero", func(t *testing.T) {
		if d := toronto.HaversineDistance(toronto); d != 0 {
			t.Errorf("HaversineDistance() = %f, want 0", d)
		}
	})

	t.Run("distance is symmetric", func(t *testing.T) {
		d1 := toronto.HaversineDistance(ottawa)
		d2 := ottawa.HaversineDistance(toronto)

		if d1 != d2 {
			t.Errorf("HaversineDistance() not symmetric: %f != %f", d1, d2)
		}
	})

	t.Run("toronto to ottawa is roughly 350km", func(t *testing.T) {
		d := toronto.DistanceKm(ottawa)
		if math.Abs(d-352) > 10 {
			t.Errorf("DistanceKm() = %f, want ~352", d)
		}
	})
}

func TestPointValidate(t *testing.T) {
	tests := []struct {
		name    string
		p       Point
		wantErr bool
	}{
		{name: "toronto", p: Point{Lat: 43.6532, Lng: -79.3832}, wantErr: false},
		{name: "latitude too high", p: Point{Lat: 91, Lng: -79}, wantErr: true},
		{name: "latitude too low", p: Point{Lat: -91, Lng: -79}, wantErr: true},
		{name: "longitude too high", p: Point{Lat: 43, Lng: 181}, wantErr: true},
		{name: "longitude too low", p: Point{Lat: 43, Lng: -181}, wantErr: true},
		{name: "boundary values", p: Point{Lat: 90, Lng: -180}, wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.p.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPointScan(t *testing.T) {
	t.Run("duckdb wkt bytes", func(t *testing.T) {
		p := &Point{}
		if err := p.Scan([]byte("POINT (-79.383200 43.653200)")); err != nil {
			t.Fatalf("Scan() error = %v", err)
		}

		if p.Lat != 43.6532 || p.Lng != -79.3832 {
			t.Errorf("Scan() = %+v, want lat 43.6532 lng -79.3832", p)
		}
	})

	t.Run("coordinate map", func(t *testing.T) {
		p := &Point{}
		if err := p.Scan(map[string]interface{}{"x": -79.3832, "y": 43.6532}); err != nil {
			t.Fatalf("Scan() error = %v", err)
		}

		if p.Lat != 43.6532 || p.Lng != -79.3832 {
			t.Errorf("Scan() = %+v, want lat 43.6532 lng -79.3832", p)
		}
	})

	t.Run("nil resets", func(t *testing.T) {
		p := &Point{Lat: 1, Lng: 2}
		if err := p.Scan(nil); err != nil {
			t.Fatalf("Scan() error = %v", err)
		}

		if p.Lat != 0 || p.Lng != 0 {
			t.Errorf("Scan(nil) = %+v, want zero point", p)
		}
	})

	t.Run("unsupported type", func(t *testing.T) {
		p := &Point{}
		if err := p.Scan(42); err == nil {
			t.Error("Scan(int) expected error")
		}
	})
}
