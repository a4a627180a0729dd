// Copyright 2025 The Refuge Authors
// SPDX-License-Identifier: Apache-2.0

package finder

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openrefuge/refuge/spatial"
)

func newTestServer(t *testing.T, cfgs ...func(*Config)) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)

	provider := &broadcastProvider{
		hits: []SearchHit{
			{
				Title:   "Gateway Shelter community services",
				Snippet: "Emergency shelter beds and homeless support services",
				URL:     "https://gateway.example.org",
			},
		},
	}

	cfg := Config{
		SearchProvider: provider,
		Geolocator:     &fakeGeolocator{point: spatial.Point{Lat: 43.6532, Lng: -79.3832}},
		Aggregator:     []AggregatorOption{WithInterQueryInterval(time.Microsecond)},
	}

	for _, fn := range cfgs {
		fn(&cfg)
	}

	finder, err := New(cfg)
	require.NoError(t, err)

	r := gin.New()
	NewServer(finder, "localhost:0").Register(r)

	return r
}

func TestServer_ListServices(t *testing.T) {
	r := newTestServer(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/resources/services", nil)

	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Services []serviceEntry `json:"services"`
	}

	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Services, 12)
	assert.Equal(t, CategoryShelter, body.Services[0].ID)
	assert.Equal(t, "Emergency Shelter", body.Services[0].Label)
}

func TestServer_Search(t *testing.T) {
	r := newTestServer(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/resources/search",
		strings.NewReader(`{"location": "Toronto", "services": ["shelter"], "max_queries": 1}`))
	req.Header.Set("Content-Type", "application/json")

	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	require.Len(t, response.Results, 1)
	assert.Equal(t, "Gateway Shelter community services", response.Results[0].Name)
	assert.Equal(t, ConfidenceLow, response.Confidence)
}

func TestServer_SearchValidation(t *testing.T) {
	r := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"location": `},
		{"missing location", `{"services": ["shelter"]}`},
		{"unknown services only", `{"location": "Toronto", "services": ["bogus"]}`},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/resources/search", strings.NewReader(test.body))
			req.Header.Set("Content-Type", "application/json")

			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestServer_SearchUnresolvableLocation(t *testing.T) {
	r := newTestServer(t, func(cfg *Config) {
		cfg.Geolocator = &fakeGeolocator{exhausted: true}
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/resources/search",
		strings.NewReader(`{"location": "Nowhere", "services": ["shelter"], "max_queries": 1}`))
	req.Header.Set("Content-Type", "application/json")

	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}
