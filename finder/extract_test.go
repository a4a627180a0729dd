// Copyright 2025 The Refuge Authors
// SPDX-License-Identifier: Apache-2.0

package finder

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractDetails(t *testing.T) {
	text := "The Gateway Shelter provides emergency shelter and daily meals. " +
		"Visit us at 107 Jarvis Street, Toronto. Call (416) 555-0199. " +
		"Open Monday to Friday 9:00 am to 5:00 pm."

	details := ExtractDetails(text, DefaultTaxonomy())

	assert.Equal(t, "107 Jarvis Street", details.Address)
	assert.Equal(t, "4165550199", details.Phone)
	assert.Contains(t, strings.ToLower(details.Hours), "monday")
	assert.Contains(t, details.Categories, CategoryShelter)
	assert.Contains(t, details.Categories, CategoryMeals)
}

func TestExtractDetails_NothingFound(t *testing.T) {
	details := ExtractDetails("An unrelated page about gardening", DefaultTaxonomy())

	assert.Empty(t, details.Address)
	assert.Empty(t, details.Phone)
	assert.Empty(t, details.Hours)
}

func TestApplyDetails_CategoryOverride(t *testing.T) {
	requested := []Category{CategoryMeals, CategoryShowers}

	candidate := Candidate{
		MatchingServices: []Category{CategoryMeals},
	}

	applyDetails(&candidate, PageDetails{
		Categories: []Category{CategoryShowers, CategoryLaundry},
		Phone:      "4165550000",
	}, requested)

	// Page categories override snippet matches, restricted to the request.
	assert.Equal(t, []Category{CategoryShowers}, candidate.MatchingServices)
	assert.Equal(t, "4165550000", candidate.Phone)
}

func TestApplyDetails_KeepsSnippetMatchesWhenPageSilent(t *testing.T) {
	requested := []Category{CategoryMeals}

	candidate := Candidate{
		MatchingServices: []Category{CategoryMeals},
		Address:          "from snippet",
	}

	applyDetails(&candidate, PageDetails{}, requested)

	assert.Equal(t, []Category{CategoryMeals}, candidate.MatchingServices)
	assert.Equal(t, "from snippet", candidate.Address)
}

func TestHTTPPageFetcher_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "refuge-test", r.Header.Get("User-Agent"))

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html><body><h1>Shelter</h1><script>x()</script><p>Open daily</p></body></html>"))
	}))
	defer server.Close()

	fetcher := NewHTTPPageFetcher("refuge-test")

	text, err := fetcher.Fetch(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Equal(t, "Shelter Open daily", text)
}

func TestHTTPPageFetcher_FetchError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	fetcher := NewHTTPPageFetcher("refuge-test")

	_, err := fetcher.Fetch(context.Background(), server.URL)
	require.Error(t, err)

	var fetchErr *FetchError

	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, server.URL, fetchErr.URL)
}
