// Copyright 2025 The Refuge Authors
// SPDX-License-Identifier: Apache-2.0

package finder

import (
	"fmt"
	"strings"
)

// coreQueryTemplates are the generic queries issued for every request.
var coreQueryTemplates = []string{
	"homeless shelters %s",
	"emergency shelters %s",
	"homeless services %s",
	"drop-in centre %s",
}

// categoryQueryTemplates holds at most two query variants per category.
var categoryQueryTemplates = map[Category][]string{
	CategoryShelter:        {"emergency shelter %s", "overnight shelter beds %s"},
	CategoryShowers:        {"free showers homeless %s", "hygiene services drop-in %s"},
	CategoryMeals:          {"free meals homeless %s", "community meal program %s"},
	CategoryMentalHealth:   {"mental health services homeless %s", "crisis counselling %s"},
	CategoryMedical:        {"free medical clinic homeless %s", "community health centre %s"},
	CategoryLaundry:        {"free laundry services homeless %s"},
	CategoryWifi:           {"free wifi public access %s", "community computer access %s"},
	CategoryClothing:       {"free clothing bank %s", "winter coat donation %s"},
	CategoryCounseling:     {"counselling services homeless %s"},
	CategoryJobAssistance:  {"employment services homeless %s", "job training program %s"},
	CategoryLegalAid:       {"legal aid clinic %s"},
	CategorySubstanceAbuse: {"addiction services %s", "harm reduction services %s"},
}

// organizationQueries targets the large operators that run multiple sites
// and often outrank smaller providers for their own programs.
var organizationQueries = []string{
	"salvation army services %s",
	"covenant house %s",
	"good shepherd ministries %s",
	"mission services %s",
}

// BuildQueries expands a location and a requested-category list into an
// ordered, deduplicated list of search queries. hasCoordinates adds one
// broader-radius query when the location already resolved. No limit is
// applied here; the aggregator enforces the query budget.
func BuildQueries(location string, categories []Category, hasCoordinates bool) []string {
	location = strings.TrimSpace(location)

	seen := make(map[string]bool)

	var queries []string

	add := func(q string) {
		if seen[q] {
			return
		}

		seen[q] = true
		queries = append(queries, q)
	}

	for _, tmpl := range coreQueryTemplates {
		add(fmt.Sprintf(tmpl, location))
	}

	for _, c := range categories {
		for _, tmpl := range categoryQueryTemplates[c] {
			add(fmt.Sprintf(tmpl, location))
		}
	}

	for _, tmpl := range organizationQueries {
		add(fmt.Sprintf(tmpl, location))
	}

	if hasCoordinates {
		add(fmt.Sprintf("homeless shelters and services near %s within 25 km", location))
	}

	return queries
}
