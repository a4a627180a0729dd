// Copyright 2025 The Refuge Authors
// SPDX-License-Identifier: Apache-2.0

package finder

import (
	"strings"

	"github.com/openrefuge/refuge/utils/textutils"
)

// Category identifies one service category in the taxonomy.
type Category string

// Service categories known to the default taxonomy.
const (
	CategoryShelter        Category = "shelter"
	CategoryShowers        Category = "showers"
	CategoryMeals          Category = "meals"
	CategoryMentalHealth   Category = "mental_health"
	CategoryMedical        Category = "medical"
	CategoryLaundry        Category = "laundry"
	CategoryWifi           Category = "wifi"
	CategoryClothing       Category = "clothing"
	CategoryCounseling     Category = "counseling"
	CategoryJobAssistance  Category = "job_assistance"
	CategoryLegalAid       Category = "legal_aid"
	CategorySubstanceAbuse Category = "substance_abuse"
)

type categoryEntry struct {
	label    string
	keywords []string
}

// Taxonomy is the fixed mapping from service category to its matching
// keyword set. It is immutable after construction so a single instance can
// be shared across concurrent requests, and per-request overrides are just
// separate instances.
type Taxonomy struct {
	entries map[Category]categoryEntry
	order   []Category
}

// NewTaxonomy builds a taxonomy from explicit category definitions,
// preserving the given order. Keyword matching is accent- and
// case-insensitive.
func NewTaxonomy(order []Category, labels map[Category]string, keywords map[Category][]string) *Taxonomy {
	entries := make(map[Category]categoryEntry, len(order))

	for _, c := range order {
		folded := make([]string, 0, len(keywords[c]))
		for _, kw := range keywords[c] {
			folded = append(folded, textutils.LowerASCIIFolding(kw))
		}

		entries[c] = categoryEntry{
			label:    labels[c],
			keywords: folded,
		}
	}

	return &Taxonomy{
		entries: entries,
		order:   append([]Category(nil), order...),
	}
}

// DefaultTaxonomy returns the built-in service taxonomy.
func DefaultTaxonomy() *Taxonomy {
	order := []Category{
		CategoryShelter,
		CategoryShowers,
		CategoryMeals,
		CategoryMentalHealth,
		CategoryMedical,
		CategoryLaundry,
		CategoryWifi,
		CategoryClothing,
		CategoryCounseling,
		CategoryJobAssistance,
		CategoryLegalAid,
		CategorySubstanceAbuse,
	}

	labels := map[Category]string{
		CategoryShelter:        "Emergency Shelter",
		CategoryShowers:        "Showers & Hygiene",
		CategoryMeals:          "Meals & Food",
		CategoryMentalHealth:   "Mental Health Services",
		CategoryMedical:        "Medical Care",
		CategoryLaundry:        "Laundry Services",
		CategoryWifi:           "WiFi & Internet",
		CategoryClothing:       "Clothing & Supplies",
		CategoryCounseling:     "Counseling Services",
		CategoryJobAssistance:  "Job Assistance",
		CategoryLegalAid:       "Legal Aid",
		CategorySubstanceAbuse: "Substance Abuse Support",
	}

	keywords := map[Category][]string{
		CategoryShelter:        {"shelter", "emergency housing", "crisis housing", "overnight accommodation", "homeless shelter"},
		CategoryShowers:        {"shower", "bathroom", "hygiene", "clean"},
		CategoryMeals:          {"meal", "food", "dinner", "lunch", "breakfast", "nutrition"},
		CategoryMentalHealth:   {"mental health", "counseling", "therapy", "psychiatrist", "psychologist"},
		CategoryMedical:        {"doctor", "medical", "healthcare", "clinic", "hospital"},
		CategoryLaundry:        {"laundry", "washing", "clothes"},
		CategoryWifi:           {"wifi", "internet", "computer", "technology", "public access"},
		CategoryClothing:       {"clothing", "winter coat", "supplies", "donation"},
		CategoryCounseling:     {"counseling", "counsellor", "support group", "crisis line"},
		CategoryJobAssistance:  {"employment", "job training", "resume", "job search"},
		CategoryLegalAid:       {"legal aid", "legal clinic", "lawyer", "advocacy"},
		CategorySubstanceAbuse: {"addiction", "substance abuse", "detox", "harm reduction", "recovery"},
	}

	return NewTaxonomy(order, labels, keywords)
}

// Categories returns all categories in taxonomy order.
func (t *Taxonomy) Categories() []Category {
	return append([]Category(nil), t.order...)
}

// Contains reports whether c is a member of the taxonomy.
func (t *Taxonomy) Contains(c Category) bool {
	_, ok := t.entries[c]

	return ok
}

// Label returns the human-readable name for c.
func (t *Taxonomy) Label(c Category) string {
	return t.entries[c].label
}

// Keywords returns the ordered keyword set owned by c.
func (t *Taxonomy) Keywords(c Category) []string {
	return append([]string(nil), t.entries[c].keywords...)
}

// Filter drops categories that are not members of the taxonomy,
// preserving order and removing repeats.
func (t *Taxonomy) Filter(categories []Category) []Category {
	seen := make(map[Category]bool, len(categories))

	var filtered []Category

	for _, c := range categories {
		if !t.Contains(c) || seen[c] {
			continue
		}

		seen[c] = true
		filtered = append(filtered, c)
	}

	return filtered
}

// Match returns the requested categories whose keywords appear in text.
// One keyword hit is enough to claim a category.
func (t *Taxonomy) Match(text string, requested []Category) []Category {
	folded := textutils.LowerASCIIFolding(text)

	var matched []Category

	for _, c := range requested {
		entry, ok := t.entries[c]
		if !ok {
			continue
		}

		for _, kw := range entry.keywords {
			if kw != "" && strings.Contains(folded, kw) {
				matched = append(matched, c)

				break
			}
		}
	}

	return matched
}
