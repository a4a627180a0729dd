// Copyright 2025 The Refuge Authors
// SPDX-License-Identifier: Apache-2.0

package finder

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDefaultTaxonomy_Categories(t *testing.T) {
	taxonomy := DefaultTaxonomy()

	categories := taxonomy.Categories()
	if len(categories) != 12 {
		t.Fatalf("expected 12 categories, got %d", len(categories))
	}

	if categories[0] != CategoryShelter {
		t.Errorf("expected shelter first, got %s", categories[0])
	}

	for _, c := range categories {
		if taxonomy.Label(c) == "" {
			t.Errorf("category %s has no label", c)
		}

		if len(taxonomy.Keywords(c)) == 0 {
			t.Errorf("category %s has no keywords", c)
		}
	}
}

func TestTaxonomy_Match(t *testing.T) {
	taxonomy := DefaultTaxonomy()
	requested := []Category{CategoryMeals, CategoryShowers, CategoryShelter}

	tests := []struct {
		name     string
		text     string
		expected []Category
	}{
		{
			name:     "meals and showers",
			text:     "Free meals daily and clean showers for anyone in need",
			expected: []Category{CategoryMeals, CategoryShowers},
		},
		{
			name:     "shelter",
			text:     "Overnight accommodation available, emergency housing referrals",
			expected: []Category{CategoryShelter},
		},
		{
			name:     "breakfast program",
			text:     "Petit déjeuner breakfast program every morning",
			expected: []Category{CategoryMeals},
		},
		{
			name:     "no match",
			text:     "Downtown parking rates and hours",
			expected: nil,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := taxonomy.Match(test.text, requested)

			if diff := cmp.Diff(test.expected, got); diff != "" {
				t.Errorf("Match() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTaxonomy_MatchIgnoresUnknownCategory(t *testing.T) {
	taxonomy := DefaultTaxonomy()

	got := taxonomy.Match("free meals", []Category{"unknown", CategoryMeals})
	if len(got) != 1 || got[0] != CategoryMeals {
		t.Errorf("expected [meals], got %v", got)
	}
}

func TestTaxonomy_Filter(t *testing.T) {
	taxonomy := DefaultTaxonomy()

	got := taxonomy.Filter([]Category{CategoryMeals, "bogus", CategoryMeals, CategoryWifi})

	expected := []Category{CategoryMeals, CategoryWifi}
	if diff := cmp.Diff(expected, got); diff != "" {
		t.Errorf("Filter() mismatch (-want +got):\n%s", diff)
	}
}

func TestNewTaxonomy_IsolatedFromInput(t *testing.T) {
	order := []Category{CategoryMeals}
	keywords := map[Category][]string{CategoryMeals: {"meal"}}

	taxonomy := NewTaxonomy(order, map[Category]string{CategoryMeals: "Meals"}, keywords)

	keywords[CategoryMeals][0] = "mutated"
	order[0] = "mutated"

	if got := taxonomy.Keywords(CategoryMeals); got[0] != "meal" {
		t.Errorf("taxonomy shares keyword storage with caller: %v", got)
	}

	if got := taxonomy.Categories(); got[0] != CategoryMeals {
		t.Errorf("taxonomy shares order storage with caller: %v", got)
	}
}
