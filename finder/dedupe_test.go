// Copyright 2025 The Refuge Authors
// SPDX-License-Identifier: Apache-2.0

package finder

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestDedupe_ExactTitle(t *testing.T) {
	candidates := []Candidate{
		{Name: "Downtown Mission", URL: "https://a.example.org", queryIndex: 0, hitIndex: 0},
		{Name: "  downtown mission ", URL: "https://b.example.org", queryIndex: 1, hitIndex: 0},
	}

	got := Dedupe(candidates)
	if len(got) != 1 {
		t.Fatalf("expected 1 survivor, got %d", len(got))
	}

	if got[0].URL != "https://a.example.org" {
		t.Errorf("expected first-seen to survive, got %s", got[0].URL)
	}
}

func TestDedupe_TokenOverlap(t *testing.T) {
	candidates := []Candidate{
		{Name: "Downtown Mission meals and showers daily", queryIndex: 0, hitIndex: 0},
		{Name: "Downtown Mission free meals clean showers daily", queryIndex: 0, hitIndex: 1},
		{Name: "Scott Street Food Bank", queryIndex: 0, hitIndex: 2},
	}

	got := Dedupe(candidates)
	if len(got) != 2 {
		t.Fatalf("expected 2 survivors, got %d", len(got))
	}
}

func TestDedupe_SharedOrganizationKeyword(t *testing.T) {
	candidates := []Candidate{
		{Name: "Covenant House Toronto", queryIndex: 0, hitIndex: 0},
		{Name: "Covenant House crisis programs for youth", queryIndex: 2, hitIndex: 3},
	}

	got := Dedupe(candidates)
	if len(got) != 1 {
		t.Fatalf("expected 1 survivor, got %d", len(got))
	}
}

func TestDedupe_SharedPhone(t *testing.T) {
	// Titles share nothing; identical normalized phone still merges.
	candidates := []Candidate{
		{Name: "Helping Hands", Snippet: "Call (416) 555-1234 for intake", queryIndex: 0, hitIndex: 0},
		{Name: "Intake line", Snippet: "Phone: 416.555.1234 any time", queryIndex: 0, hitIndex: 1},
	}

	got := Dedupe(candidates)
	if len(got) != 1 {
		t.Fatalf("expected 1 survivor, got %d", len(got))
	}
}

func TestDedupe_SharedStreetAndOrganization(t *testing.T) {
	candidates := []Candidate{
		{
			Name:       "Good Shepherd services",
			Snippet:    "Located on Queen Street East, open daily",
			queryIndex: 0, hitIndex: 0,
		},
		{
			Name:       "Good Shepherd drop-in programs",
			Snippet:    "Main site at Queen and Parliament",
			queryIndex: 0, hitIndex: 1,
		},
	}

	got := Dedupe(candidates)
	if len(got) != 1 {
		t.Fatalf("expected 1 survivor, got %d", len(got))
	}
}

func TestDedupe_SharedServicePhraseAndOrganization(t *testing.T) {
	candidates := []Candidate{
		{
			Name:       "St. Stephen community programs",
			Snippet:    "Runs an emergency shelter downtown",
			queryIndex: 0, hitIndex: 0,
		},
		{
			Name:       "St. Stephen shelter directory entry",
			Snippet:    "Operates an emergency shelter with 40 beds",
			queryIndex: 0, hitIndex: 1,
		},
	}

	got := Dedupe(candidates)
	if len(got) != 1 {
		t.Fatalf("expected 1 survivor, got %d", len(got))
	}
}

func TestDedupe_SnippetOrganizationDoesNotMerge(t *testing.T) {
	// "mission" in both snippets plus a shared street word must not merge
	// two organizations whose titles share nothing: organization identity
	// comes from the titles only.
	candidates := []Candidate{
		{
			Name:       "Helping Hands drop-in",
			Snippet:    "Our mission is to serve meals on Queen Street West",
			queryIndex: 0, hitIndex: 0,
		},
		{
			Name:       "Fresh Start services",
			Snippet:    "The mission of Fresh Start: hygiene support near Queen and Bathurst",
			queryIndex: 0, hitIndex: 1,
		},
	}

	got := Dedupe(candidates)
	if len(got) != 2 {
		t.Fatalf("expected 2 survivors, got %d", len(got))
	}
}

func TestDedupe_SharedLaterKeyword(t *testing.T) {
	// One title also contains an earlier-listed brand; the shared
	// "mission" fragment must still merge them.
	candidates := []Candidate{
		{Name: "Salvation Army Mission Store", queryIndex: 0, hitIndex: 0},
		{Name: "Mission Services", queryIndex: 0, hitIndex: 1},
	}

	got := Dedupe(candidates)
	if len(got) != 1 {
		t.Fatalf("expected 1 survivor, got %d", len(got))
	}
}

func TestDedupe_DistinctOrganizationsSurvive(t *testing.T) {
	candidates := []Candidate{
		{Name: "Fred Victor Centre", Snippet: "Housing and health services", queryIndex: 0, hitIndex: 0},
		{Name: "Na-Me-Res", Snippet: "Outreach and housing for Indigenous men", queryIndex: 0, hitIndex: 1},
	}

	got := Dedupe(candidates)
	if len(got) != 2 {
		t.Fatalf("expected 2 survivors, got %d", len(got))
	}
}

func TestDedupe_Idempotent(t *testing.T) {
	candidates := []Candidate{
		{Name: "Downtown Mission meals", Snippet: "Call 416-555-1234", queryIndex: 1, hitIndex: 2},
		{Name: "Downtown Mission showers", Snippet: "on Yonge street", queryIndex: 0, hitIndex: 0},
		{Name: "Scott Street Food Bank", Snippet: "Open weekdays", queryIndex: 0, hitIndex: 1},
	}

	once := Dedupe(candidates)
	twice := Dedupe(once)

	opts := cmp.AllowUnexported(Candidate{})
	if diff := cmp.Diff(once, twice, opts, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("Dedupe is not idempotent (-once +twice):\n%s", diff)
	}
}

func TestDedupe_DeterministicOrder(t *testing.T) {
	// Same candidates presented shuffled yield the same survivor.
	a := []Candidate{
		{Name: "Downtown Mission meals", URL: "https://first.example.org", queryIndex: 0, hitIndex: 0},
		{Name: "Downtown Mission showers", URL: "https://second.example.org", queryIndex: 1, hitIndex: 0},
	}
	b := []Candidate{a[1], a[0]}

	gotA := Dedupe(a)
	gotB := Dedupe(b)

	if len(gotA) != 1 || len(gotB) != 1 {
		t.Fatalf("expected 1 survivor each, got %d and %d", len(gotA), len(gotB))
	}

	if gotA[0].URL != gotB[0].URL {
		t.Errorf("survivor depends on input order: %s vs %s", gotA[0].URL, gotB[0].URL)
	}

	if gotA[0].URL != "https://first.example.org" {
		t.Errorf("expected lowest discovery index to survive, got %s", gotA[0].URL)
	}
}
