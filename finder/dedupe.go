// Copyright 2025 The Refuge Authors
// SPDX-License-Identifier: Apache-2.0

package finder

import (
	"sort"
	"strings"

	"github.com/openrefuge/refuge/utils/textutils"
)

const titleOverlapThreshold = 0.7

// Dedupe collapses near-duplicate candidates. Input is first sorted into
// discovery order (query index, then hit index) so the merge is
// deterministic; the first-seen candidate survives and later duplicates
// are discarded without unioning their attributes. Running Dedupe on its
// own output changes nothing.
func Dedupe(candidates []Candidate) []Candidate {
	sorted := append([]Candidate(nil), candidates...)

	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].queryIndex != sorted[j].queryIndex {
			return sorted[i].queryIndex < sorted[j].queryIndex
		}

		return sorted[i].hitIndex < sorted[j].hitIndex
	})

	var survivors []Candidate

	for _, c := range sorted {
		duplicate := false

		for i := range survivors {
			if sameResource(&survivors[i], &c) {
				duplicate = true

				break
			}
		}

		if !duplicate {
			survivors = append(survivors, c)
		}
	}

	return survivors
}

// sameResource applies the merge predicates. Any single match is enough.
// The rules deliberately prefer under-merging: discarding a distinct
// organization is worse than listing one twice.
func sameResource(a, b *Candidate) bool {
	titleA := textutils.LowerASCIIFolding(a.Name)
	titleB := textutils.LowerASCIIFolding(b.Name)

	if strings.TrimSpace(titleA) == strings.TrimSpace(titleB) {
		return true
	}

	if textutils.TokenOverlap(titleA, titleB) >= titleOverlapThreshold {
		return true
	}

	if sharedOrganizationKeyword(titleA, titleB) {
		return true
	}

	// Organization identity for the corroborating rules below is read
	// from the titles only. Words like "mission" appear in snippet prose
	// for unrelated providers, and a wrong merge drops a real one.
	snippetA := textutils.LowerASCIIFolding(a.Snippet)
	snippetB := textutils.LowerASCIIFolding(b.Snippet)

	streetA := matchedStreet(snippetA)
	if streetA != "" && streetA == matchedStreet(snippetB) &&
		sharedOrganizationKeyword(titleA, titleB) {
		return true
	}

	if sharedPhone(a, b) {
		return true
	}

	phraseA := matchedServicePhrase(snippetA)
	if phraseA != "" && phraseA == matchedServicePhrase(snippetB) &&
		sharedOrganizationKeyword(titleA, titleB) {
		return true
	}

	return false
}

// sharedPhone reports whether both candidates expose an identical
// normalized phone number, in their extracted phone field or embedded in
// the snippet.
func sharedPhone(a, b *Candidate) bool {
	phonesA := candidatePhones(a)
	if len(phonesA) == 0 {
		return false
	}

	phonesB := candidatePhones(b)

	for _, pa := range phonesA {
		for _, pb := range phonesB {
			if pa == pb {
				return true
			}
		}
	}

	return false
}

func candidatePhones(c *Candidate) []string {
	phones := textutils.ExtractPhones(c.Snippet)

	if c.Phone != "" {
		phones = append(phones, textutils.ExtractPhones(c.Phone)...)
	}

	return phones
}
