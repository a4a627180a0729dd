// Copyright 2025 The Refuge Authors
// SPDX-License-Identifier: Apache-2.0

package finder

import (
	"sort"

	"github.com/openrefuge/refuge/utils/textutils"
)

const (
	contactBoost    = 0.2
	multiMatchBoost = 0.1

	// externalScoreLimit bounds how many top candidates get the external
	// relevance blend, to bound API cost.
	externalScoreLimit = 3

	defaultMinResults = 5
	defaultMaxResults = 10

	lowConfidenceThreshold = 3
	diversityBucketCap     = 2
)

// ScoreCandidate computes the match score from the requested categories.
// Base is the fraction of requested categories the candidate matched;
// having both address and phone adds 0.2, matching two or more categories
// adds 0.1.
func ScoreCandidate(c *Candidate, requested []Category) float64 {
	if len(requested) == 0 {
		return 0
	}

	matched := 0

	for _, r := range requested {
		if c.HasMatch(r) {
			matched++
		}
	}

	score := float64(matched) / float64(len(requested))

	if c.Address != "" && c.Phone != "" {
		score += contactBoost
	}

	if matched >= 2 {
		score += multiMatchBoost
	}

	return score
}

// BlendExternalScore mixes an external relevance score on a 0-10 scale
// into a base score.
func BlendExternalScore(base, external float64) float64 {
	return (base + external/10) / 2
}

// SortCandidates orders candidates by descending score, then ascending
// distance with unknown distances last, then discovery order. The sort is
// stable so equal candidates keep their relative order.
func SortCandidates(candidates []Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := &candidates[i], &candidates[j]

		if a.MatchScore != b.MatchScore {
			return a.MatchScore > b.MatchScore
		}

		switch {
		case a.DistanceKm != nil && b.DistanceKm != nil:
			if *a.DistanceKm != *b.DistanceKm {
				return *a.DistanceKm < *b.DistanceKm
			}
		case a.DistanceKm != nil:
			return true
		case b.DistanceKm != nil:
			return false
		}

		if a.queryIndex != b.queryIndex {
			return a.queryIndex < b.queryIndex
		}

		return a.hitIndex < b.hitIndex
	})
}

// SelectDiverse walks the sorted candidates and builds the final list.
// Each candidate is classified into an organization bucket; a bucket holds
// at most two entries until the minimum result count is reached, after
// which skipped candidates backfill in their original order. The output
// is capped at min(maxResults, max(minResults, survivors)).
func SelectDiverse(candidates []Candidate, minResults, maxResults int) []Candidate {
	if minResults <= 0 {
		minResults = defaultMinResults
	}

	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	// min(maxResults, max(minResults, survivors)), never padded past the
	// survivors actually available.
	limit := min(maxResults, max(minResults, len(candidates)))
	limit = min(limit, len(candidates))

	bucketCounts := make(map[string]int)

	var selected, skipped []Candidate

	for _, c := range candidates {
		if len(selected) == limit {
			break
		}

		bucket := organizationBucket(textutils.LowerASCIIFolding(c.Name))

		if bucketCounts[bucket] >= diversityBucketCap {
			skipped = append(skipped, c)

			continue
		}

		bucketCounts[bucket]++

		selected = append(selected, c)
	}

	// Relax the cap when diversity alone cannot fill the minimum.
	for _, c := range skipped {
		if len(selected) >= minResults || len(selected) == limit {
			break
		}

		selected = append(selected, c)
	}

	return selected
}

// ConfidenceFor maps a survivor count to the run confidence.
func ConfidenceFor(survivors int) Confidence {
	if survivors < lowConfidenceThreshold {
		return ConfidenceLow
	}

	return ConfidenceOK
}
