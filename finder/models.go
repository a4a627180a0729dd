// Copyright 2025 The Refuge Authors
// SPDX-License-Identifier: Apache-2.0

package finder

// RawHit is one organic result as reported by a search provider, tagged
// with its discovery position so later stages can order deterministically.
type RawHit struct {
	Title      string
	Snippet    string
	URL        string
	QueryIndex int
	HitIndex   int
}

// Candidate is a verified resource as it moves through the pipeline and
// as it is reported to callers.
type Candidate struct {
	Name             string     `json:"name"`
	URL              string     `json:"url"`
	Snippet          string     `json:"snippet"`
	MatchingServices []Category `json:"matching_services"`
	DistanceKm       *float64   `json:"distance_km"`
	MatchScore       float64    `json:"match_score"`
	LLMSummary       string     `json:"llm_summary,omitempty"`
	LLMScore         *float64   `json:"llm_score,omitempty"`
	Address          string     `json:"address,omitempty"`
	Phone            string     `json:"phone,omitempty"`
	Hours            string     `json:"hours,omitempty"`

	queryIndex int
	hitIndex   int
}

// HasMatch reports whether the candidate claims c among its matching
// services.
func (c *Candidate) HasMatch(cat Category) bool {
	for _, m := range c.MatchingServices {
		if m == cat {
			return true
		}
	}

	return false
}

// Confidence indicates how trustworthy a result set is.
type Confidence string

const (
	// ConfidenceOK means enough distinct resources survived the pipeline.
	ConfidenceOK Confidence = "ok"
	// ConfidenceLow means fewer than three distinct resources survived,
	// so callers should treat the list as best-effort.
	ConfidenceLow Confidence = "low"
)

// Response is the outcome of one FindResources run.
type Response struct {
	Results    []Candidate `json:"results"`
	Confidence Confidence  `json:"confidence"`
	Location   string      `json:"location"`
	Resolved   string      `json:"resolved_location,omitempty"`
}
