// Copyright 2025 The Refuge Authors
// SPDX-License-Identifier: Apache-2.0

// Package finder implements the resource discovery pipeline: query
// generation, search aggregation, candidate verification, service
// matching, near-duplicate filtering and ranked selection.
package finder

import (
	"context"
	"log"

	"github.com/openrefuge/refuge/geocode"
	"github.com/openrefuge/refuge/spatial"
)

// Geolocator resolves free-form location text to a coordinate.
// geocode.Resolver is the production implementation.
type Geolocator interface {
	Resolve(ctx context.Context, location string) (*geocode.Result, error)
}

// deepExtractLimit bounds how many candidate pages one run may fetch.
const deepExtractLimit = 8

// Config wires a Finder's collaborators. SearchProvider and Geolocator
// are required; Fetcher and Scorer enable the optional enhancement
// passes when the per-request options ask for them.
type Config struct {
	SearchProvider SearchProvider
	Geolocator     Geolocator
	Taxonomy       *Taxonomy
	Verifier       *Verifier
	Fetcher        PageFetcher
	Scorer         RelevanceScorer
	Aggregator     []AggregatorOption
}

// Options tunes one FindResources run.
type Options struct {
	UseExternalScoring   bool
	EnableDeepExtraction bool
	MinResults           int
	MaxResults           int
	MaxQueries           int
}

// Finder runs the full pipeline for one request at a time. It holds no
// per-request state, so a single instance serves concurrent requests.
type Finder struct {
	provider   SearchProvider
	geolocator Geolocator
	taxonomy   *Taxonomy
	verifier   *Verifier
	fetcher    PageFetcher
	scorer     RelevanceScorer
	aggregator *Aggregator
}

// New builds a Finder from cfg.
func New(cfg Config) (*Finder, error) {
	if cfg.SearchProvider == nil {
		return nil, ErrMissingSearchProvider
	}

	if cfg.Geolocator == nil {
		return nil, ErrMissingGeolocator
	}

	taxonomy := cfg.Taxonomy
	if taxonomy == nil {
		taxonomy = DefaultTaxonomy()
	}

	verifier := cfg.Verifier
	if verifier == nil {
		verifier = NewVerifier()
	}

	return &Finder{
		provider:   cfg.SearchProvider,
		geolocator: cfg.Geolocator,
		taxonomy:   taxonomy,
		verifier:   verifier,
		fetcher:    cfg.Fetcher,
		scorer:     cfg.Scorer,
		aggregator: NewAggregator(cfg.SearchProvider, cfg.Aggregator...),
	}, nil
}

// Taxonomy exposes the taxonomy the Finder classifies against.
func (f *Finder) Taxonomy() *Taxonomy {
	return f.taxonomy
}

// FindResources runs the pipeline: resolve the location, aggregate search
// hits, verify and classify them, collapse duplicates, score and select.
// The only terminal failure is geocoding exhaustion; every other provider
// error degrades the result set instead of aborting.
func (f *Finder) FindResources(ctx context.Context, location string, categories []Category, opts Options) (*Response, error) {
	if location == "" {
		return nil, ErrEmptyLocation
	}

	requested := f.taxonomy.Filter(categories)
	if len(requested) == 0 {
		return nil, ErrNoCategories
	}

	origin, err := f.geolocator.Resolve(ctx, location)
	if err != nil {
		return nil, err
	}

	queries := BuildQueries(location, requested, true)

	hits, metrics, err := f.aggregator.Aggregate(ctx, queries, opts.MaxQueries)
	if err != nil && len(hits) == 0 {
		return nil, err
	}

	log.Printf("FindResources - %q: %d queries (%d failed), %d hits, %d unique",
		location, metrics.QueriesIssued, metrics.QueriesFailed, metrics.HitsCollected, metrics.HitsDeduped)

	candidates := f.classify(hits, requested)

	if opts.EnableDeepExtraction && f.fetcher != nil {
		f.deepExtract(ctx, candidates, requested)
	}

	candidates = dropUnmatched(candidates)
	candidates = Dedupe(candidates)

	confidence := ConfidenceFor(len(candidates))

	f.computeDistances(ctx, candidates, location, &origin.Point)

	for i := range candidates {
		candidates[i].MatchScore = ScoreCandidate(&candidates[i], requested)
	}

	SortCandidates(candidates)

	if opts.UseExternalScoring && f.scorer != nil {
		f.blendExternalScores(ctx, candidates, requested)
		SortCandidates(candidates)
	}

	results := SelectDiverse(candidates, opts.MinResults, opts.MaxResults)
	if results == nil {
		results = []Candidate{}
	}

	return &Response{
		Results:    results,
		Confidence: confidence,
		Location:   location,
		Resolved:   origin.DisplayName,
	}, nil
}

// classify turns verified raw hits into candidates with their keyword
// category matches. Unverified hits are dropped here.
func (f *Finder) classify(hits []RawHit, requested []Category) []Candidate {
	var candidates []Candidate

	for _, hit := range hits {
		if !f.verifier.IsPlausibleProvider(hit) {
			continue
		}

		candidates = append(candidates, Candidate{
			Name:             hit.Title,
			URL:              hit.URL,
			Snippet:          hit.Snippet,
			MatchingServices: f.taxonomy.Match(hit.Title+" "+hit.Snippet, requested),
			queryIndex:       hit.QueryIndex,
			hitIndex:         hit.HitIndex,
		})
	}

	return candidates
}

// deepExtract fetches detail pages for the first few candidates in
// discovery order. Fetch failures leave the candidate's snippet-derived
// fields untouched.
func (f *Finder) deepExtract(ctx context.Context, candidates []Candidate, requested []Category) {
	limit := min(deepExtractLimit, len(candidates))

	for i := 0; i < limit; i++ {
		text, err := f.fetcher.Fetch(ctx, candidates[i].URL)
		if err != nil {
			log.Printf("FindResources - %v", err)

			continue
		}

		applyDetails(&candidates[i], ExtractDetails(text, f.taxonomy), requested)
	}
}

// dropUnmatched removes candidates with no overlap with the requested
// categories.
func dropUnmatched(candidates []Candidate) []Candidate {
	var kept []Candidate

	for _, c := range candidates {
		if len(c.MatchingServices) > 0 {
			kept = append(kept, c)
		}
	}

	return kept
}

// computeDistances resolves each candidate's address, when present, and
// records the haversine distance from the requester. Unresolvable
// addresses leave the distance undefined.
func (f *Finder) computeDistances(ctx context.Context, candidates []Candidate, location string, origin *spatial.Point) {
	for i := range candidates {
		if candidates[i].Address == "" {
			continue
		}

		resolved, err := f.geolocator.Resolve(ctx, candidates[i].Address+", "+location)
		if err != nil {
			log.Printf("FindResources - distance for %q: %v", candidates[i].Name, err)

			continue
		}

		distance := origin.DistanceKm(&resolved.Point)
		candidates[i].DistanceKm = &distance
	}
}

// blendExternalScores refines the top candidates with the external
// relevance scorer. Scorer failures leave the heuristic score in place.
func (f *Finder) blendExternalScores(ctx context.Context, candidates []Candidate, requested []Category) {
	limit := min(externalScoreLimit, len(candidates))

	for i := 0; i < limit; i++ {
		summary, score, err := f.scorer.Score(ctx, &candidates[i], requested)
		if err != nil {
			log.Printf("FindResources - external score for %q: %v", candidates[i].Name, err)

			continue
		}

		candidates[i].LLMSummary = summary
		candidates[i].LLMScore = &score
		candidates[i].MatchScore = BlendExternalScore(candidates[i].MatchScore, score)
	}
}
