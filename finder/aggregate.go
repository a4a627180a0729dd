// Copyright 2025 The Refuge Authors
// SPDX-License-Identifier: Apache-2.0

package finder

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"golang.org/x/time/rate"
)

// AggregateMetrics tracks the outcome of one aggregation run.
type AggregateMetrics struct {
	QueriesIssued int
	QueriesFailed int
	HitsCollected int
	HitsDeduped   int
}

// Merge combines two AggregateMetrics.
func (m *AggregateMetrics) Merge(o *AggregateMetrics) *AggregateMetrics {
	m.QueriesIssued += o.QueriesIssued
	m.QueriesFailed += o.QueriesFailed
	m.HitsCollected += o.HitsCollected
	m.HitsDeduped += o.HitsDeduped

	return m
}

// ProgressFn is notified after each query completes, successfully or not.
type ProgressFn func(done, total int)

const (
	defaultAggregatorWorkers  = 4
	defaultQueryTimeout       = 15 * time.Second
	defaultInterQueryInterval = 500 * time.Millisecond
)

// Aggregator fans queries out to a search provider over a bounded worker
// pool, dedupes the returned hits by URL and tags each survivor with its
// discovery position.
type Aggregator struct {
	provider     SearchProvider
	workers      int
	queryTimeout time.Duration
	limiter      *rate.Limiter
	progress     ProgressFn
}

// AggregatorOption configures an Aggregator.
type AggregatorOption func(*Aggregator)

// WithWorkers bounds how many queries may be in flight at once.
func WithWorkers(n int) AggregatorOption {
	return func(a *Aggregator) {
		if n > 0 {
			a.workers = n
		}
	}
}

// WithQueryTimeout bounds each individual provider call.
func WithQueryTimeout(d time.Duration) AggregatorOption {
	return func(a *Aggregator) {
		if d > 0 {
			a.queryTimeout = d
		}
	}
}

// WithInterQueryInterval sets the minimum spacing between provider calls
// shared across all workers.
func WithInterQueryInterval(d time.Duration) AggregatorOption {
	return func(a *Aggregator) {
		if d > 0 {
			a.limiter = rate.NewLimiter(rate.Every(d), 1)
		}
	}
}

// WithProgress installs a completion callback.
func WithProgress(fn ProgressFn) AggregatorOption {
	return func(a *Aggregator) {
		a.progress = fn
	}
}

// NewAggregator builds an Aggregator over the given provider.
func NewAggregator(provider SearchProvider, opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{
		provider:     provider,
		workers:      defaultAggregatorWorkers,
		queryTimeout: defaultQueryTimeout,
		limiter:      rate.NewLimiter(rate.Every(defaultInterQueryInterval), 1),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

type queryResult struct {
	queryIndex int
	hits       []SearchHit
	err        error
	metrics    AggregateMetrics
}

// Aggregate runs every query (truncated oldest-first to maxQueries when
// positive) and returns the deduplicated hits sorted by query index then
// hit index. A failing query is logged and skipped; it never aborts the
// run. Returns early with the hits gathered so far when ctx is cancelled.
func (a *Aggregator) Aggregate(ctx context.Context, queries []string, maxQueries int) ([]RawHit, *AggregateMetrics, error) {
	if maxQueries > 0 && len(queries) > maxQueries {
		queries = queries[:maxQueries]
	}

	pool, err := ants.NewPool(a.workers)
	if err != nil {
		return nil, nil, err
	}
	defer pool.Release()

	results := make([]queryResult, len(queries))

	var (
		wg   sync.WaitGroup
		done int
		mu   sync.Mutex
	)

	for i, query := range queries {
		i, query := i, query

		wg.Add(1)

		submitErr := pool.Submit(func() {
			defer wg.Done()

			results[i] = a.runQuery(ctx, i, query)

			if a.progress != nil {
				mu.Lock()
				done++
				a.progress(done, len(queries))
				mu.Unlock()
			}
		})
		if submitErr != nil {
			wg.Done()

			results[i] = queryResult{
				queryIndex: i,
				err:        submitErr,
				metrics:    AggregateMetrics{QueriesIssued: 1, QueriesFailed: 1},
			}
		}
	}

	wg.Wait()

	metrics := &AggregateMetrics{}

	seen := make(map[string]bool)

	var hits []RawHit

	for _, r := range results {
		metrics.Merge(&r.metrics)

		if r.err != nil {
			log.Printf("Aggregate - %v", &SearchProviderError{Query: queries[r.queryIndex], Err: r.err})

			continue
		}

		for hitIndex, h := range r.hits {
			if seen[h.URL] {
				continue
			}

			seen[h.URL] = true

			hits = append(hits, RawHit{
				Title:      h.Title,
				Snippet:    h.Snippet,
				URL:        h.URL,
				QueryIndex: r.queryIndex,
				HitIndex:   hitIndex,
			})
		}
	}

	metrics.HitsDeduped = len(hits)

	// Results are already grouped by query index, but keep the contract
	// explicit: later stages rely on discovery order being deterministic.
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].QueryIndex != hits[j].QueryIndex {
			return hits[i].QueryIndex < hits[j].QueryIndex
		}

		return hits[i].HitIndex < hits[j].HitIndex
	})

	return hits, metrics, ctx.Err()
}

func (a *Aggregator) runQuery(ctx context.Context, index int, query string) queryResult {
	r := queryResult{
		queryIndex: index,
		metrics:    AggregateMetrics{QueriesIssued: 1},
	}

	if a.limiter != nil {
		if err := a.limiter.Wait(ctx); err != nil {
			r.err = err
			r.metrics.QueriesFailed = 1

			return r
		}
	}

	queryCtx, cancel := context.WithTimeout(ctx, a.queryTimeout)
	defer cancel()

	r.hits, r.err = a.provider.Search(queryCtx, query)
	if r.err != nil {
		r.metrics.QueriesFailed = 1
	}

	r.metrics.HitsCollected = len(r.hits)

	return r
}
