// Copyright 2025 The Refuge Authors
// SPDX-License-Identifier: Apache-2.0

package finder

import (
	"context"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/openrefuge/refuge/utils/htmlutils"
	"github.com/openrefuge/refuge/utils/httputils"
	"github.com/openrefuge/refuge/utils/textutils"
)

// PageFetcher retrieves the visible text of a candidate's detail page.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// HTTPPageFetcher fetches pages over plain HTTP and strips them to
// visible text.
type HTTPPageFetcher struct {
	client *http.Client
}

// NewHTTPPageFetcher builds a fetcher identifying itself with userAgent.
func NewHTTPPageFetcher(userAgent string) *HTTPPageFetcher {
	return &HTTPPageFetcher{
		client: httputils.NewClient(15*time.Second, map[string]string{
			"User-Agent": userAgent,
		}, nil, false),
	}
}

// Fetch implements PageFetcher.
func (f *HTTPPageFetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", &FetchError{URL: url, Err: err}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	r, err := htmlutils.AsReader(resp)
	if err != nil {
		return "", &FetchError{URL: url, Err: err}
	}

	node, err := htmlutils.AsNode(r)
	if err != nil {
		return "", &FetchError{URL: url, Err: err}
	}

	return htmlutils.VisibleText(node), nil
}

var (
	addressRegex = regexp.MustCompile(`(?i)\b\d{1,5}\s+[A-Za-z][A-Za-z.'-]*(?:\s+[A-Za-z][A-Za-z.'-]*){0,3}\s+(?:Street|St\.?|Avenue|Ave\.?|Road|Rd\.?|Boulevard|Blvd\.?|Drive|Dr\.?|Lane|Ln\.?|Way|Crescent|Cres\.?|Place|Pl\.?)\b`)
	hoursRegex   = regexp.MustCompile(`(?i)\b(?:open\s+)?(?:mon|tue|wed|thu|fri|sat|sun|monday|tuesday|wednesday|thursday|friday|saturday|sunday|daily|24/7|24 hours)[^.;]{0,60}?\d{1,2}(?::\d{2})?\s*(?:am|pm|a\.m\.|p\.m\.)[^.;]{0,40}`)
)

// PageDetails holds what deep extraction could pull from a detail page.
type PageDetails struct {
	Address    string
	Phone      string
	Hours      string
	Categories []Category
}

// ExtractDetails mines a page's visible text for contact fields and an
// authoritative category list. The category list is computed against the
// full taxonomy, not just the requested set, so it can override the
// snippet-based matcher.
func ExtractDetails(text string, taxonomy *Taxonomy) PageDetails {
	details := PageDetails{
		Categories: taxonomy.Match(text, taxonomy.Categories()),
	}

	if m := addressRegex.FindString(text); m != "" {
		details.Address = strings.TrimSpace(m)
	}

	if phones := textutils.ExtractPhones(text); len(phones) > 0 {
		details.Phone = phones[0]
	}

	if m := hoursRegex.FindString(text); m != "" {
		details.Hours = strings.TrimSpace(m)
	}

	return details
}

// applyDetails merges extracted fields into the candidate. Extracted
// categories, when present, replace keyword matches but are still
// restricted to the requested set.
func applyDetails(c *Candidate, details PageDetails, requested []Category) {
	if details.Address != "" {
		c.Address = details.Address
	}

	if details.Phone != "" {
		c.Phone = details.Phone
	}

	if details.Hours != "" {
		c.Hours = details.Hours
	}

	if len(details.Categories) == 0 {
		return
	}

	var matched []Category

	for _, r := range requested {
		for _, ext := range details.Categories {
			if r == ext {
				matched = append(matched, r)

				break
			}
		}
	}

	if len(matched) > 0 {
		c.MatchingServices = matched
	}
}
