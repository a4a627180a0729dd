// Copyright 2025 The Refuge Authors
// SPDX-License-Identifier: Apache-2.0

package finder

import "strings"

// organizationKeywords identifies well-known operators by a fragment of
// their name. Used both for duplicate merging and for the diversity
// buckets in the selector, so the two stages agree on what counts as the
// same organization.
var organizationKeywords = []string{
	"salvation army",
	"covenant house",
	"good shepherd",
	"yonge street",
	"st. michael",
	"st. stephen",
	"evangel hall",
	"mission",
}

// streetKeywords are downtown street names whose presence in two snippets
// suggests the same physical site.
var streetKeywords = []string{
	"yonge",
	"queen",
	"king",
	"dundas",
	"college",
	"bloor",
	"spadina",
	"church",
}

// genericServicePhrases describe a program rather than an organization;
// a shared phrase alone is not enough to merge, but combined with a shared
// organization keyword it is.
var genericServicePhrases = []string{
	"emergency shelter",
	"drop-in",
	"soup kitchen",
	"food bank",
	"warming centre",
}

// matchedOrganization returns the first organization keyword found in
// folded text, or "" when none match. List order is significant: more
// specific names come before the generic "mission" fragment.
func matchedOrganization(foldedText string) string {
	for _, kw := range organizationKeywords {
		if strings.Contains(foldedText, kw) {
			return kw
		}
	}

	return ""
}

// sharedOrganizationKeyword reports whether any organization keyword
// appears in both folded titles. Every keyword is tried against both:
// two titles can differ on their first match and still share a later
// one ("Salvation Army Mission Store" and "Mission Services").
func sharedOrganizationKeyword(titleA, titleB string) bool {
	for _, kw := range organizationKeywords {
		if strings.Contains(titleA, kw) && strings.Contains(titleB, kw) {
			return true
		}
	}

	return false
}

// matchedStreet returns the first street keyword found in folded text.
func matchedStreet(foldedText string) string {
	for _, kw := range streetKeywords {
		if strings.Contains(foldedText, kw) {
			return kw
		}
	}

	return ""
}

// matchedServicePhrase returns the first generic service phrase found in
// folded text.
func matchedServicePhrase(foldedText string) string {
	for _, p := range genericServicePhrases {
		if strings.Contains(foldedText, p) {
			return p
		}
	}

	return ""
}

// organizationBucket classifies a candidate for the diversity cap. Brand
// matches get their own bucket; everything else pools into "general".
func organizationBucket(foldedName string) string {
	if org := matchedOrganization(foldedName); org != "" {
		return org
	}

	return "general"
}
