// Copyright 2025 The Refuge Authors
// SPDX-License-Identifier: Apache-2.0

package finder

import (
	"net/url"
	"strings"

	"github.com/openrefuge/refuge/utils/textutils"
)

// positiveIndicators suggest a social-service organization. Counted once
// each over title, snippet and domain.
var positiveIndicators = []string{
	"shelter",
	"mission",
	"organization",
	"non-profit",
	"nonprofit",
	"charity",
	"community",
	"services",
	"assistance",
	"support",
	"homeless",
	"outreach",
	"drop-in",
	"volunteer",
	"ministry",
	"ministries",
	"society",
	"foundation",
	"centre",
	"center",
}

// negativeIndicators suggest commercial or otherwise irrelevant pages.
var negativeIndicators = []string{
	"hotel",
	"motel",
	"booking",
	"tripadvisor",
	"expedia",
	"airbnb",
	"hostelworld",
	"real estate",
	"realtor",
	"for sale",
	"for rent",
	"apartment listing",
	"zillow",
	"news",
	"article",
	"wikipedia",
	"job posting",
	"indeed.com",
	"linkedin",
}

// knownOrganizationDomains are fragments of domains operated by shelter
// organizations; a match accepts the hit outright.
var knownOrganizationDomains = []string{
	"salvationarmy",
	"covenanthouse",
	"goodshepherd",
	"ysm.ca",
	"stmichaelshospital",
	"evangelhall",
	"homesfirst",
	"frontlines",
	"211",
	"shelternetwork",
}

// Verifier decides whether a raw hit plausibly represents a service
// provider. It is a keyword heuristic: precision is best-effort, and the
// downstream matcher and dedupe stages tolerate its mistakes.
type Verifier struct {
	positive    []string
	negative    []string
	orgDomains  []string
	minPositive int
}

// NewVerifier builds a Verifier with the built-in indicator lists.
func NewVerifier() *Verifier {
	return &Verifier{
		positive:    positiveIndicators,
		negative:    negativeIndicators,
		orgDomains:  knownOrganizationDomains,
		minPositive: 2,
	}
}

// IsPlausibleProvider reports whether the hit looks like a real service
// organization rather than a commercial or off-topic page.
func (v *Verifier) IsPlausibleProvider(hit RawHit) bool {
	domain := hostOf(hit.URL)

	for _, fragment := range v.orgDomains {
		if strings.Contains(domain, fragment) {
			return true
		}
	}

	text := textutils.LowerASCIIFolding(hit.Title + " " + hit.Snippet + " " + domain)

	positive := 0

	for _, kw := range v.positive {
		if strings.Contains(text, kw) {
			positive++
		}
	}

	if strings.HasSuffix(domain, ".org") {
		positive++
	}

	negative := 0

	for _, kw := range v.negative {
		if strings.Contains(text, kw) {
			negative++
		}
	}

	if negative > positive {
		return false
	}

	return positive >= v.minPositive
}

// hostOf extracts the lowercased host from a URL, tolerating bare hosts
// and schemeless strings.
func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		if i := strings.IndexByte(rawURL, '/'); i > 0 {
			return strings.ToLower(rawURL[:i])
		}

		return strings.ToLower(rawURL)
	}

	return strings.ToLower(u.Host)
}
