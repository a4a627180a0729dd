// Copyright 2025 The Refuge Authors
// SPDX-License-Identifier: Apache-2.0

// Package textutils provides text normalization helpers shared by the
// matching, deduplication and geocoding layers.
package textutils

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// LowerASCIIFolding normalizes a string by removing accents, lowercasing, and trimming spaces.
func LowerASCIIFolding(s string) string {
	s, _, _ = transform.String(
		transform.Chain(
			norm.NFD,
			runes.Remove(runes.In(unicode.Mn)),
			norm.NFC,
		),
		strings.TrimSpace(strings.ToLower(s)),
	)

	return s
}

// nonWordRegex strips punctuation before tokenization so that
// "Mission:" and "Mission" count as the same token.
var nonWordRegex = regexp.MustCompile(`[^a-z0-9\s]+`)

// Tokens splits a string into normalized word tokens.
func Tokens(s string) []string {
	return strings.Fields(nonWordRegex.ReplaceAllString(LowerASCIIFolding(s), " "))
}

// TokenSet returns the set of normalized word tokens in s.
func TokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range Tokens(s) {
		set[tok] = true
	}

	return set
}

// TokenOverlap computes the ratio of shared word tokens between two strings,
// dividing by the larger token count. The result is symmetric and in [0, 1].
func TokenOverlap(a, b string) float64 {
	setA := TokenSet(a)
	setB := TokenSet(b)

	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	shared := 0

	for tok := range setA {
		if setB[tok] {
			shared++
		}
	}

	return float64(shared) / float64(max(len(setA), len(setB)))
}

// phoneRegex matches North American phone numbers with common separators.
var phoneRegex = regexp.MustCompile(`\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}\b`)

var nonDigitRegex = regexp.MustCompile(`\D`)

// ExtractPhones returns the phone numbers found in s, normalized to digits only.
func ExtractPhones(s string) []string {
	matches := phoneRegex.FindAllString(s, -1)
	if len(matches) == 0 {
		return nil
	}

	phones := make([]string, 0, len(matches))
	for _, m := range matches {
		phones = append(phones, nonDigitRegex.ReplaceAllString(m, ""))
	}

	return phones
}
