// Copyright 2025 The Refuge Authors
// SPDX-License-Identifier: Apache-2.0

package finder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/openrefuge/refuge/utils/httputils"
)

// SearchHit is one organic result as delivered by a provider, before the
// aggregator tags it with discovery indexes.
type SearchHit struct {
	Title   string
	Snippet string
	URL     string
}

// SearchProvider issues one web search query.
type SearchProvider interface {
	Search(ctx context.Context, query string) ([]SearchHit, error)
}

const serperBaseURL = "https://google.serper.dev/search"

// SerperClient talks to the serper.dev search API.
type SerperClient struct {
	baseURL    string
	country    string
	language   string
	numResults int
	client     *http.Client
}

// SerperOption configures a SerperClient.
type SerperOption func(*SerperClient)

// WithSerperBaseURL overrides the API endpoint, for tests.
func WithSerperBaseURL(baseURL string) SerperOption {
	return func(c *SerperClient) {
		c.baseURL = baseURL
	}
}

// WithSerperLocale sets the country and language bias sent with every
// query.
func WithSerperLocale(country, language string) SerperOption {
	return func(c *SerperClient) {
		c.country = country
		c.language = language
	}
}

// NewSerperClient builds a client authenticated with the given API key.
func NewSerperClient(apiKey string, opts ...SerperOption) *SerperClient {
	c := &SerperClient{
		baseURL:    serperBaseURL,
		country:    "ca",
		language:   "en",
		numResults: 10,
		client: httputils.NewClient(15*time.Second, map[string]string{
			"X-API-KEY":    apiKey,
			"Content-Type": "application/json",
		}, nil, false),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

type serperRequest struct {
	Query    string `json:"q"`
	Num      int    `json:"num"`
	Country  string `json:"gl"`
	Language string `json:"hl"`
}

type serperResponse struct {
	Organic []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"organic"`
}

// Search implements SearchProvider.
func (c *SerperClient) Search(ctx context.Context, query string) ([]SearchHit, error) {
	body, err := json.Marshal(serperRequest{
		Query:    query,
		Num:      c.numResults,
		Country:  c.country,
		Language: c.language,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)

		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var parsed serperResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	hits := make([]SearchHit, 0, len(parsed.Organic))
	for _, o := range parsed.Organic {
		if o.Link == "" {
			continue
		}

		hits = append(hits, SearchHit{
			Title:   o.Title,
			Snippet: o.Snippet,
			URL:     o.Link,
		})
	}

	return hits, nil
}
