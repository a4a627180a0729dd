// Copyright 2025 The Refuge Authors
// SPDX-License-Identifier: Apache-2.0

package finder

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVerdict(t *testing.T) {
	tests := []struct {
		name            string
		content         string
		expectedSummary string
		expectedScore   float64
		fails           bool
	}{
		{
			name:            "plain json",
			content:         `{"summary": "A real shelter.", "score": 8.5}`,
			expectedSummary: "A real shelter.",
			expectedScore:   8.5,
		},
		{
			name:            "fenced json",
			content:         "```json\n{\"summary\": \"ok\", \"score\": 7}\n```",
			expectedSummary: "ok",
			expectedScore:   7,
		},
		{
			name:          "bare number fallback",
			content:       "Relevance: 6",
			expectedScore: 6,
		},
		{
			name:          "score clamped",
			content:       `{"summary": "x", "score": 42}`,
			expectedScore: 10,
		},
		{
			name:    "no number at all",
			content: "no verdict here",
			fails:   true,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			summary, score, err := parseVerdict(test.content)

			if test.fails {
				require.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, test.expectedScore, score)

			if test.expectedSummary != "" {
				assert.Equal(t, test.expectedSummary, summary)
			}
		})
	}
}

func TestChatScorer_Score(t *testing.T) {
	var gotReq chatRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		_, _ = w.Write([]byte(`{
			"choices": [
				{"message": {"role": "assistant", "content": "{\"summary\": \"Verified shelter.\", \"score\": 9}"}}
			]
		}`))
	}))
	defer server.Close()

	scorer := NewChatScorer("sk-test", WithChatBaseURL(server.URL), WithChatModel("test-model"))

	candidate := Candidate{Name: "Gateway Shelter", Snippet: "Emergency beds", URL: "https://example.org"}

	summary, score, err := scorer.Score(context.Background(), &candidate, []Category{CategoryShelter})
	require.NoError(t, err)

	assert.Equal(t, "Verified shelter.", summary)
	assert.Equal(t, 9.0, score)
	assert.Equal(t, "test-model", gotReq.Model)
	require.Len(t, gotReq.Messages, 2)
	assert.Contains(t, gotReq.Messages[1].Content, "Gateway Shelter")
	assert.Contains(t, gotReq.Messages[1].Content, "shelter")
}

func TestChatScorer_ScoreErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	scorer := NewChatScorer("sk-test", WithChatBaseURL(server.URL))

	_, _, err := scorer.Score(context.Background(), &Candidate{}, nil)
	assert.ErrorContains(t, err, "429")
}
