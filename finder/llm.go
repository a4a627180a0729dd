// Copyright 2025 The Refuge Authors
// SPDX-License-Identifier: Apache-2.0

package finder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/openrefuge/refuge/utils/httputils"
)

// RelevanceScorer produces a short summary and a 0-10 relevance score for
// a candidate against the requested categories.
type RelevanceScorer interface {
	Score(ctx context.Context, candidate *Candidate, requested []Category) (summary string, score float64, err error)
}

const (
	defaultChatBaseURL = "https://api.openai.com/v1"
	defaultChatModel   = "gpt-4o-mini"
)

// ChatScorer scores candidates through an OpenAI-compatible
// chat-completions endpoint.
type ChatScorer struct {
	baseURL string
	model   string
	client  *http.Client
}

// ChatScorerOption configures a ChatScorer.
type ChatScorerOption func(*ChatScorer)

// WithChatBaseURL points the scorer at a different endpoint, for local
// models or tests.
func WithChatBaseURL(baseURL string) ChatScorerOption {
	return func(s *ChatScorer) {
		s.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithChatModel selects the model.
func WithChatModel(model string) ChatScorerOption {
	return func(s *ChatScorer) {
		s.model = model
	}
}

// NewChatScorer builds a scorer authenticated with apiKey.
func NewChatScorer(apiKey string, opts ...ChatScorerOption) *ChatScorer {
	s := &ChatScorer{
		baseURL: defaultChatBaseURL,
		model:   defaultChatModel,
		client: httputils.NewClient(30*time.Second, map[string]string{
			"Authorization": "Bearer " + apiKey,
			"Content-Type":  "application/json",
		}, nil, false),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type scorerVerdict struct {
	Summary string  `json:"summary"`
	Score   float64 `json:"score"`
}

const scorerSystemPrompt = "You assess whether a web search result describes a real " +
	"social-service provider. Reply with a JSON object {\"summary\": string, " +
	"\"score\": number} where summary is one sentence and score is 0-10 relevance " +
	"to the requested services."

// Score implements RelevanceScorer.
func (s *ChatScorer) Score(ctx context.Context, candidate *Candidate, requested []Category) (string, float64, error) {
	labels := make([]string, 0, len(requested))
	for _, c := range requested {
		labels = append(labels, string(c))
	}

	user := fmt.Sprintf("Requested services: %s\nTitle: %s\nSnippet: %s\nURL: %s",
		strings.Join(labels, ", "), candidate.Name, candidate.Snippet, candidate.URL)

	body, err := json.Marshal(chatRequest{
		Model: s.model,
		Messages: []chatMessage{
			{Role: "system", Content: scorerSystemPrompt},
			{Role: "user", Content: user},
		},
	})
	if err != nil {
		return "", 0, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", 0, fmt.Errorf("building request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", 0, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", 0, fmt.Errorf("decoding response: %w", err)
	}

	if len(parsed.Choices) == 0 {
		return "", 0, fmt.Errorf("empty completion")
	}

	return parseVerdict(parsed.Choices[0].Message.Content)
}

// parseVerdict accepts either the requested JSON object or, failing that,
// the first number in the reply as the score.
func parseVerdict(content string) (string, float64, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var verdict scorerVerdict
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &verdict); err == nil {
		return verdict.Summary, clampScore(verdict.Score), nil
	}

	for _, field := range strings.Fields(content) {
		if v, err := strconv.ParseFloat(strings.Trim(field, ".,:"), 64); err == nil {
			return content, clampScore(v), nil
		}
	}

	return "", 0, fmt.Errorf("unparseable verdict: %q", content)
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}

	if v > 10 {
		return 10
	}

	return v
}
