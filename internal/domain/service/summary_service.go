package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"bookshelf/pkg/errors"
	"bookshelf/pkg/logger"
)

// SummaryService condenses a set of review texts into one sentence.
type SummaryService interface {
	Summarize(ctx context.Context, reviewTexts []string) (string, error)
}

const (
	geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"
	geminiModel   = "gemini-2.0-flash"

	// Separator between reviews in the prompt, so the model can tell
	// them apart without seeing any markup.
	reviewSeparator = "@"
)

// GeminiSummaryService calls the Gemini generateContent HTTP API.
type GeminiSummaryService struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewGeminiSummaryService(apiKey string) *GeminiSummaryService {
	return &GeminiSummaryService{
		apiKey:  apiKey,
		baseURL: geminiBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func (s *GeminiSummaryService) Summarize(ctx context.Context, reviewTexts []string) (string, error) {
	if s.apiKey == "" {
		return "", errors.Upstream("Summarization is not configured", nil)
	}
	if len(reviewTexts) == 0 {
		return "", errors.Validation("No reviews to summarize", nil)
	}

	prompt := fmt.Sprintf(
		"Based on the following book reviews, where each review is separated by a %q character, "+
			"create a one-sentence summary of what people think of the book.\n\nHere are the reviews: %s",
		reviewSeparator, strings.Join(reviewTexts, reviewSeparator),
	)

	payload := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: prompt}}},
		},
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return "", errors.Internal("Failed to build summary request", err)
	}

	url := fmt.Sprintf("%s/%s:generateContent", s.baseURL, geminiModel)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return "", errors.Internal("Failed to build summary request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", errors.Upstream("Summarization service unreachable", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Upstream("Failed to read summarization response", err)
	}

	if resp.StatusCode != http.StatusOK {
		logger.Warn("Summarization API returned status %d: %s", resp.StatusCode, string(body))
		return "", errors.Upstream("Summarization service returned an error", nil)
	}

	var result geminiResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", errors.Upstream("Failed to parse summarization response", err)
	}

	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", errors.Upstream("Summarization service returned no content", nil)
	}

	return strings.TrimSpace(result.Candidates[0].Content.Parts[0].Text), nil
}
