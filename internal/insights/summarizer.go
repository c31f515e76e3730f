// Package insights asks Gemini for a plain-language summary of a forecast.
package insights

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/dvloznov/finance-forecast/internal/forecast"
)

// DefaultModelName is the Gemini model used when none is configured.
const DefaultModelName = "gemini-2.5-flash"

// TextGenerator sends a prompt to a language model and returns its text.
type TextGenerator interface {
	GenerateText(ctx context.Context, model, prompt string) (string, error)
}

// GeminiGenerator is the TextGenerator backed by the Gemini API.
type GeminiGenerator struct {
	client *genai.Client
}

// NewGeminiGenerator creates a client from the environment (GOOGLE_API_KEY or
// Vertex AI settings).
func NewGeminiGenerator(ctx context.Context) (*GeminiGenerator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("NewGeminiGenerator: create genai client: %w", err)
	}
	return &GeminiGenerator{client: client}, nil
}

func (g *GeminiGenerator) GenerateText(ctx context.Context, model, prompt string) (string, error) {
	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		},
	}

	temperature := float32(0.2)
	resp, err := g.client.Models.GenerateContent(ctx, model, contents, &genai.GenerateContentConfig{
		Temperature: &temperature,
	})
	if err != nil {
		return "", fmt.Errorf("GenerateText: generate content: %w", err)
	}
	return resp.Text(), nil
}

// Summarizer turns forecasts into short summaries.
type Summarizer struct {
	gen   TextGenerator
	model string
}

// NewSummarizer creates a Summarizer; an empty model selects DefaultModelName.
func NewSummarizer(gen TextGenerator, model string) *Summarizer {
	if model == "" {
		model = DefaultModelName
	}
	return &Summarizer{gen: gen, model: model}
}

// Summarize returns a plain-text summary of fc.
func (s *Summarizer) Summarize(ctx context.Context, fc *forecast.Forecast) (string, error) {
	raw, err := s.gen.GenerateText(ctx, s.model, BuildPrompt(fc))
	if err != nil {
		return "", fmt.Errorf("Summarize: %w", err)
	}

	text := cleanModelText(raw)
	if text == "" {
		return "", fmt.Errorf("Summarize: empty response from model")
	}
	return text, nil
}

// cleanModelText strips code fences the model may add despite instructions.
func cleanModelText(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			s = strings.TrimPrefix(s, "```")
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")

	return strings.TrimSpace(s)
}
