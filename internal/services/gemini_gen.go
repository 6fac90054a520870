package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"examino-backend/internal/models"
)

// GeminiGenerator is the service-backed generator variant. Every failure mode
// of the backend call (timeout, quota, malformed output) surfaces as a
// GenerationError so the chain can fall through to the heuristic variant.
type GeminiGenerator struct {
	client       *genai.Client
	model        *genai.GenerativeModel
	rateChan     chan struct{} // Token bucket
	timeout      time.Duration
	numQuestions int
}

func NewGeminiGenerator(apiKey string, concurrentReqs, numQuestions int, timeout time.Duration) (*GeminiGenerator, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel("gemini-3-flash-preview")
	model.SetTemperature(0.3)
	model.SetTopP(0.95)

	rateChan := make(chan struct{}, concurrentReqs)
	for i := 0; i < concurrentReqs; i++ {
		rateChan <- struct{}{}
	}

	return &GeminiGenerator{
		client:       client,
		model:        model,
		rateChan:     rateChan,
		timeout:      timeout,
		numQuestions: numQuestions,
	}, nil
}

func (g *GeminiGenerator) Close() {
	g.client.Close()
}

func (g *GeminiGenerator) Name() string { return "gemini" }

func (g *GeminiGenerator) Generate(ctx context.Context, chunk models.SectionChunk, topic string, target models.Difficulty) ([]models.CandidateQuestion, error) {
	if err := g.acquireRate(ctx); err != nil {
		return nil, &GenerationError{Message: "no generation slot available", Err: err}
	}
	defer g.releaseRate()

	// The backend call is a blocking network call; degrade instead of hanging.
	tctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	prompt := buildQuestionPrompt(chunk, topic, target, g.numQuestions)

	resp, err := g.model.GenerateContent(tctx, genai.Text(prompt))
	if err != nil {
		return nil, &GenerationError{Message: "Gemini API error", Err: err}
	}

	candidates, err := parseCandidates(extractText(resp))
	if err != nil {
		return nil, &GenerationError{Message: "unusable Gemini response", Err: err}
	}
	return candidates, nil
}

// acquireRate blocks until a rate slot is available
func (g *GeminiGenerator) acquireRate(ctx context.Context) error {
	select {
	case <-g.rateChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(5 * time.Minute):
		return fmt.Errorf("timeout waiting for Gemini rate slot")
	}
}

func (g *GeminiGenerator) releaseRate() {
	g.rateChan <- struct{}{}
}

func extractText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}

func buildQuestionPrompt(chunk models.SectionChunk, topic string, target models.Difficulty, numQuestions int) string {
	var b strings.Builder

	b.WriteString("You are an expert academic question setter. Generate multiple-choice questions from the study material below.\n\n")
	b.WriteString("CRITICAL: Return ONLY a valid JSON array. No preamble, no markdown, no backticks.\n\n")
	b.WriteString(fmt.Sprintf("Generate exactly %d questions.\n", numQuestions))
	b.WriteString(fmt.Sprintf("Topic: %s\n", topic))
	b.WriteString(fmt.Sprintf("Difficulty: %s\n", target))

	switch target {
	case models.DifficultyEasy:
		b.WriteString("Easy = direct recall from text.\n")
	case models.DifficultyMedium:
		b.WriteString("Medium = application of concepts.\n")
	case models.DifficultyHard:
		b.WriteString("Hard = analysis, synthesis, or inference beyond what is explicitly stated.\n")
	}

	b.WriteString(`
JSON schema per question:
{"question": "string", "options": ["string"], "correct_index": int}

Exactly 4 options. Questions must be directly answerable from the material.
`)

	if chunk.Heading != "" {
		b.WriteString("\nSection: ")
		b.WriteString(chunk.Heading)
		b.WriteString("\n")
	}
	b.WriteString("\n---MATERIAL---\n")
	b.WriteString(chunk.Text)
	b.WriteString("\n---END---\n")

	return b.String()
}

func parseCandidates(rawText string) ([]models.CandidateQuestion, error) {
	rawText = strings.TrimPrefix(rawText, "```json")
	rawText = strings.TrimPrefix(rawText, "```")
	rawText = strings.TrimSuffix(rawText, "```")
	rawText = strings.TrimSpace(rawText)

	type questionJSON struct {
		Question     string   `json:"question"`
		Options      []string `json:"options"`
		CorrectIndex int      `json:"correct_index"`
	}

	var parsed []questionJSON
	if err := json.Unmarshal([]byte(rawText), &parsed); err != nil {
		// Try to extract JSON array
		start := strings.Index(rawText, "[")
		end := strings.LastIndex(rawText, "]")
		if start < 0 || end <= start {
			return nil, fmt.Errorf("no JSON array in response: %w", err)
		}
		if err := json.Unmarshal([]byte(rawText[start:end+1]), &parsed); err != nil {
			return nil, fmt.Errorf("malformed JSON array in response: %w", err)
		}
	}

	var out []models.CandidateQuestion
	for _, q := range parsed {
		if strings.TrimSpace(q.Question) == "" || len(q.Options) < 2 {
			continue
		}
		if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
			continue
		}
		out = append(out, models.CandidateQuestion{
			Text:         strings.TrimSpace(q.Question),
			Choices:      q.Options,
			CorrectIndex: q.CorrectIndex,
			Provenance:   models.ProvenanceService,
		})
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("response contained no valid questions")
	}
	return out, nil
}
