package services

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"examino-backend/internal/models"
)

func TestHeuristicGeneratorProducesAnswerableQuestion(t *testing.T) {
	chunk := models.SectionChunk{
		Text: "The mitochondria is the powerhouse of the cell and the site of respiration.",
	}

	g := NewHeuristicGenerator(3)
	out, err := g.Generate(context.Background(), chunk, "Biology", models.DifficultyMedium)
	if err != nil {
		t.Fatalf("heuristic generator must not fail: %v", err)
	}
	if len(out) == 0 {
		t.Fatal("expected at least one question from a factual sentence")
	}

	q := out[0]
	if len(q.Choices) < 2 {
		t.Fatalf("expected >= 2 choices, got %d", len(q.Choices))
	}
	if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Choices) {
		t.Fatalf("correct index %d out of range", q.CorrectIndex)
	}
	if q.Provenance != models.ProvenanceHeuristic {
		t.Errorf("provenance = %q", q.Provenance)
	}

	// The correct option must be answerable from the chunk: its words appear
	// in the source sentence.
	correct := strings.ToLower(q.Choices[q.CorrectIndex])
	if !strings.Contains(correct, "mitochondria") || !strings.Contains(correct, "powerhouse") {
		t.Errorf("correct option does not overlap source text: %q", correct)
	}

	// Every distractor must differ from the correct option after normalization.
	for i, c := range q.Choices {
		if i == q.CorrectIndex {
			continue
		}
		if Normalize(c) == Normalize(q.Choices[q.CorrectIndex]) {
			t.Errorf("distractor %d equals the correct option: %q", i, c)
		}
	}
}

func TestHeuristicGeneratorDeterministic(t *testing.T) {
	chunk := models.SectionChunk{
		Text: "Photosynthesis is the process plants use to make food. " +
			"Chlorophyll is the green pigment that absorbs light. " +
			"A typical leaf has 30 layers of cells in its mesophyll.",
	}

	g := NewHeuristicGenerator(5)
	first, _ := g.Generate(context.Background(), chunk, "Biology", models.DifficultyEasy)
	second, _ := g.Generate(context.Background(), chunk, "Biology", models.DifficultyEasy)

	if !reflect.DeepEqual(first, second) {
		t.Error("same chunk should yield identical questions on every run")
	}
	if len(first) == 0 {
		t.Fatal("expected questions from three factual sentences")
	}
}

func TestHeuristicGeneratorEmptyForUnusableText(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"no sentences", "one two three"},
		{"too short", "Cells divide."},
		{"no linking verbs", "Run fast. Jump high. Turn left at the second corner near the gate."},
	}

	g := NewHeuristicGenerator(3)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out, err := g.Generate(context.Background(), models.SectionChunk{Text: tc.text}, "T", models.DifficultyEasy)
			if err != nil {
				t.Fatalf("heuristic generator must not fail: %v", err)
			}
			if len(out) != 0 {
				t.Errorf("expected no questions, got %d", len(out))
			}
		})
	}
}

func TestHeuristicGeneratorRespectsLimit(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 10; i++ {
		b.WriteString("The sample number ")
		b.WriteString(strings.Repeat("x", i+1))
		b.WriteString(" is one of the facts recorded in this long study document. ")
	}

	g := NewHeuristicGenerator(2)
	out, err := g.Generate(context.Background(), models.SectionChunk{Text: b.String()}, "T", models.DifficultyEasy)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) > 2 {
		t.Errorf("expected at most 2 questions, got %d", len(out))
	}
}
