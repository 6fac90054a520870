package services

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"examino-backend/internal/models"
)

// HeuristicGenerator is the deterministic, offline generator variant. It
// extracts factual sentences from a chunk and builds questions whose correct
// option is the extracted fact, with distractors synthesized by negating the
// fact, perturbing its numbers, or borrowing other sentences from the same
// chunk. It never fails; an empty result is a valid outcome.
type HeuristicGenerator struct {
	maxQuestions int
}

func NewHeuristicGenerator(maxQuestions int) *HeuristicGenerator {
	return &HeuristicGenerator{maxQuestions: maxQuestions}
}

func (g *HeuristicGenerator) Name() string { return "heuristic" }

var (
	linkingVerb   = regexp.MustCompile(`(?i)\b(is|are|was|were|has|have|can|will|does)\b`)
	definitionPat = regexp.MustCompile(`([A-Z][A-Za-z]{2,30})\s+(?:is|are|refers to|means)\s+([^.!?\n]{20,160})`)
	numberPat     = regexp.MustCompile(`\d+`)
)

func (g *HeuristicGenerator) Generate(_ context.Context, chunk models.SectionChunk, _ string, _ models.Difficulty) ([]models.CandidateQuestion, error) {
	facts := factualSentences(chunk.Text)

	var out []models.CandidateQuestion
	seen := make(map[string]struct{})

	add := func(c models.CandidateQuestion) bool {
		key := Normalize(c.Text)
		if _, dup := seen[key]; dup {
			return len(out) >= g.maxQuestions
		}
		seen[key] = struct{}{}
		out = append(out, c)
		return len(out) >= g.maxQuestions
	}

	// Statement questions: the fact itself is the correct option.
	for i, fact := range facts {
		distractors := statementDistractors(fact, facts, i)
		if len(distractors) == 0 {
			continue
		}

		stem := "Which of the following statements is accurate?"
		if term := subjectTerm(fact); term != "" {
			stem = fmt.Sprintf("Which of the following statements about %s is accurate?", term)
		}

		choices := append([]string{strings.TrimRight(fact, ".!? ")}, distractors...)
		if add(models.CandidateQuestion{
			Text:         stem,
			Choices:      choices,
			CorrectIndex: 0,
			Provenance:   models.ProvenanceHeuristic,
		}) {
			return out, nil
		}
	}

	// Definition questions: "Term is/means ..." becomes "What is Term?".
	defs := definitionPat.FindAllStringSubmatch(chunk.Text, -1)
	for i, def := range defs {
		term := def[1]
		answer := strings.TrimRight(strings.TrimSpace(def[2]), ".,; ")

		var distractors []string
		for j, other := range defs {
			if j == i || len(distractors) >= 3 {
				continue
			}
			distractors = appendDistinct(distractors, strings.TrimRight(strings.TrimSpace(other[2]), ".,; "), answer)
		}
		if perturbed := perturbNumbers(answer); len(distractors) < 3 {
			distractors = appendDistinct(distractors, perturbed, answer)
		}
		for _, fact := range facts {
			if len(distractors) >= 3 {
				break
			}
			distractors = appendDistinct(distractors, strings.TrimRight(fact, ".!? "), answer)
		}
		if len(distractors) == 0 {
			continue
		}

		if add(models.CandidateQuestion{
			Text:         fmt.Sprintf("What is %s?", term),
			Choices:      append([]string{answer}, distractors...),
			CorrectIndex: 0,
			Provenance:   models.ProvenanceHeuristic,
		}) {
			return out, nil
		}
	}

	return out, nil
}

// factualSentences keeps declarative sentences of a usable length that
// contain a linking verb.
func factualSentences(text string) []string {
	var facts []string
	for _, s := range sentencePattern.FindAllString(text, -1) {
		s = strings.TrimSpace(s)
		words := len(strings.Fields(s))
		if words < 8 || words > 60 {
			continue
		}
		if !linkingVerb.MatchString(s) {
			continue
		}
		facts = append(facts, s)
	}
	return facts
}

func statementDistractors(fact string, facts []string, factIdx int) []string {
	var distractors []string

	if neg := negate(fact); neg != fact {
		distractors = appendDistinct(distractors, strings.TrimRight(neg, ".!? "), fact)
	}
	if perturbed := perturbNumbers(fact); perturbed != fact {
		distractors = appendDistinct(distractors, strings.TrimRight(perturbed, ".!? "), fact)
	}
	for j, other := range facts {
		if j == factIdx || len(distractors) >= 3 {
			continue
		}
		distractors = appendDistinct(distractors, strings.TrimRight(other, ".!? "), fact)
	}
	return distractors
}

// appendDistinct adds a candidate distractor unless it normalizes to the
// correct answer or an existing entry.
func appendDistinct(distractors []string, candidate, answer string) []string {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" || Normalize(candidate) == Normalize(answer) {
		return distractors
	}
	for _, d := range distractors {
		if Normalize(d) == Normalize(candidate) {
			return distractors
		}
	}
	return append(distractors, candidate)
}

var negatedForms = map[string]string{
	"is":   "is not",
	"are":  "are not",
	"was":  "was not",
	"were": "were not",
	"has":  "does not have",
	"have": "do not have",
	"can":  "cannot",
	"will": "will not",
	"does": "does not",
}

// negate flips the first linking verb of a sentence.
func negate(sentence string) string {
	loc := linkingVerb.FindStringIndex(sentence)
	if loc == nil {
		return sentence
	}
	verb := strings.ToLower(sentence[loc[0]:loc[1]])
	negated, ok := negatedForms[verb]
	if !ok {
		return sentence
	}
	return sentence[:loc[0]] + negated + sentence[loc[1]:]
}

// perturbNumbers bumps every number in the text by one.
func perturbNumbers(text string) string {
	return numberPat.ReplaceAllStringFunc(text, func(m string) string {
		n, err := strconv.Atoi(m)
		if err != nil {
			return m
		}
		return strconv.Itoa(n + 1)
	})
}

// subjectTerm picks the word directly before the first linking verb, which is
// usually the sentence's subject.
func subjectTerm(sentence string) string {
	loc := linkingVerb.FindStringIndex(sentence)
	if loc == nil {
		return ""
	}
	before := strings.Fields(sentence[:loc[0]])
	if len(before) == 0 {
		return ""
	}
	term := strings.Trim(before[len(before)-1], `.,;:"'()`)
	switch strings.ToLower(term) {
	case "", "the", "a", "an", "this", "that", "it", "there":
		return ""
	}
	return term
}
