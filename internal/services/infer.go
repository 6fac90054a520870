package services

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"examino-backend/internal/models"
)

var (
	firstHeadingPattern = regexp.MustCompile(`(?m)^#{1,3}\s+(.+)$`)
	filenameSeparators  = regexp.MustCompile(`[_\-]+`)
)

// InferTopic picks a topic key for a document: the first markdown heading if
// one exists, otherwise the cleaned-up filename stem.
func InferTopic(text, filename string) string {
	if m := firstHeadingPattern.FindStringSubmatch(text); m != nil {
		topic := strings.TrimSpace(m[1])
		if len(topic) > 60 {
			topic = strings.TrimSpace(topic[:60])
		}
		if topic != "" {
			return topic
		}
	}

	stem := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	stem = strings.TrimSpace(filenameSeparators.ReplaceAllString(stem, " "))
	if stem == "" {
		return "General"
	}
	if len(stem) > 60 {
		stem = strings.TrimSpace(stem[:60])
	}
	return titleCase(stem)
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

var (
	hardSignals = []string{
		"derive", "prove", "calculate", "determine", "analyse", "evaluate", "compare", "synthesis",
	}
	mediumSignals = []string{
		"explain", "describe", "state", "define", "identify", "list", "what is",
	}
	sentenceEnd = regexp.MustCompile(`[.!?]+`)
)

// InferDifficulty scores a chunk's target difficulty from signal words,
// position in the document (later sections skew harder), and average sentence
// length.
func InferDifficulty(chunk models.SectionChunk, index, total int) models.Difficulty {
	text := strings.ToLower(chunk.Text)

	hardHits := 0
	for _, s := range hardSignals {
		if strings.Contains(text, s) {
			hardHits++
		}
	}
	mediumHits := 0
	for _, s := range mediumSignals {
		if strings.Contains(text, s) {
			mediumHits++
		}
	}

	denom := total - 1
	if denom < 1 {
		denom = 1
	}
	positionRatio := float64(index) / float64(denom)

	sentences := sentenceEnd.Split(chunk.Text, -1)
	totalWords := 0
	for _, s := range sentences {
		totalWords += len(strings.Fields(s))
	}
	avgLen := float64(totalWords) / float64(max(len(sentences), 1))

	score := hardHits * 2
	if positionRatio > 0.6 {
		score++
	}
	if avgLen > 20 {
		score++
	}

	switch {
	case score >= 3 || hardHits >= 2:
		return models.DifficultyHard
	case score >= 1 || mediumHits >= 2 || avgLen > 15:
		return models.DifficultyMedium
	default:
		return models.DifficultyEasy
	}
}
