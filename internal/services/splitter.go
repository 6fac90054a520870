package services

import (
	"regexp"
	"strings"

	"examino-backend/internal/models"
)

const (
	// Target size of one generation unit. Groups above this are sub-split at
	// paragraph boundaries; the length-based fallback snaps to sentence ends.
	maxChunkWords = 300

	// Heading-bounded sections shorter than this carry too little material to
	// generate from and are dropped.
	minSectionWords = 30
)

var (
	headingPattern = regexp.MustCompile(
		`(?m)^(?:#{1,3}\s+.+|(?:UNIT|CHAPTER|SECTION|MODULE)\s+[0-9IVX]+[^\n]*|\d+\.\s+[A-Z][^\n]{5,40}|[A-Z][A-Z\s]{4,40}:?)$`)
	paragraphSplit  = regexp.MustCompile(`\n{2,}`)
	sentencePattern = regexp.MustCompile(`[^.!?]+[.!?]*\s*`)
)

// SplitSections turns raw extracted text into bounded-size generation chunks.
// Heading-like lines (markdown, UNIT/CHAPTER/SECTION/MODULE, numbered, or
// ALL-CAPS) bound the sections; a document with no usable headings falls back
// to fixed-size chunking. Output order matches document order.
func SplitSections(text string) ([]models.SectionChunk, error) {
	if len(strings.Fields(text)) == 0 {
		return nil, &ExtractionEmptyError{}
	}

	chunks := splitByHeadings(text)
	if len(chunks) == 0 {
		chunks = splitByLength(text)
	}
	return chunks, nil
}

func splitByHeadings(text string) []models.SectionChunk {
	matches := headingPattern.FindAllStringIndex(text, -1)
	if len(matches) < 2 {
		return nil
	}

	var chunks []models.SectionChunk
	for i, m := range matches {
		heading := strings.TrimSpace(strings.Trim(text[m[0]:m[1]], "# :"))

		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		body := strings.TrimSpace(text[m[1]:end])
		words := len(strings.Fields(body))
		if words < minSectionWords {
			continue
		}

		if words <= maxChunkWords {
			chunks = append(chunks, models.SectionChunk{Heading: heading, Text: body, WordCount: words})
			continue
		}
		chunks = append(chunks, subSplit(heading, body)...)
	}
	return chunks
}

// subSplit breaks an oversized section at paragraph boundaries, keeping the
// section heading on every piece.
func subSplit(heading, body string) []models.SectionChunk {
	var out []models.SectionChunk
	var buf []string
	bufWords := 0

	flush := func() {
		if bufWords == 0 {
			return
		}
		out = append(out, models.SectionChunk{
			Heading:   heading,
			Text:      strings.Join(buf, "\n\n"),
			WordCount: bufWords,
		})
		buf, bufWords = nil, 0
	}

	for _, para := range paragraphSplit.Split(body, -1) {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		w := len(strings.Fields(para))
		if bufWords > 0 && bufWords+w > maxChunkWords {
			flush()
		}
		buf = append(buf, para)
		bufWords += w
	}
	flush()
	return out
}

// splitByLength chunks the whole document into ~300-word pieces with each
// boundary snapped to a sentence end, so no chunk cuts mid-sentence.
func splitByLength(text string) []models.SectionChunk {
	var out []models.SectionChunk
	var buf []string
	bufWords := 0

	flush := func() {
		if bufWords == 0 {
			return
		}
		joined := strings.TrimSpace(strings.Join(buf, " "))
		if joined != "" {
			out = append(out, models.SectionChunk{Text: joined, WordCount: bufWords})
		}
		buf, bufWords = nil, 0
	}

	for _, sentence := range sentencePattern.FindAllString(text, -1) {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		buf = append(buf, sentence)
		bufWords += len(strings.Fields(sentence))
		if bufWords >= maxChunkWords {
			flush()
		}
	}
	flush()
	return out
}
