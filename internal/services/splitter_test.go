package services

import (
	"errors"
	"strings"
	"testing"
)

func sentenceOfWords(n int) string {
	return strings.TrimSpace(strings.Repeat("word ", n-1)) + " end."
}

func TestSplitSectionsEmpty(t *testing.T) {
	for _, input := range []string{"", "   \n\t  "} {
		_, err := SplitSections(input)
		var emptyErr *ExtractionEmptyError
		if !errors.As(err, &emptyErr) {
			t.Errorf("SplitSections(%q) error = %v, want ExtractionEmptyError", input, err)
		}
	}
}

func TestSplitSectionsByHeadings(t *testing.T) {
	doc := "# Cell Biology\n" + sentenceOfWords(40) + "\n\n" +
		"# Genetics\n" + sentenceOfWords(40) + "\n"

	chunks, err := SplitSections(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}

	if chunks[0].Heading != "Cell Biology" || chunks[1].Heading != "Genetics" {
		t.Errorf("headings = %q, %q", chunks[0].Heading, chunks[1].Heading)
	}
	for i, c := range chunks {
		if c.WordCount < minSectionWords {
			t.Errorf("chunk %d too small: %d words", i, c.WordCount)
		}
	}
}

func TestSplitSectionsDropsShortSections(t *testing.T) {
	doc := "# Tiny\ntoo short to use.\n\n" +
		"# Real Section\n" + sentenceOfWords(40) + "\n"

	chunks, err := SplitSections(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, c := range chunks {
		if c.Heading == "Tiny" {
			t.Error("section below the minimum word count should be dropped")
		}
	}
}

func TestSplitSectionsLengthFallback(t *testing.T) {
	// No headings at all: fixed-size chunking with sentence-snapped bounds.
	var b strings.Builder
	for i := 0; i < 80; i++ {
		b.WriteString(sentenceOfWords(10))
		b.WriteString(" ")
	}

	chunks, err := SplitSections(b.String())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("800 words should produce multiple chunks, got %d", len(chunks))
	}

	for i, c := range chunks {
		if c.Heading != "" {
			t.Errorf("chunk %d: length fallback should not invent headings", i)
		}
		// One sentence of slop past the target is allowed, never more.
		if c.WordCount > maxChunkWords+10 {
			t.Errorf("chunk %d too large: %d words", i, c.WordCount)
		}
		if !strings.HasSuffix(c.Text, ".") {
			t.Errorf("chunk %d does not end at a sentence boundary: %q", i, c.Text[len(c.Text)-20:])
		}
	}
}

func TestSplitSectionsSubSplitsOversized(t *testing.T) {
	// One heading-bounded section of ~600 words across paragraphs.
	var paras []string
	for i := 0; i < 6; i++ {
		paras = append(paras, sentenceOfWords(100))
	}
	doc := "# Big Section\n" + strings.Join(paras, "\n\n") + "\n\n# Next\n" + sentenceOfWords(40)

	chunks, err := SplitSections(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	big := 0
	for _, c := range chunks {
		if c.Heading == "Big Section" {
			big++
			if c.WordCount > maxChunkWords {
				t.Errorf("sub-split chunk exceeds limit: %d words", c.WordCount)
			}
		}
	}
	if big < 2 {
		t.Errorf("oversized section should split into multiple chunks, got %d", big)
	}
}
