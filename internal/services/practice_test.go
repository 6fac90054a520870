package services

import (
	"context"
	"errors"
	"testing"

	"examino-backend/internal/models"
)

func TestListQuestionsValidatesFilters(t *testing.T) {
	tests := []struct {
		name       string
		difficulty string
		source     string
		wantField  string
	}{
		{"unknown difficulty", "impossible", "", "difficulty"},
		{"unknown source", "", "imported", "source"},
	}

	// Validation happens before any storage access.
	s := NewPracticeService(nil, nil, nil)

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.ListQuestions(context.Background(), "Biology", models.Difficulty(tc.difficulty), tc.source, 10)

			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if _, ok := vErr.Fields[tc.wantField]; !ok {
				t.Errorf("expected field %q in %v", tc.wantField, vErr.Fields)
			}
		})
	}
}
