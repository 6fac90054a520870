package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"examino-backend/internal/models"
)

// questionService is the slice of the practice service this handler needs.
type questionService interface {
	ListQuestions(ctx context.Context, topic string, difficulty models.Difficulty, source string, limit int) ([]models.Question, error)
	NextQuestion(ctx context.Context, topic string) (*models.Question, error)
	GetQuestion(ctx context.Context, id uuid.UUID) (*models.Question, error)
	Topics(ctx context.Context) ([]string, error)
}

type QuestionHandler struct {
	practiceService questionService
}

func NewQuestionHandler(practiceService questionService) *QuestionHandler {
	return &QuestionHandler{practiceService: practiceService}
}

func (h *QuestionHandler) List(w http.ResponseWriter, r *http.Request) {
	topic := r.URL.Query().Get("topic")
	difficulty := models.Difficulty(r.URL.Query().Get("difficulty"))
	source := r.URL.Query().Get("source")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	questions, err := h.practiceService.ListQuestions(r.Context(), topic, difficulty, source, limit)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"questions": questions,
		"count":     len(questions),
	})
}

// Next serves a random question at the topic's current adaptive difficulty.
func (h *QuestionHandler) Next(w http.ResponseWriter, r *http.Request) {
	topic := r.URL.Query().Get("topic")

	q, err := h.practiceService.NextQuestion(r.Context(), topic)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, q)
}

func (h *QuestionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid question ID", r))
		return
	}

	q, err := h.practiceService.GetQuestion(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, q)
}

func (h *QuestionHandler) Topics(w http.ResponseWriter, r *http.Request) {
	topics, err := h.practiceService.Topics(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"topics": topics})
}
