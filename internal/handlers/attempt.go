package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"examino-backend/internal/models"
)

// attemptService is the slice of the practice service this handler needs.
type attemptService interface {
	SubmitAttempt(ctx context.Context, req models.SubmitAttemptRequest) (*models.AttemptResult, error)
	RecentAttempts(ctx context.Context, topic string, limit int) ([]models.Attempt, error)
	PerformanceSummary(ctx context.Context) (*models.PerformanceSummary, error)
	TopicStats(ctx context.Context) ([]models.TopicStats, error)
}

type AttemptHandler struct {
	practiceService attemptService
}

func NewAttemptHandler(practiceService attemptService) *AttemptHandler {
	return &AttemptHandler{practiceService: practiceService}
}

func (h *AttemptHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req models.SubmitAttemptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	result, err := h.practiceService.SubmitAttempt(r.Context(), req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *AttemptHandler) Recent(w http.ResponseWriter, r *http.Request) {
	topic := r.URL.Query().Get("topic")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	attempts, err := h.practiceService.RecentAttempts(r.Context(), topic, limit)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"attempts": attempts,
		"count":    len(attempts),
	})
}

func (h *AttemptHandler) Stats(w http.ResponseWriter, r *http.Request) {
	summary, err := h.practiceService.PerformanceSummary(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

func (h *AttemptHandler) TopicStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.practiceService.TopicStats(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"topics": stats})
}
