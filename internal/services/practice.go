package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"examino-backend/internal/models"
	"examino-backend/internal/repository"
)

// PracticeService serves questions and grades attempts, feeding each graded
// attempt into the per-topic difficulty controller.
type PracticeService struct {
	questions *repository.QuestionRepo
	attempts  *repository.AttemptRepo
	stats     *repository.StatsRepo
}

func NewPracticeService(questions *repository.QuestionRepo, attempts *repository.AttemptRepo, stats *repository.StatsRepo) *PracticeService {
	return &PracticeService{questions: questions, attempts: attempts, stats: stats}
}

// SubmitAttempt grades one answer, records it, and updates the topic's
// difficulty state in a single locked transaction.
func (s *PracticeService) SubmitAttempt(ctx context.Context, req models.SubmitAttemptRequest) (*models.AttemptResult, error) {
	fields := make(map[string]string)
	if req.QuestionID == uuid.Nil {
		fields["question_id"] = "question_id is required"
	}
	if req.ChosenIndex == nil {
		fields["chosen_index"] = "chosen_index is required"
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	q, err := s.questions.GetByID(ctx, req.QuestionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Message: "question not found"}
		}
		return nil, err
	}

	chosen := *req.ChosenIndex
	if chosen < 0 || chosen >= len(q.Choices) {
		return nil, &ValidationError{Fields: map[string]string{
			"chosen_index": "chosen_index is out of range for this question",
		}}
	}

	correct := chosen == q.CorrectIndex

	err = s.attempts.Record(ctx, &models.Attempt{
		QuestionID:  q.ID,
		ChosenIndex: chosen,
		Correct:     correct,
		Topic:       q.Topic,
	})
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	stats, changed, err := s.stats.Upsert(ctx, q.Topic, now, func(st models.TopicStats) (models.TopicStats, bool) {
		return ApplyAttempt(st, correct, now)
	})
	if err != nil {
		return nil, err
	}

	return &models.AttemptResult{
		Correct:           correct,
		CorrectIndex:      q.CorrectIndex,
		NewDifficulty:     stats.CurrentDifficulty,
		DifficultyChanged: changed,
	}, nil
}

// NextQuestion serves a random question at the topic's current difficulty.
// Topics without stats start at medium.
func (s *PracticeService) NextQuestion(ctx context.Context, topic string) (*models.Question, error) {
	if topic == "" {
		return nil, &ValidationError{Fields: map[string]string{"topic": "topic is required"}}
	}

	difficulty := models.DifficultyMedium
	st, err := s.stats.Get(ctx, topic)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if err == nil {
		difficulty = st.CurrentDifficulty
	}

	q, err := s.questions.NextForTopic(ctx, topic, difficulty)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Message: "no questions available for this topic"}
		}
		return nil, err
	}
	return q, nil
}

func (s *PracticeService) GetQuestion(ctx context.Context, id uuid.UUID) (*models.Question, error) {
	q, err := s.questions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Message: "question not found"}
		}
		return nil, err
	}
	return q, nil
}

func (s *PracticeService) ListQuestions(ctx context.Context, topic string, difficulty models.Difficulty, source string, limit int) ([]models.Question, error) {
	fields := make(map[string]string)
	if difficulty != "" && !difficulty.Valid() {
		fields["difficulty"] = "difficulty must be one of easy, medium, hard"
	}
	if source != "" && source != models.SourceBank && source != models.SourceGenerated {
		fields["source"] = "source must be one of bank, generated"
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.questions.List(ctx, topic, difficulty, source, limit)
}

func (s *PracticeService) Topics(ctx context.Context) ([]string, error) {
	return s.questions.Topics(ctx)
}

// RecentAttempts returns the newest attempts, optionally scoped to one topic.
func (s *PracticeService) RecentAttempts(ctx context.Context, topic string, limit int) ([]models.Attempt, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.attempts.Recent(ctx, topic, limit)
}

// PerformanceSummary aggregates the full attempt history across topics.
func (s *PracticeService) PerformanceSummary(ctx context.Context) (*models.PerformanceSummary, error) {
	perTopic, err := s.attempts.PerformanceByTopic(ctx)
	if err != nil {
		return nil, err
	}

	summary := &models.PerformanceSummary{Topics: perTopic}
	totalCorrect := 0
	for _, p := range perTopic {
		summary.TotalAttempts += p.Attempts
		totalCorrect += p.Correct
	}
	if summary.TotalAttempts > 0 {
		summary.OverallAccuracy = float64(totalCorrect) / float64(summary.TotalAttempts)
	}
	return summary, nil
}

func (s *PracticeService) TopicStats(ctx context.Context) ([]models.TopicStats, error) {
	return s.stats.All(ctx)
}
