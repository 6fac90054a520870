package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"examino-backend/internal/models"
)

type AttemptRepo struct {
	pool *pgxpool.Pool
}

func NewAttemptRepo(pool *pgxpool.Pool) *AttemptRepo {
	return &AttemptRepo{pool: pool}
}

func (r *AttemptRepo) Record(ctx context.Context, a *models.Attempt) error {
	a.ID = uuid.New()
	a.AttemptedAt = time.Now().UTC()

	query := `INSERT INTO attempts (id, question_id, chosen_index, correct, topic, attempted_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.pool.Exec(ctx, query, a.ID, a.QuestionID, a.ChosenIndex, a.Correct, a.Topic, a.AttemptedAt)
	return err
}

// Recent returns the newest attempts, optionally scoped to one topic; an
// empty topic means all topics.
func (r *AttemptRepo) Recent(ctx context.Context, topic string, limit int) ([]models.Attempt, error) {
	query := `SELECT id, question_id, chosen_index, correct, topic, attempted_at
		FROM attempts
		WHERE ($1 = '' OR topic = $1)
		ORDER BY attempted_at DESC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, topic, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attempts []models.Attempt
	for rows.Next() {
		var a models.Attempt
		err := rows.Scan(&a.ID, &a.QuestionID, &a.ChosenIndex, &a.Correct, &a.Topic, &a.AttemptedAt)
		if err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

// PerformanceByTopic aggregates the full attempt history per topic, weakest
// accuracy first. The current difficulty comes from topic_stats; topics
// attempted before any stats row existed default to medium.
func (r *AttemptRepo) PerformanceByTopic(ctx context.Context) ([]models.TopicPerformance, error) {
	query := `SELECT a.topic,
			COUNT(*) AS attempts,
			COUNT(*) FILTER (WHERE a.correct) AS correct,
			COALESCE(ts.current_difficulty, 'medium') AS difficulty
		FROM attempts a
		LEFT JOIN topic_stats ts ON ts.topic = a.topic
		GROUP BY a.topic, ts.current_difficulty
		ORDER BY (COUNT(*) FILTER (WHERE a.correct))::float / COUNT(*), a.topic`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var perf []models.TopicPerformance
	for rows.Next() {
		var p models.TopicPerformance
		if err := rows.Scan(&p.Topic, &p.Attempts, &p.Correct, &p.CurrentDifficulty); err != nil {
			return nil, err
		}
		if p.Attempts > 0 {
			p.Accuracy = float64(p.Correct) / float64(p.Attempts)
		}
		perf = append(perf, p)
	}
	return perf, rows.Err()
}
