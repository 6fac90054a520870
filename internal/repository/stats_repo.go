package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"examino-backend/internal/models"
)

type StatsRepo struct {
	pool *pgxpool.Pool
}

func NewStatsRepo(pool *pgxpool.Pool) *StatsRepo {
	return &StatsRepo{pool: pool}
}

func (r *StatsRepo) Get(ctx context.Context, topic string) (*models.TopicStats, error) {
	s := &models.TopicStats{}
	query := `SELECT topic, current_difficulty, attempt_count, recent_correct_count, last_adjusted_at
		FROM topic_stats WHERE topic = $1`

	err := r.pool.QueryRow(ctx, query, topic).Scan(
		&s.Topic, &s.CurrentDifficulty, &s.AttemptCount, &s.RecentCorrectCount, &s.LastAdjustedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *StatsRepo) All(ctx context.Context) ([]models.TopicStats, error) {
	query := `SELECT topic, current_difficulty, attempt_count, recent_correct_count, last_adjusted_at
		FROM topic_stats ORDER BY topic`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var all []models.TopicStats
	for rows.Next() {
		var s models.TopicStats
		err := rows.Scan(&s.Topic, &s.CurrentDifficulty, &s.AttemptCount, &s.RecentCorrectCount, &s.LastAdjustedAt)
		if err != nil {
			return nil, err
		}
		all = append(all, s)
	}
	return all, rows.Err()
}

// Upsert loads the topic's row under a row lock, applies mutate to it, and
// writes the result back in the same transaction. Concurrent attempts on one
// topic serialize here, so counter updates never lose increments.
func (r *StatsRepo) Upsert(ctx context.Context, topic string, now time.Time, mutate func(models.TopicStats) (models.TopicStats, bool)) (models.TopicStats, bool, error) {
	var (
		stats   models.TopicStats
		changed bool
	)

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return stats, false, err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO topic_stats (topic, current_difficulty, attempt_count, recent_correct_count, last_adjusted_at)
		 VALUES ($1, 'medium', 0, 0, $2)
		 ON CONFLICT (topic) DO NOTHING`,
		topic, now,
	)
	if err != nil {
		return stats, false, err
	}

	err = tx.QueryRow(ctx,
		`SELECT topic, current_difficulty, attempt_count, recent_correct_count, last_adjusted_at
		 FROM topic_stats WHERE topic = $1 FOR UPDATE`,
		topic,
	).Scan(&stats.Topic, &stats.CurrentDifficulty, &stats.AttemptCount, &stats.RecentCorrectCount, &stats.LastAdjustedAt)
	if err != nil {
		return stats, false, err
	}

	stats, changed = mutate(stats)

	_, err = tx.Exec(ctx,
		`UPDATE topic_stats
		 SET current_difficulty = $2, attempt_count = $3, recent_correct_count = $4, last_adjusted_at = $5
		 WHERE topic = $1`,
		stats.Topic, stats.CurrentDifficulty, stats.AttemptCount, stats.RecentCorrectCount, stats.LastAdjustedAt,
	)
	if err != nil {
		return stats, false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return stats, false, err
	}
	return stats, changed, nil
}
