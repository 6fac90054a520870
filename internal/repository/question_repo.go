package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"examino-backend/internal/models"
)

// ErrDuplicateContentHash is returned when an insert trips the unique index
// on content_hash. The service layer maps it to a conflict.
var ErrDuplicateContentHash = errors.New("question with same content hash already exists")

type QuestionRepo struct {
	pool *pgxpool.Pool
}

func NewQuestionRepo(pool *pgxpool.Pool) *QuestionRepo {
	return &QuestionRepo{pool: pool}
}

func (r *QuestionRepo) Create(ctx context.Context, q *models.Question) error {
	q.ID = uuid.New()

	query := `INSERT INTO questions (id, topic, difficulty, question_text, choices, correct_index, content_hash, source)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING created_at`

	err := r.pool.QueryRow(ctx, query,
		q.ID, q.Topic, q.Difficulty, q.Text, q.Choices, q.CorrectIndex, q.ContentHash, q.Source,
	).Scan(&q.CreatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicateContentHash
	}
	return err
}

func (r *QuestionRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Question, error) {
	q := &models.Question{}
	query := `SELECT id, topic, difficulty, question_text, choices, correct_index, content_hash, source, created_at
		FROM questions WHERE id = $1`

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&q.ID, &q.Topic, &q.Difficulty, &q.Text, &q.Choices, &q.CorrectIndex, &q.ContentHash, &q.Source, &q.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return q, nil
}

func (r *QuestionRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Question, error) {
	query := `SELECT id, topic, difficulty, question_text, choices, correct_index, content_hash, source, created_at
		FROM questions WHERE id = ANY($1)`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanQuestions(rows)
}

// List filters by topic, difficulty and/or source; empty values mean no
// filter.
func (r *QuestionRepo) List(ctx context.Context, topic string, difficulty models.Difficulty, source string, limit int) ([]models.Question, error) {
	query := `SELECT id, topic, difficulty, question_text, choices, correct_index, content_hash, source, created_at
		FROM questions
		WHERE ($1 = '' OR topic = $1) AND ($2 = '' OR difficulty = $2) AND ($3 = '' OR source = $3)
		ORDER BY created_at DESC LIMIT $4`

	rows, err := r.pool.Query(ctx, query, topic, string(difficulty), source, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanQuestions(rows)
}

// NextForTopic picks a random question at the requested difficulty, falling
// back to any difficulty within the topic when that level has none.
func (r *QuestionRepo) NextForTopic(ctx context.Context, topic string, difficulty models.Difficulty) (*models.Question, error) {
	q := &models.Question{}
	query := `SELECT id, topic, difficulty, question_text, choices, correct_index, content_hash, source, created_at
		FROM questions WHERE topic = $1 AND difficulty = $2
		ORDER BY random() LIMIT 1`

	err := r.pool.QueryRow(ctx, query, topic, difficulty).Scan(
		&q.ID, &q.Topic, &q.Difficulty, &q.Text, &q.Choices, &q.CorrectIndex, &q.ContentHash, &q.Source, &q.CreatedAt,
	)
	if err == nil {
		return q, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	fallback := `SELECT id, topic, difficulty, question_text, choices, correct_index, content_hash, source, created_at
		FROM questions WHERE topic = $1
		ORDER BY random() LIMIT 1`

	err = r.pool.QueryRow(ctx, fallback, topic).Scan(
		&q.ID, &q.Topic, &q.Difficulty, &q.Text, &q.Choices, &q.CorrectIndex, &q.ContentHash, &q.Source, &q.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return q, nil
}

// AllContentHashes snapshots the dedup keys of the whole store.
func (r *QuestionRepo) AllContentHashes(ctx context.Context) (map[string]struct{}, error) {
	rows, err := r.pool.Query(ctx, "SELECT content_hash FROM questions")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	hashes := make(map[string]struct{})
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, err
		}
		hashes[h] = struct{}{}
	}
	return hashes, rows.Err()
}

func (r *QuestionRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM questions").Scan(&n)
	return n, err
}

func (r *QuestionRepo) CountByTopic(ctx context.Context, topic string) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM questions WHERE topic = $1", topic).Scan(&n)
	return n, err
}

func (r *QuestionRepo) Topics(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, "SELECT DISTINCT topic FROM questions ORDER BY topic")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var topics []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		topics = append(topics, t)
	}
	return topics, rows.Err()
}

func scanQuestions(rows pgx.Rows) ([]models.Question, error) {
	var questions []models.Question
	for rows.Next() {
		var q models.Question
		err := rows.Scan(&q.ID, &q.Topic, &q.Difficulty, &q.Text, &q.Choices, &q.CorrectIndex, &q.ContentHash, &q.Source, &q.CreatedAt)
		if err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}
