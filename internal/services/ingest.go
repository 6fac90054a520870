package services

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"examino-backend/internal/models"
	"examino-backend/internal/repository"
)

// BankSyncQueue is the Redis list the worker pool drains to re-attempt failed
// master bank commits.
const BankSyncQueue = "queue:bank-sync"

// IngestService runs the full pipeline for one uploaded document: extract,
// split, generate, dedup, persist, and commit to the master bank.
type IngestService struct {
	extract   *FileExtractService
	chain     *GeneratorChain
	questions *repository.QuestionRepo
	bank      *BankSynchronizer
	queue     *redis.Client
}

func NewIngestService(
	extract *FileExtractService,
	chain *GeneratorChain,
	questions *repository.QuestionRepo,
	bank *BankSynchronizer,
	queue *redis.Client,
) *IngestService {
	return &IngestService{
		extract:   extract,
		chain:     chain,
		questions: questions,
		bank:      bank,
		queue:     queue,
	}
}

// Ingest processes one uploaded document. A failed bank commit does not roll
// back the store writes: the report carries the sync error and a retry job is
// queued, so the questions stay practicable immediately.
func (s *IngestService) Ingest(ctx context.Context, data []byte, filename, topicOverride string) (*models.SyncReport, error) {
	text, err := s.extract.ExtractText(data, filename)
	if err != nil {
		return nil, err
	}

	topic := topicOverride
	if topic == "" {
		topic = InferTopic(text, filename)
	}

	chunks, err := SplitSections(text)
	if err != nil {
		return nil, err
	}

	storeHashes, err := s.questions.AllContentHashes(ctx)
	if err != nil {
		return nil, err
	}
	bankTexts, err := s.bank.NormalizedTexts()
	if err != nil {
		return nil, err
	}
	filter := NewDuplicateFilter(storeHashes, bankTexts)

	report := &models.SyncReport{Topic: topic, BankPath: s.bank.Path()}
	var admitted []models.Question

	for i, chunk := range chunks {
		target := InferDifficulty(chunk, i, len(chunks))

		candidates, err := s.chain.Generate(ctx, chunk, topic, target)
		if err != nil {
			return nil, err
		}
		report.Generated += len(candidates)

		for _, c := range candidates {
			if !filter.Admit(c.Text) {
				report.Skipped++
				continue
			}

			q := models.Question{
				Topic:        topic,
				Difficulty:   target,
				Text:         c.Text,
				Choices:      c.Choices,
				CorrectIndex: c.CorrectIndex,
				ContentHash:  ContentHash(c.Text),
				Source:       models.SourceGenerated,
			}
			if err := s.questions.Create(ctx, &q); err != nil {
				// The unique index catches races the snapshot filter missed.
				if errors.Is(err, repository.ErrDuplicateContentHash) {
					report.Skipped++
					continue
				}
				return nil, err
			}
			admitted = append(admitted, q)
		}
	}
	report.Admitted = len(admitted)

	res, err := s.bank.Sync(admitted)
	if err != nil {
		var syncErr *SyncIOError
		if !errors.As(err, &syncErr) {
			return nil, err
		}
		log.Printf("bank sync failed after ingest of %q, queueing retry: %v", filename, err)
		s.enqueueRetry(ctx, admitted)
		report.SyncError = err.Error()
		return report, nil
	}

	report.BankSynced = true
	report.Inserted = res.Inserted
	report.Skipped += res.Skipped
	report.TotalInTopic = res.TopicTotals[topic]
	return report, nil
}

// SeedFromBank loads bank entries into an empty store so practice endpoints
// work before any document has been ingested. A non-empty store is left
// alone.
func (s *IngestService) SeedFromBank(ctx context.Context) (int, error) {
	count, err := s.questions.Count(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	entries, err := s.bank.Entries()
	if err != nil {
		return 0, err
	}

	seeded := 0
	for topic, topicEntries := range entries {
		for _, e := range topicEntries {
			q := models.Question{
				Topic:        topic,
				Difficulty:   e.Difficulty,
				Text:         e.Text,
				Choices:      e.Choices,
				CorrectIndex: e.CorrectIndex,
				ContentHash:  ContentHash(e.Text),
				Source:       models.SourceBank,
			}
			if !q.Difficulty.Valid() {
				q.Difficulty = models.DifficultyMedium
			}
			if err := s.questions.Create(ctx, &q); err != nil {
				if errors.Is(err, repository.ErrDuplicateContentHash) {
					continue
				}
				return seeded, err
			}
			seeded++
		}
	}
	return seeded, nil
}

// RetrySync re-runs the bank commit for previously stored questions. Sync is
// idempotent, so running a stale job twice is harmless.
func (s *IngestService) RetrySync(ctx context.Context, ids []uuid.UUID) error {
	questions, err := s.questions.GetByIDs(ctx, ids)
	if err != nil {
		return err
	}
	if len(questions) == 0 {
		return nil
	}
	_, err = s.bank.Sync(questions)
	return err
}

func (s *IngestService) enqueueRetry(ctx context.Context, admitted []models.Question) {
	if s.queue == nil || len(admitted) == 0 {
		return
	}

	job := models.BankSyncJob{QuestionIDs: make([]uuid.UUID, len(admitted))}
	for i, q := range admitted {
		job.QuestionIDs[i] = q.ID
	}

	payload, err := json.Marshal(job)
	if err != nil {
		log.Printf("failed to marshal bank sync retry job: %v", err)
		return
	}
	if err := s.queue.LPush(ctx, BankSyncQueue, payload).Err(); err != nil {
		log.Printf("failed to queue bank sync retry: %v", err)
	}
}
