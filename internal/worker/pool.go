package worker

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"examino-backend/internal/models"
	"examino-backend/internal/services"
)

const maxSyncRetries = 5

// Pool drains the bank-sync retry queue: every job re-runs the idempotent
// master bank commit for questions whose original sync failed.
type Pool struct {
	redis       *redis.Client
	ingest      *services.IngestService
	workerCount int
	stopChan    chan struct{}
}

func NewPool(redisClient *redis.Client, ingest *services.IngestService, workerCount int) *Pool {
	return &Pool{
		redis:       redisClient,
		ingest:      ingest,
		workerCount: workerCount,
		stopChan:    make(chan struct{}),
	}
}

func (p *Pool) Start() {
	for i := 0; i < p.workerCount; i++ {
		go p.worker(i)
	}

	log.Printf("Started %d worker goroutines", p.workerCount)
}

func (p *Pool) Stop() {
	close(p.stopChan)
}

func (p *Pool) worker(id int) {
	for {
		select {
		case <-p.stopChan:
			log.Printf("Worker %d shutting down", id)
			return
		default:
		}

		ctx := context.Background()

		// BLPOP with 30s timeout
		result, err := p.redis.BLPop(ctx, 30*time.Second, services.BankSyncQueue).Result()
		if err != nil {
			continue // Timeout or error, retry
		}

		if len(result) < 2 {
			continue
		}

		payload := result[1]

		var job models.BankSyncJob
		if err := json.Unmarshal([]byte(payload), &job); err != nil {
			log.Printf("Worker %d: failed to parse bank sync job: %v", id, err)
			continue
		}
		if len(job.QuestionIDs) == 0 {
			continue
		}

		// Try to acquire lock
		lockKey := fmt.Sprintf("bank_sync_lock:%s", jobFingerprint(payload))
		locked, err := p.redis.SetNX(ctx, lockKey, "1", 10*time.Minute).Result()
		if err != nil || !locked {
			continue // Another worker has this job
		}

		log.Printf("Worker %d: retrying bank sync for %d questions (attempt %d)", id, len(job.QuestionIDs), job.RetryCount+1)

		if err := p.ingest.RetrySync(ctx, job.QuestionIDs); err != nil {
			p.handleFailure(&job, err)
		} else {
			log.Printf("Worker %d: bank sync retry succeeded for %d questions", id, len(job.QuestionIDs))
		}

		// Release lock
		p.redis.Del(ctx, lockKey)
	}
}

func (p *Pool) handleFailure(job *models.BankSyncJob, err error) {
	job.RetryCount++

	if job.RetryCount >= maxSyncRetries {
		log.Printf("Bank sync failed permanently after %d attempts: %v", job.RetryCount, err)
		return
	}

	log.Printf("Bank sync retry failed (attempt %d): %v", job.RetryCount, err)

	jobBytes, marshalErr := json.Marshal(job)
	if marshalErr != nil {
		log.Printf("Failed to marshal bank sync job for requeue: %v", marshalErr)
		return
	}

	// Re-queue after backoff
	backoff := time.Duration(1<<uint(job.RetryCount)) * time.Second
	time.AfterFunc(backoff, func() {
		p.redis.LPush(context.Background(), services.BankSyncQueue, string(jobBytes))
	})
}

// jobFingerprint keys the dedup lock on the exact job payload.
func jobFingerprint(payload string) string {
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:8])
}
