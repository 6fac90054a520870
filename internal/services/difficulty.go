package services

import (
	"time"

	"examino-backend/internal/models"
)

// Adjustment thresholds. Both comparisons are strict: an accuracy of exactly
// 0.75 or 0.40 lands in the mid band and leaves the counters running.
const (
	minAttemptsForAdjustment = 3
	promoteAbove             = 0.75
	demoteBelow              = 0.40
)

// NewTopicStats returns the starting state for a topic: medium difficulty,
// zero counters.
func NewTopicStats(topic string, now time.Time) models.TopicStats {
	return models.TopicStats{
		Topic:             topic,
		CurrentDifficulty: models.DifficultyMedium,
		LastAdjustedAt:    now,
	}
}

// ApplyAttempt folds one graded attempt into the topic's state and reports
// whether the difficulty level changed. It is a pure function over the passed
// state; the caller persists the result.
//
// Counters reset whenever an adjustment is evaluated, not only when the level
// moves: pushing past a threshold at the boundary level (promote at hard,
// demote at easy) still clears the window, so stale streaks never carry into
// the next evaluation.
func ApplyAttempt(stats models.TopicStats, correct bool, now time.Time) (models.TopicStats, bool) {
	stats.AttemptCount++
	if correct {
		stats.RecentCorrectCount++
	}

	if stats.AttemptCount < minAttemptsForAdjustment {
		return stats, false
	}

	accuracy := float64(stats.RecentCorrectCount) / float64(stats.AttemptCount)

	switch {
	case accuracy > promoteAbove:
		next := stats.CurrentDifficulty.Promote()
		changed := next != stats.CurrentDifficulty
		stats.CurrentDifficulty = next
		stats.AttemptCount = 0
		stats.RecentCorrectCount = 0
		stats.LastAdjustedAt = now
		return stats, changed

	case accuracy < demoteBelow:
		next := stats.CurrentDifficulty.Demote()
		changed := next != stats.CurrentDifficulty
		stats.CurrentDifficulty = next
		stats.AttemptCount = 0
		stats.RecentCorrectCount = 0
		stats.LastAdjustedAt = now
		return stats, changed
	}

	return stats, false
}
