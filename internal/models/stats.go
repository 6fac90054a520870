package models

import "time"

// TopicStats tracks rolling per-topic performance since the last difficulty
// adjustment. AttemptCount and RecentCorrectCount reset to zero exactly when
// the controller evaluates a promotion or demotion; they never reset
// otherwise.
type TopicStats struct {
	Topic              string     `json:"topic"`
	CurrentDifficulty  Difficulty `json:"current_difficulty"`
	AttemptCount       int        `json:"attempt_count"`
	RecentCorrectCount int        `json:"recent_correct_count"`
	LastAdjustedAt     time.Time  `json:"last_adjusted_at"`
}

type TopicPerformance struct {
	Topic             string     `json:"topic"`
	Attempts          int        `json:"attempts"`
	Correct           int        `json:"correct"`
	Accuracy          float64    `json:"accuracy"`
	CurrentDifficulty Difficulty `json:"difficulty"`
}

type PerformanceSummary struct {
	TotalAttempts   int                `json:"total_attempts"`
	OverallAccuracy float64            `json:"overall_accuracy"`
	Topics          []TopicPerformance `json:"topics"`
}
