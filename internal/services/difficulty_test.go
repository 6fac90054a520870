package services

import (
	"testing"
	"time"

	"examino-backend/internal/models"
)

func statsAt(level models.Difficulty, attempts, correct int) models.TopicStats {
	return models.TopicStats{
		Topic:              "Biology",
		CurrentDifficulty:  level,
		AttemptCount:       attempts,
		RecentCorrectCount: correct,
	}
}

func TestApplyAttemptBelowMinimumSamples(t *testing.T) {
	now := time.Now()
	s := NewTopicStats("Biology", now)

	for i := 0; i < minAttemptsForAdjustment-1; i++ {
		var changed bool
		s, changed = ApplyAttempt(s, true, now)
		if changed {
			t.Fatalf("attempt %d: no adjustment before %d samples", i+1, minAttemptsForAdjustment)
		}
		if s.CurrentDifficulty != models.DifficultyMedium {
			t.Fatalf("attempt %d: difficulty moved to %s", i+1, s.CurrentDifficulty)
		}
	}
	if s.AttemptCount != 2 || s.RecentCorrectCount != 2 {
		t.Errorf("counters = %d/%d, want 2/2", s.RecentCorrectCount, s.AttemptCount)
	}
}

func TestApplyAttemptPromotes(t *testing.T) {
	now := time.Now()

	// Third attempt, all correct: accuracy 1.0 > 0.75.
	s, changed := ApplyAttempt(statsAt(models.DifficultyMedium, 2, 2), true, now)
	if !changed {
		t.Error("expected a level change")
	}
	if s.CurrentDifficulty != models.DifficultyHard {
		t.Errorf("difficulty = %s, want hard", s.CurrentDifficulty)
	}
	if s.AttemptCount != 0 || s.RecentCorrectCount != 0 {
		t.Errorf("counters should reset after adjustment, got %d/%d", s.RecentCorrectCount, s.AttemptCount)
	}
	if !s.LastAdjustedAt.Equal(now) {
		t.Error("LastAdjustedAt should be stamped on adjustment")
	}
}

func TestApplyAttemptDemotes(t *testing.T) {
	now := time.Now()

	// Third attempt, one correct: accuracy 1/3 < 0.40.
	s, changed := ApplyAttempt(statsAt(models.DifficultyMedium, 2, 1), false, now)
	if !changed {
		t.Error("expected a level change")
	}
	if s.CurrentDifficulty != models.DifficultyEasy {
		t.Errorf("difficulty = %s, want easy", s.CurrentDifficulty)
	}
	if s.AttemptCount != 0 || s.RecentCorrectCount != 0 {
		t.Errorf("counters should reset after adjustment, got %d/%d", s.RecentCorrectCount, s.AttemptCount)
	}
}

func TestApplyAttemptExactThresholdsStay(t *testing.T) {
	now := time.Now()

	// 3 of 4 correct: exactly 0.75, strictly-greater comparison keeps medium
	// and leaves the window running.
	s, changed := ApplyAttempt(statsAt(models.DifficultyMedium, 3, 2), true, now)
	if changed || s.CurrentDifficulty != models.DifficultyMedium {
		t.Errorf("accuracy 0.75 must not promote, got %s changed=%v", s.CurrentDifficulty, changed)
	}
	if s.AttemptCount != 4 || s.RecentCorrectCount != 3 {
		t.Errorf("mid-band result must not reset counters, got %d/%d", s.RecentCorrectCount, s.AttemptCount)
	}

	// 2 of 5 correct: exactly 0.40, stays put.
	s, changed = ApplyAttempt(statsAt(models.DifficultyMedium, 4, 2), false, now)
	if changed || s.CurrentDifficulty != models.DifficultyMedium {
		t.Errorf("accuracy 0.40 must not demote, got %s changed=%v", s.CurrentDifficulty, changed)
	}
	if s.AttemptCount != 5 || s.RecentCorrectCount != 2 {
		t.Errorf("mid-band result must not reset counters, got %d/%d", s.RecentCorrectCount, s.AttemptCount)
	}
}

func TestApplyAttemptBoundaryLevelsStillReset(t *testing.T) {
	now := time.Now()

	// Perfect run at hard: no level above, but the evaluation still resets the
	// window so the streak cannot go stale.
	s, changed := ApplyAttempt(statsAt(models.DifficultyHard, 2, 2), true, now)
	if changed {
		t.Error("hard cannot promote further")
	}
	if s.CurrentDifficulty != models.DifficultyHard {
		t.Errorf("difficulty = %s, want hard", s.CurrentDifficulty)
	}
	if s.AttemptCount != 0 || s.RecentCorrectCount != 0 {
		t.Errorf("boundary evaluation must reset counters, got %d/%d", s.RecentCorrectCount, s.AttemptCount)
	}

	// Failed run at easy: same on the other side.
	s, changed = ApplyAttempt(statsAt(models.DifficultyEasy, 2, 0), false, now)
	if changed {
		t.Error("easy cannot demote further")
	}
	if s.CurrentDifficulty != models.DifficultyEasy {
		t.Errorf("difficulty = %s, want easy", s.CurrentDifficulty)
	}
	if s.AttemptCount != 0 || s.RecentCorrectCount != 0 {
		t.Errorf("boundary evaluation must reset counters, got %d/%d", s.RecentCorrectCount, s.AttemptCount)
	}
}

func TestApplyAttemptFullLadder(t *testing.T) {
	now := time.Now()
	s := NewTopicStats("Chemistry", now)

	// One perfect window climbs a level: medium -> hard.
	for i := 0; i < 3; i++ {
		s, _ = ApplyAttempt(s, true, now)
	}
	if s.CurrentDifficulty != models.DifficultyHard {
		t.Fatalf("after one perfect window: %s, want hard", s.CurrentDifficulty)
	}

	// Three failed windows walk it back down: hard -> medium -> easy.
	for i := 0; i < 3; i++ {
		s, _ = ApplyAttempt(s, false, now)
	}
	if s.CurrentDifficulty != models.DifficultyMedium {
		t.Fatalf("after one failed window: %s, want medium", s.CurrentDifficulty)
	}
	for i := 0; i < 3; i++ {
		s, _ = ApplyAttempt(s, false, now)
	}
	if s.CurrentDifficulty != models.DifficultyEasy {
		t.Fatalf("after two failed windows: %s, want easy", s.CurrentDifficulty)
	}
}
