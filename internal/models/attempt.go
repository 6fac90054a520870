package models

import (
	"time"

	"github.com/google/uuid"
)

type Attempt struct {
	ID          uuid.UUID `json:"id"`
	QuestionID  uuid.UUID `json:"question_id"`
	ChosenIndex int       `json:"chosen_index"`
	Correct     bool      `json:"correct"`
	Topic       string    `json:"topic"`
	AttemptedAt time.Time `json:"attempted_at"`
}

type SubmitAttemptRequest struct {
	QuestionID  uuid.UUID `json:"question_id"`
	ChosenIndex *int      `json:"chosen_index"`
}

type AttemptResult struct {
	Correct           bool       `json:"correct"`
	CorrectIndex      int        `json:"correct_index"`
	NewDifficulty     Difficulty `json:"new_difficulty"`
	DifficultyChanged bool       `json:"difficulty_changed"`
}
