package models

import (
	"time"

	"github.com/google/uuid"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Levels orders difficulties from easiest to hardest.
var Levels = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

func (d Difficulty) Valid() bool {
	return d == DifficultyEasy || d == DifficultyMedium || d == DifficultyHard
}

// Rank returns the position of d in Levels; unknown values rank as medium.
func (d Difficulty) Rank() int {
	for i, lvl := range Levels {
		if d == lvl {
			return i
		}
	}
	return 1
}

// Promote moves one level up; already at the top is a no-op.
func (d Difficulty) Promote() Difficulty {
	idx := d.Rank() + 1
	if idx >= len(Levels) {
		idx = len(Levels) - 1
	}
	return Levels[idx]
}

// Demote moves one level down; already at the bottom is a no-op.
func (d Difficulty) Demote() Difficulty {
	idx := d.Rank() - 1
	if idx < 0 {
		idx = 0
	}
	return Levels[idx]
}

const (
	SourceBank      = "bank"
	SourceGenerated = "generated"
)

type Question struct {
	ID           uuid.UUID  `json:"id"`
	Topic        string     `json:"topic"`
	Difficulty   Difficulty `json:"difficulty"`
	Text         string     `json:"text"`
	Choices      []string   `json:"choices"`
	CorrectIndex int        `json:"-"`
	ContentHash  string     `json:"-"`
	Source       string     `json:"source"`
	CreatedAt    time.Time  `json:"created_at"`
}
