package services

import (
	"context"
	"errors"
	"log"

	"examino-backend/internal/models"
)

// QuestionGenerator produces candidate questions from one section chunk.
// Implementations may return an empty slice; not every chunk yields a usable
// question.
type QuestionGenerator interface {
	Name() string
	Generate(ctx context.Context, chunk models.SectionChunk, topic string, target models.Difficulty) ([]models.CandidateQuestion, error)
}

// GeneratorChain tries each generator in order and advances to the next on a
// GenerationError. It never advances past a success, even an empty one.
type GeneratorChain struct {
	generators []QuestionGenerator
}

func NewGeneratorChain(generators ...QuestionGenerator) *GeneratorChain {
	return &GeneratorChain{generators: generators}
}

func (c *GeneratorChain) Generate(ctx context.Context, chunk models.SectionChunk, topic string, target models.Difficulty) ([]models.CandidateQuestion, error) {
	for _, g := range c.generators {
		out, err := g.Generate(ctx, chunk, topic, target)
		if err != nil {
			var genErr *GenerationError
			if errors.As(err, &genErr) {
				log.Printf("generator %s failed, falling through: %v", g.Name(), err)
				continue
			}
			return nil, err
		}
		return out, nil
	}

	log.Printf("all generators failed for chunk %q", chunk.Heading)
	return nil, nil
}
